package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

const (
	maxPathLength = 255
	coverFileName = "cover.jpg"
	shortHead     = 20
	shortTail     = 5
)

// Result summarizes an organize run
type Result struct {
	Analyzed int      // supported audio files found
	Copied   int      // tracks written to the destination
	Artists  int
	Albums   int
	Unknown  []string // base names with incomplete metadata, first-seen order
	Failed   []string // source paths that could not be copied
}

// Organizer builds an Artist/Album/NN - Title tree from a loose collection of audio files
type Organizer struct {
	processor interfaces.TrackProcessor
	covers    interfaces.ImageService
	logger    interfaces.LoggerService
	warnings  interfaces.WarningCollectorService
}

// New creates an organizer. covers, logger and warnings may be nil; without a
// cover service the artwork bytes are written unchanged.
func New(processor interfaces.TrackProcessor, covers interfaces.ImageService, logger interfaces.LoggerService, warnings interfaces.WarningCollectorService) *Organizer {
	if logger == nil {
		logger = shared.NopLogger{}
	}
	return &Organizer{
		processor: processor,
		covers:    covers,
		logger:    logger,
		warnings:  warnings,
	}
}

// Organize analyzes sourceRoot and copies every supported file into destRoot.
// The destination subtree is never analyzed, so running twice does not pick up earlier output.
func (o *Organizer) Organize(ctx context.Context, sourceRoot, destRoot string, onProgress shared.ProgressFunc) (Result, error) {
	library, unknown, err := o.Analyze(ctx, sourceRoot, destRoot, onProgress)
	if err != nil {
		return Result{Unknown: unknown}, err
	}
	result, err := o.Materialize(ctx, library, destRoot, onProgress)
	result.Unknown = unknown
	return result, err
}

// Analyze walks sourceRoot and enriches every supported file. Progress counts all regular
// files outside the destination, supported or not.
func (o *Organizer) Analyze(ctx context.Context, sourceRoot, destRoot string, onProgress shared.ProgressFunc) (*Library, []string, error) {
	absSource, err := filepath.Abs(sourceRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve source folder: %w", err)
	}
	absDest, err := filepath.Abs(destRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve destination folder: %w", err)
	}
	if !shared.DirExists(absSource) {
		return nil, nil, fmt.Errorf("source folder %s does not exist", sourceRoot)
	}

	total, err := countFiles(ctx, absSource, absDest)
	if err != nil {
		return nil, nil, err
	}
	o.logger.Debug("Analyzing %d files under %s", total, absSource)

	library := NewLibrary()
	var unknown []string
	seenUnknown := make(map[string]bool)
	processed := 0

	err = filepath.WalkDir(absSource, func(path string, d fs.DirEntry, walkErr error) error {
		if err := shared.CheckCancelled(ctx); err != nil {
			return err
		}
		if walkErr != nil {
			o.logger.Warning("Skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if shared.IsWithin(path, absDest) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if shared.SupportedExtensions[strings.ToLower(filepath.Ext(path))] {
			record, incomplete, err := o.processor.Process(ctx, path)
			if err != nil {
				return err
			}
			library.Add(record)
			if incomplete {
				name := filepath.Base(path)
				if !seenUnknown[name] {
					seenUnknown[name] = true
					unknown = append(unknown, name)
				}
			}
		}

		processed++
		onProgress.Report(processed, total, shared.StageAnalyzing)
		return nil
	})
	if err != nil {
		if shared.IsCancelled(err) {
			return nil, unknown, shared.ErrCancelled
		}
		return nil, unknown, fmt.Errorf("failed to analyze %s: %w", sourceRoot, err)
	}
	return library, unknown, nil
}

// Materialize creates the folder tree under destRoot and copies each track into place.
// A track that fails to copy is skipped; cancellation stops immediately without rollback.
func (o *Organizer) Materialize(ctx context.Context, library *Library, destRoot string, onProgress shared.ProgressFunc) (Result, error) {
	result := Result{Analyzed: library.TrackCount()}
	total := library.TrackCount()
	processed := 0

	for _, artist := range library.Artists() {
		if err := shared.CheckCancelled(ctx); err != nil {
			return result, err
		}
		artistDir := filepath.Join(destRoot, artist.Name)
		if err := os.MkdirAll(artistDir, 0755); err != nil {
			return result, fmt.Errorf("failed to create artist folder %s: %w", artistDir, err)
		}
		result.Artists++

		for _, album := range artist.Albums {
			if err := shared.CheckCancelled(ctx); err != nil {
				return result, err
			}
			albumDir := filepath.Join(artistDir, album.Name)
			if err := os.MkdirAll(albumDir, 0755); err != nil {
				return result, fmt.Errorf("failed to create album folder %s: %w", albumDir, err)
			}
			result.Albums++

			tracks := album.SortedTracks()
			used := make(map[string]bool, len(tracks))
			for i, track := range tracks {
				if err := shared.CheckCancelled(ctx); err != nil {
					return result, err
				}

				dest, fits := trackPath(albumDir, track, i+1, used)
				if !fits {
					o.logger.Warning("Path is longer than %d characters and may be rejected by the target: %s", maxPathLength, dest)
				}
				if err := shared.CopyFile(track.SourcePath, dest); err != nil {
					o.logger.Warning("Failed to copy %s: %v", track.SourcePath, err)
					if o.warnings != nil {
						o.warnings.AddCopyFailedWarning(track.SourcePath, err.Error())
					}
					result.Failed = append(result.Failed, track.SourcePath)
				} else {
					result.Copied++
				}

				processed++
				onProgress.Report(processed, total, shared.StageOrganizing)
			}

			o.writeCover(albumDir, artist.Name, album.Name, tracks)
		}
	}
	return result, nil
}

// trackPath builds "NN - Title.ext" inside albumDir, shortening titles that push the
// path past the limit and suffixing names already taken in this album. fits is false
// when the path is still too long after shortening.
func trackPath(albumDir string, track shared.TrackRecord, position int, used map[string]bool) (dest string, fits bool) {
	number := position
	if track.HasTrackNumber() {
		number = track.TrackNumber
	}
	ext := filepath.Ext(track.SourcePath)
	title := track.Title

	dest = filepath.Join(albumDir, fmt.Sprintf("%02d - %s%s", number, title, ext))
	if utf8.RuneCountInString(dest) > maxPathLength {
		title = shortenTitle(title)
		dest = filepath.Join(albumDir, fmt.Sprintf("%02d - %s%s", number, title, ext))
	}

	base := filepath.Base(dest)
	for n := 2; used[strings.ToLower(base)]; n++ {
		base = fmt.Sprintf("%02d - %s (%d)%s", number, title, n, ext)
	}
	used[strings.ToLower(base)] = true
	dest = filepath.Join(albumDir, base)
	return dest, utf8.RuneCountInString(dest) <= maxPathLength
}

func shortenTitle(title string) string {
	r := []rune(title)
	if len(r) <= shortHead+shortTail {
		return title
	}
	return string(r[:shortHead]) + "..." + string(r[len(r)-shortTail:])
}

// writeCover stores the first available artwork of the album as cover.jpg. Failures are warnings.
func (o *Organizer) writeCover(albumDir, artist, album string, tracks []shared.TrackRecord) {
	var art []byte
	for _, t := range tracks {
		if len(t.AlbumArt) > 0 {
			art = t.AlbumArt
			break
		}
	}
	if art == nil {
		return
	}

	if o.covers != nil {
		normalized, err := o.covers.NormalizeCover(art)
		if err != nil {
			o.logger.Debug("Cover for %s - %s kept as is: %v", artist, album, err)
		} else {
			art = normalized
		}
	}

	if err := os.WriteFile(filepath.Join(albumDir, coverFileName), art, 0644); err != nil {
		o.logger.Warning("Failed to write cover for %s - %s: %v", artist, album, err)
		if o.warnings != nil {
			o.warnings.AddCoverArtWarning(fmt.Sprintf("%s - %s", artist, album), err.Error())
		}
	}
}

// countFiles counts regular files under root, skipping the destination subtree
func countFiles(ctx context.Context, root, absDest string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cerr := shared.CheckCancelled(ctx); cerr != nil {
			return cerr
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if shared.IsWithin(path, absDest) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	if errors.Is(err, shared.ErrCancelled) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return count, nil
}
