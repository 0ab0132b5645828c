package enrich

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

// Enricher turns raw tags into a complete TrackRecord, asking the resolver for whatever is missing
type Enricher struct {
	extractor interfaces.MetadataExtractor
	resolver  interfaces.ResolverService
	logger    interfaces.LoggerService
	warnings  interfaces.WarningCollectorService
}

// New creates an enricher. logger and warnings may be nil.
func New(extractor interfaces.MetadataExtractor, resolver interfaces.ResolverService, logger interfaces.LoggerService, warnings interfaces.WarningCollectorService) *Enricher {
	if logger == nil {
		logger = shared.NopLogger{}
	}
	return &Enricher{
		extractor: extractor,
		resolver:  resolver,
		logger:    logger,
		warnings:  warnings,
	}
}

// Process extracts and enriches one file. It never fails: any error or panic degrades the
// file to its stem under the placeholder artist and album, reported as incomplete.
// Cancellation is the exception and is returned as shared.ErrCancelled.
func (e *Enricher) Process(ctx context.Context, path string) (record shared.TrackRecord, incomplete bool, err error) {
	if err := shared.CheckCancelled(ctx); err != nil {
		return shared.TrackRecord{}, false, err
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warning("Metadata processing failed for %s: %v", filepath.Base(path), r)
			record, incomplete, err = degraded(path, shared.AudioInfo{}), true, nil
		}
		if incomplete && e.warnings != nil {
			e.warnings.AddIncompleteMetadataWarning(filepath.Base(path))
		}
	}()

	raw, info, extractErr := e.extractor.Extract(ctx, path)
	if extractErr != nil {
		if shared.IsCancelled(extractErr) {
			return shared.TrackRecord{}, false, shared.ErrCancelled
		}
		e.logger.Debug("Tags unavailable for %s: %v", filepath.Base(path), extractErr)
		if e.warnings != nil {
			e.warnings.AddTagReadWarning(path, extractErr.Error())
		}
	}

	record, incomplete = e.Enrich(ctx, path, raw, info)
	if ctx.Err() != nil {
		return shared.TrackRecord{}, false, shared.ErrCancelled
	}
	return record, incomplete, nil
}

// Enrich applies cleanup, provider lookups, cover art, year suffix and sanitizing to raw.
// incomplete reports whether any of artist, album or title was missing from the tags.
func (e *Enricher) Enrich(ctx context.Context, path string, raw shared.RawTags, info shared.AudioInfo) (shared.TrackRecord, bool) {
	artist := strings.TrimSpace(raw.Artist)
	album := strings.TrimSpace(raw.Album)
	title := strings.TrimSpace(raw.Title)
	incomplete := shared.IsUnknown(artist) || shared.IsUnknown(album) || shared.IsUnknown(title)

	if shared.IsUnknown(title) {
		title = stem(path)
	}
	if !shared.IsUnknown(artist) {
		artist = shared.CleanField(artist)
	}
	if !shared.IsUnknown(album) {
		album = shared.CleanField(album)
	}
	title = shared.CleanField(title)
	if stripped := shared.StripTrackPrefix(title); stripped != "" {
		title = stripped
	}

	if !shared.IsUnknown(title) && shared.IsUnknown(artist) {
		if found, ok := e.resolver.ResolveArtistByTrack(ctx, title); ok {
			artist = found
		}
	}
	if !shared.IsUnknown(artist) && shared.IsUnknown(title) {
		if found, ok := e.resolver.ResolveTrackByArtist(ctx, artist); ok {
			title = found
		}
	}
	if !shared.IsUnknown(artist) && !shared.IsUnknown(title) && shared.IsUnknown(album) {
		if found, ok := e.resolver.ResolveAlbumByTrackArtist(ctx, title, artist); ok {
			album = found
		}
	}

	artist = orPlaceholder(artist)
	album = orPlaceholder(album)
	title = orPlaceholder(title)

	art := raw.Picture
	if len(art) == 0 && !shared.IsUnknown(artist) && !shared.IsUnknown(album) {
		art = e.fetchAlbumArt(ctx, artist, album)
	}

	year := shared.ExtractYear(raw.Date)
	if year != "" && !shared.IsUnknown(album) {
		album = fmt.Sprintf("%s (%s)", album, year)
	}

	record := shared.TrackRecord{
		SourcePath:  path,
		Artist:      shared.Sanitize(artist),
		Album:       shared.Sanitize(album),
		Title:       shared.Sanitize(title),
		Year:        year,
		Genre:       strings.TrimSpace(raw.Genre),
		TrackNumber: raw.TrackNumber,
		AlbumArt:    art,
		AudioInfo:   info,
	}
	record.Language = shared.DetectLanguage(record.Artist + " " + record.Album + " " + record.Title)
	return record, incomplete
}

func (e *Enricher) fetchAlbumArt(ctx context.Context, artist, album string) []byte {
	url, ok := e.resolver.ResolveAlbumArtURL(ctx, artist, album)
	if !ok {
		return nil
	}
	data, ok := e.resolver.FetchBytes(ctx, url)
	if !ok {
		if e.warnings != nil && ctx.Err() == nil {
			e.warnings.AddCoverArtWarning(fmt.Sprintf("%s - %s", artist, album), "download failed: "+url)
		}
		return nil
	}
	return data
}

func degraded(path string, info shared.AudioInfo) shared.TrackRecord {
	return shared.TrackRecord{
		SourcePath: path,
		Artist:     shared.Placeholder,
		Album:      shared.Placeholder,
		Title:      shared.Sanitize(stem(path)),
		AudioInfo:  info,
		Language:   "unknown",
	}
}

func orPlaceholder(value string) string {
	if shared.IsUnknown(value) {
		return shared.Placeholder
	}
	return value
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
