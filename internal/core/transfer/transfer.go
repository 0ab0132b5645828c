package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

// MusicFolder is the folder created at the root of the target volume
const MusicFolder = "Music"

// Mode selects what happens to existing content on the target
type Mode string

const (
	ModeFormat Mode = "format" // replace {target}/Music
	ModeMerge  Mode = "merge"  // keep existing content, overwrite same-named files
)

// ParseMode accepts "format" or "merge", case-insensitively
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeFormat:
		return ModeFormat, nil
	case ModeMerge:
		return ModeMerge, nil
	}
	return "", fmt.Errorf("invalid transfer mode %q (expected format or merge)", value)
}

// Stats summarizes a transfer
type Stats struct {
	Total  int
	Copied int
	Bytes  int64
	Failed []string
}

// Engine mirrors an organized staging tree onto a target volume
type Engine struct {
	logger   interfaces.LoggerService
	warnings interfaces.WarningCollectorService
}

// New creates a transfer engine. logger and warnings may be nil.
func New(logger interfaces.LoggerService, warnings interfaces.WarningCollectorService) *Engine {
	if logger == nil {
		logger = shared.NopLogger{}
	}
	return &Engine{logger: logger, warnings: warnings}
}

// Transfer copies every file under stagingRoot into {targetRoot}/Music. Files that fail to
// copy are listed in Stats.Failed; cancellation leaves already copied files in place.
func (e *Engine) Transfer(ctx context.Context, stagingRoot, targetRoot string, mode Mode, onProgress shared.ProgressFunc) (Stats, error) {
	var stats Stats
	if err := shared.CheckCancelled(ctx); err != nil {
		return stats, err
	}

	musicDir := filepath.Join(targetRoot, MusicFolder)
	if err := prepare(musicDir, mode); err != nil {
		return stats, fmt.Errorf("%w: %v", shared.ErrTargetUnavailable, err)
	}

	total, _, err := Measure(stagingRoot)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", shared.ErrStagingUnavailable, err)
	}
	stats.Total = total
	if total == 0 {
		e.logger.Debug("Nothing to copy from %s", stagingRoot)
		return stats, nil
	}

	processed := 0
	err = filepath.WalkDir(stagingRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(stagingRoot, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(musicDir, rel)

		if d.IsDir() {
			return os.MkdirAll(dest, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := shared.CheckCancelled(ctx); err != nil {
			return err
		}

		if err := e.copyOne(path, dest); err != nil {
			e.logger.Warning("Failed to copy %s: %v", rel, err)
			if e.warnings != nil {
				e.warnings.AddCopyFailedWarning(rel, err.Error())
			}
			stats.Failed = append(stats.Failed, rel)
		} else {
			stats.Copied++
			if info, err := d.Info(); err == nil {
				stats.Bytes += info.Size()
			}
		}

		processed++
		onProgress.Report(processed, total, shared.StageCopying)
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrCancelled) {
			return stats, err
		}
		return stats, fmt.Errorf("failed to copy to %s: %w", musicDir, err)
	}
	return stats, nil
}

func (e *Engine) copyOne(src, dest string) error {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace existing file: %w", err)
	}
	return shared.CopyFile(src, dest)
}

func prepare(musicDir string, mode Mode) error {
	switch mode {
	case ModeFormat:
		if err := os.RemoveAll(musicDir); err != nil {
			return err
		}
		return os.MkdirAll(musicDir, 0755)
	case ModeMerge:
		return os.MkdirAll(musicDir, 0755)
	}
	return fmt.Errorf("unknown transfer mode %q", mode)
}

// Measure counts regular files under root and sums their sizes
func Measure(root string) (files int, bytes int64, err error) {
	err = filepath.WalkDir(root, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		bytes += info.Size()
		return nil
	})
	return files, bytes, err
}
