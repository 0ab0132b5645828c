package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

// ErrUnsupportedFormat is returned for extensions no tag reader handles
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Extractor reads tags and technical details from audio files
type Extractor struct {
	logger     interfaces.LoggerService
	useFFprobe bool
}

// NewExtractor creates an extractor. ffprobe is only consulted when it is on PATH.
func NewExtractor(logger interfaces.LoggerService) *Extractor {
	if logger == nil {
		logger = shared.NopLogger{}
	}
	return &Extractor{
		logger:     logger,
		useFFprobe: shared.CheckFFprobe(),
	}
}

// Extract returns the raw tags and audio info of path. Audio info is filled as far as
// possible even when the tags cannot be read.
func (e *Extractor) Extract(ctx context.Context, path string) (shared.RawTags, shared.AudioInfo, error) {
	if err := shared.CheckCancelled(ctx); err != nil {
		return shared.RawTags{}, shared.AudioInfo{}, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	info := e.readAudioInfo(ctx, path, ext)

	var (
		tags shared.RawTags
		err  error
	)
	switch ext {
	case ".mp3":
		tags, err = readID3(path)
	case ".flac":
		tags, err = readFLACTags(path)
	case ".wav":
		tags, err = readWAVTags(path)
	case ".m4a", ".aac", ".ogg", ".wma":
		tags, err = readGenericTags(path)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		e.logger.Debug("Could not read tags of %s: %v", filepath.Base(path), err)
		return shared.RawTags{}, info, fmt.Errorf("failed to read tags: %w", err)
	}
	return tags, info, nil
}

func (e *Extractor) readAudioInfo(ctx context.Context, path, ext string) shared.AudioInfo {
	info := shared.AudioInfo{Format: strings.ToUpper(strings.TrimPrefix(ext, "."))}
	if stat, err := os.Stat(path); err == nil {
		info.Size = stat.Size()
	}

	var err error
	switch ext {
	case ".mp3":
		err = mp3Info(path, &info)
	case ".flac":
		err = flacInfo(path, &info)
	case ".wav":
		err = wavInfo(path, &info)
	}
	if err != nil {
		e.logger.Debug("Could not read stream info of %s: %v", filepath.Base(path), err)
	}

	if e.useFFprobe && (info.Duration == 0 || info.SampleRate == 0) {
		if err := ffprobeInfo(ctx, path, &info); err != nil {
			e.logger.Debug("ffprobe failed for %s: %v", filepath.Base(path), err)
		}
	}
	return info
}
