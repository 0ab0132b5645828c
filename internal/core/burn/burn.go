package burn

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"meloburn/internal/core/organizer"
	"meloburn/internal/core/transfer"
	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

const (
	lockFileName  = "meloburn.lock"
	stagingPrefix = "meloburn-"
)

// ErrAlreadyRunning is returned when another sync holds the staging lock
var ErrAlreadyRunning = errors.New("another meloburn sync is already running")

// Organizer builds the staging tree
type Organizer interface {
	Organize(ctx context.Context, sourceRoot, destRoot string, onProgress shared.ProgressFunc) (organizer.Result, error)
}

// Transferer copies the staging tree onto the target
type Transferer interface {
	Transfer(ctx context.Context, stagingRoot, targetRoot string, mode transfer.Mode, onProgress shared.ProgressFunc) (transfer.Stats, error)
}

// Options describes one sync run
type Options struct {
	Source      string        // loose music collection
	Target      string        // mounted root of the volume
	Device      string        // volume identifier for format and label, optional
	Mode        transfer.Mode // format or merge
	Label       string        // new volume label, optional
	StagingRoot string        // parent of the temporary staging folder, defaults to the OS temp dir
	KeepStaging bool
}

// Report summarizes a sync run
type Report struct {
	StagingDir string
	Organize   organizer.Result
	Transfer   transfer.Stats
	Formatted  bool
	Labeled    bool
}

// Runner drives organize, format, transfer and label in sequence
type Runner struct {
	organizer  Organizer
	transferer Transferer
	volume     interfaces.VolumeService
	logger     interfaces.LoggerService
	warnings   interfaces.WarningCollectorService
}

// NewRunner creates a sync runner. volume may be nil when no device operations are wanted.
func NewRunner(org Organizer, transferer Transferer, volume interfaces.VolumeService, logger interfaces.LoggerService, warnings interfaces.WarningCollectorService) *Runner {
	if logger == nil {
		logger = shared.NopLogger{}
	}
	return &Runner{
		organizer:  org,
		transferer: transferer,
		volume:     volume,
		logger:     logger,
		warnings:   warnings,
	}
}

// Run organizes opts.Source into a fresh staging folder and copies it to opts.Target.
// The staging folder is removed afterwards whatever the outcome. Cancellation is
// returned as shared.ErrCancelled; other failures are wrapped with the phase name.
func (r *Runner) Run(ctx context.Context, opts Options, onProgress shared.ProgressFunc) (report Report, err error) {
	if err := validate(&opts); err != nil {
		return report, err
	}
	if opts.Device != "" && r.volume == nil {
		return report, errors.New("volume operations are not available")
	}

	if err := os.MkdirAll(opts.StagingRoot, 0755); err != nil {
		return report, fmt.Errorf("%w: %v", shared.ErrStagingUnavailable, err)
	}
	lock := flock.New(filepath.Join(opts.StagingRoot, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return report, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return report, ErrAlreadyRunning
	}
	defer func() { _ = lock.Unlock() }()

	report.StagingDir = filepath.Join(opts.StagingRoot, stagingPrefix+uuid.NewString())
	if err := os.MkdirAll(report.StagingDir, 0755); err != nil {
		return report, fmt.Errorf("%w: %v", shared.ErrStagingUnavailable, err)
	}
	if !opts.KeepStaging {
		defer func() {
			if rmErr := os.RemoveAll(report.StagingDir); rmErr != nil {
				r.logger.Warning("Failed to remove staging folder %s: %v", report.StagingDir, rmErr)
			}
		}()
	}
	r.logger.Debug("Staging in %s", report.StagingDir)

	report.Organize, err = r.organizer.Organize(ctx, opts.Source, report.StagingDir, onProgress)
	if err != nil {
		return report, phaseError("organize", err)
	}

	if err := r.checkSpace(report.StagingDir, opts); err != nil {
		return report, err
	}

	if opts.Mode == transfer.ModeFormat && opts.Device != "" {
		if err := shared.CheckCancelled(ctx); err != nil {
			return report, err
		}
		r.logger.Info("Formatting %s as FAT32", opts.Device)
		if err := r.volume.Format(ctx, opts.Device); err != nil {
			return report, phaseError("format", err)
		}
		report.Formatted = true
	}

	report.Transfer, err = r.transferer.Transfer(ctx, report.StagingDir, opts.Target, opts.Mode, onProgress)
	if err != nil {
		return report, phaseError("transfer", err)
	}

	if opts.Label != "" && opts.Device != "" {
		if err := r.volume.Label(ctx, opts.Device, opts.Label); err != nil {
			r.logger.Warning("Could not label %s: %v", opts.Device, err)
			if r.warnings != nil {
				r.warnings.AddVolumeWarning(opts.Device, err.Error())
			}
		} else {
			report.Labeled = true
		}
	}
	return report, nil
}

// checkSpace compares the staging size with the free space left on the target. A format
// run frees the whole volume, so only merges are checked.
func (r *Runner) checkSpace(stagingDir string, opts Options) error {
	if r.volume == nil || opts.Mode != transfer.ModeMerge {
		return nil
	}
	_, needed, err := transfer.Measure(stagingDir)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStagingUnavailable, err)
	}
	free, err := r.volume.FreeSpace(opts.Target)
	if err != nil {
		r.logger.Debug("Free space check skipped: %v", err)
		return nil
	}
	if uint64(needed) > free {
		return fmt.Errorf("%w: need %s, %s available", shared.ErrInsufficientSpace,
			humanize.Bytes(uint64(needed)), humanize.Bytes(free))
	}
	return nil
}

func validate(opts *Options) error {
	if strings.TrimSpace(opts.Source) == "" {
		return errors.New("source folder is required")
	}
	if strings.TrimSpace(opts.Target) == "" {
		return errors.New("target volume is required")
	}
	if opts.Mode == "" {
		opts.Mode = transfer.ModeMerge
	}
	if opts.StagingRoot == "" {
		opts.StagingRoot = os.TempDir()
	}
	return nil
}

func phaseError(phase string, err error) error {
	if shared.IsCancelled(err) {
		return shared.ErrCancelled
	}
	return fmt.Errorf("%s: %w", phase, err)
}
