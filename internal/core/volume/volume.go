package volume

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

// DefaultLabel names a freshly formatted volume when no label was requested
const DefaultLabel = "MUSIC"

// ErrUnsupportedPlatform is returned on systems without a known formatter
var ErrUnsupportedPlatform = errors.New("volume operations are not supported on this platform")

var commandContext = exec.CommandContext

// Service formats and labels removable FAT32 volumes with the platform's own tools
type Service struct {
	logger interfaces.LoggerService
	goos   string
}

// New creates a volume service for the running platform
func New(logger interfaces.LoggerService) *Service {
	if logger == nil {
		logger = shared.NopLogger{}
	}
	return &Service{logger: logger, goos: runtime.GOOS}
}

// Format erases identifier and creates a FAT32 filesystem on it. identifier is a device
// path on Linux (/dev/sdb1), a drive letter on Windows (E:) and a disk id on macOS (disk4s1).
func (s *Service) Format(ctx context.Context, identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("%w: no device given", shared.ErrFormatFailed)
	}
	name, args, err := s.formatCommand(identifier)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrFormatFailed, err)
	}
	if err := s.run(ctx, name, args...); err != nil {
		if ctx.Err() != nil {
			return shared.ErrCancelled
		}
		return fmt.Errorf("%w: %v", shared.ErrFormatFailed, err)
	}
	return nil
}

// Label renames identifier. The name is reduced to a valid FAT32 label first.
func (s *Service) Label(ctx context.Context, identifier, name string) error {
	label := shared.VolumeLabel(name)
	if label == "" {
		return fmt.Errorf("label %q has no usable characters", name)
	}
	cmd, args, err := s.labelCommand(identifier, label)
	if err != nil {
		return err
	}
	if err := s.run(ctx, cmd, args...); err != nil {
		return fmt.Errorf("failed to label %s: %w", identifier, err)
	}
	return nil
}

func (s *Service) formatCommand(identifier string) (string, []string, error) {
	switch s.goos {
	case "linux":
		return "mkfs.fat", []string{"-F", "32", "-n", DefaultLabel, identifier}, nil
	case "windows":
		return "cmd", []string{"/C", "format", driveLetter(identifier) + ":", "/FS:FAT32", "/Q", "/Y", "/V:" + DefaultLabel}, nil
	case "darwin":
		return "diskutil", []string{"eraseVolume", "FAT32", DefaultLabel, identifier}, nil
	}
	return "", nil, ErrUnsupportedPlatform
}

func (s *Service) labelCommand(identifier, label string) (string, []string, error) {
	switch s.goos {
	case "linux":
		return "fatlabel", []string{identifier, label}, nil
	case "windows":
		script := fmt.Sprintf("Set-Volume -DriveLetter %s -NewFileSystemLabel '%s'", driveLetter(identifier), label)
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}, nil
	case "darwin":
		return "diskutil", []string{"rename", identifier, label}, nil
	}
	return "", nil, ErrUnsupportedPlatform
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	s.logger.Debug("Running %s %s", name, strings.Join(args, " "))
	output, err := commandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// driveLetter turns "e", "E:" or `E:\` into "E"
func driveLetter(identifier string) string {
	id := strings.TrimSpace(identifier)
	id = strings.TrimRight(id, `:\/`)
	return strings.ToUpper(id)
}
