//go:build !unix && !windows

package volume

// FreeSpace is not available on this platform
func (s *Service) FreeSpace(path string) (uint64, error) {
	return 0, ErrUnsupportedPlatform
}
