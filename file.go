package nibarchive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wippyai/nib-archive/errors"
	"github.com/wippyai/nib-archive/nib"
)

// Open reads and decodes the archive at path.
func Open(path string, opts ...nib.DecodeOption) (*nib.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("read %s", path), err)
	}
	a, err := nib.Decode(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Save encodes a and writes it to path, creating parent directories.
func Save(path string, a *nib.Archive) error {
	data, err := a.Encode()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return WriteFile(path, data)
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Load(fmt.Sprintf("create parent directories for %s", path), err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Load(fmt.Sprintf("write %s", path), err)
	}
	return nil
}
