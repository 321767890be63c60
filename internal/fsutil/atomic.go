// Package fsutil holds the file-writing helpers shared by the generator and
// the CLI scaffolding.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrExists is returned by WriteFile when the target exists and overwrite
// was not requested.
var ErrExists = errors.New("already exists (use --force to overwrite)")

// WriteFile writes data to path through a temp file in the same directory
// followed by a rename, so readers never observe a partially written file.
// Parent directories are created as needed.
func WriteFile(path string, data []byte, perm os.FileMode, overwrite bool) error {
	if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() && !overwrite {
		return fmt.Errorf("%q %w", path, ErrExists)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", filepath.Base(path), err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
		}
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp %s: %w", filepath.Base(path), err)
	}
	tmp = nil

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	success = true
	return nil
}
