// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package texenv

import (
	"fmt"
	"os"
	"path/filepath"
)

// CropFile replaces the contents of texPath with the first environment
// Extract finds in it. A file without a matching environment is truncated to
// empty. If the environment is unbalanced the file is left untouched and the
// *UnbalancedError is returned.
func (x *Extractor) CropFile(texPath string) (Environment, error) {
	f, err := os.Open(texPath)
	if err != nil {
		return Environment{}, fmt.Errorf("opening %s: %w", texPath, err)
	}
	env, err := x.Extract(f)
	f.Close()
	if err != nil {
		return Environment{}, fmt.Errorf("extracting from %s: %w", texPath, err)
	}

	if err := writeFileAtomic(texPath, []byte(env.Text())); err != nil {
		return Environment{}, err
	}
	return env, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// over path, keeping the original file mode.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting mode on %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
