package storage

import (
	"errors"
	"os"
	"path/filepath"
)

// fileMode is applied to the backing file; expense history is private data.
const fileMode os.FileMode = 0o600

// readFile reads the file at path; a missing file yields (nil, false, nil).
func readFile(path string) ([]byte, bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return b, true, nil
}

// renameFunc swaps the temp file into place. Tests replace it to simulate a
// crash between the write and the rename.
type renameFunc func(oldpath, newpath string) error

// writeFileAtomic writes b to a temp file next to path, syncs it, then
// replaces path in a single rename. Readers see either the old or the new
// content, never a partial write.
func writeFileAtomic(path string, b []byte, mode os.FileMode, rename renameFunc) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before or during rename.
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := rename(tmp, path); err != nil {
		return err
	}
	renamed = true
	return nil
}
