package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// tmpSuffix marks files WriteAtomic has not renamed into place yet.
const tmpSuffix = ".tmp"

// WriteAtomic creates path with the bytes emitted by write. Data goes to
// path+".tmp" first; it is synced and renamed over path only when write,
// Sync and Close all succeed. On failure the temporary file is removed and
// an existing file at path is left untouched.
func WriteAtomic(fsys FileSystem, path string, perm os.FileMode, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	tmp := path + tmpSuffix
	f, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmp)
		}
	}()

	if err := write(f); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Sync(); err != nil {
		return errors.Join(fmt.Errorf("sync %s: %w", tmp, err), f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
