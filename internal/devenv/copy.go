package devenv

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// copyTree is the copy used by sessions and links; tests substitute it.
var copyTree = CopyTree

// CopyTree replaces dst with a full copy of src. The copy is staged next to
// dst and renamed into place, so dst never mixes files from two copies and
// files deleted from src disappear from dst.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("copy source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("copy source is not a directory: %s", src)
	}

	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", parent, err)
	}

	staging := filepath.Join(parent, "."+filepath.Base(dst)+"-"+uuid.NewString())
	if err := copyDir(src, staging); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err := os.RemoveAll(dst); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("failed to remove old copy %s: %w", dst, err)
	}
	if err := os.Rename(staging, dst); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("failed to move copy into place: %w", err)
	}
	return nil
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Files removed while we walk are picked up by the next copy
			if os.IsNotExist(err) && path != src {
				return nil
			}
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return skipMissing(err)
			}
			return os.MkdirAll(target, info.Mode().Perm()|0700)

		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return skipMissing(err)
			}
			return os.Symlink(link, target)

		case d.Type().IsRegular():
			return skipMissing(copyFile(path, target))
		}

		// Sockets, devices and pipes have no place in a package tree
		return nil
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func skipMissing(err error) error {
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
