package sysops

import (
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
)

// NormalizeTree recursively sets owner and permission bits on the install
// tree so the service user can read and execute everything. A broken
// permission state breaks the running service, so callers treat failure
// as fatal.
func NormalizeTree(root, username string, mode os.FileMode) error {
	u, err := user.Lookup(username)
	if err != nil {
		return fmt.Errorf("unknown install user %q: %w", username, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("invalid uid for %q: %w", username, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fmt.Errorf("invalid gid for %q: %w", username, err)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			// Never follow symlinks out of the tree.
			return os.Lchown(path, uid, gid)
		}
		if err := os.Chown(path, uid, gid); err != nil {
			return fmt.Errorf("chown %s: %w", path, err)
		}
		if err := os.Chmod(path, mode); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
		return nil
	})
}
