package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// MustGetUserHomeDir returns the current user's home directory.
// Falls back to an empty string if os.UserHomeDir() returns an error.
func MustGetUserHomeDir() string {
	hd, _ := os.UserHomeDir()
	return hd
}

// IsDir returns true if path is a directory.
func IsDir(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	return stat.IsDir()
}

// FileExists returns true if the path exists.
func FileExists(file string) bool {
	_, err := os.Stat(file)
	return !os.IsNotExist(err)
}

// IsWritable returns true if the path exists and is writable by the
// current user.
func IsWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}

// BaseName returns the last path component, ignoring any trailing slash.
func BaseName(path string) string {
	return filepath.Base(strings.TrimRight(path, "/"))
}

// ResolvePath resolves a path to a cleaned absolute path, expanding a
// leading tilde and environment variables.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}

	path = os.ExpandEnv(path)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

// MustResolvePath works like ResolvePath but returns the input unchanged on
// error.
func MustResolvePath(path string) string {
	resolved, err := ResolvePath(path)
	if err != nil {
		return path
	}
	return resolved
}

// Delete removes a file or a directory tree. Missing paths are not an error.
func Delete(path string) error {
	return os.RemoveAll(path)
}

// CopyDir recursively copies the directory tree rooted at src into dst,
// preserving file modes.
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src) //nolint:gosec
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //nolint:gosec
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Move copies src (file or directory) to dst and removes the source on
// success. Moving a path onto itself is a no-op.
func Move(src, dst string) error {
	src = filepath.Clean(src)
	dst = filepath.Clean(dst)
	if src == dst {
		return nil
	}

	// Fast path for same-filesystem moves.
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if IsDir(src) {
		if err := CopyDir(src, dst); err != nil {
			return err
		}
	} else {
		info, err := os.Stat(src)
		if err != nil {
			return err
		}
		if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return os.RemoveAll(src)
}
