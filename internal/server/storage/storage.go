// Package storage implements the sandboxed per-user file store: every
// operation resolves filenames through a single confinement gate, so no
// caller can reach a path outside the owning user's directory.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

// ModifiedTimeLayout is the fixed local-time format used for the
// modification timestamp reported by Stat (day-month-year hour-minute-second).
const ModifiedTimeLayout = "02-01-2006 15-04-05"

var loginSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeLogin strips every character that is not alphanumeric, '_' or '-'.
// Logins are validated at registration already; this is an independent
// second containment layer applied before a login becomes a directory name.
func SanitizeLogin(login string) string {
	return loginSanitizer.ReplaceAllString(login, "")
}

// FileInfo describes a stored file as observed by clients.
type FileInfo struct {
	Name     string
	Size     int64
	Modified string
}

// FileStore confines file operations to per-login subdirectories of root.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at the given directory. The root is
// made absolute once so that the containment check compares canonical paths.
func NewFileStore(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return &FileStore{root: abs}, nil
}

// userDir returns the absolute directory owned by the (sanitized) login.
func (s *FileStore) userDir(login string) string {
	return filepath.Join(s.root, SanitizeLogin(login))
}

// resolve is the single resolve-and-confine gate shared by all operations:
// sanitize login, strip directory components from the filename, reject empty
// or parent-marker names before any filesystem touch, then require the
// user's directory to be a strict prefix of the resolved absolute path.
// No call site may build a file path any other way.
func (s *FileStore) resolve(login string, filename string) (string, error) {
	// a ".." anywhere in the supplied name is rejected up front, which also
	// catches encoded traversal attempts that survive basename stripping
	// (e.g. "..%2f..%2fsecret")
	if filename == "" || strings.Contains(filename, "..") {
		return "", common.ErrorInvalidFilename
	}

	name := filepath.Base(filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", common.ErrorInvalidFilename
	}

	dir := s.userDir(login)
	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", common.ErrorInvalidFilename
	}

	if !strings.HasPrefix(path, dir+string(filepath.Separator)) {
		return "", common.ErrorAccessDenied
	}

	return path, nil
}

// List returns the names of regular files directly inside the login's
// directory. The directory is created lazily, so a user who has not
// uploaded anything yet gets an empty listing.
func (s *FileStore) List(login string) ([]string, error) {
	dir := s.userDir(login)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Stat returns metadata for a single stored file. The modification time is
// rendered in ModifiedTimeLayout in local time.
func (s *FileStore) Stat(login string, filename string) (*FileInfo, error) {
	path, err := s.resolve(login, filename)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		return nil, common.ErrorNotFound
	}

	return &FileInfo{
		Name:     info.Name(),
		Size:     info.Size(),
		Modified: info.ModTime().Local().Format(ModifiedTimeLayout),
	}, nil
}

// Write stores the content under the login's directory, overwriting any
// existing file of the same name. The write is not atomic; a failure mid-way
// may leave a truncated file.
func (s *FileStore) Write(login string, filename string, r io.Reader) error {
	path, err := s.resolve(login, filename)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Open returns a reader over the stored file together with its metadata,
// including the sanitized name to suggest as the download filename.
// The caller owns the returned ReadCloser.
func (s *FileStore) Open(login string, filename string) (io.ReadCloser, *FileInfo, error) {
	path, err := s.resolve(login, filename)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, common.ErrorNotFound
	}

	return f, &FileInfo{
		Name:     info.Name(),
		Size:     info.Size(),
		Modified: info.ModTime().Local().Format(ModifiedTimeLayout),
	}, nil
}

// Delete removes the stored file if present.
func (s *FileStore) Delete(login string, filename string) error {
	path, err := s.resolve(login, filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("remove %s: %w", filepath.Base(path), err)
	}
	return nil
}
