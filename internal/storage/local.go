// Package storage keeps uploaded files on local disk under a root directory
// that the router also serves at /uploads.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is where the root directory is served.
const URLPrefix = "/uploads"

var (
	ErrTooLarge = errors.New("file too large")
	ErrBadPath  = errors.New("path outside upload directory")

	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

type Local struct {
	root    string
	maxSize int64
	now     func() time.Time
}

func NewLocal(root string, maxSize int64) *Local {
	return &Local{root: root, maxSize: maxSize, now: time.Now}
}

// Sanitize reduces a client supplied file name to a safe base name.
func Sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

// FileName builds "<unix-nanos>-<8 hex>-<sanitized original>".
func (l *Local) FileName(original string) string {
	return fmt.Sprintf("%d-%s-%s", l.now().UnixNano(), uuid.NewString()[:8], Sanitize(original))
}

// Save writes r to dir/<generated name> and returns the public URL path and
// the number of bytes written. Files larger than the limit are removed.
func (l *Local) Save(dir, original string, r io.Reader) (string, int64, error) {
	target := filepath.Join(l.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := l.FileName(original)
	full := filepath.Join(target, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	src := r
	if l.maxSize > 0 {
		src = io.LimitReader(r, l.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && l.maxSize > 0 && n > l.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(full)
		return "", 0, err
	}
	return path.Join(URLPrefix, filepath.ToSlash(dir), name), n, nil
}

// Remove deletes a file previously returned by Save. Missing files are ignored.
func (l *Local) Remove(urlPath string) error {
	rel := strings.TrimPrefix(urlPath, URLPrefix+"/")
	full := filepath.Join(l.root, filepath.FromSlash(rel))
	root, err := filepath.Abs(l.root)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) {
		return ErrBadPath
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
