package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"report.pdf":             "report.pdf",
		"../../etc/passwd":       "passwd",
		`C:\Users\me\scan 1.png`: "scan_1.png",
		"...":                    "file",
		"héllo wörld.jpg":        "h_llo_w_rld.jpg",
	}
	for in, want := range tests {
		assert.Equal(t, want, Sanitize(in), in)
	}
}

func TestFileName(t *testing.T) {
	l := NewLocal(t.TempDir(), 0)
	l.now = func() time.Time { return time.Unix(0, 1717236000000000000) }

	name := l.FileName("lab result.pdf")
	assert.Regexp(t, regexp.MustCompile(`^1717236000000000000-[0-9a-f]{8}-lab_result\.pdf$`), name)
}

func TestSaveAndRemove(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root, 1024)

	url, n, err := l.Save("records", "x-ray.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.True(t, strings.HasPrefix(url, "/uploads/records/"))

	full := filepath.Join(root, "records", filepath.Base(url))
	_, err = os.Stat(full)
	require.NoError(t, err)

	require.NoError(t, l.Remove(url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, l.Remove(url), "removing twice is fine")
	assert.ErrorIs(t, l.Remove("/uploads/../../etc/passwd"), ErrBadPath)
}

func TestSaveTooLarge(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root, 4)

	_, _, err := l.Save("records", "big.pdf", strings.NewReader("0123456789"))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(filepath.Join(root, "records"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
