// Package upload stores admin-submitted image files under the static root.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// UploadsDir is the subtree of the static root that holds managed uploads.
// Only paths under it are ever deleted by the editors.
const UploadsDir = "uploads"

var allowedExt = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "svg": true,
}

// Manager saves uploads below StaticDir/uploads and hands back paths
// relative to the static root, forward-slash separated.
type Manager struct {
	StaticDir string
}

// New creates a manager rooted at staticDir.
func New(staticDir string) *Manager {
	return &Manager{StaticDir: staticDir}
}

// Allowed reports whether the filename has an allowed image extension.
func Allowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	return allowedExt[strings.ToLower(filename[i+1:])]
}

// Save writes the uploaded file into the given subfolder and returns its
// path relative to the static root. An empty filename or a disallowed
// extension yields ("", nil) and nothing is written. On a name collision
// the base name is suffixed with _1, _2, ... until an unused path is found.
func (m *Manager) Save(src io.Reader, filename, subfolder string) (string, error) {
	if filename == "" || !Allowed(filename) {
		return "", nil
	}
	fname := sanitize(filename)
	if fname == "" {
		return "", nil
	}
	destDir := filepath.Join(m.StaticDir, UploadsDir)
	if subfolder != "" {
		destDir = filepath.Join(destDir, subfolder)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	ext := filepath.Ext(fname)
	base := strings.TrimSuffix(fname, ext)
	dest := filepath.Join(destDir, fname)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		fname = fmt.Sprintf("%s_%d%s", base, counter, ext)
		dest = filepath.Join(destDir, fname)
	}
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	rel, err := filepath.Rel(m.StaticDir, dest)
	if err != nil {
		return "", fmt.Errorf("relativize upload path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// Owned reports whether a stored path is a managed upload, as opposed to a
// bundled static asset which must never be deleted.
func Owned(path string) bool {
	return strings.HasPrefix(path, UploadsDir+"/")
}

// Remove deletes a previously stored upload. Non-owned paths are left
// alone, and deletion failures are swallowed so document mutation is never
// blocked by filesystem cleanup.
func (m *Manager) Remove(path string) {
	if path == "" || !Owned(path) {
		return
	}
	abs := filepath.Join(m.StaticDir, filepath.FromSlash(path))
	if _, err := os.Stat(abs); err == nil {
		os.Remove(abs)
	}
}

// ApplyImage runs the image replacement protocol for a single document
// field: a new upload replaces (and deletes) the current owned file, the
// remove flag deletes it and clears the field, otherwise the field keeps
// its current value. The returned string is the new field value.
func (m *Manager) ApplyImage(current string, file multipart.File, filename string, remove bool, subfolder string) (string, error) {
	if file != nil && filename != "" {
		defer file.Close()
		newPath, err := m.Save(file, filename, subfolder)
		if err != nil {
			return current, err
		}
		if newPath != "" {
			m.Remove(current)
			return newPath, nil
		}
	}
	if remove {
		m.Remove(current)
		return "", nil
	}
	return current, nil
}

// sanitize reduces a client-supplied filename to a filesystem-safe form:
// the base name with whitespace collapsed to underscores and anything
// outside ASCII letters, digits, dot, dash and underscore dropped.
func sanitize(filename string) string {
	name := filepath.Base(filepath.ToSlash(filename))
	var b strings.Builder
	for _, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == '.' || ch == '-' || ch == '_':
			b.WriteRune(ch)
		case ch == ' ':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
