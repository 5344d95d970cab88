// Package storage writes encoded images to caller-chosen locations.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/piccy-engine/internal/imaging"
)

// ErrIO wraps every failure to write a destination. The underlying cause is
// wrapped alongside it.
var ErrIO = errors.New("write failed")

// Result describes a persisted buffer.
type Result struct {
	// Path is the absolute path of the written file.
	Path string `json:"path"`

	// Bytes is the number of bytes written.
	Bytes int `json:"bytes"`
}

// Persist writes buf to dest and returns the resolved absolute path.
//
// dest may name a file, or an existing directory (a trailing separator also
// marks a directory). For a directory, or when dest is empty and defaultDir is
// used, the file name is a random UUID plus the extension of buf's format.
// The parent directory must already exist.
//
// The write is atomic: data goes to a temporary file in the target directory
// which is then renamed over the destination, so readers never observe a
// partial file and a failed write leaves any existing file untouched.
func Persist(buf []byte, dest, defaultDir string) (*Result, error) {
	path, err := resolve(buf, dest, defaultDir)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".piccy-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	// CreateTemp uses 0600; persisted images are ordinary files.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	committed = true

	return &Result{Path: path, Bytes: len(buf)}, nil
}

// resolve turns dest into an absolute file path.
func resolve(buf []byte, dest, defaultDir string) (string, error) {
	dest = strings.TrimSpace(dest)
	isDir := dest == "" || strings.HasSuffix(dest, string(filepath.Separator))
	if dest == "" {
		dest = defaultDir
	}
	if dest == "" {
		return "", fmt.Errorf("%w: no destination given", ErrIO)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrIO, dest, err)
	}

	info, statErr := os.Stat(abs)
	switch {
	case statErr == nil && info.IsDir():
		isDir = true
	case isDir:
		return "", fmt.Errorf("%w: %s is not a directory", ErrIO, abs)
	}

	if isDir {
		return filepath.Join(abs, generatedName(buf)), nil
	}
	if _, err := os.Stat(filepath.Dir(abs)); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrIO, filepath.Dir(abs), err)
	}
	return abs, nil
}

// generatedName returns a unique file name with an extension matching buf.
func generatedName(buf []byte) string {
	f, _ := imaging.Identify(buf)
	return uuid.New().String() + f.Extension()
}
