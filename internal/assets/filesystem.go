package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alnah/go-cardsheet/internal/fileutil"
)

// FilesystemLoader loads images relative to a base directory.
// Decoded images are cached by resolved path, so a picture shared by many
// cards is decoded once. Implements ImageLoader.
type FilesystemLoader struct {
	basePath string

	mu    sync.Mutex
	cache map[string]*Image
}

// NewFilesystemLoader creates a FilesystemLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	return &FilesystemLoader{basePath: absPath, cache: make(map[string]*Image)}, nil
}

// BasePath returns the absolute directory relative paths are resolved against.
func (f *FilesystemLoader) BasePath() string {
	return f.basePath
}

// LoadImage decodes the image at p. Relative paths are resolved against the
// base path; "~/" expands to the home directory.
func (f *FilesystemLoader) LoadImage(p string) (*Image, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return nil, fmt.Errorf("%w: empty path", ErrImageNotFound)
	}
	full := fileutil.ResolvePath(f.basePath, p)

	f.mu.Lock()
	defer f.mu.Unlock()
	if img, ok := f.cache[full]; ok {
		return img, nil
	}

	file, err := os.Open(full) // #nosec G304 -- image paths come from the user's data file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, full)
		}
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer func() { _ = file.Close() }()

	if info, err := file.Stat(); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrImageNotFound, full)
	}

	img, err := Decode(file, full)
	if err != nil {
		return nil, err
	}
	f.cache[full] = img
	return img, nil
}

// Compile-time interface check.
var _ ImageLoader = (*FilesystemLoader)(nil)
