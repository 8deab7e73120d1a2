package assets

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Resolver combines several loaders with fallback logic: each loader is tried
// in order and the next one is consulted only when the image is not found.
// Decode and read errors stop the search.
type Resolver struct {
	loaders []ImageLoader
}

// NewResolver creates a Resolver over the given loaders (nil entries skipped).
func NewResolver(loaders ...ImageLoader) *Resolver {
	r := &Resolver{}
	for _, l := range loaders {
		if l != nil {
			r.loaders = append(r.loaders, l)
		}
	}
	return r
}

// NewAssetResolver creates a Resolver with one FilesystemLoader per distinct,
// non-empty directory, in priority order.
// Returns an error if any directory is invalid.
func NewAssetResolver(dirs ...string) (*Resolver, error) {
	seen := make(map[string]bool)
	r := &Resolver{}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err == nil && seen[abs] {
			continue
		}
		seen[abs] = true

		loader, err := NewFilesystemLoader(dir)
		if err != nil {
			return nil, err
		}
		r.loaders = append(r.loaders, loader)
	}
	return r, nil
}

// BasePaths lists the directories searched by filesystem loaders, in order.
func (r *Resolver) BasePaths() []string {
	var paths []string
	for _, l := range r.loaders {
		if fsl, ok := l.(*FilesystemLoader); ok {
			paths = append(paths, fsl.BasePath())
		}
	}
	return paths
}

// LoadImage loads from the first loader that has the image.
func (r *Resolver) LoadImage(path string) (*Image, error) {
	if len(r.loaders) == 0 {
		return nil, fmt.Errorf("%w: %s (no loaders configured)", ErrImageNotFound, path)
	}
	var lastErr error
	for _, l := range r.loaders {
		img, err := l.LoadImage(path)
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, ErrImageNotFound) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Compile-time interface check.
var _ ImageLoader = (*Resolver)(nil)
