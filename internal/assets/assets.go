// Package assets resolves user image paths and caches their decoded
// bitmaps.
package assets

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/Faultbox/garment-designer/internal/engine/texture"
)

var ErrNotFound = errors.New("asset not found")

// Manager finds images under a set of search directories. Decoded bitmaps
// are shared between decals and must not be modified.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a manager searching roots in order after the path
// itself.
func NewManager(roots ...string) *Manager {
	return &Manager{
		roots: roots,
		cache: NewCache(),
	}
}

// AddRoot adds a search directory with the highest priority.
func (m *Manager) AddRoot(dir string) {
	m.mu.Lock()
	m.roots = append([]string{dir}, m.roots...)
	m.mu.Unlock()
}

// Resolve returns the file path of an asset. Absolute and existing
// relative paths are used as is; otherwise each root is tried.
func (m *Manager) Resolve(path string) (string, error) {
	if fileExists(path) {
		return filepath.Clean(path), nil
	}
	if !filepath.IsAbs(path) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		for _, root := range m.roots {
			if p := filepath.Join(root, path); fileExists(p) {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Image resolves and decodes an image, reusing an earlier decode of the
// same file. It is safe for concurrent use.
func (m *Manager) Image(path string) (*image.RGBA, error) {
	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	if img, ok := m.cache.Get(resolved); ok {
		return img, nil
	}
	img, err := texture.DecodeFile(resolved)
	if err != nil {
		return nil, err
	}
	m.cache.Set(resolved, img)
	return img, nil
}

// Cache returns the decode cache.
func (m *Manager) Cache() *Cache { return m.cache }

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Cache is an in-memory cache of decoded images keyed by file path.
type Cache struct {
	data map[string]*image.RGBA
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*image.RGBA),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return img, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, img *image.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = img
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*image.RGBA)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
