package imagegen

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache provides file-based caching for generated banners, keyed by
// forecast.BannerKey.
type Cache struct {
	dir    string
	maxAge time.Duration
}

// NewCache creates a new image cache in the specified directory.
// Banners are refreshed after maxAge to provide variety.
func NewCache(dir string) *Cache {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("imagegen: could not create cache directory: %v", err)
	}
	return &Cache{
		dir:    dir,
		maxAge: 7 * 24 * time.Hour,
	}
}

const (
	filePrefix = "banner_"
	fileExt    = ".png"
)

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s%s%s", filePrefix, key, fileExt))
}

// Get retrieves a cached banner if it exists and is not stale.
func (c *Cache) Get(key string) ([]byte, bool) {
	path := c.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}

	if time.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	return data, true
}

// Set stores a banner in the cache. The file is written under a temporary
// name and renamed so concurrent readers never see a partial image.
func (c *Cache) Set(key string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-"+filePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp banner: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write banner %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close banner %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

// GetAnyWithPrefix returns any cached banner whose key starts with prefix,
// regardless of age. Used as a fallback while a banner is generated.
func (c *Cache) GetAnyWithPrefix(prefix string) ([]byte, bool) {
	for _, key := range c.List() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		data, err := os.ReadFile(c.path(key))
		if err == nil {
			return data, true
		}
	}
	return nil, false
}

// List returns all cached banner keys.
func (c *Cache) List() []string {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || filepath.Ext(name) != fileExt {
			continue
		}
		keys = append(keys, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt))
	}
	return keys
}
