package project

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/vibe/log"
	"github.com/ardnew/vibe/pkg"
)

// CacheFile is the name of the cache index in the output directory.
const CacheFile = ".vibe-cache.yaml"

// CacheEntry records the generation of one script.
type CacheEntry struct {
	Key    string `yaml:"key"`
	Class  string `yaml:"class"`
	Output string `yaml:"output"`
}

// cacheIndex is the persisted form of a [Cache].
type cacheIndex struct {
	Version string                `yaml:"version"`
	Entries map[string]CacheEntry `yaml:"entries"`
}

// CacheOptions are the build settings that change generated output.
// A change to any of them invalidates every cache entry.
type CacheOptions struct {
	Namespace     string
	Entry         string
	Maui          bool
	RootNamespace string
	KnownTypes    []string
	Oracle        string
	Runtime       [3]string
}

// hashOptions encodes options using gob and hashes with xxh3.
func hashOptions(opts CacheOptions) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(pkg.Version)
	_ = enc.Encode(opts)

	return xxh3.Hash(buf.Bytes())
}

// Cache maps scripts to the content key of their last generation, so
// unchanged scripts are not regenerated. It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	path     string
	optsHash uint64
	entries  map[string]CacheEntry
	dirty    bool
}

// OpenCache loads the cache index in dir. A missing or unreadable index
// yields an empty cache; only the failure to decode an existing index is
// logged.
func OpenCache(ctx context.Context, dir string, opts CacheOptions) *Cache {
	c := &Cache{
		path:     filepath.Join(dir, CacheFile),
		optsHash: hashOptions(opts),
		entries:  make(map[string]CacheEntry),
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return c
	}

	var index cacheIndex
	if err := yaml.UnmarshalContext(ctx, data, &index); err != nil {
		log.FromContext(ctx).DebugContext(ctx, "cache index ignored",
			slog.Any("error", ErrCache.Wrap(err).With(slog.String("path", c.path))))

		return c
	}

	if index.Version == pkg.Version && index.Entries != nil {
		c.entries = index.Entries
	}

	return c
}

// Key reads r to the end and returns its content key and bytes.
// The key combines the content hash with the options hash.
func (c *Cache) Key(r io.Reader) (string, []byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", nil, err
	}

	return strconv.FormatUint(xxh3.Hash(data)^c.optsHash, 36), data, nil
}

// Fresh reports whether the script rel was last generated from key and
// its output still exists.
func (c *Cache) Fresh(rel, key string) bool {
	c.mu.Lock()
	e, ok := c.entries[rel]
	c.mu.Unlock()

	if !ok || e.Key != key {
		return false
	}

	_, err := os.Stat(e.Output)

	return err == nil
}

// Store records the generation of rel and returns the entry it replaced.
func (c *Cache) Store(rel string, e CacheEntry) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.entries[rel]
	c.entries[rel] = e
	c.dirty = true

	return prev, ok
}

// Forget drops the entry of rel.
func (c *Cache) Forget(rel string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[rel]; ok {
		delete(c.entries, rel)
		c.dirty = true
	}
}

// Prune drops the entries of scripts not in keep and returns them.
func (c *Cache) Prune(keep []string) []CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var gone []CacheEntry

	for _, rel := range slices.Sorted(maps.Keys(c.entries)) {
		if !slices.Contains(keep, rel) {
			gone = append(gone, c.entries[rel])
			delete(c.entries, rel)
			c.dirty = true
		}
	}

	return gone
}

// Entries returns a copy of the cache entries.
func (c *Cache) Entries() map[string]CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	return maps.Clone(c.entries)
}

// Save writes the cache index if it changed since it was opened.
func (c *Cache) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := yaml.MarshalContext(ctx, cacheIndex{
		Version: pkg.Version,
		Entries: c.entries,
	})
	if err != nil {
		return ErrCache.Wrap(err)
	}

	if err := writeFile(c.path, data); err != nil {
		return err
	}

	c.dirty = false

	return nil
}
