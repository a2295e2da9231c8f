package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/jmurray2011/sumoknife/internal/sumo"
)

// Cache stores one JSON file per kind under {root}/{accessID}.
type Cache struct {
	dir string
}

// NewCache returns the cache of the connection identified by accessID.
func NewCache(root, accessID string) *Cache {
	return &Cache{dir: filepath.Join(root, accessID)}
}

// Dir returns the connection's cache directory.
func (c *Cache) Dir() string { return c.dir }

// Path returns the cache file of kind k.
func (c *Cache) Path(k Kind) string {
	return filepath.Join(c.dir, string(k))
}

// Load reads the cached rows of k. ok is false when nothing usable is
// cached; an empty cached list counts as nothing.
func (c *Cache) Load(k Kind) (rows []sumo.Row, ok bool, err error) {
	data, err := os.ReadFile(c.Path(k))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s cache: %w", k, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, false, fmt.Errorf("parse %s cache: %w", k, err)
	}
	return rows, len(rows) > 0, nil
}

// Save writes rows as the cached collection of k.
func (c *Cache) Save(k Kind, rows []sumo.Row) error {
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if rows == nil {
		rows = []sumo.Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s cache: %w", k, err)
	}
	return os.WriteFile(c.Path(k), data, 0600)
}

// Clear removes every cached kind of the connection.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
