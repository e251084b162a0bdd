// Package cache keeps parsed graphs keyed by the hash of their source bytes,
// in memory with optional msgpack snapshots on disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/flow-dep-graph/pkg/flow"
	"github.com/l3aro/flow-dep-graph/pkg/graph"
)

// ErrKeyNotFound is returned when a key is in neither tier.
var ErrKeyNotFound = errors.New("key not found")

// snapshotVersion is bumped whenever the on-disk layout changes. Snapshots
// with another version are treated as misses.
const snapshotVersion = 1

// DefaultSize is the number of graphs kept in memory.
const DefaultSize = 16

// Options configures a GraphCache.
type Options struct {
	// Size is the maximum number of graphs held in memory.
	// 0 means DefaultSize.
	Size int

	// Dir holds msgpack snapshots. Empty disables the disk tier.
	Dir string
}

// Stats reports cache effectiveness.
type Stats struct {
	Length   int
	Hits     int64
	DiskHits int64
	Misses   int64
}

// GraphCache is safe for concurrent use.
type GraphCache struct {
	mem *lru.Cache[string, *graph.Graph]
	dir string

	hits     atomic.Int64
	diskHits atomic.Int64
	misses   atomic.Int64
}

type moduleRecord struct {
	ID    string   `msgpack:"id"`
	Name  string   `msgpack:"name"`
	Level string   `msgpack:"level"`
	Deps  []string `msgpack:"deps"`
}

type snapshot struct {
	Version int            `msgpack:"version"`
	Modules []moduleRecord `msgpack:"modules"`
}

// New creates a GraphCache.
func New(opts Options) (*GraphCache, error) {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	mem, err := lru.New[string, *graph.Graph](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph cache: %w", err)
	}
	return &GraphCache{mem: mem, dir: opts.Dir}, nil
}

// Key returns the content key for raw graph bytes.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the graph stored under key, checking memory then disk.
// A disk hit is promoted into memory.
func (c *GraphCache) Get(key string) (*graph.Graph, bool) {
	if g, ok := c.mem.Get(key); ok {
		c.hits.Add(1)
		return g, true
	}
	g, err := c.readSnapshot(key)
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}
	c.diskHits.Add(1)
	c.mem.Add(key, g)
	return g, true
}

// Put stores g under key in memory and, when enabled, on disk.
func (c *GraphCache) Put(key string, g *graph.Graph) error {
	c.mem.Add(key, g)
	if c.dir == "" {
		return nil
	}
	return c.writeSnapshot(key, g)
}

// Len returns the number of graphs in memory.
func (c *GraphCache) Len() int {
	return c.mem.Len()
}

// Purge drops the memory tier. Snapshots on disk are kept.
func (c *GraphCache) Purge() {
	c.mem.Purge()
}

// Stats returns a snapshot of the counters.
func (c *GraphCache) Stats() Stats {
	return Stats{
		Length:   c.mem.Len(),
		Hits:     c.hits.Load(),
		DiskHits: c.diskHits.Load(),
		Misses:   c.misses.Load(),
	}
}

func (c *GraphCache) snapshotPath(key string) string {
	return filepath.Join(c.dir, key+".msgpack")
}

func (c *GraphCache) writeSnapshot(key string, g *graph.Graph) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", c.dir, err)
	}

	snap := snapshot{Version: snapshotVersion}
	for _, id := range g.IDs() {
		m, _ := g.Lookup(id)
		deps := make([]string, len(m.Deps))
		for i, dep := range m.Deps {
			deps[i] = string(dep)
		}
		snap.Modules = append(snap.Modules, moduleRecord{
			ID:    string(id),
			Name:  m.Name,
			Level: m.Level.String(),
			Deps:  deps,
		})
	}

	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("failed to encode graph snapshot: %w", err)
	}

	// Write then rename so readers never see a partial snapshot.
	path := c.snapshotPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write graph snapshot %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to install graph snapshot %s: %w", path, err)
	}
	return nil
}

func (c *GraphCache) readSnapshot(key string) (*graph.Graph, error) {
	if c.dir == "" {
		return nil, ErrKeyNotFound
	}
	data, err := os.ReadFile(c.snapshotPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read graph snapshot: %w", err)
	}

	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode graph snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("graph snapshot version %d: %w", snap.Version, ErrKeyNotFound)
	}

	order := make([]graph.ModuleID, 0, len(snap.Modules))
	modules := make(map[graph.ModuleID]graph.Module, len(snap.Modules))
	for _, rec := range snap.Modules {
		level, _ := flow.Parse(rec.Level)
		deps := make([]graph.ModuleID, len(rec.Deps))
		for i, dep := range rec.Deps {
			deps[i] = graph.ModuleID(dep)
		}
		id := graph.ModuleID(rec.ID)
		order = append(order, id)
		modules[id] = graph.Module{Name: rec.Name, Level: level, Deps: deps}
	}
	return graph.FromModules(order, modules), nil
}
