// Package ingest turns graph files on disk into parsed graphs.
//
// It gates files by media type, reuses parses of identical content through
// the graph cache, optionally repairs hand-edited JSON, and watches a file
// for changes.
package ingest

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/l3aro/flow-dep-graph/internal/log"
	"github.com/l3aro/flow-dep-graph/pkg/cache"
	"github.com/l3aro/flow-dep-graph/pkg/graph"
)

// JSONMediaType is the only accepted media type.
const JSONMediaType = "application/json"

// ErrTypeMismatch is returned for files that are not JSON. Interactive
// callers drop such files without changing state.
var ErrTypeMismatch = errors.New("not a JSON file")

// Loader reads graph files.
type Loader struct {
	// Cache is optional.
	Cache *cache.GraphCache
	// Repair retries malformed input through jsonrepair before giving up.
	Repair bool
	Logger log.Logger
}

// Result describes one successful load.
type Result struct {
	Path     string
	Graph    *graph.Graph
	Key      string
	Cached   bool
	Repaired bool
}

// MediaType returns the media type implied by path's extension, without
// parameters.
func MediaType(path string) string {
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mt == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return mt
}

// LoadFile reads and parses the graph at path.
func (l *Loader) LoadFile(path string) (*Result, error) {
	if mt := MediaType(path); mt != JSONMediaType {
		return nil, fmt.Errorf("%s (%q): %w", path, mt, ErrTypeMismatch)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}

	res, err := l.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Path = path
	return res, nil
}

// Load parses raw graph bytes.
func (l *Loader) Load(data []byte) (*Result, error) {
	logger := l.logger()
	key := cache.Key(data)

	if l.Cache != nil {
		if g, ok := l.Cache.Get(key); ok {
			logger.Debug("graph cache hit", "key", key[:12], "modules", g.Len())
			return &Result{Graph: g, Key: key, Cached: true}, nil
		}
	}

	res := &Result{Key: key}
	g, err := graph.DecodeBytes(data)
	if err != nil && l.Repair && errors.Is(err, graph.ErrParse) {
		repaired, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return nil, fmt.Errorf("%w (repair failed: %v)", err, repairErr)
		}
		logger.Warn("graph JSON was malformed, using repaired copy", "error", err)
		g, err = graph.DecodeBytes([]byte(repaired))
		res.Repaired = err == nil
	}
	if err != nil {
		return nil, err
	}
	res.Graph = g

	// Repaired parses are not cached: the key covers the raw bytes only, and
	// a later load with repair disabled must still fail.
	if l.Cache != nil && !res.Repaired {
		if err := l.Cache.Put(key, g); err != nil {
			logger.Warn("failed to cache graph", "error", err)
		}
	}
	logger.Debug("graph parsed", "modules", g.Len(), "repaired", res.Repaired)
	return res, nil
}

func (l *Loader) logger() log.Logger {
	if l.Logger == nil {
		return log.Discard()
	}
	return l.Logger
}
