package commands

import (
	"fmt"

	"github.com/l3aro/flow-dep-graph/internal/config"
	"github.com/l3aro/flow-dep-graph/internal/ingest"
	"github.com/l3aro/flow-dep-graph/internal/log"
	"github.com/l3aro/flow-dep-graph/pkg/cache"
)

// newLoader builds a loader from cfg, with the graph cache when enabled.
func newLoader(cfg *config.Config, l log.Logger) (*ingest.Loader, error) {
	loader := &ingest.Loader{Repair: cfg.RepairJSON, Logger: l}
	if !cfg.CacheEnabled {
		return loader, nil
	}
	c, err := cache.New(cache.Options{Size: cfg.CacheSize, Dir: cfg.CacheDir})
	if err != nil {
		return nil, fmt.Errorf("opening graph cache: %w", err)
	}
	loader.Cache = c
	return loader, nil
}

// loadGraphFile loads path once with the configured loader.
func loadGraphFile(path string) (*ingest.Result, error) {
	loader, err := newLoader(appConfig, logger)
	if err != nil {
		return nil, err
	}
	res, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("graph loaded", "path", path, "modules", res.Graph.Len(), "cached", res.Cached, "repaired", res.Repaired)
	return res, nil
}
