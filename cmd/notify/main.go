// Command notify enriches one push payload read from stdin and writes the
// result to stdout. It opens the local cache read-only and never fails the
// notification: without a cache it echoes the payload.
package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/pairroom/internal/client/cache"
	"github.com/dmitrijs2005/pairroom/internal/client/config"
	"github.com/dmitrijs2005/pairroom/internal/client/enrich"
	"github.com/dmitrijs2005/pairroom/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, "json", "warn")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.EnrichmentBudget)
	defer cancel()

	var e *enrich.Enricher
	store, err := cache.Open(ctx, cfg.CachePath, cache.Options{ReadOnly: true})
	if err != nil {
		logger.Warn(ctx, "cache unavailable", "path", cfg.CachePath, "error", err)
	} else {
		defer store.Close()
		e = enrich.New(store.Friends, store.Metadata, cfg.EnrichmentBudget, logger)
	}

	if err := enrich.Process(ctx, os.Stdin, os.Stdout, e); err != nil {
		logger.Error(ctx, "enrichment", "error", err)
		os.Exit(1)
	}
}
