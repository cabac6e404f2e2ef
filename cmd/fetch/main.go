// Command fetch bulk-downloads CAAML snow pit exports from snowpilot.org,
// writes each file to a local directory, and records a summary row per pit in
// the sqlite index. Re-running the same window is idempotent.
//
// Usage:
//
//	SNOWPILOT_USER=... SNOWPILOT_PASSWORD=... go run ./cmd/fetch \
//	  -state MT -date-start 2026-01-01 -date-end 2026-01-31 -out data/snowpits
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/whiteroomlabs/snowpit-etl/internal/adapter/snowpilot"
	"github.com/whiteroomlabs/snowpit-etl/internal/config"
	"github.com/whiteroomlabs/snowpit-etl/internal/domain"
	"github.com/whiteroomlabs/snowpit-etl/internal/observability"
	"github.com/whiteroomlabs/snowpit-etl/internal/store"
)

func main() {
	pitName := flag.String("pit-name", "", "filter by pit name")
	state := flag.String("state", "", "filter by region code, e.g. MT")
	dateStart := flag.String("date-start", "", "earliest observation date (YYYY-MM-DD)")
	dateEnd := flag.String("date-end", "", "latest observation date (YYYY-MM-DD)")
	username := flag.String("username", "", "filter by observer username")
	org := flag.String("org", "", "filter by organization name")
	outDir := flag.String("out", "data/snowpits", "directory to write CAAML files into")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := snowpilot.Query{
		PitName:      *pitName,
		State:        *state,
		DateStart:    *dateStart,
		DateEnd:      *dateEnd,
		Username:     *username,
		Organization: *org,
		PerPage:      cfg.SnowPilotPerPage,
	}

	if err := run(ctx, cfg, query, *outDir, logger, metrics); err != nil {
		logger.Error("fetch failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, query snowpilot.Query, outDir string, logger *slog.Logger, metrics *observability.Metrics) error {
	db, err := sql.Open("sqlite", cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("open index %s: %w", cfg.IndexPath, err)
	}
	defer db.Close()

	index := store.New(db, logger)
	if err := index.Migrate(); err != nil {
		return fmt.Errorf("migrate index: %w", err)
	}

	client, err := snowpilot.NewClient(cfg, logger, metrics)
	if err != nil {
		return err
	}
	fetcher := snowpilot.NewCachedFetcher(client, cfg.SnowPilotCacheSize, metrics)

	archive, err := fetcher.FetchArchive(ctx, query)
	if errors.Is(err, snowpilot.ErrNoResults) {
		logger.Info("no pits matched the query")
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch archive: %w", err)
	}

	docs, err := snowpilot.ExtractDocuments(archive)
	if err != nil {
		return fmt.Errorf("extract %s: %w", archive.Filename, err)
	}
	logger.Info("archive downloaded", "file", archive.Filename, "documents", len(docs))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}

	var indexed, failed int
	for _, doc := range docs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		path := filepath.Join(outDir, filepath.Base(doc.Name))
		if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		event, err := domain.ParseRawDocument(domain.RawDocument{Value: doc.Data})
		if err != nil {
			logger.Warn("skipping unparseable document", "file", doc.Name, "error", err)
			failed++
			continue
		}

		if err := index.UpsertPit(store.RecordFromEvent(event, path)); err != nil {
			return fmt.Errorf("index pit %s: %w", event.PitID, err)
		}
		metrics.IndexUpserts.Inc()
		indexed++
	}

	logger.Info("fetch complete",
		"downloaded", len(docs), "indexed", indexed, "failed", failed, "index", cfg.IndexPath)
	return nil
}
