package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"moex-iss/internal/export"
	"moex-iss/internal/iss"
	"moex-iss/internal/reporting"
	"moex-iss/internal/storage"
	chstore "moex-iss/internal/storage/clickhouse"
	"moex-iss/internal/storage/memory"
	"moex-iss/internal/storage/migrations"
	pgstore "moex-iss/internal/storage/postgres"
)

// stores holds the export destinations.
type stores struct {
	instrumentStore storage.InstrumentStore
	candleStore     storage.CandleStore
}

func runExport(ctx context.Context, cfg config, client iss.Client, w io.Writer, logger *log.Logger) error {
	st, cleanup, err := createStores(ctx, cfg.postgresDSN, cfg.clickhouseDSN, cfg.useMemory)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	exporter := export.NewExporter(export.ExporterOptions{
		Client:          client,
		InstrumentStore: st.instrumentStore,
		CandleStore:     st.candleStore,
		Logger:          logger,
	})

	req := export.Request{
		Market:   cfg.market,
		Tickers:  cfg.tickers,
		Prefix:   cfg.prefix,
		From:     cfg.from,
		Till:     cfg.till,
		Interval: cfg.interval,
	}

	result, err := exporter.Export(ctx, req)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, reporting.RenderExportMarkdown(req, result, time.Now().UTC()))
	return err
}

// createStores connects to the configured databases and applies migrations.
// Instruments live in PostgreSQL; candles go to ClickHouse when configured,
// PostgreSQL otherwise.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*stores, func(), error) {
	if useMemory {
		return &stores{
			instrumentStore: memory.NewInstrumentStore(),
			candleStore:     memory.NewCandleStore(),
		}, func() {}, nil
	}

	if postgresDSN == "" {
		return nil, nil, fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	st := &stores{
		instrumentStore: pgstore.NewInstrumentStore(pool),
		candleStore:     pgstore.NewCandleStore(pool),
	}

	if clickhouseDSN == "" {
		return st, pool.Close, nil
	}

	if err := chstore.EnsureDatabase(ctx, clickhouseDSN); err != nil {
		pool.Close()
		return nil, nil, err
	}
	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, err
	}
	st.candleStore = chstore.NewCandleStore(chConn)

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return st, cleanup, nil
}
