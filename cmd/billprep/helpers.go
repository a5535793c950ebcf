package main

import (
	"context"
	"log/slog"

	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/config"
	"github.com/RocketCaptain/BillPrepared/internal/ledger"
	"github.com/RocketCaptain/BillPrepared/internal/model"
	"github.com/RocketCaptain/BillPrepared/internal/store"
)

// env bundles the wired services a command needs: the ledger client,
// the local cache, and the server settings (or defaults when the
// settings endpoint is unreachable).
type env struct {
	client   *ledger.Client
	store    *store.SQLiteStore
	settings model.Settings
}

func newEnv(ctx context.Context) (*env, error) {
	cfg := config.LoadLedgerConfig()

	client, err := ledger.NewClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	settings, err := client.Settings(ctx)
	if err != nil {
		slog.Warn("Settings unavailable, using defaults", "error", err)
		settings = model.DefaultSettings()
	}

	cache, err := store.NewSQLiteStore(cfg.CachePath, client, settings.ForecastPeriod)
	if err != nil {
		return nil, common.NewUserError("could not open the local cache", err)
	}

	return &env{
		client:   client,
		store:    cache,
		settings: settings,
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		slog.Warn("Failed to close cache", "error", err)
	}
}

// newRefreshedEnv returns the env with a freshly fetched window.
func newRefreshedEnv(ctx context.Context) (*env, error) {
	e, err := newEnv(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.store.Refresh(ctx); err != nil {
		e.Close()
		return nil, common.NewUserError("could not refresh from the ledger service", err)
	}
	return e, nil
}
