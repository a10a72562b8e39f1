package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/cli"
	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/config"
	"github.com/Veraticus/pulse/internal/engine"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/service"
	"github.com/Veraticus/pulse/internal/storage"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withEngine opens storage, builds an engine over it and runs fn, closing storage after.
func withEngine(ctx context.Context, fn func(*engine.Engine) error, opts ...engine.Option) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()

	eng, err := newEngine(store, opts...)
	if err != nil {
		return err
	}
	return fn(eng)
}

func newEngine(store service.Storage, opts ...engine.Option) (*engine.Engine, error) {
	cfg, err := config.LoadScoring(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid scoring configuration", err)
	}
	opts = append([]engine.Option{engine.WithLogger(slog.Default())}, opts...)
	return engine.New(store, cfg, opts...)
}

// owner is the notification owner the command is scoped to; "" means every owner.
func owner() string {
	return strings.TrimSpace(viper.GetString("owner"))
}

// render writes v as JSON when --format json is set, otherwise through table.
func render(cmd *cobra.Command, v any, table func(io.Writer) error) error {
	if viper.GetString("output.format") == formatJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), v)
	}
	return table(cmd.OutOrStdout())
}

func parseCategory(s string) (model.Category, error) {
	if s == "" {
		return "", nil
	}
	c := model.Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsKnown() {
		names := make([]string, 0, len(model.Categories()))
		for _, known := range model.Categories() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("%w: unknown category %q (expected one of %s)",
			common.ErrInvalidInput, s, strings.Join(names, ", "))
	}
	return c, nil
}
