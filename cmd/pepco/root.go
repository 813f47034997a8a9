package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pepco/internal/config"
	"pepco/internal/logging"
	"pepco/internal/pipeline"
	"pepco/internal/reference"
	"pepco/internal/storage"
)

// app holds what the commands share. The database is opened on first use.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *storage.DB
}

func (a *app) openDB() (*storage.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := storage.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.cfg.DBPath, err)
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *app) engine() *pipeline.Engine {
	return pipeline.NewEngine(
		pipeline.WithBatchOffset(a.cfg.BatchOffsetDays),
		pipeline.WithLogger(a.logger),
	)
}

// references returns the cached reference tables backed by stored snapshots.
func (a *app) references(ctx context.Context) (*reference.Cache, error) {
	db, err := a.openDB()
	if err != nil {
		return nil, err
	}
	src, err := reference.NewSource(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	return reference.NewCache(src, db, a.cfg.ReferenceCacheTTL, a.logger), nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "pepco",
		Short: "Purchase-order PDF to label data file converter",
		Long: `pepco reads purchase-order PDFs, recovers the order fields, colour and
SKU/barcode pairs, and writes the semicolon separated data file used for
label printing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			slog.SetDefault(a.logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	cmd.AddCommand(
		newExtractCmd(a),
		newRunCmd(a),
		newExportCmd(a),
		newDocumentsCmd(a),
		newReferenceSyncCmd(a),
		newMailFetchCmd(a),
		newMailProcessCmd(a),
		newMailListenCmd(a),
	)
	return cmd
}
