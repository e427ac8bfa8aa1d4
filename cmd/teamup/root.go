package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"teamup/config"
)

var rootCmd = &cobra.Command{
	Use:          "teamup",
	Short:        "TeamUP event lifecycle, ledger and reputation services",
	SilenceUsage: true,
}

// Execute runs the command selected by os.Args. Errors are logged before returning.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		config.NewLogger().Error("command execution failed", "err", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd, consumeCmd, migrateCmd, tokenCmd)
}

// app holds what every command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &app{cfg: cfg, logger: config.NewLogger()}, nil
}

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", a.cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
