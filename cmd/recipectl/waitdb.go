package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/listenupapp/recipebox-server/internal/store/sqlstore"
)

func waitForDBCmd() *cli.Command {
	return &cli.Command{
		Name:  "wait-for-db",
		Usage: "Block until the database accepts connections",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "timeout", Usage: "give up after this long", Value: 60 * time.Second},
			&cli.DurationFlag{Name: "interval", Usage: "delay between attempts", Value: time.Second},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Metadata.BasePath, 0o755); err != nil {
				return fmt.Errorf("create metadata directory: %w", err)
			}

			st, err := sqlstore.Open(ctx, sqlstore.Config{
				Driver:         cfg.Database.Driver,
				DSN:            cfg.Database.DSN,
				SkipMigrations: true,
			}, newLogger(cmd, cfg).Logger)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			return waitForDB(ctx, st.Ping, cmd.Duration("interval"), cmd.Duration("timeout"), cmd.Root().Writer)
		},
	}
}

// waitForDB calls ping every interval until it succeeds or timeout elapses.
func waitForDB(ctx context.Context, ping func(context.Context) error, interval, timeout time.Duration, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	_, _ = fmt.Fprintln(w, "Waiting for database...")
	for {
		err := ping(ctx)
		if err == nil {
			_, _ = fmt.Fprintln(w, "Database available!")
			return nil
		}
		_, _ = fmt.Fprintf(w, "Database unavailable, waiting %s: %v\n", interval, err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("database not available after %s: %w", timeout, err)
		case <-ticker.C:
		}
	}
}
