package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/listenupapp/recipebox-server/internal/store/sqlstore"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
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

			applied, err := st.Migrate(ctx)
			if err != nil {
				return err
			}
			version, err := st.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.Root().Writer, "Applied %d migration(s), schema at version %d\n", applied, version)
			return err
		},
	}
}
