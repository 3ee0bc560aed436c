// Package main provides recipectl, the administration tool for the RecipeBox server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/listenupapp/recipebox-server/internal/config"
	"github.com/listenupapp/recipebox-server/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configFlags are forwarded to config.Load so recipectl and the server
// resolve settings the same way.
var configFlags = []string{"env-file", "metadata-path", "db-driver", "db-dsn", "blob-driver", "log-level"}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "recipectl",
		Usage:     "Administer a RecipeBox server",
		Reader:    os.Stdin,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Usage: "path to .env file", Value: ".env"},
			&cli.StringFlag{Name: "metadata-path", Usage: "base path for server data"},
			&cli.StringFlag{Name: "db-driver", Usage: "database driver: sqlite or postgres"},
			&cli.StringFlag{Name: "db-dsn", Usage: "database file path or connection string"},
			&cli.StringFlag{Name: "blob-driver", Usage: "image storage driver: fs, s3 or memory"},
			&cli.StringFlag{Name: "log-level", Usage: "log level (debug, info, warn, error)", Value: "warn"},
		},
		Commands: []*cli.Command{
			migrateCmd(),
			waitForDBCmd(),
			createSuperuserCmd(),
		},
	}
}

// loadConfig resolves configuration from the global flags, the
// environment and the .env file.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	var args []string
	for _, name := range configFlags {
		if cmd.IsSet(name) || name == "log-level" {
			args = append(args, "-"+name+"="+cmd.String(name))
		}
	}
	return config.Load(args)
}

func newLogger(cmd *cli.Command, cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Writer:      cmd.Root().ErrWriter,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	})
}
