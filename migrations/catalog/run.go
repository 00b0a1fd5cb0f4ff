// Command migrate applies the catalog and accounts schema.
//
//	migrate [up|down|status]
package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caelus-deploy/caelus/pkg/config"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
		// config.Load parses the remaining arguments as flags.
		os.Args = append(os.Args[:1], os.Args[2:]...)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, cfg, log); err != nil {
		log.Error("migration failed", "command", command, "error", err)
		os.Exit(1) //nolint:gocritic
	}
}

func run(ctx context.Context, command string, cfg *config.Config, log logger.Logger) error {
	m, err := migrator.Open(cfg.DatabaseURL, MigrationsFS, log)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck

	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "status":
		return m.Status(ctx)
	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", command)
	}
}
