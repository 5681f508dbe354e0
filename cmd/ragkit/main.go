// Command ragkit indexes local documents and answers questions grounded in them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragkit/internal/core/services"
	"github.com/custodia-labs/ragkit/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		// cobra has already printed the error.
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if _, err := file.LoadEnv(file.DefaultEnvFiles()...); err != nil {
		logger.Warn("reading .env: %v", err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetSettingsService(settings)
	cli.SetRuntimeFactory(newComposer(settings, "").open)

	return cli.Execute(ctx)
}
