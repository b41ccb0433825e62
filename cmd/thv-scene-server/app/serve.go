package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-scene-server/internal/app"
	"github.com/stacklok/toolhive-scene-server/internal/config"
)

const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scene server",
		Long: `Start the scene server.

The server requires a configuration file (--config) that specifies:
- The peers to simulate and their starting scenes
- The scenes and the loader (static or manifest) that provides their objects
- The simulation tick interval and optional telemetry settings

See the examples/ directory for sample configurations.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", "", "Address to listen on (overrides the configuration)")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := viper.BindPFlag("address", cmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
	}
	if err := viper.BindPFlag("config", cmd.Flags().Lookup("config")); err != nil {
		slog.Error("Failed to bind config flag", "error", err)
	}
	if err := cmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
	}

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"loader", cfg.GetLoaderType(),
		"peers", len(cfg.Peers),
		"scenes", len(cfg.Scenes))

	opts := []app.SceneAppOptions{app.WithConfig(cfg)}
	if address := viper.GetString("address"); address != "" {
		opts = append(opts, app.WithAddress(address))
	}

	sceneApp, err := app.NewSceneApp(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return fmt.Errorf("failed to create scene server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- sceneApp.Start()
	}()

	select {
	case err := <-errCh:
		stopErr := sceneApp.Stop(defaultGracefulTimeout)
		if err != nil {
			return err
		}
		return stopErr
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	}

	if err := sceneApp.Stop(defaultGracefulTimeout); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}
	return <-errCh
}
