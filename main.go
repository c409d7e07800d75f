package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"recipebox/config"
	"recipebox/kv"
	"recipebox/logger"
	"recipebox/store"
)

// app is what every subcommand needs once configuration is loaded.
type app struct {
	cfg      config.Config
	backend  kv.Store
	recipes  *store.RecipeStore
	registry *prometheus.Registry
}

func (a *app) Close() error {
	return errors.Join(a.backend.Close(), logger.Close())
}

var configPath string

var rootCmd = &cobra.Command{
	Use:           "recipebox",
	Short:         "Record and browse cooking recipes",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("RECIPEBOX_CONFIG"), "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, listCmd, addCmd, showCmd, countCmd, clearCmd)
}

// openApp loads configuration, sets up logging and opens the recipe store.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	base, err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	backend, err := kv.Open(ctx, cfg.Storage.KV(), logger.WithComponent("kv"))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recipes := store.New(backend,
		store.WithKey(cfg.Storage.Key),
		store.WithLogger(logger.WithComponent("store")),
		store.WithMetrics(store.NewMetrics(registry)),
		store.WithIDSource(cfg.Storage.IDSource()),
		store.WithSerializedWrites(cfg.Storage.SerializeWrites),
	)

	base.Debug().
		Str("backend", cfg.Storage.Backend).
		Bool("serialize_writes", cfg.Storage.SerializeWrites).
		Msg("recipe store ready")

	return &app{cfg: cfg, backend: backend, recipes: recipes, registry: registry}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
