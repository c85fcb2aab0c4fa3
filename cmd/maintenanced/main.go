package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"maintenance-records-backend/config"
	"maintenance-records-backend/internal/logging"
)

var version = "dev"

func main() {
	if err := run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var configPath string

	app := &cli.Command{
		Name:    "maintenanced",
		Usage:   "Maintenance records backend",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to the YAML configuration file",
				Value:       "./config/config.yaml",
				Sources:     cli.EnvVars("CONFIG_PATH"),
				Destination: &configPath,
			},
		},
		Commands: []*cli.Command{
			cmdServe(&configPath),
			cmdMigrate(&configPath),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", logging.ErrAttrs(err)...)
		return err
	}
	return nil
}

// loadConfig reads the configuration and installs the configured logger as the process default.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stdout, cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)

	logger.Info("configuration loaded",
		"path", path,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"storage_backend", cfg.Storage.Backend,
	)
	return cfg, nil
}
