package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"maintenance-records-backend/internal/db"
)

func cmdMigrate(configPath *string) *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create or update the database schema",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			gormDB, err := db.Init(&cfg.Database)
			if err != nil {
				return err
			}
			sqlDB, err := gormDB.DB()
			if err == nil {
				_ = sqlDB.Close()
			}
			return nil
		},
	}
}
