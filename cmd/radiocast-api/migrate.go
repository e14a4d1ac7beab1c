package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/virafm/radiocast/internal/config"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/pkg/log"
	"github.com/virafm/radiocast/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.LevelFromString(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Named("migrate").Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := migrations.MigrateStore(db, cfg.Service.MigrationFolder); err != nil {
			zap.S().Named("migrate").Fatalf("running migration: %v", err)
		}

		zap.S().Named("migrate").Info("Db migrated")
		return nil
	},
}
