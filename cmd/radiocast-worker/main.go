package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiserver "github.com/virafm/radiocast/internal/api_server"
	"github.com/virafm/radiocast/internal/config"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/pkg/log"
)

var rootCmd = &cobra.Command{
	Use:   "radiocast-worker",
	Short: "Run the radiocast job worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.LevelFromString(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Named("worker").Info("Starting worker service")
		defer zap.S().Named("worker").Info("Worker service stopped")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Named("worker").Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		listener, err := net.Listen("tcp", cfg.Service.Address)
		if err != nil {
			zap.S().Named("worker").Fatalf("creating listener: %s", err)
		}

		server, err := apiserver.NewWorkerServer(cfg, s, listener)
		if err != nil {
			zap.S().Named("worker").Fatalf("initializing worker server: %s", err)
		}
		if err := server.Run(ctx); err != nil {
			zap.S().Named("worker").Fatalf("Error running worker server: %s", err)
		}

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
