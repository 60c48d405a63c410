package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahilchouksey/smart-campus-api/api"
	"github.com/sahilchouksey/smart-campus-api/config"
	"github.com/sahilchouksey/smart-campus-api/database"
	"github.com/sahilchouksey/smart-campus-api/router"
	"github.com/sahilchouksey/smart-campus-api/services/cron"
	"github.com/sahilchouksey/smart-campus-api/utils/logging"
	"go.uber.org/zap"
)

const shutdownGrace = 10 * time.Second

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	logs, err := logging.New(getEnv.LOG_DIR)
	if err != nil {
		return err
	}
	defer logs.Close()
	log := logs.App

	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv, log.Named("database"))
	if err != nil {
		log.Error("Check whether the Postgres is running or not. If not, run: make docker-up (Docker) or make db-up (local PostgreSQL)", zap.Error(err))
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Error("Failed to initialize database tables", zap.Error(err))
		return err
	}

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), log.Named("api"))

	// Setup Routes
	components, err := router.SetupRoutes(server.GetEngine(), store, getEnv, logs)
	if err != nil {
		return err
	}
	defer components.Close()

	// Cron jobs are on unless CRON_ENABLED=false
	if getEnv.CRON_ENABLED {
		jobLog := cron.NewGORMJobLog(store.GetDB())
		cronManager := cron.NewCronManager(jobLog, log.Named("cron"),
			cron.TokenCleanupJob(components.Blacklist),
			cron.IdleConversationJob(components.Conversations, getEnv.CHAT_IDLE_TTL),
			cron.JobLogRetentionJob(jobLog, time.Duration(getEnv.CRON_LOG_RETENTION_DAYS)*24*time.Hour),
		)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("Failed to start cron jobs", zap.Error(err))
		} else {
			defer cronManager.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, shutdownGrace)
}
