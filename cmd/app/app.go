package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/popcornhub/points-api/internal/api"
	"github.com/popcornhub/points-api/internal/cache"
	"github.com/popcornhub/points-api/internal/config"
	"github.com/popcornhub/points-api/internal/db"
	"github.com/popcornhub/points-api/internal/jobs"
	"github.com/popcornhub/points-api/internal/logger"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	balanceCache, err := cache.New(conf.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize cache -> %w", err)
	}

	reconciler := jobs.NewReconciler(postgresDB, balanceCache, conf.Jobs)
	if err = reconciler.Start(); err != nil {
		return fmt.Errorf("failed to start reconciler -> %w", err)
	}
	defer reconciler.Stop()

	s := api.NewServer(conf, postgresDB, balanceCache)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
