package main

import (
	"github.com/gin-gonic/gin"

	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/api"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/classifier"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/config"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/scheduler"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/storage"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/pkg/logger"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init store failed")
	}

	sources := scheduler.BuildRegistry(cfg, log)
	sched, err := scheduler.New(sources, store, classifier.New(), cfg.SeedTenantID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init scheduler failed")
	}
	sched.Start()

	r := gin.Default()
	api.NewServer(store).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Msg("starting api server")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}
