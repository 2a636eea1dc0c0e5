package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"macrolens/internal/config"
	cronrunner "macrolens/internal/cron"
	"macrolens/internal/db"
	"macrolens/internal/fetch"
	"macrolens/internal/handler"
	"macrolens/internal/logger"
	"macrolens/internal/metrics"
	"macrolens/internal/models"
	"macrolens/internal/ratelimit"
	"macrolens/internal/registry"
	"macrolens/internal/repository"
	gormrepository "macrolens/internal/repository/gorm"
	"macrolens/internal/service"
	signalhub "macrolens/internal/signal"
)

func main() {
	cfgPath := os.Getenv("ML_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("ML_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	reg := registry.New()

	seeder := &service.Seeder{Registry: reg, Store: store, Logger: logger}
	if _, err := seeder.Seed(context.Background()); err != nil {
		logger.Fatal("catalog seed failed", zap.Error(err))
	}

	// A key stored in settings beats the config/env fallback, so users can
	// configure credentials without touching the deployment.
	fredKey := settingString(store, models.SettingFREDAPIKey, cfg.Providers.FRED.APIKey)
	tiingoKey := settingString(store, models.SettingTiingoAPIKey, cfg.Providers.Tiingo.APIKey)

	providerHTTP := &http.Client{Timeout: cfg.Providers.Timeout}
	sources := map[registry.Source]fetch.Source{
		registry.SourceFRED:        fetch.NewFRED(providerHTTP, cfg.Providers.FRED.BaseURL, fredKey),
		registry.SourceTiingo:      fetch.NewTiingo(providerHTTP, cfg.Providers.Tiingo.BaseURL, tiingoKey),
		registry.SourceBinance:     fetch.NewBinance(providerHTTP, cfg.Providers.Binance.BaseURL),
		registry.SourceAlternative: fetch.NewAlternative(providerHTTP, cfg.Providers.Alternative.BaseURL),
	}

	limiter := ratelimit.New(map[string]ratelimit.Policy{
		"fred":    {Min: cfg.RateLimit.FRED.Min, Max: cfg.RateLimit.FRED.Max},
		"tiingo":  {Min: cfg.RateLimit.Tiingo.Min, Max: cfg.RateLimit.Tiingo.Max},
		"binance": {Min: cfg.RateLimit.Binance.Min, Max: cfg.RateLimit.Binance.Max},
	})

	mtr := metrics.New()
	hub := signalhub.NewHub(logger)

	resolver := &service.Resolver{
		Registry: reg,
		Store:    store,
		Sources:  sources,
		Limiter:  limiter,
		Logger:   logger,
		Metrics:  mtr,
	}
	alertSvc := &service.AlertService{
		Store:   store,
		Hub:     hub,
		Logger:  logger,
		Metrics: mtr,
	}
	syncSvc := &service.SyncService{
		Registry: reg,
		Store:    store,
		Resolver: resolver,
		Hub:      hub,
		Logger:   logger,
		Metrics:  mtr,
		Options: service.SyncOptions{
			BatchSize:  cfg.Sync.BatchSize,
			BatchPause: cfg.Sync.BatchPause,
		},
	}
	if cfg.Alerts.Enabled {
		syncSvc.Alerts = alertSvc
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm, StartedAt: time.Now().UTC()}
	healthHandler.Register(engine)
	indicatorsHandler := &handler.IndicatorsHandler{Registry: reg, Store: store, Resolver: resolver, Logger: logger}
	indicatorsHandler.Register(engine)
	syncHandler := &handler.SyncHandler{Service: syncSvc, Store: store, Logger: logger}
	syncHandler.Register(engine)
	settingsHandler := &handler.SettingsHandler{Store: store}
	settingsHandler.Register(engine)
	alertsHandler := &handler.AlertsHandler{Registry: reg, Store: store}
	alertsHandler.Register(engine)

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(mtr.Registry, promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runSync := func(ctx context.Context, trigger string) {
		_, err := syncSvc.RunSync(ctx, trigger)
		if errors.Is(err, service.ErrSyncInProgress) {
			logger.Debug("sync already running, skipping", zap.String("trigger", trigger))
			return
		}
		if err != nil {
			logger.Warn("sync run failed", zap.String("trigger", trigger), zap.Error(err))
		}
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add("sync", cfg.Cron.Sync, func(ctx context.Context) {
			runSync(ctx, "cron")
		}); err != nil {
			logger.Warn("cron register sync failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	// First sync shortly after boot so a fresh deployment has data before
	// the first scheduled slot.
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.Cron.StartupDelay):
		}
		runSync(ctx, "startup")
	}()

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// settingString reads a string setting, falling back when unset or
// unreadable.
func settingString(store repository.Repository, key, fallback string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	item, err := store.GetSetting(ctx, key)
	if err != nil || item == nil {
		return fallback
	}
	var value string
	if err := json.Unmarshal(item.Value, &value); err != nil || value == "" {
		return fallback
	}
	return value
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
