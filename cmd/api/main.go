package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"rideshare/internal/app"
	"rideshare/internal/auth"
	"rideshare/internal/cloudinary"
	"rideshare/internal/config"
	"rideshare/internal/handler"
	"rideshare/internal/httpmiddleware"
	"rideshare/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger.With("api")); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
}

func runHTTP(cfg config.App, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	// Without a shared broker nothing else can drain the in-memory queue.
	if cfg.QueueBackend == "memory" {
		workerLog := logger.With("worker")
		go func() {
			if err := app.Consume(ctx, svc.Queue, svc.Processor(cfg, workerLog), workerLog); err != nil {
				workerLog.Error().Err(err).Msg("in-process worker stopped")
			}
		}()
	}

	var photos handler.PhotoUploader
	if cfg.CloudinaryConfigured() {
		photos = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Info().Str("cloud", cfg.CloudinaryCloudName).Msg("cloudinary configured")
	} else {
		log.Info().Msg("cloudinary not configured; photo uploads disabled")
	}

	health := map[string]handler.HealthCheck{}
	if svc.DB != nil {
		health["db"] = svc.DB.Healthy
	}
	if svc.Redis != nil {
		health["redis"] = svc.Redis.Healthy
	}
	if !cfg.AirportSkip {
		health["airports"] = func(ctx context.Context) bool { return svc.Airports.Health(ctx) == nil }
	}

	h := handler.New(handler.Deps{
		Events:     svc.Events,
		Attendance: svc.Attendance,
		Matches:    svc.Matches,
		Requests:   svc.Requests,
		Profiles:   svc.Profiles,
		Airports:   svc.Airports,
		Photos:     photos,
		Tokens: handler.Tokens{
			Issuer:     cfg.JWTIssuer,
			SigningKey: cfg.JWTSigningKey,
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		},
		Location: cfg.Location(),
		Health:   health,
		Log:      log,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(logger.With("http"), "/healthz", "/metrics"))
	r.Use(httpmiddleware.Metrics())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins())))
	r.Use(httpmiddleware.SecurityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Register(r, auth.UserAuth(cfg.JWTSigningKey, cfg.JWTIssuer),
		httpmiddleware.RateLimit(rateLimiter(cfg, svc), callerKey, log))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreBackend).Str("queue", cfg.QueueBackend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}
	log.Info().Msg("server exited")
	return nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = nil
	cfg.AllowOriginFunc = func(string) bool { return true }
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	cfg.AllowCredentials = true
	cfg.MaxAge = 24 * time.Hour
	if len(origins) > 0 {
		cfg.AllowOriginFunc = nil
		cfg.AllowOrigins = origins
	}
	return cfg
}

func rateLimiter(cfg config.App, svc *app.Services) httpmiddleware.Limiter {
	if cfg.RateLimitBackend == "redis" && svc.Redis != nil {
		return httpmiddleware.NewRedisWindow(svc.Redis.Client, "", cfg.RateLimitPerMin)
	}
	return httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
}

// callerKey limits authenticated callers per user and everyone else per IP.
func callerKey(c *gin.Context) string {
	if claims, ok := auth.ClaimsFrom(c); ok {
		return "user:" + claims.Subject
	}
	return httpmiddleware.ClientIPKey(c)
}
