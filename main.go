package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/go-resources/handlers"
	"github.com/gogotex/gogotex/backend/go-resources/internal/config"
	"github.com/gogotex/gogotex/backend/go-resources/internal/database"
	"github.com/gogotex/gogotex/backend/go-resources/internal/oidc"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource/repository"
	"github.com/gogotex/gogotex/backend/go-resources/pkg/logger"
	"github.com/gogotex/gogotex/backend/go-resources/pkg/metrics"
	"github.com/gogotex/gogotex/backend/go-resources/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: collections=%v joins=%d mongo=%v redis=%v keycloak=%v",
		cfg.Resources.Collections, len(cfg.Resources.Joins), cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Keycloak.URL != "")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional and only backs the distributed rate limiter.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		} else {
			logger.Infof("connected to Redis: %s", cfg.Redis.Addr())
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	var store repository.Store
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.MaxAttempts, time.Second)
		if err != nil {
			logger.Fatalf("could not connect to MongoDB: %v", err)
		}
		mongoClient = client
		defer func() { _ = client.Disconnect(context.Background()) }()

		ms := repository.NewMongoStore(client.Database(cfg.MongoDB.Database))
		var joins []resource.JoinSpec
		for _, j := range cfg.Resources.Joins {
			joins = append(joins, resource.JoinSpec{Member: j.Member, Column: j.Column})
		}
		if err := ms.EnsureIndexes(ctx, joins); err != nil {
			logger.Warnf("ensure indexes: %v", err)
		}
		store = ms
		logger.Infof("using MongoDB database %q", cfg.MongoDB.Database)
	} else {
		store = repository.NewMemoryStore(cfg.Resources.Collections...)
		logger.Warnf("using in-memory store")
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the configured backends answer
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{"store": true, "redis": true}
		if mongoClient != nil {
			pctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			deps["store"] = mongoClient.Ping(pctx, nil) == nil
			cancel()
		}
		if rdb != nil && cfg.RateLimit.UseRedis {
			deps["redis"] = rdb.Ping(c.Request.Context()).Err() == nil
		}
		status, code := "ready", http.StatusOK
		for _, ok := range deps {
			if !ok {
				status, code = "not_ready", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	var guard gin.HandlerFunc
	if cfg.Resources.ProtectWrites {
		if ver := newVerifier(ctx, cfg.Keycloak); ver != nil {
			guard = middleware.AuthMiddleware(ver)
		} else {
			logger.Warnf("write routes are unprotected: no token verifier configured")
		}
	}

	if err := handlers.RegisterResourceRoutes(r, store, cfg.Resources, guard); err != nil {
		logger.Fatalf("register resource routes: %v", err)
	}
	handlers.RegisterSwagger(r, cfg.Resources)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting resource service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// newVerifier returns the Keycloak OIDC verifier when configured, the insecure
// claims-only verifier when ALLOW_INSECURE_TOKEN is set, and nil otherwise.
func newVerifier(ctx context.Context, kc config.KeycloakConfig) middleware.Verifier {
	if kc.URL != "" && kc.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, oidc.Issuer(kc.URL, kc.Realm), kc.ClientID)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if kc.AllowInsecure {
		logger.Warnf("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier()
	}
	return nil
}
