package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"campusvote/internal/gateway/fabric"
	"campusvote/internal/gateway/handler"
	"campusvote/internal/gateway/lockout"
	"campusvote/internal/gateway/metrics"
	"campusvote/internal/jwttoken"
	"campusvote/internal/platform/config"
	"campusvote/internal/platform/httpserver"
	"campusvote/internal/platform/logger"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business rules live in the chaincode; the gateway only authenticates and
// relays.
func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	network, err := fabric.Connect(cfg.Fabric)
	if err != nil {
		log.Error("connecting to fabric peer", "error", err, "peer", cfg.Fabric.PeerEndpoint)
		os.Exit(1)
	}
	defer func() { _ = network.Close() }()

	var lockoutStore lockout.Store
	if cfg.RedisAddr != "" {
		redisStore, err := lockout.NewRedisStore(cfg.RedisAddr, cfg.LockoutWindow)
		if err != nil {
			log.Error("connecting to redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer func() { _ = redisStore.Close() }()
		lockoutStore = redisStore
	} else {
		lockoutStore = lockout.NewMemoryStore(cfg.LockoutWindow)
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	policy := lockout.NewPolicy(lockoutStore, cfg.LockoutThreshold)
	router := handler.New(network, tokens, policy, log, metrics.New()).Router()

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting voting gateway",
		"addr", cfg.Addr,
		"channel", cfg.Fabric.Channel,
		"chaincode", cfg.Fabric.Chaincode,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
