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

	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/api"
	"github.com/voshodshop/cartengine/internal/config"
	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/repository/remote"
	"github.com/voshodshop/cartengine/internal/service"
	"github.com/voshodshop/cartengine/internal/session"
	"github.com/voshodshop/cartengine/internal/storefront"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client, err := storefront.NewClient(cfg.Storefront, logger.Named("storefront"))
	if err != nil {
		logger.Fatal("Failed to create storefront client", zap.Error(err))
	}

	repos := remote.NewRepositories(client, logger)
	sess := session.New()
	svcs := service.NewServices(cfg.Shipping, repos, sess, logger)

	unsubscribe := sess.Subscribe(func(snap domain.Snapshot) {
		logger.Debug("Session state changed",
			zap.Int("lines", len(snap.Cart.Items)),
			zap.Int("weight", snap.Cart.TotalWeight),
			zap.String("method", string(snap.Shipping.Method)),
			zap.String("shipping_cost", snap.Shipping.Cost.String()),
			zap.Bool("calculating", snap.Shipping.Calculating),
		)
	})
	defer unsubscribe()

	// Warm the cart so the first state read reflects the storefront
	startCtx, cancel := context.WithTimeout(context.Background(), cfg.Storefront.RequestTimeout)
	if _, err := svcs.Cart.Refresh(startCtx); err != nil {
		logger.Warn("Initial cart refresh failed", zap.Error(err))
	}
	cancel()

	router := api.NewRouter(cfg, svcs, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Cart engine listening",
			zap.String("port", cfg.Port),
			zap.String("storefront", cfg.Storefront.BaseURL),
			zap.Stringer("session_id", sess.ID()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down cart engine...")
	// a shipping calculation may still be waiting on its own timer
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shipping.Timeout+time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	logger.Info("Cart engine stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
