// Package server boots the application and runs the HTTP listener.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/S-KABILAN/ECOMMERCE/app/routes"
	"github.com/S-KABILAN/ECOMMERCE/config"
	"github.com/S-KABILAN/ECOMMERCE/internal/kernel"
	"github.com/S-KABILAN/ECOMMERCE/pkg/cache"
	"github.com/S-KABILAN/ECOMMERCE/pkg/database"
	"github.com/S-KABILAN/ECOMMERCE/pkg/logger"
	"github.com/S-KABILAN/ECOMMERCE/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// Start boots config, Mongo, Redis and storage, mounts the API and serves
// until SIGINT/SIGTERM. Redis being down degrades caching to a no-op; Mongo
// being down is fatal.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	bootCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := database.Connect(bootCtx); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err.Error())
	}
	storage.Connect()

	var logHandler interface{ Close() }
	if config.Get("LOG_TO_MONGO", "") != "" {
		h := logger.NewMongoHandler(database.Collection("logs"))
		logger.AttachMongo(h)
		logHandler = h
	}

	api := routes.NewAPI(
		database.Collection("users"),
		database.Collection("products"),
		database.Collection("orders"),
	)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           kernel.NewHandler(api),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", "error", err.Error())
	}
	api.OrderSvc.Shutdown()
	if logHandler != nil {
		logHandler.Close()
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Error("mongo disconnect", "error", err.Error())
	}

	logger.Info("server stopped")
	return nil
}
