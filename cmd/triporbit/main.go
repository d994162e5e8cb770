package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/triporbit/triporbit/internal/config"
	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/obs"
	"github.com/triporbit/triporbit/internal/provider/hotelbeds"
	"github.com/triporbit/triporbit/internal/provider/kiwi"
	"github.com/triporbit/triporbit/internal/provider/pointme"
	"github.com/triporbit/triporbit/internal/provider/seatsaero"
	"github.com/triporbit/triporbit/internal/provider/viator"
	"github.com/triporbit/triporbit/internal/registry"
	"github.com/triporbit/triporbit/internal/server"
	"github.com/triporbit/triporbit/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("TRIPORBIT_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var tracerShutdown func(context.Context) error
	if cfg.Telemetry.TracingEnabled {
		tracerShutdown, err = telemetry.InitTracer("triporbit", logger)
		if err != nil {
			log.Fatalf("failed to initialize tracer: %v", err)
		}
	}

	metrics := obs.NewMetrics()
	reg := registry.New(logger, metrics)
	registerProviders(cfg, reg, logger)

	reg.StartHealthCheckLoop(cfg.Health.Interval())

	caches := server.NewCaches(cfg.Cache.Size, cfg.Cache.TTL(), metrics)
	srv := server.New(cfg.Server.Port, time.Duration(cfg.Server.RequestTimeout)*time.Second, logger)
	server.NewHandler(reg, caches, metrics, logger).Mount(srv.Router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server failed", slog.String("error", err.Error()))
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reg.StopHealthCheckLoop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if tracerShutdown != nil {
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
	logger.Info("shutdown complete")
}

// registerProviders builds each enabled adapter and registers it. A vendor
// that fails to construct is skipped with an error log so one bad block
// cannot keep the rest of the fleet down.
func registerProviders(cfg *config.Config, reg *registry.Registry, logger *slog.Logger) {
	if cfg.Providers.Kiwi.Enabled {
		p, err := kiwi.New(cfg.Providers.Kiwi.ProviderConfig(kiwi.ProviderName, domain.VerticalFlight), logger)
		if err != nil {
			logger.Error("skipping provider", slog.String("provider", kiwi.ProviderName), slog.String("error", err.Error()))
		} else {
			reg.RegisterFlightProvider(kiwi.ProviderName, p)
		}
	}
	if cfg.Providers.SeatsAero.Enabled {
		p, err := seatsaero.New(cfg.Providers.SeatsAero.ProviderConfig(seatsaero.ProviderName, domain.VerticalFlight), logger)
		if err != nil {
			logger.Error("skipping provider", slog.String("provider", seatsaero.ProviderName), slog.String("error", err.Error()))
		} else {
			reg.RegisterFlightProvider(seatsaero.ProviderName, p)
		}
	}
	if cfg.Providers.PointMe.Enabled {
		p, err := pointme.New(cfg.Providers.PointMe.ProviderConfig(pointme.ProviderName, domain.VerticalFlight), logger)
		if err != nil {
			logger.Error("skipping provider", slog.String("provider", pointme.ProviderName), slog.String("error", err.Error()))
		} else {
			reg.RegisterFlightProvider(pointme.ProviderName, p)
		}
	}
	if cfg.Providers.Hotelbeds.Enabled {
		p, err := hotelbeds.New(cfg.Providers.Hotelbeds.ProviderConfig(hotelbeds.ProviderName, domain.VerticalHotel), logger)
		if err != nil {
			logger.Error("skipping provider", slog.String("provider", hotelbeds.ProviderName), slog.String("error", err.Error()))
		} else {
			reg.RegisterHotelProvider(hotelbeds.ProviderName, p)
		}
	}
	if cfg.Providers.Viator.Enabled {
		p, err := viator.New(cfg.Providers.Viator.ProviderConfig(viator.ProviderName, domain.VerticalActivity), logger)
		if err != nil {
			logger.Error("skipping provider", slog.String("provider", viator.ProviderName), slog.String("error", err.Error()))
		} else {
			reg.RegisterActivityProvider(viator.ProviderName, p)
		}
	}
}
