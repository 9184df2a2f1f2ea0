// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/YaganovValera/admin-console/internal/config"
	"github.com/YaganovValera/admin-console/internal/datafeed"
	"github.com/YaganovValera/admin-console/internal/httpsrv"
	"github.com/YaganovValera/admin-console/internal/metrics"
	"github.com/YaganovValera/admin-console/internal/platform"
	"github.com/YaganovValera/admin-console/internal/state"
	"github.com/YaganovValera/admin-console/internal/subscription"
	transportmt5 "github.com/YaganovValera/admin-console/internal/transport/mt5"
	"github.com/YaganovValera/admin-console/pkg/backoff"
	"github.com/YaganovValera/admin-console/pkg/eventbus"
	"github.com/YaganovValera/admin-console/pkg/logger"
	"github.com/YaganovValera/admin-console/pkg/mt5ws"
	"github.com/YaganovValera/admin-console/pkg/telemetry"
)

// Run собирает консоль и блокирует до отмены ctx.
// Жизненный цикл: create → connect → run → disconnect → dispose.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	metrics.Register(nil)

	// Трассировка
	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Insecure:       cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownSafe(ctx, "telemetry", func() error { return shutdownTracer(ctx) }, log)

	// Шина и транспорт
	bus := eventbus.New(log)
	wsClient, err := mt5ws.New(cfg.MT5WS, bus, log)
	if err != nil {
		return fmt.Errorf("mt5ws init: %w", err)
	}
	transportmt5.Instrument(wsClient, nil)

	// REST-клиент платформы
	platformClient, err := platform.New(cfg.Platform, log)
	if err != nil {
		return fmt.Errorf("platform init: %w", err)
	}

	// Сервисный вход и первичная загрузка символов — с ретраями:
	// на старте бэкенд может быть ещё не готов.
	if cfg.Auth.Email != "" {
		if err := backoff.Execute(ctx, backoff.Config{}, log, func(ctx context.Context) error {
			_, loginErr := platformClient.Login(ctx, cfg.Auth.Email, cfg.Auth.Password)
			if errors.Is(loginErr, platform.ErrUnauthorized) {
				return backoff.Permanent(loginErr)
			}
			return loginErr
		}); err != nil {
			return fmt.Errorf("platform login: %w", err)
		}

		var symbols []string
		if err := backoff.Execute(ctx, backoff.Config{}, log, func(ctx context.Context) error {
			var fetchErr error
			symbols, fetchErr = platformClient.Symbols(ctx)
			return fetchErr
		}); err != nil {
			log.Warn("initial symbol load failed", zap.Error(err))
		} else {
			log.Info("symbols loaded", zap.Int("count", len(symbols)))
		}
	}

	// Состояние консоли и датафид
	store := state.New(log)
	store.Attach(bus)
	defer store.Detach(bus)

	registry := subscription.New(bus, log)
	feed := datafeed.New(platformClient, registry, log)
	feed.OnReady(func(caps datafeed.Capabilities) {
		log.Info("datafeed ready", zap.Strings("resolutions", caps.SupportedResolutions))
	})

	// Операционный HTTP-сервер; готовность = живой ws-линк
	readiness := func() error {
		if s := wsClient.State(); s != mt5ws.StateConnected {
			return fmt.Errorf("ws link is %s", s)
		}
		return nil
	}
	httpSrv, err := httpsrv.New(httpsrv.Config{
		Addr:            fmt.Sprintf(":%d", cfg.HTTP.Port),
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		MetricsPath:     cfg.HTTP.MetricsPath,
		HealthzPath:     cfg.HTTP.HealthzPath,
		ReadyzPath:      cfg.HTTP.ReadyzPath,
	}, readiness, store, log)
	if err != nil {
		return fmt.Errorf("httpsrv init: %w", err)
	}

	wsClient.Connect()
	defer wsClient.Disconnect()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpSrv.Start(ctx) })

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			log.WithContext(ctx).Info("console stopped by context")
			return nil
		}
		return err
	}
	return nil
}

// shutdownSafe оборачивает вызов Close()/Shutdown() с логированием.
func shutdownSafe(ctx context.Context, name string, fn func() error, log *logger.Logger) {
	log.WithContext(ctx).Info(fmt.Sprintf("%s: shutting down", name))
	if err := fn(); err != nil {
		log.WithContext(ctx).Error(fmt.Sprintf("%s shutdown error", name), zap.Error(err))
	} else {
		log.WithContext(ctx).Info(fmt.Sprintf("%s: shutdown complete", name))
	}
}
