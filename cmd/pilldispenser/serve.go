package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/calvinmclean/pilldispenser/api"
	"github.com/calvinmclean/pilldispenser/config"
	"github.com/calvinmclean/pilldispenser/controller"
	"github.com/calvinmclean/pilldispenser/dispenser"
	"github.com/calvinmclean/pilldispenser/network"
	"github.com/calvinmclean/pilldispenser/schedule"
)

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("layout", cfg.Layout.String()).Int("slots", cfg.Layout.NumSlots()).Msg("pill dispenser starting")

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	store := schedule.NewStore(backend, cfg.Layout.NumSlots(),
		schedule.WithLockTimeout(cfg.LockTimeout),
		schedule.WithLogger(logger),
	)
	err = store.Load(ctx)
	if errors.Is(err, schedule.ErrCorrupt) {
		logger.Warn().Err(err).Msg("saved schedule was unreadable and has been reset")
	} else if err != nil {
		logger.Error().Err(err).Msg("continuing with an empty schedule")
	}

	pwm, closePWM, err := openPWM(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", controller.ErrInit, err)
	}
	defer closePWM()

	servo, err := controller.New(pwm, cfg.Layout.Positions(), controller.CalibrationConfig{
		MoveSettle: cfg.MoveSettle,
		DropSettle: cfg.DropSettle,
	}, logger)
	if err != nil {
		return err
	}
	defer servo.Close()

	svc := dispenser.New(cfg.Layout, store, servo, logger)

	var connector network.Connector = network.AlwaysUp
	if cfg.NetInterface != "" {
		connector = network.InterfaceConnector{Name: cfg.NetInterface}
	}
	link := network.NewLink(connector, cfg.NetMaxRetry, network.DefaultRetryBackoff, logger)

	err = link.Connect(ctx)
	if err != nil {
		logger.Error().Err(err).Str("interface", cfg.NetInterface).Msg("network unavailable, HTTP server not started")
		<-ctx.Done()
		return nil
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.New(svc, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	err = servo.Home(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("error moving servo home")
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down gracefully...")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("pill dispenser stopped")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config) (schedule.Backend, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		return schedule.OpenRedis(ctx, schedule.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.StoreMemory:
		logger.Warn().Msg("using in-memory store, the schedule will not survive a restart")
		return schedule.NewMemoryBackend(), nil
	default:
		return schedule.OpenSQLite(cfg.StorePath)
	}
}

func openPWM(cfg *config.Config) (controller.PWM, func(), error) {
	if cfg.ServoBackend == config.ServoSim {
		return controller.NewSimPWM(logger), func() {}, nil
	}

	pwm, err := controller.OpenSerialPWM(cfg.SerialPort, cfg.SerialBaud)
	if err != nil {
		return nil, nil, err
	}
	return pwm, func() { pwm.Close() }, nil
}

func runReset(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx := cmd.Context()
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	store := schedule.NewStore(backend, cfg.Layout.NumSlots(), schedule.WithLogger(logger))
	return store.Reset(ctx)
}
