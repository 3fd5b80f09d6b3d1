package app

import (
	"context"
	"crash_backend/internal/config"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// dailyResetSpec - midnight, server local time
const dailyResetSpec = "0 0 * * *"

type App struct {
	ServiceProvider *ServiceProvider
	configPath      string
}

func NewApp(configPath string) *App {
	return &App{configPath: configPath}
}

func (a *App) initServiceProvider() {
	a.ServiceProvider = newServiceProvider(a.configPath)
}

// Run serves until SIGINT/SIGTERM or a fatal component error.
func (a *App) Run() error {
	envErr := config.Load(".env")
	a.initServiceProvider()
	sp := a.ServiceProvider

	lg := sp.Logger()
	defer func() { _ = lg.Sync() }()
	if envErr != nil {
		lg.Info("no .env file loaded", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := sp.Engine()
	settle := sp.Settlement(ctx)
	settle.Attach(sp.Bus())
	hub := sp.Hub(ctx)
	hub.Attach(sp.Bus())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		return settle.Run(gctx)
	})

	records, err := sp.HistoryRepo(ctx).List(ctx, sp.GameCfg().HistorySize())
	if err != nil {
		lg.Warn("history not restored", zap.Error(err))
	} else if err := engine.SeedHistory(ctx, records); err != nil {
		lg.Warn("history not seeded", zap.Error(err))
	}

	c := cron.New(cron.WithLogger(cron.PrintfLogger(zap.NewStdLog(lg.Named("cron")))))
	if _, err := c.AddFunc(dailyResetSpec, func() {
		if err := engine.ResetDailyHighest(gctx); err != nil {
			lg.Warn("daily reset skipped", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule daily reset: %w", err)
	}
	c.Start()

	httpCfg := sp.HTTPCfg()
	srv := &http.Server{
		Addr:         httpCfg.Address(),
		Handler:      sp.Router(ctx),
		ReadTimeout:  httpCfg.ReadTimeout(),
		WriteTimeout: httpCfg.WriteTimeout(),
		ErrorLog:     zap.NewStdLog(lg.Named("http")),
	}
	g.Go(func() error {
		lg.Info("starting server", zap.String("addr", srv.Addr), zap.Bool("postgres", sp.usePG()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout())
		defer cancel()
		hub.Close()

		var cronErr error
		select {
		case <-c.Stop().Done():
		case <-shutdownCtx.Done():
			cronErr = fmt.Errorf("cron jobs still running: %w", shutdownCtx.Err())
		}
		return multierr.Combine(srv.Shutdown(shutdownCtx), cronErr)
	})

	err = g.Wait()
	sp.Close()
	lg.Info("server stopped", zap.Error(err))
	return err
}

// Must - runs the app and exits on error
func Must(a *App) {
	if err := a.Run(); err != nil {
		log.Fatalf("app: %v", err)
	}
}
