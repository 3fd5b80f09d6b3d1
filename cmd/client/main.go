package main

import (
	"context"
	"crash_backend/internal/bot"
	"crash_backend/internal/clock"
	"crash_backend/internal/config"
	"crash_backend/internal/config/env"
	"crash_backend/internal/event"
	"crash_backend/internal/logger"
	"crash_backend/internal/service/remote"
	"crash_backend/internal/transport/ws"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to the game config")
		name       = flag.String("name", "bot", "guest name when no token is configured")
		amount     = flag.Int64("bet", 100, "bet amount per round")
		auto       = flag.Float64("auto", 2.0, "auto cashout multiplier, 0 disables it")
		rounds     = flag.Int("rounds", 0, "rounds to play, 0 means until interrupted")
	)
	flag.Parse()

	if err := run(*configPath, *name, bot.Strategy{Amount: *amount, AutoCashout: *auto, Rounds: *rounds}); err != nil {
		log.Fatalf("client: %v", err)
	}
}

func run(configPath, name string, strategy bot.Strategy) error {
	_ = config.Load(".env")

	logCfg, err := env.NewLogConfig()
	if err != nil {
		return err
	}
	lg, err := logger.New(logCfg.Level(), logCfg.Format())
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	trCfg, err := env.NewTransportConfig()
	if err != nil {
		return err
	}
	gameCfg, err := env.NewGameConfigFromYAML(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token := trCfg.Token()
	if token == "" {
		token, err = bot.GuestToken(ctx, trCfg.URL(), name)
		if err != nil {
			return err
		}
		lg.Info("registered guest", zap.String("name", name))
	}

	bus := event.NewBus(lg.Named("bus"))
	tr := ws.New(ws.OptionsFrom(trCfg), bus, lg)
	engine := remote.New(gameCfg, tr, bus, clock.Real{}, lg)
	b := bot.New(engine, strategy, lg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		defer stop()
		return b.Run(gctx)
	})

	if err := engine.Connect(gctx, trCfg.URL(), token); err != nil {
		stop()
		return multierr.Append(err, g.Wait())
	}
	lg.Info("connected", zap.String("url", trCfg.URL()))

	err = g.Wait()
	engine.Disconnect()
	return err
}
