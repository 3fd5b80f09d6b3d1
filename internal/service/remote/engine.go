// Package remote mirrors a round played on a server: it follows the server's
// phase pushes, interpolates the multiplier between updates and keeps a local
// ledger of the player's bets.
package remote

import (
	"context"
	"crash_backend/internal/clock"
	"crash_backend/internal/config"
	"crash_backend/internal/event"
	"crash_backend/internal/logger"
	"crash_backend/internal/model"
	"crash_backend/internal/protocol"
	"crash_backend/internal/service/ledger"
	"crash_backend/internal/service/multiplier"
	"crash_backend/internal/service/round"
	"errors"
	"time"

	"go.uber.org/zap"
)

var ErrEngineStopped = errors.New("remote engine stopped")

// Transport - the session the engine talks through
type Transport interface {
	Connect(ctx context.Context, url, token string) error
	Disconnect()
	Request(ctx context.Context, typ protocol.Type, data any, timeout time.Duration) (protocol.Envelope, error)
	Incoming() <-chan protocol.Envelope
	IsReady() bool
}

type Engine struct {
	log     *zap.Logger
	cfg     config.GameConfig
	bus     *event.Bus
	tr      Transport
	clk     clock.Clock
	machine *round.Machine
	mult    *multiplier.Engine
	ledger  *ledger.Ledger

	cmds    chan func()
	stopped chan struct{}

	roundID    string
	countdown  float64
	crashPoint float64
	lastTick   time.Time
	user       protocol.UserInfoData
	history    []model.HistoryRecord
}

func New(cfg config.GameConfig, tr Transport, bus *event.Bus, clk clock.Clock, log *zap.Logger) *Engine {
	if clk == nil {
		clk = clock.Real{}
	}
	if bus == nil {
		bus = event.NewBus(log)
	}

	e := &Engine{
		log:     logger.OrNop(log).Named("remote"),
		cfg:     cfg,
		bus:     bus,
		tr:      tr,
		clk:     clk,
		mult:    multiplier.New(cfg.GrowthRate(), cfg.MaxMultiplier()),
		cmds:    make(chan func()),
		stopped: make(chan struct{}),
	}
	e.ledger = ledger.New("", 0, view{e}, ledger.LimitsFrom(cfg), bus)

	e.machine = round.NewMachine(e.log)
	e.machine.Register(model.PhaseWager, round.Handlers{OnEnter: e.enterWager, OnUpdate: e.updateWager})
	e.machine.Register(model.PhaseRunning, round.Handlers{OnEnter: e.enterRunning, OnUpdate: e.updateRunning})
	e.machine.Register(model.PhaseCrashed, round.Handlers{OnEnter: e.enterCrashed})
	e.machine.Register(model.PhaseSettle, round.Handlers{OnEnter: e.enterSettle, OnUpdate: e.updateSettle})
	e.machine.OnChange(func(from, to model.Phase) {
		e.bus.Emit(event.PhaseChanged, event.PhaseChange{From: from, To: to})
	})
	return e
}

func (e *Engine) Bus() *event.Bus {
	return e.bus
}

func (e *Engine) Config() config.GameConfig {
	return e.cfg
}

func (e *Engine) Connect(ctx context.Context, url, token string) error {
	return e.tr.Connect(ctx, url, token)
}

func (e *Engine) Disconnect() {
	e.tr.Disconnect()
}

// Run applies server pushes and drives local countdowns until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticks, stop := e.clk.Tick(e.cfg.TickInterval())
	defer stop()
	defer close(e.stopped)

	e.lastTick = e.clk.Now()
	incoming := e.tr.Incoming()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-e.cmds:
			fn()
		case env := <-incoming:
			e.apply(env)
		case now := <-ticks:
			dt := now.Sub(e.lastTick).Seconds()
			e.lastTick = now
			if dt > 0 {
				e.machine.Update(dt)
			}
		}
	}
}

func (e *Engine) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	cmd := func() {
		defer close(done)
		fn()
	}

	select {
	case e.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrEngineStopped
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type view struct {
	e *Engine
}

func (v view) Phase() model.Phase {
	return v.e.machine.Current()
}

func (v view) Multiplier() float64 {
	return v.e.mult.Current()
}

func (e *Engine) enterWager(model.Phase) error {
	e.ledger.ResetForNewRound()
	e.mult.Reset()
	e.crashPoint = 0
	return nil
}

func (e *Engine) updateWager(dt float64) error {
	if e.countdown > 0 {
		e.countdown -= dt
		if e.countdown < 0 {
			e.countdown = 0
		}
	}
	return nil
}

func (e *Engine) enterRunning(model.Phase) error {
	e.countdown = 0
	e.mult.Start(0)
	return nil
}

// updateRunning interpolates between server updates and publishes the
// local value every tick.
func (e *Engine) updateRunning(dt float64) error {
	m := e.mult.Advance(dt)
	e.bus.Emit(event.MultiplierUpdated, event.Multiplier{
		RoundID:    e.roundID,
		Multiplier: m,
		Elapsed:    e.mult.Elapsed(),
	})
	return nil
}

func (e *Engine) enterCrashed(model.Phase) error {
	e.mult.Freeze(e.crashPoint)
	e.ledger.SettleRound(e.crashPoint)
	e.bus.Emit(event.RoundCrashed, event.Crash{RoundID: e.roundID, CrashPoint: e.crashPoint})
	return nil
}

func (e *Engine) enterSettle(model.Phase) error {
	e.countdown = e.cfg.DeadDuration().Seconds()
	return nil
}

func (e *Engine) updateSettle(dt float64) error {
	e.countdown -= dt
	if e.countdown <= 0 {
		e.countdown = 0
		e.machine.ChangeState(model.PhaseIdle)
	}
	return nil
}
