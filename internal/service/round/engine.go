package round

import (
	"context"
	"crash_backend/internal/clock"
	"crash_backend/internal/config"
	"crash_backend/internal/event"
	"crash_backend/internal/logger"
	"crash_backend/internal/model"
	"crash_backend/internal/service/autocashout"
	"crash_backend/internal/service/ledger"
	"crash_backend/internal/service/multiplier"
	"errors"
	"time"

	"go.uber.org/zap"
)

var ErrEngineStopped = errors.New("round engine stopped")

// CrashSource - where hidden crash points come from
type CrashSource interface {
	Draw() float64
}

// Engine - authoritative round loop. Every field below is owned by the Run
// goroutine; public methods hand closures to it through cmds.
type Engine struct {
	log     *zap.Logger
	cfg     config.GameConfig
	bus     *event.Bus
	clk     clock.Clock
	crash   CrashSource
	policy  autocashout.Policy
	limits  ledger.Limits
	machine *Machine
	mult    *multiplier.Engine

	cmds    chan func()
	stopped chan struct{}

	round     model.Round
	countdown float64
	idleLeft  float64
	lastTick  time.Time

	ledgers  map[string]*ledger.Ledger
	order    []string
	departed map[string]struct{}

	history        []model.HistoryRecord
	todayHighest   float64
	allTimeHighest float64
}

func NewEngine(cfg config.GameConfig, bus *event.Bus, clk clock.Clock, crash CrashSource, log *zap.Logger) *Engine {
	if clk == nil {
		clk = clock.Real{}
	}
	if bus == nil {
		bus = event.NewBus(log)
	}

	e := &Engine{
		log:      logger.OrNop(log).Named("round"),
		cfg:      cfg,
		bus:      bus,
		clk:      clk,
		crash:    crash,
		limits:   ledger.LimitsFrom(cfg),
		mult:     multiplier.New(cfg.GrowthRate(), cfg.MaxMultiplier()),
		cmds:     make(chan func()),
		stopped:  make(chan struct{}),
		ledgers:  make(map[string]*ledger.Ledger),
		departed: make(map[string]struct{}),
	}

	e.machine = NewMachine(e.log)
	e.machine.Register(model.PhaseIdle, Handlers{OnEnter: e.enterIdle, OnUpdate: e.updateIdle})
	e.machine.Register(model.PhaseWager, Handlers{OnEnter: e.enterWager, OnUpdate: e.updateWager})
	e.machine.Register(model.PhaseRunning, Handlers{OnEnter: e.enterRunning, OnUpdate: e.updateRunning})
	e.machine.Register(model.PhaseCrashed, Handlers{OnEnter: e.enterCrashed, OnUpdate: e.updateCrashed})
	e.machine.Register(model.PhaseSettle, Handlers{OnEnter: e.enterSettle, OnUpdate: e.updateSettle})
	e.machine.OnChange(func(from, to model.Phase) {
		e.round.Phase = to
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

// Run drives the round cycle until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticks, stop := e.clk.Tick(e.cfg.TickInterval())
	defer stop()
	defer close(e.stopped)

	e.lastTick = e.clk.Now()
	e.log.Info("round loop started", zap.Duration("tick", e.cfg.TickInterval()))

	for {
		select {
		case <-ctx.Done():
			e.log.Info("round loop stopped")
			return nil
		case fn := <-e.cmds:
			fn()
		case now := <-ticks:
			dt := now.Sub(e.lastTick).Seconds()
			e.lastTick = now
			if dt > 0 {
				e.machine.Update(dt)
			}
		}
	}
}

// do runs fn on the loop goroutine and waits for it.
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

// roundView exposes the loop's phase and multiplier to ledgers.
type roundView struct {
	e *Engine
}

func (v roundView) Phase() model.Phase {
	return v.e.machine.Current()
}

func (v roundView) Multiplier() float64 {
	return v.e.mult.Current()
}

func (e *Engine) each(fn func(id string, l *ledger.Ledger)) {
	for _, id := range e.order {
		fn(id, e.ledgers[id])
	}
}

func (e *Engine) remove(id string) {
	delete(e.ledgers, id)
	delete(e.departed, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

func (e *Engine) active(id string) (*ledger.Ledger, error) {
	l, ok := e.ledgers[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	if _, gone := e.departed[id]; gone {
		return nil, model.ErrPlayerNotFound
	}
	return l, nil
}

func (e *Engine) playerBets() []model.PlayerBet {
	out := make([]model.PlayerBet, 0)
	e.each(func(id string, l *ledger.Ledger) {
		for _, b := range l.Bets() {
			out = append(out, model.PlayerBet{
				PlayerID:          id,
				Amount:            b.Amount,
				CashedOut:         b.CashedOut,
				CashoutMultiplier: b.CashoutMultiplier,
				Winnings:          b.Winnings,
			})
		}
	})
	return out
}

func (e *Engine) emitPlayers() {
	e.bus.Emit(event.PlayersChanged, event.Players{RoundID: e.round.ID, Bets: e.playerBets()})
}
