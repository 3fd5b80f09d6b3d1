package remote

import (
	"context"
	"crash_backend/internal/clock"
	"crash_backend/internal/config"
	"crash_backend/internal/config/env"
	"crash_backend/internal/event"
	"crash_backend/internal/model"
	"crash_backend/internal/protocol"
	"errors"
	"sync"
	"testing"
	"time"
)

type testConfig struct {
	config.GameConfig
}

func (testConfig) DeadDuration() time.Duration { return 500 * time.Millisecond }
func (testConfig) TickInterval() time.Duration { return 100 * time.Millisecond }

type fakeTransport struct {
	in chan protocol.Envelope

	mu       sync.Mutex
	requests []protocol.Envelope
	reply    func(req protocol.Envelope) (protocol.Envelope, error)
}

func (f *fakeTransport) Connect(context.Context, string, string) error { return nil }
func (f *fakeTransport) Disconnect()                                   {}
func (f *fakeTransport) IsReady() bool                                 { return true }
func (f *fakeTransport) Incoming() <-chan protocol.Envelope            { return f.in }

func (f *fakeTransport) Request(_ context.Context, typ protocol.Type, data any, _ time.Duration) (protocol.Envelope, error) {
	req, err := protocol.New(typ, 1, data)
	if err != nil {
		return protocol.Envelope{}, err
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	reply := f.reply
	f.mu.Unlock()
	return reply(req)
}

func (f *fakeTransport) sent() []protocol.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]protocol.Envelope(nil), f.requests...)
}

type harness struct {
	t   *testing.T
	ctx context.Context
	tr  *fakeTransport
	clk *clock.Manual
	e   *Engine
}

func start(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	tr := &fakeTransport{in: make(chan protocol.Envelope)}
	clk := clock.NewManual(time.Now())
	e := New(testConfig{env.DefaultGameConfig()}, tr, nil, clk, nil)
	go e.Run(ctx)

	h := &harness{t: t, ctx: ctx, tr: tr, clk: clk, e: e}
	h.state()
	return h
}

// push hands a message to the loop; it is applied before any later command.
func (h *harness) push(typ protocol.Type, data any) {
	h.t.Helper()
	env, err := protocol.New(typ, 0, data)
	if err != nil {
		h.t.Fatalf("build %s: %v", typ, err)
	}
	h.tr.in <- env
}

func (h *harness) state() model.GameState {
	h.t.Helper()
	s, err := h.e.CurrentState(h.ctx)
	if err != nil {
		h.t.Fatalf("state: %v", err)
	}
	return s
}

func (h *harness) replyWith(typ protocol.Type, data any) {
	h.tr.mu.Lock()
	h.tr.reply = func(req protocol.Envelope) (protocol.Envelope, error) {
		return protocol.New(typ, req.Seq, data)
	}
	h.tr.mu.Unlock()
}

func (h *harness) wagerWithBalance(balance int64) {
	h.t.Helper()
	h.push(protocol.UserInfo, protocol.UserInfoData{UserID: "u1", Username: "guest", Balance: balance})
	h.push(protocol.WagerStart, protocol.WagerStartData{RoundID: "r1", Countdown: 10})
}

func TestPlaceBetMirrorsServerBalance(t *testing.T) {
	h := start(t)
	h.wagerWithBalance(1000)

	h.replyWith(protocol.BetResult, protocol.BetResultData{
		Result:    protocol.Result{Success: true},
		RoundID:   "r1",
		BetAmount: 100,
		Balance:   895,
	})

	receipt, err := h.e.PlaceBet(h.ctx, 100, 2.0)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if receipt.Index != 0 || receipt.Balance != 895 || receipt.RoundID != "r1" || receipt.Bet.AutoCashout != 2.0 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	sent := h.tr.sent()
	if len(sent) != 1 || sent[0].Type != protocol.BetRequest {
		t.Fatalf("unexpected requests %+v", sent)
	}
	req, _ := protocol.Bind[protocol.BetRequestData](sent[0])
	if req.RoundID != "r1" || req.Amount != 100 || req.AutoTakeout != 2.0 {
		t.Fatalf("unexpected bet request %+v", req)
	}

	recent, _ := h.e.RecentAutoCashouts(h.ctx)
	if len(recent) != 1 || recent[0] != 2.0 {
		t.Fatalf("auto target not remembered: %v", recent)
	}
}

func TestPlaceBetValidatesBeforeSending(t *testing.T) {
	h := start(t)

	if _, err := h.e.PlaceBet(h.ctx, 100, 0); !errors.Is(err, model.ErrInvalidPhase) {
		t.Fatalf("idle bet: expected ErrInvalidPhase, got %v", err)
	}

	h.wagerWithBalance(50)
	if _, err := h.e.PlaceBet(h.ctx, 100, 0); !errors.Is(err, model.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if _, err := h.e.PlaceBet(h.ctx, 20, 0.5); !errors.Is(err, model.ErrInvalidAutoCashout) {
		t.Fatalf("expected ErrInvalidAutoCashout, got %v", err)
	}
	if n := len(h.tr.sent()); n != 0 {
		t.Fatalf("invalid bets reached the server: %d", n)
	}
}

func TestPlaceBetServerRejection(t *testing.T) {
	h := start(t)
	h.wagerWithBalance(1000)

	rejected := errors.New("round closed")
	h.tr.reply = func(protocol.Envelope) (protocol.Envelope, error) { return protocol.Envelope{}, rejected }

	if _, err := h.e.PlaceBet(h.ctx, 100, 0); !errors.Is(err, rejected) {
		t.Fatalf("expected server error, got %v", err)
	}
	bets, _ := h.e.Bets(h.ctx)
	balance, _ := h.e.Balance(h.ctx)
	if len(bets) != 0 || balance != 1000 {
		t.Fatalf("rejected bet was mirrored: %+v balance %d", bets, balance)
	}
}

func TestRoundFollowsServer(t *testing.T) {
	h := start(t)

	var (
		mu     sync.Mutex
		phases []model.Phase
	)
	event.Subscribe(h.e.Bus(), event.PhaseChanged, func(c event.PhaseChange) {
		mu.Lock()
		phases = append(phases, c.To)
		mu.Unlock()
	}, nil)

	h.wagerWithBalance(1000)
	h.replyWith(protocol.BetResult, protocol.BetResultData{Result: protocol.Result{Success: true}, RoundID: "r1", Balance: 900})
	if _, err := h.e.PlaceBet(h.ctx, 100, 0); err != nil {
		t.Fatalf("bet: %v", err)
	}

	h.push(protocol.GameStart, protocol.GameStartData{RoundID: "r1"})
	h.push(protocol.MultipleUpdate, protocol.MultipleUpdateData{RoundID: "r1", Multiple: 1.5, Elapsed: 6.8})
	h.push(protocol.MultipleUpdate, protocol.MultipleUpdateData{RoundID: "r1", Multiple: 1.4, Elapsed: 5.6})

	s := h.state()
	if s.Phase != model.PhaseRunning || s.Multiplier != 1.5 || s.CrashPoint != 0 {
		t.Fatalf("unexpected running state %+v", s)
	}

	h.push(protocol.GameCrash, protocol.GameCrashData{RoundID: "r1", CrashPoint: 1.73})
	s = h.state()
	if s.Phase != model.PhaseCrashed || s.CrashPoint != 1.73 || s.Multiplier != 1.73 {
		t.Fatalf("unexpected crashed state %+v", s)
	}
	bets, _ := h.e.Bets(h.ctx)
	if len(bets) != 1 || bets[0].Profit != -100 {
		t.Fatalf("open bet not settled as loss: %+v", bets)
	}

	h.push(protocol.GameSettle, protocol.GameSettleData{
		RoundID:    "r1",
		CrashPoint: 1.73,
		UserResult: &protocol.UserResult{BetAmount: 100, Balance: 900},
	})
	if s := h.state(); s.Phase != model.PhaseSettle {
		t.Fatalf("expected settle, got %v", s.Phase)
	}
	hist, _ := h.e.History(h.ctx)
	if len(hist) != 1 || hist[0].CrashPoint != 1.73 {
		t.Fatalf("history not recorded: %+v", hist)
	}

	for i := 0; i < 6; i++ {
		h.clk.Advance(100 * time.Millisecond)
	}
	if s := h.state(); s.Phase != model.PhaseIdle {
		t.Fatalf("settle countdown did not return to idle: %v", s.Phase)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []model.Phase{model.PhaseWager, model.PhaseRunning, model.PhaseCrashed, model.PhaseSettle, model.PhaseIdle}
	if len(phases) != len(want) {
		t.Fatalf("unexpected phases %v", phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phase %d: want %v, got %v", i, want[i], phases[i])
		}
	}
}

func TestTakeout(t *testing.T) {
	h := start(t)
	h.wagerWithBalance(1000)
	h.replyWith(protocol.BetResult, protocol.BetResultData{Result: protocol.Result{Success: true}, RoundID: "r1", Balance: 900})
	h.e.PlaceBet(h.ctx, 100, 0)

	if _, err := h.e.Takeout(h.ctx); !errors.Is(err, model.ErrInvalidPhase) {
		t.Fatalf("takeout in wager: expected ErrInvalidPhase, got %v", err)
	}

	h.push(protocol.GameStart, protocol.GameStartData{RoundID: "r1"})
	h.replyWith(protocol.TakeoutResult, protocol.TakeoutResultData{
		Result:    protocol.Result{Success: true},
		RoundID:   "r1",
		Multiple:  1.5,
		WinAmount: 142,
		Balance:   1042,
	})

	receipt, err := h.e.Takeout(h.ctx)
	if err != nil {
		t.Fatalf("takeout: %v", err)
	}
	if receipt.WinAmount != 142 || receipt.Balance != 1042 || len(receipt.Cashouts) != 1 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if _, err := h.e.Takeout(h.ctx); !errors.Is(err, model.ErrNothingToCashout) {
		t.Fatalf("second takeout: expected ErrNothingToCashout, got %v", err)
	}
}

func TestServerAutoCashout(t *testing.T) {
	h := start(t)
	h.wagerWithBalance(1000)
	h.replyWith(protocol.BetResult, protocol.BetResultData{Result: protocol.Result{Success: true}, RoundID: "r1", Balance: 900})
	h.e.PlaceBet(h.ctx, 100, 1.5)
	h.replyWith(protocol.BetResult, protocol.BetResultData{Result: protocol.Result{Success: true}, RoundID: "r1", Balance: 800})
	h.e.PlaceBet(h.ctx, 100, 3.0)

	h.push(protocol.GameStart, protocol.GameStartData{RoundID: "r1"})
	h.push(protocol.TakeoutResult, protocol.TakeoutResultData{
		Result:    protocol.Result{Success: true},
		RoundID:   "r1",
		Multiple:  1.52,
		WinAmount: 144,
		Balance:   944,
		Auto:      true,
	})

	bets, _ := h.e.Bets(h.ctx)
	if !bets[0].CashedOut || bets[0].CashoutMultiplier != 1.52 {
		t.Fatalf("auto bet not mirrored: %+v", bets[0])
	}
	if bets[1].CashedOut {
		t.Fatalf("bet with higher target cashed out: %+v", bets[1])
	}
	if b, _ := h.e.Balance(h.ctx); b != 944 {
		t.Fatalf("server balance not adopted: %d", b)
	}
}

func TestGameStateResync(t *testing.T) {
	h := start(t)
	h.push(protocol.GameState, protocol.GameStateData{State: model.PhaseRunning, RoundID: "r9", Multiple: 2.37, Elapsed: 14.4})

	s := h.state()
	if s.Phase != model.PhaseRunning || s.RoundID != "r9" || s.Multiplier != 2.37 {
		t.Fatalf("resync failed: %+v", s)
	}

	h.push(protocol.GameState, protocol.GameStateData{State: model.PhaseSettle, RoundID: "r9", CrashPoint: 3.1, Countdown: 4})
	s = h.state()
	if s.Phase != model.PhaseSettle || s.CrashPoint != 3.1 {
		t.Fatalf("resync to settle failed: %+v", s)
	}
}

func TestHistoryAndPlayersPushes(t *testing.T) {
	h := start(t)

	players := make(chan event.Players, 1)
	event.Subscribe(h.e.Bus(), event.PlayersChanged, func(p event.Players) { players <- p }, nil)

	h.push(protocol.History, protocol.HistoryData{Records: []protocol.HistoryRecord{
		{RoundID: "b", CrashPoint: 1.2, Timestamp: 2000},
		{RoundID: "a", CrashPoint: 4.5, Timestamp: 1000},
	}})
	hist, _ := h.e.History(h.ctx)
	if len(hist) != 2 || hist[0].RoundID != "b" || hist[1].Timestamp.UnixMilli() != 1000 {
		t.Fatalf("unexpected history %+v", hist)
	}

	h.push(protocol.PlayerList, protocol.PlayerListData{Players: []protocol.PlayerEntry{
		{ID: "p1", BetAmount: 100, TakeoutMultiple: 1.8},
		{ID: "p2", BetAmount: 50},
	}})
	p := <-players
	if len(p.Bets) != 2 || !p.Bets[0].CashedOut || p.Bets[1].CashedOut {
		t.Fatalf("unexpected players %+v", p)
	}
}

func TestTakeoutLeavesQueuedAutoCashout(t *testing.T) {
	h := start(t)
	h.wagerWithBalance(1000)
	h.replyWith(protocol.BetResult, protocol.BetResultData{Result: protocol.Result{Success: true}, RoundID: "r1", Balance: 900})
	h.e.PlaceBet(h.ctx, 100, 1.5)
	h.replyWith(protocol.BetResult, protocol.BetResultData{Result: protocol.Result{Success: true}, RoundID: "r1", Balance: 800})
	h.e.PlaceBet(h.ctx, 100, 0)

	h.push(protocol.GameStart, protocol.GameStartData{RoundID: "r1"})

	// the server already auto cashed bet 0; its push is applied after the reply
	h.replyWith(protocol.TakeoutResult, protocol.TakeoutResultData{
		Result:     protocol.Result{Success: true},
		RoundID:    "r1",
		Multiple:   2.0,
		WinAmount:  190,
		Balance:    1132,
		BetIndices: []int{1},
	})
	receipt, err := h.e.Takeout(h.ctx)
	if err != nil {
		t.Fatalf("takeout: %v", err)
	}
	if len(receipt.Cashouts) != 1 || receipt.Cashouts[0].Index != 1 {
		t.Fatalf("takeout touched the wrong bets: %+v", receipt.Cashouts)
	}

	h.push(protocol.TakeoutResult, protocol.TakeoutResultData{
		Result:     protocol.Result{Success: true},
		RoundID:    "r1",
		Multiple:   1.52,
		WinAmount:  144,
		Balance:    1132,
		Auto:       true,
		BetIndices: []int{0},
	})

	bets, _ := h.e.Bets(h.ctx)
	if !bets[0].CashedOut || bets[0].CashoutMultiplier != 1.52 {
		t.Fatalf("auto bet mirrored at the wrong multiplier: %+v", bets[0])
	}
	if bets[1].CashoutMultiplier != 2.0 {
		t.Fatalf("manual bet mirrored at the wrong multiplier: %+v", bets[1])
	}
}

func TestLocalMultiplierPublishedEachTick(t *testing.T) {
	h := start(t)

	updates := make(chan event.Multiplier, 8)
	event.Subscribe(h.e.Bus(), event.MultiplierUpdated, func(m event.Multiplier) { updates <- m }, nil)

	h.push(protocol.GameStart, protocol.GameStartData{RoundID: "r1"})
	h.clk.Advance(100 * time.Millisecond)
	h.clk.Advance(100 * time.Millisecond)

	for i := 0; i < 2; i++ {
		select {
		case m := <-updates:
			if m.RoundID != "r1" || m.Multiplier < 1 || m.Elapsed <= 0 {
				t.Fatalf("unexpected update %+v", m)
			}
		case <-time.After(time.Second):
			t.Fatalf("tick %d published no multiplier", i)
		}
	}
}
