package ws

import (
	"context"
	"crash_backend/internal/config"
	"crash_backend/internal/config/env"
	"crash_backend/internal/event"
	"crash_backend/internal/model"
	"crash_backend/internal/protocol"
	"crash_backend/internal/repository/memory_repo"
	"crash_backend/internal/service/auth"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type jwtConfig struct{}

func (jwtConfig) AccessTokenSecretKey() []byte       { return []byte("hub-secret") }
func (jwtConfig) AccessTokenDuration() time.Duration { return time.Hour }

// fakeGame records calls and answers with canned values.
type fakeGame struct {
	mu      sync.Mutex
	bus     *event.Bus
	joined  map[string]int64
	left    []string
	state   model.GameState
	takeout *model.TakeoutReceipt
}

func newFakeGame() *fakeGame {
	return &fakeGame{
		bus:    event.NewBus(nil),
		joined: make(map[string]int64),
		state:  model.GameState{Phase: model.PhaseWager, RoundID: "round-1", Countdown: 7},
	}
}

func (g *fakeGame) Join(_ context.Context, id string, balance int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.joined[id] = balance
	return balance, nil
}

func (g *fakeGame) Leave(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.left = append(g.left, id)
	return nil
}

func (g *fakeGame) PlaceBet(_ context.Context, id string, amount int64, autoCashout float64) (model.BetReceipt, error) {
	if amount < 10 {
		return model.BetReceipt{}, model.ErrOutOfRange
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.joined[id] -= amount
	return model.BetReceipt{
		RoundID: g.state.RoundID,
		Bet:     model.Bet{Amount: amount, AutoCashout: autoCashout},
		Balance: g.joined[id],
	}, nil
}

func (g *fakeGame) CashoutSingle(context.Context, string, int) (model.Cashout, int64, error) {
	return model.Cashout{}, 0, model.ErrInvalidPhase
}

func (g *fakeGame) Takeout(context.Context, string) (model.TakeoutReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.takeout == nil {
		return model.TakeoutReceipt{}, model.ErrInvalidPhase
	}
	return *g.takeout, nil
}

func (g *fakeGame) RepeatLastBets(context.Context, string) ([]model.Bet, int64, error) {
	return nil, 0, model.ErrNothingToRepeat
}

func (g *fakeGame) Snapshot(context.Context) (model.GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, nil
}

func (g *fakeGame) Bets(context.Context, string) ([]model.Bet, error) { return nil, nil }

func (g *fakeGame) Balance(_ context.Context, id string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.joined[id], nil
}

func (g *fakeGame) History(context.Context, int) ([]model.HistoryRecord, error) {
	return []model.HistoryRecord{{RoundID: "round-0", CrashPoint: 1.87, Timestamp: time.Now()}}, nil
}

func (g *fakeGame) Players(context.Context) ([]model.PlayerBet, error) { return nil, nil }

func (g *fakeGame) Highest(context.Context) (float64, float64, error) { return 0, 0, nil }

func (g *fakeGame) Config() config.GameConfig { return env.DefaultGameConfig() }

func (g *fakeGame) Bus() *event.Bus { return g.bus }

func (g *fakeGame) leftPlayers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.left...)
}

type fixture struct {
	t     *testing.T
	game  *fakeGame
	hub   *Hub
	srv   *httptest.Server
	token string
	user  model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memory_repo.NewUserRepository()
	authServ := auth.NewService(memory_repo.NewTxManager(), users, jwtConfig{}, 5000, nil)
	data, err := authServ.Guest(context.Background(), "alice")
	if err != nil {
		t.Fatalf("guest: %v", err)
	}

	game := newFakeGame()
	hub := NewHub(HubDeps{Game: game, Auth: authServ, Users: users})
	hub.Attach(game.bus)

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	return &fixture{t: t, game: game, hub: hub, srv: srv, token: data.AccessToken, user: data.User}
}

type peer struct {
	t    *testing.T
	conn *websocket.Conn
}

func (f *fixture) dial() *peer {
	f.t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		f.t.Fatalf("dial: %v", err)
	}
	f.t.Cleanup(func() { conn.Close() })
	return &peer{t: f.t, conn: conn}
}

func (p *peer) send(t protocol.Type, seq uint64, data any) {
	p.t.Helper()
	env, err := protocol.New(t, seq, data)
	if err != nil {
		p.t.Fatalf("new envelope: %v", err)
	}
	raw, _ := protocol.Encode(env)
	if err := p.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		p.t.Fatalf("write: %v", err)
	}
}

// expect reads frames until one of type t arrives.
func (p *peer) expect(t protocol.Type) protocol.Envelope {
	p.t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, raw, err := p.conn.ReadMessage()
		if err != nil {
			p.t.Fatalf("waiting for %s: %v", t, err)
		}
		env, err := protocol.Decode(raw)
		if err != nil {
			p.t.Fatalf("decode %s: %v", raw, err)
		}
		if env.Type == t {
			return env
		}
	}
}

func bind[T any](t *testing.T, env protocol.Envelope) T {
	t.Helper()
	v, err := protocol.Bind[T](env)
	if err != nil {
		t.Fatalf("bind %s: %v", env.Type, err)
	}
	return v
}

func (p *peer) auth(token string) {
	p.t.Helper()
	p.send(protocol.Auth, 1, protocol.AuthData{Token: token})
	res := bind[protocol.AuthResultData](p.t, p.expect(protocol.AuthResult))
	if !res.Success {
		p.t.Fatalf("auth failed: %s", res.Error)
	}
}

func TestAuthSendsInitialState(t *testing.T) {
	f := newFixture(t)
	p := f.dial()

	p.send(protocol.Auth, 7, protocol.AuthData{Token: f.token})
	env := p.expect(protocol.AuthResult)
	if env.Seq != 7 {
		t.Fatalf("auth_result must echo seq 7, got %d", env.Seq)
	}
	if res := bind[protocol.AuthResultData](t, env); !res.Success {
		t.Fatalf("auth rejected: %s", res.Error)
	}

	info := bind[protocol.UserInfoData](t, p.expect(protocol.UserInfo))
	if info.UserID != f.user.ID || info.Username != "alice" || info.Balance != 5000 {
		t.Fatalf("unexpected user info %+v", info)
	}
	history := bind[protocol.HistoryData](t, p.expect(protocol.History))
	if len(history.Records) != 1 || history.Records[0].CrashPoint != 1.87 {
		t.Fatalf("unexpected history %+v", history)
	}
	state := bind[protocol.GameStateData](t, p.expect(protocol.GameState))
	if state.State != model.PhaseWager || state.RoundID != "round-1" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	f := newFixture(t)
	p := f.dial()

	p.send(protocol.Auth, 1, protocol.AuthData{Token: "garbage"})
	res := bind[protocol.AuthResultData](t, p.expect(protocol.AuthResult))
	if res.Success || res.Error == "" {
		t.Fatalf("expected rejection, got %+v", res)
	}
}

func TestBetRequiresAuth(t *testing.T) {
	f := newFixture(t)
	p := f.dial()

	p.send(protocol.BetRequest, 3, protocol.BetRequestData{Amount: 100})
	env := p.expect(protocol.BetResult)
	res := bind[protocol.BetResultData](t, env)
	if env.Seq != 3 || res.Success || res.Error != errNotAuthenticated.Error() {
		t.Fatalf("unexpected reply seq=%d %+v", env.Seq, res)
	}
}

func TestBetAndValidationReplies(t *testing.T) {
	f := newFixture(t)
	p := f.dial()
	p.auth(f.token)

	p.send(protocol.BetRequest, 2, protocol.BetRequestData{RoundID: "round-1", Amount: 100, AutoTakeout: 2})
	env := p.expect(protocol.BetResult)
	res := bind[protocol.BetResultData](t, env)
	if env.Seq != 2 || !res.Success || res.Balance != 4900 || res.AutoTakeout != 2 {
		t.Fatalf("unexpected bet reply seq=%d %+v", env.Seq, res)
	}

	p.send(protocol.BetRequest, 3, protocol.BetRequestData{Amount: 1})
	res = bind[protocol.BetResultData](t, p.expect(protocol.BetResult))
	if res.Success || res.Error != model.ErrOutOfRange.Error() {
		t.Fatalf("expected out of range, got %+v", res)
	}

	p.send(protocol.BetRequest, 4, protocol.BetRequestData{RoundID: "old-round", Amount: 100})
	res = bind[protocol.BetResultData](t, p.expect(protocol.BetResult))
	if res.Success || res.Error != errRoundMismatch.Error() {
		t.Fatalf("expected round mismatch, got %+v", res)
	}

	p.send(protocol.TakeoutRequest, 5, protocol.TakeoutRequestData{})
	out := bind[protocol.TakeoutResultData](t, p.expect(protocol.TakeoutResult))
	if out.Success || out.Error != model.ErrInvalidPhase.Error() {
		t.Fatalf("expected invalid phase, got %+v", out)
	}
}

func TestTakeoutReplyNamesCashedBets(t *testing.T) {
	f := newFixture(t)
	f.game.mu.Lock()
	f.game.takeout = &model.TakeoutReceipt{
		RoundID:    "round-1",
		Multiplier: 2,
		WinAmount:  380,
		Balance:    5280,
		Cashouts: []model.Cashout{
			{Index: 0, Multiplier: 2, Winnings: 190},
			{Index: 2, Multiplier: 2, Winnings: 190},
		},
	}
	f.game.mu.Unlock()

	p := f.dial()
	p.auth(f.token)

	p.send(protocol.TakeoutRequest, 6, protocol.TakeoutRequestData{RoundID: "round-1"})
	env := p.expect(protocol.TakeoutResult)
	out := bind[protocol.TakeoutResultData](t, env)
	if env.Seq != 6 || !out.Success || out.WinAmount != 380 || out.Auto {
		t.Fatalf("unexpected takeout reply seq=%d %+v", env.Seq, out)
	}
	if len(out.BetIndices) != 2 || out.BetIndices[0] != 0 || out.BetIndices[1] != 2 {
		t.Fatalf("unexpected bet indices %v", out.BetIndices)
	}
}

func TestHeartbeatEcho(t *testing.T) {
	f := newFixture(t)
	p := f.dial()

	p.send(protocol.Heartbeat, 42, nil)
	if env := p.expect(protocol.Heartbeat); env.Seq != 42 {
		t.Fatalf("heartbeat seq %d, want 42", env.Seq)
	}
}

func TestBroadcastsAndPersonalSettle(t *testing.T) {
	f := newFixture(t)
	player := f.dial()
	player.auth(f.token)
	watcher := f.dial()
	watcher.send(protocol.Heartbeat, 1, nil)
	watcher.expect(protocol.Heartbeat)

	f.game.bus.Emit(event.WagerStarted, event.Wager{RoundID: "round-2", Countdown: 10})
	for _, p := range []*peer{player, watcher} {
		if d := bind[protocol.WagerStartData](t, p.expect(protocol.WagerStart)); d.RoundID != "round-2" {
			t.Fatalf("unexpected wager_start %+v", d)
		}
	}

	f.game.bus.Emit(event.PlayersChanged, event.Players{RoundID: "round-2", Bets: []model.PlayerBet{{PlayerID: f.user.ID, Amount: 100}}})
	list := bind[protocol.PlayerListData](t, watcher.expect(protocol.PlayerList))
	if len(list.Players) != 1 || list.Players[0].Username != "alice" {
		t.Fatalf("unexpected player list %+v", list)
	}

	f.game.bus.Emit(event.CashedOut, event.Cashout{
		Owner:   f.user.ID,
		Cashout: model.Cashout{Index: 1, Multiplier: 1.5, Winnings: 142, Auto: true},
		Balance: 5042,
	})
	auto := bind[protocol.TakeoutResultData](t, player.expect(protocol.TakeoutResult))
	if !auto.Auto || auto.RoundID != "round-2" || auto.Balance != 5042 || len(auto.BetIndices) != 1 || auto.BetIndices[0] != 1 {
		t.Fatalf("unexpected auto takeout %+v", auto)
	}

	f.game.bus.Emit(event.RoundSettled, event.Settle{Result: model.RoundResult{
		RoundID:    "round-2",
		CrashPoint: 3,
		Players: []model.PlayerSummary{{
			PlayerID: f.user.ID,
			Balance:  5042,
			RoundSummary: model.RoundSummary{
				TotalBet: 100,
				TotalWin: 142,
				Bets:     []model.Bet{{Amount: 100, CashedOut: true, CashoutMultiplier: 1.5, Winnings: 142}},
			},
		}},
	}})

	mine := bind[protocol.GameSettleData](t, player.expect(protocol.GameSettle))
	if mine.UserResult == nil || mine.UserResult.WinAmount != 142 || *mine.UserResult.TakeoutMultiple != 1.5 {
		t.Fatalf("unexpected personal settle %+v", mine)
	}
	theirs := bind[protocol.GameSettleData](t, watcher.expect(protocol.GameSettle))
	if theirs.UserResult != nil || theirs.CrashPoint != 3 {
		t.Fatalf("watcher got a user result: %+v", theirs)
	}
}

func TestDisconnectLeavesEngine(t *testing.T) {
	f := newFixture(t)
	p := f.dial()
	p.auth(f.token)

	p.conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for len(f.game.leftPlayers()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("player never left the engine")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if left := f.game.leftPlayers(); left[0] != f.user.ID {
		t.Fatalf("unexpected leave %v", left)
	}
	if f.hub.Clients() != 0 {
		t.Fatalf("client not unregistered")
	}
}
