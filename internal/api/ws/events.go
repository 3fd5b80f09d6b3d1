package ws

import (
	"crash_backend/internal/event"
	"crash_backend/internal/protocol"
)

// Attach subscribes the hub to engine events. Handlers run on the engine
// goroutine and must not call back into the engine.
func (h *Hub) Attach(bus *event.Bus) {
	event.Subscribe(bus, event.WagerStarted, func(e event.Wager) {
		h.mu.Lock()
		h.roundID = e.RoundID
		h.mu.Unlock()
		h.broadcast(protocol.WagerStart, protocol.WagerStartData{RoundID: e.RoundID, Countdown: e.Countdown})
	}, h)
	event.Subscribe(bus, event.RoundStarted, func(e event.Start) {
		h.broadcast(protocol.GameStart, protocol.GameStartData{RoundID: e.RoundID})
	}, h)
	event.Subscribe(bus, event.MultiplierUpdated, func(e event.Multiplier) {
		h.broadcast(protocol.MultipleUpdate, protocol.MultipleUpdateData{
			RoundID:  e.RoundID,
			Multiple: e.Multiplier,
			Elapsed:  e.Elapsed,
		})
	}, h)
	event.Subscribe(bus, event.RoundCrashed, func(e event.Crash) {
		h.broadcast(protocol.GameCrash, protocol.GameCrashData{RoundID: e.RoundID, CrashPoint: e.CrashPoint})
	}, h)
	event.Subscribe(bus, event.PlayersChanged, h.onPlayers, h)
	event.Subscribe(bus, event.RoundSettled, h.onSettled, h)
	event.Subscribe(bus, event.CashedOut, h.onCashedOut, h)
}

// Detach removes the hub's subscriptions.
func (h *Hub) Detach(bus *event.Bus) {
	bus.OffOwner(h)
}

func (h *Hub) onPlayers(e event.Players) {
	h.mu.Lock()
	entries := make([]protocol.PlayerEntry, 0, len(e.Bets))
	for _, b := range e.Bets {
		entries = append(entries, protocol.PlayerEntry{
			ID:              b.PlayerID,
			Username:        h.names[b.PlayerID],
			BetAmount:       b.Amount,
			TakeoutMultiple: b.CashoutMultiplier,
			WinAmount:       b.Winnings,
		})
	}
	h.mu.Unlock()

	h.broadcast(protocol.PlayerList, protocol.PlayerListData{RoundID: e.RoundID, Players: entries})
}

// onSettled sends every client the settle frame, with its own result when it played.
func (h *Hub) onSettled(e event.Settle) {
	countdown := h.game.Config().DeadDuration().Seconds()
	results := make(map[string]*protocol.UserResult, len(e.Result.Players))
	for _, p := range e.Result.Players {
		results[p.PlayerID] = protocol.FromSummary(p)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		msg, err := encode(protocol.GameSettle, 0, protocol.GameSettleData{
			RoundID:    e.Result.RoundID,
			CrashPoint: e.Result.CrashPoint,
			Countdown:  countdown,
			UserResult: results[c.playerID],
		})
		if err != nil {
			continue
		}
		c.push(msg)
	}
}

// onCashedOut pushes auto cashouts to their owner. Manual ones are answered
// by the takeout reply.
func (h *Hub) onCashedOut(e event.Cashout) {
	if !e.Cashout.Auto {
		return
	}
	h.mu.Lock()
	roundID := h.roundID
	h.mu.Unlock()

	h.sendTo(e.Owner, protocol.TakeoutResult, protocol.TakeoutResultData{
		Result:     protocol.Result{Success: true},
		RoundID:    roundID,
		Multiple:   e.Cashout.Multiplier,
		WinAmount:  e.Cashout.Winnings,
		Balance:    e.Balance,
		Auto:       true,
		BetIndices: []int{e.Cashout.Index},
	})
}
