package ws

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/internal/protocol"
	"errors"

	"go.uber.org/zap"
)

var (
	errNotAuthenticated = errors.New("not authenticated")
	errRoundMismatch    = errors.New("round mismatch")
)

func (h *Hub) handle(ctx context.Context, c *client, env protocol.Envelope) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	switch env.Type {
	case protocol.Heartbeat:
		c.reply(h, protocol.Heartbeat, env.Seq, nil)
	case protocol.Auth:
		h.onAuth(ctx, c, env)
	case protocol.BetRequest:
		h.onBet(ctx, c, env)
	case protocol.TakeoutRequest:
		h.onTakeout(ctx, c, env)
	default:
		c.reply(h, protocol.Error, env.Seq, protocol.ErrorData{Error: "unsupported message type: " + string(env.Type)})
	}
}

func (h *Hub) onAuth(ctx context.Context, c *client, env protocol.Envelope) {
	fail := func(msg string) {
		c.reply(h, protocol.AuthResult, env.Seq, protocol.AuthResultData{Result: protocol.Result{Error: msg}})
	}

	d, err := protocol.Bind[protocol.AuthData](env)
	if err != nil {
		fail("malformed auth")
		return
	}
	claims, err := h.auth.Authenticate(d.Token)
	if err != nil {
		fail("invalid token")
		return
	}
	stored, err := h.users.GetBalance(ctx, claims.ID)
	if err != nil {
		h.log.Warn("auth: wallet lookup", zap.String("user_id", claims.ID), zap.Error(err))
		fail("unknown user")
		return
	}
	balance, err := h.game.Join(ctx, claims.ID, stored)
	if err != nil {
		h.log.Error("auth: join", zap.String("user_id", claims.ID), zap.Error(err))
		fail("join failed")
		return
	}
	h.bind(c, claims.ID, claims.Name)

	c.reply(h, protocol.AuthResult, env.Seq, protocol.AuthResultData{Result: protocol.Result{Success: true}})
	c.reply(h, protocol.UserInfo, 0, protocol.UserInfoData{
		UserID:   claims.ID,
		Username: claims.Name,
		Balance:  balance,
	})

	if records, err := h.game.History(ctx, h.game.Config().HistorySize()); err == nil {
		c.reply(h, protocol.History, 0, protocol.FromHistory(records))
	}
	if state, err := h.game.Snapshot(ctx); err == nil {
		c.reply(h, protocol.GameState, 0, protocol.FromState(state))
	}
	h.log.Info("player joined", zap.String("user_id", claims.ID), zap.Int64("balance", balance))
}

func (h *Hub) onBet(ctx context.Context, c *client, env protocol.Envelope) {
	fail := func(roundID string, err error) {
		c.reply(h, protocol.BetResult, env.Seq, protocol.BetResultData{
			Result:  protocol.Result{Error: userMessage(err)},
			RoundID: roundID,
		})
	}

	d, err := protocol.Bind[protocol.BetRequestData](env)
	if err != nil {
		fail("", err)
		return
	}
	if c.playerID == "" {
		fail(d.RoundID, errNotAuthenticated)
		return
	}
	if err := h.checkRound(ctx, d.RoundID); err != nil {
		fail(d.RoundID, err)
		return
	}

	receipt, err := h.game.PlaceBet(ctx, c.playerID, d.Amount, d.AutoTakeout)
	if err != nil {
		fail(d.RoundID, err)
		return
	}
	c.reply(h, protocol.BetResult, env.Seq, protocol.BetResultData{
		Result:      protocol.Result{Success: true},
		RoundID:     receipt.RoundID,
		BetAmount:   receipt.Bet.Amount,
		AutoTakeout: receipt.Bet.AutoCashout,
		Balance:     receipt.Balance,
	})
}

func (h *Hub) onTakeout(ctx context.Context, c *client, env protocol.Envelope) {
	fail := func(roundID string, err error) {
		c.reply(h, protocol.TakeoutResult, env.Seq, protocol.TakeoutResultData{
			Result:  protocol.Result{Error: userMessage(err)},
			RoundID: roundID,
		})
	}

	d, err := protocol.Bind[protocol.TakeoutRequestData](env)
	if err != nil {
		fail("", err)
		return
	}
	if c.playerID == "" {
		fail(d.RoundID, errNotAuthenticated)
		return
	}
	if err := h.checkRound(ctx, d.RoundID); err != nil {
		fail(d.RoundID, err)
		return
	}

	receipt, err := h.game.Takeout(ctx, c.playerID)
	if err != nil {
		fail(d.RoundID, err)
		return
	}
	indices := make([]int, 0, len(receipt.Cashouts))
	for _, co := range receipt.Cashouts {
		indices = append(indices, co.Index)
	}
	c.reply(h, protocol.TakeoutResult, env.Seq, protocol.TakeoutResultData{
		Result:     protocol.Result{Success: true},
		RoundID:    receipt.RoundID,
		Multiple:   receipt.Multiplier,
		WinAmount:  receipt.WinAmount,
		Balance:    receipt.Balance,
		BetIndices: indices,
	})
}

// checkRound rejects requests aimed at a round other than the current one.
// An empty id means the current round.
func (h *Hub) checkRound(ctx context.Context, roundID string) error {
	if roundID == "" {
		return nil
	}
	state, err := h.game.Snapshot(ctx)
	if err != nil {
		return err
	}
	if state.RoundID != roundID {
		return errRoundMismatch
	}
	return nil
}

func userMessage(err error) string {
	switch {
	case model.IsValidation(err),
		errors.Is(err, errNotAuthenticated),
		errors.Is(err, errRoundMismatch),
		errors.Is(err, model.ErrPlayerNotFound):
		return err.Error()
	default:
		return "internal error"
	}
}
