package ledger

import (
	"crash_backend/internal/config"
	"crash_backend/internal/event"
	"crash_backend/internal/model"
	"time"

	"github.com/shopspring/decimal"
)

// recentAutoCashoutSize - how many distinct auto cashout targets are remembered
const recentAutoCashoutSize = 4

// View - read access to the round the ledger belongs to
type View interface {
	Phase() model.Phase
	Multiplier() float64
}

// Limits - betting rules applied by the ledger
type Limits struct {
	MinBet         int64
	MaxBet         int64
	MaxBetCount    int
	FeeRate        float64
	AutoCashoutMin float64
	AutoCashoutMax float64
}

func LimitsFrom(cfg config.GameConfig) Limits {
	return Limits{
		MinBet:         cfg.MinBet(),
		MaxBet:         cfg.MaxBet(),
		MaxBetCount:    cfg.MaxBetCount(),
		FeeRate:        cfg.ServiceFeeRate(),
		AutoCashoutMin: cfg.AutoCashoutMin(),
		AutoCashoutMax: cfg.AutoCashoutMax(),
	}
}

// Ledger - one player's bets for the current round plus their balance.
// Not safe for concurrent use: the owning round loop is the only writer.
type Ledger struct {
	owner  string
	view   View
	limits Limits
	bus    *event.Bus
	now    func() time.Time

	balance       int64
	bets          []model.Bet
	lastRoundBets []model.Bet
	recentAuto    []float64
}

func New(owner string, balance int64, view View, limits Limits, bus *event.Bus) *Ledger {
	return &Ledger{
		owner:   owner,
		view:    view,
		limits:  limits,
		bus:     bus,
		now:     time.Now,
		balance: balance,
	}
}

// Winnings - floor(amount × multiplier × (1 − feeRate)), computed in decimal
func Winnings(amount int64, multiplier, feeRate float64) int64 {
	net := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(feeRate))
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(multiplier)).
		Mul(net).
		Floor().
		IntPart()
}

func (l *Ledger) Owner() string {
	return l.owner
}

func (l *Ledger) Balance() int64 {
	return l.balance
}

// SetBalance overwrites the balance with an authoritative value.
func (l *Ledger) SetBalance(balance int64) {
	if l.balance == balance {
		return
	}
	l.balance = balance
	l.emit(event.BalanceChanged, event.Balance{Owner: l.owner, Balance: balance})
}

// Bets - copy of the current round's bets
func (l *Ledger) Bets() []model.Bet {
	return append([]model.Bet(nil), l.bets...)
}

// LastRoundBets - copy of the archived bets of the previous round
func (l *Ledger) LastRoundBets() []model.Bet {
	return append([]model.Bet(nil), l.lastRoundBets...)
}

// RecentAutoCashouts - most recent first
func (l *Ledger) RecentAutoCashouts() []float64 {
	return append([]float64(nil), l.recentAuto...)
}

func (l *Ledger) ActiveBetCount() int {
	n := 0
	for _, b := range l.bets {
		if !b.CashedOut {
			n++
		}
	}
	return n
}

func (l *Ledger) TotalBetAmount() int64 {
	var total int64
	for _, b := range l.bets {
		total += b.Amount
	}
	return total
}

func (l *Ledger) TotalCashout() int64 {
	var total int64
	for _, b := range l.bets {
		total += b.Winnings
	}
	return total
}

func (l *Ledger) rememberAutoCashout(target float64) {
	recent := []float64{target}
	for _, v := range l.recentAuto {
		if v != target && len(recent) < recentAutoCashoutSize {
			recent = append(recent, v)
		}
	}
	l.recentAuto = recent
}

func (l *Ledger) emitBets() {
	l.emit(event.BetsChanged, event.Bets{Owner: l.owner, Bets: l.Bets(), Balance: l.balance})
}

func (l *Ledger) emit(topic event.Topic, payload any) {
	if l.bus != nil {
		l.bus.Emit(topic, payload)
	}
}
