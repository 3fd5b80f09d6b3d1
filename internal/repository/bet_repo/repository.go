package bet_repo

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table                = "bets"
	colRoundID           = "round_id"
	colUserID            = "user_id"
	colBetIndex          = "bet_index"
	colAmount            = "amount"
	colAutoCashout       = "auto_cashout"
	colCashedOut         = "cashed_out"
	colCashoutMultiplier = "cashout_multiplier"
	colWinnings          = "winnings"
	colProfit            = "profit"
	colPlacedAt          = "placed_at"
)

type repo struct {
	dbc *pgxpool.Pool
}

func NewBetRepository(dbc *pgxpool.Pool) repository.BetRepository {
	return &repo{
		dbc: dbc,
	}
}

// SaveBets - stores the settled bets of one player in one round
func (r *repo) SaveBets(ctx context.Context, roundID, userID string, bets []model.Bet) error {
	if len(bets) == 0 {
		return nil
	}

	query := sq.Insert(table).
		Columns(colRoundID, colUserID, colBetIndex, colAmount, colAutoCashout,
			colCashedOut, colCashoutMultiplier, colWinnings, colProfit, colPlacedAt).
		PlaceholderFormat(sq.Dollar)
	for i, b := range bets {
		query = query.Values(roundID, userID, i, b.Amount, b.AutoCashout,
			b.CashedOut, b.CashoutMultiplier, b.Winnings, b.Profit, b.PlacedAt)
	}
	query = query.Suffix("ON CONFLICT (" + colRoundID + ", " + colUserID + ", " + colBetIndex + ") DO NOTHING")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}
