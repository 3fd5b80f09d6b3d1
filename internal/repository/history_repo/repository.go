package history_repo

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table         = "round_history"
	colRoundID    = "round_id"
	colCrashPoint = "crash_point"
	colCrashedAt  = "crashed_at"
)

type repo struct {
	dbc *pgxpool.Pool
}

func NewHistoryRepository(dbc *pgxpool.Pool) repository.HistoryRepository {
	return &repo{
		dbc: dbc,
	}
}

// Add - stores a finished round. Re-adding the same round is a no-op
func (r *repo) Add(ctx context.Context, record model.HistoryRecord) error {
	query := sq.Insert(table).
		Columns(colRoundID, colCrashPoint, colCrashedAt).
		Values(record.RoundID, record.CrashPoint, record.Timestamp).
		Suffix("ON CONFLICT (" + colRoundID + ") DO NOTHING").
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}

// List - up to limit rounds, newest first
func (r *repo) List(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	query := sq.Select(colRoundID, colCrashPoint, colCrashedAt).
		From(table).
		OrderBy(colCrashedAt + " DESC").
		PlaceholderFormat(sq.Dollar)
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, r.dbc).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.HistoryRecord, 0)
	for rows.Next() {
		var rec model.HistoryRecord
		if err := rows.Scan(&rec.RoundID, &rec.CrashPoint, &rec.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
