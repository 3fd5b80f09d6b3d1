package converter

import (
	authDTO "crash_backend/internal/api/dto/auth"
	"crash_backend/internal/api/dto/game"
	"crash_backend/internal/config"
	"crash_backend/internal/model"
	statsModel "crash_backend/internal/repository/stats_repo/model"

	"github.com/shopspring/decimal"
)

// streakThreshold - crash points below it count as a losing streak
const streakThreshold = 2.0

func ToConfigResponse(cfg config.GameConfig) game.ConfigResponse {
	return game.ConfigResponse{
		MinBet:         cfg.MinBet(),
		MaxBet:         cfg.MaxBet(),
		BetOptions:     cfg.BetOptions(),
		MaxBetCount:    cfg.MaxBetCount(),
		ServiceFee:     cfg.ServiceFeeRate(),
		AutoCashoutMin: cfg.AutoCashoutMin(),
		AutoCashoutMax: cfg.AutoCashoutMax(),
		WagerSeconds:   cfg.WagerDuration().Seconds(),
		DeadSeconds:    cfg.DeadDuration().Seconds(),
		GrowthRate:     cfg.GrowthRate(),
		MaxMultiplier:  cfg.MaxMultiplier(),
	}
}

func ToStateResponse(s model.GameState, today, allTime float64) game.StateResponse {
	return game.StateResponse{
		Phase:          s.Phase.String(),
		RoundID:        s.RoundID,
		Multiplier:     s.Multiplier,
		Countdown:      s.Countdown,
		CrashPoint:     s.CrashPoint,
		Elapsed:        s.Elapsed,
		TodayHighest:   today,
		AllTimeHighest: allTime,
	}
}

func ToHistoryResponse(records []model.HistoryRecord) game.HistoryResponse {
	out := game.HistoryResponse{Records: make([]game.HistoryRecord, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, game.HistoryRecord{
			RoundID:    r.RoundID,
			CrashPoint: r.CrashPoint,
			Color:      model.ColorOf(r.CrashPoint),
			Timestamp:  r.Timestamp.UnixMilli(),
		})
	}

	stats := model.Stats(records)
	out.Stats = game.HistoryStats{
		Count:          stats.Count,
		Average:        round2(stats.Average),
		Max:            stats.Max,
		Min:            stats.Min,
		Colors:         stats.Colors,
		StreakBelowTwo: model.ConsecutiveBelow(records, streakThreshold),
	}
	return out
}

func ToHouseStatsResponse(s statsModel.HouseState) game.HouseStatsResponse {
	return game.HouseStatsResponse{
		TotalRounds: s.TotalRounds,
		TotalBet:    s.TotalBet,
		TotalPayout: s.TotalPayout,
		CurrentRTP:  decimal.NewFromFloat(s.CurrentRTP).StringFixed(2),
		WindowRTP:   decimal.NewFromFloat(s.WindowRTP).StringFixed(2),
		TargetRTP:   decimal.NewFromFloat(s.TargetRTP).StringFixed(2),
		WindowSize:  s.WindowSize,
	}
}

func ToGuestResponse(data model.AuthData) authDTO.GuestResponse {
	return authDTO.GuestResponse{
		AccessToken: data.AccessToken,
		User:        ToUserDTO(data.User),
	}
}

func ToUserDTO(u model.User) authDTO.User {
	return authDTO.User{
		ID:      u.ID,
		Name:    u.Name,
		Balance: u.Balance,
	}
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
