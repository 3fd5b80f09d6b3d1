package game

type ConfigResponse struct {
	MinBet         int64   `json:"min_bet"`
	MaxBet         int64   `json:"max_bet"`
	BetOptions     []int64 `json:"bet_options"`
	MaxBetCount    int     `json:"max_bet_count"`
	ServiceFee     float64 `json:"service_fee"`
	AutoCashoutMin float64 `json:"auto_cashout_min"`
	AutoCashoutMax float64 `json:"auto_cashout_max"`
	WagerSeconds   float64 `json:"wager_seconds"`
	DeadSeconds    float64 `json:"dead_seconds"`
	GrowthRate     float64 `json:"growth_rate"`
	MaxMultiplier  float64 `json:"max_multiplier"`
}

type StateResponse struct {
	Phase          string  `json:"phase"`
	RoundID        string  `json:"round_id"`
	Multiplier     float64 `json:"multiplier"`
	Countdown      float64 `json:"countdown,omitempty"`
	CrashPoint     float64 `json:"crash_point,omitempty"` // only once revealed
	Elapsed        float64 `json:"elapsed"`
	TodayHighest   float64 `json:"today_highest"`
	AllTimeHighest float64 `json:"all_time_highest"`
}

type HistoryRecord struct {
	RoundID    string  `json:"round_id"`
	CrashPoint float64 `json:"crash_point"`
	Color      string  `json:"color"`
	Timestamp  int64   `json:"timestamp"` // unix ms
}

type HistoryStats struct {
	Count          int            `json:"count"`
	Average        float64        `json:"average"`
	Max            float64        `json:"max"`
	Min            float64        `json:"min"`
	Colors         map[string]int `json:"colors"`
	StreakBelowTwo int            `json:"streak_below_two"`
}

type HistoryResponse struct {
	Records []HistoryRecord `json:"records"`
	Stats   HistoryStats    `json:"stats"`
}

type HouseStatsResponse struct {
	TotalRounds int64  `json:"total_rounds"`
	TotalBet    int64  `json:"total_bet"`
	TotalPayout int64  `json:"total_payout"`
	CurrentRTP  string `json:"current_rtp"`
	WindowRTP   string `json:"window_rtp"`
	TargetRTP   string `json:"target_rtp"`
	WindowSize  int    `json:"window_size"`
}
