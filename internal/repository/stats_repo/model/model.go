package model

// HouseState - running totals of every settled round
type HouseState struct {
	TotalRounds int   // Rounds with at least one bet
	TotalBet    int64 // Sum of all stakes
	TotalPayout int64 // Sum of all winnings

	CurrentRTP float64 // TotalPayout/TotalBet*100
	TargetRTP  float64 // 100 minus the service fee, in percent

	RoundWindow []RoundResult // Last rounds for the window RTP
	WindowRTP   float64
	WindowSize  int
}

// RoundResult - house view of one round
type RoundResult struct {
	Bet    int64
	Payout int64
	RTP    float64
}
