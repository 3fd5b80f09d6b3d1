package stats_repo

import (
	"testing"
)

func TestUpdateState(t *testing.T) {
	r := NewStatsRepository(95)

	r.UpdateState(1000, 0)
	r.UpdateState(1000, 1900)

	s := r.HouseState()
	if s.TotalRounds != 2 || s.TotalBet != 2000 || s.TotalPayout != 1900 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.CurrentRTP != 95 || s.WindowRTP != 95 {
		t.Fatalf("unexpected rtp current=%v window=%v", s.CurrentRTP, s.WindowRTP)
	}
	if len(s.RoundWindow) != 2 || s.RoundWindow[1].RTP != 190 {
		t.Fatalf("unexpected window %+v", s.RoundWindow)
	}
}

func TestWindowIsBounded(t *testing.T) {
	r := NewStatsRepository(95)
	r.state.WindowSize = 3

	r.UpdateState(100, 1000)
	for i := 0; i < 3; i++ {
		r.UpdateState(100, 50)
	}

	s := r.HouseState()
	if len(s.RoundWindow) != 3 {
		t.Fatalf("window not trimmed: %d", len(s.RoundWindow))
	}
	if s.WindowRTP != 50 {
		t.Fatalf("window rtp %v, want 50", s.WindowRTP)
	}
	if s.CurrentRTP != 287.5 {
		t.Fatalf("overall rtp %v, want 287.5", s.CurrentRTP)
	}

	s.RoundWindow[0].Bet = 0
	if r.HouseState().RoundWindow[0].Bet != 100 {
		t.Fatalf("HouseState must return a copy")
	}
}
