package model

import "time"

// HistoryRecord - one finished round
type HistoryRecord struct {
	RoundID    string    `json:"roundId"`
	CrashPoint float64   `json:"crashPoint"`
	Timestamp  time.Time `json:"timestamp"`
}

// History colour buckets
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
	ColorBlue   = "blue"
)

// ColorOf - colour bucket for a crash point
func ColorOf(crashPoint float64) string {
	switch {
	case crashPoint < 2.0:
		return ColorRed
	case crashPoint < 5.0:
		return ColorYellow
	case crashPoint < 10.0:
		return ColorGreen
	default:
		return ColorBlue
	}
}

// HistoryStats - summary over records ordered newest first
type HistoryStats struct {
	Count   int
	Average float64
	Max     float64
	Min     float64
	Colors  map[string]int
}

func Stats(records []HistoryRecord) HistoryStats {
	stats := HistoryStats{
		Colors: map[string]int{ColorRed: 0, ColorYellow: 0, ColorGreen: 0, ColorBlue: 0},
	}
	if len(records) == 0 {
		return stats
	}

	var sum float64
	stats.Min = records[0].CrashPoint
	for _, r := range records {
		sum += r.CrashPoint
		if r.CrashPoint > stats.Max {
			stats.Max = r.CrashPoint
		}
		if r.CrashPoint < stats.Min {
			stats.Min = r.CrashPoint
		}
		stats.Colors[ColorOf(r.CrashPoint)]++
	}
	stats.Count = len(records)
	stats.Average = sum / float64(len(records))
	return stats
}

// ConsecutiveBelow counts records under threshold starting from the newest.
func ConsecutiveBelow(records []HistoryRecord, threshold float64) int {
	n := 0
	for _, r := range records {
		if r.CrashPoint >= threshold {
			break
		}
		n++
	}
	return n
}
