package model

import (
	"fmt"
)

// Phase - round phase
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWager
	PhaseRunning
	PhaseCrashed
	PhaseSettle
)

var phaseNames = map[Phase]string{
	PhaseIdle:    "idle",
	PhaseWager:   "wager",
	PhaseRunning: "running",
	PhaseCrashed: "crashed",
	PhaseSettle:  "settle",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase - parses a wire phase name
func ParsePhase(s string) (Phase, error) {
	for p, name := range phaseNames {
		if name == s {
			return p, nil
		}
	}
	return PhaseIdle, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	parsed, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Revealed reports whether the crash point may be shown in this phase.
func (p Phase) Revealed() bool {
	return p == PhaseCrashed || p == PhaseSettle
}
