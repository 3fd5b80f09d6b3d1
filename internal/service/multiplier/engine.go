package multiplier

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const base = 1.0

// Engine - exponential multiplier curve M(t) = e^(k·t).
// Values it reports are floored to 2 decimals, never exceed the ceiling
// (crash point or max multiplier) and never go down while running.
type Engine struct {
	k       float64
	max     float64
	ceiling float64
	elapsed float64
	last    float64
	running bool
}

func New(growthRate, maxMultiplier float64) *Engine {
	return &Engine{
		k:       growthRate,
		max:     maxMultiplier,
		ceiling: maxMultiplier,
		last:    base,
	}
}

// GrowthRate - k that reaches target after d
func GrowthRate(target float64, d time.Duration) float64 {
	if target <= base || d <= 0 {
		return 0
	}
	return math.Log(target) / d.Seconds()
}

// Floor2 rounds v down to 2 decimal places.
func Floor2(v float64) float64 {
	return decimal.NewFromFloat(v).RoundFloor(2).InexactFloat64()
}

// At - raw curve value after t seconds
func (e *Engine) At(t float64) float64 {
	if t <= 0 {
		return base
	}
	return math.Exp(e.k * t)
}

// Start begins a round. ceiling <= 0 means unknown (remote authority).
func (e *Engine) Start(ceiling float64) {
	if ceiling <= 0 || ceiling > e.max {
		ceiling = e.max
	}
	e.ceiling = ceiling
	e.elapsed = 0
	e.last = math.Min(base, ceiling)
	e.running = true
}

// Advance moves the curve forward by dt seconds and returns Current.
func (e *Engine) Advance(dt float64) float64 {
	if !e.running || dt <= 0 {
		return e.last
	}
	e.elapsed += dt
	e.publish(Floor2(e.At(e.elapsed)))
	return e.last
}

// Sync adopts an externally reported value without going backwards.
func (e *Engine) Sync(multiple, elapsed float64) float64 {
	if elapsed > e.elapsed {
		e.elapsed = elapsed
	}
	e.publish(Floor2(multiple))
	return e.last
}

func (e *Engine) publish(v float64) {
	if v > e.ceiling {
		v = e.ceiling
	}
	if v > e.last {
		e.last = v
	}
}

func (e *Engine) Current() float64 {
	return e.last
}

func (e *Engine) Elapsed() float64 {
	return e.elapsed
}

// Reached reports whether the current value touched the ceiling.
func (e *Engine) Reached() bool {
	return e.last >= e.ceiling
}

// TimeTo - seconds from round start until target is reached
func (e *Engine) TimeTo(target float64) float64 {
	if target <= base || e.k <= 0 {
		return 0
	}
	return math.Log(target) / e.k
}

// Remaining - seconds from now until target, zero if already passed
func (e *Engine) Remaining(target float64) float64 {
	return math.Max(0, e.TimeTo(target)-e.elapsed)
}

// Freeze stops the curve and pins the value to v (the crash point).
func (e *Engine) Freeze(v float64) {
	e.running = false
	e.last = v
}

func (e *Engine) Stop() {
	e.running = false
}

func (e *Engine) Running() bool {
	return e.running
}

func (e *Engine) Reset() {
	e.running = false
	e.elapsed = 0
	e.last = base
	e.ceiling = e.max
}
