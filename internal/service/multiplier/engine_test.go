package multiplier

import (
	"math"
	"testing"
	"time"
)

func TestFloor2(t *testing.T) {
	cases := map[float64]float64{
		1.0:      1.0,
		1.009:    1.0,
		1.019999: 1.01,
		2.5:      2.5,
		2.999:    2.99,
		1.1:      1.1,
	}
	for in, want := range cases {
		if got := Floor2(in); got != want {
			t.Fatalf("Floor2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestGrowthRateAndTimeTo(t *testing.T) {
	k := GrowthRate(100, 60*time.Second)
	if math.Abs(k-math.Log(100)/60) > 1e-12 {
		t.Fatalf("unexpected k %v", k)
	}

	e := New(k, 1000)
	if got := e.TimeTo(100); math.Abs(got-60) > 1e-9 {
		t.Fatalf("TimeTo(100) = %v, want 60", got)
	}
	if got := e.At(60); math.Abs(got-100) > 1e-9 {
		t.Fatalf("At(60) = %v, want 100", got)
	}
	if GrowthRate(1, time.Second) != 0 {
		t.Fatalf("target 1 must not grow")
	}
	if e.TimeTo(0.5) != 0 {
		t.Fatalf("targets below 1 are reached immediately")
	}
}

func TestAdvanceMonotoneAndClamped(t *testing.T) {
	const crash = 2.37
	e := New(0.06, 1000)
	e.Start(crash)

	prev := e.Current()
	if prev != 1.0 {
		t.Fatalf("expected start at 1.00, got %v", prev)
	}
	for i := 0; i < 400 && !e.Reached(); i++ {
		v := e.Advance(0.1)
		if v < prev {
			t.Fatalf("multiplier decreased from %v to %v", prev, v)
		}
		if v > crash {
			t.Fatalf("multiplier %v overshot crash point %v", v, crash)
		}
		prev = v
	}
	if !e.Reached() || e.Current() != crash {
		t.Fatalf("expected to stop exactly at %v, got %v", crash, e.Current())
	}
}

func TestStartBelowOneReachesImmediately(t *testing.T) {
	e := New(0.06, 1000)
	e.Start(0.8)
	if e.Current() != 0.8 || !e.Reached() {
		t.Fatalf("expected immediate crash at 0.8, got %v reached=%v", e.Current(), e.Reached())
	}
}

func TestSyncNeverGoesBack(t *testing.T) {
	e := New(0.06, 1000)
	e.Start(0)

	e.Sync(1.52, 7)
	if e.Current() != 1.52 {
		t.Fatalf("expected 1.52, got %v", e.Current())
	}
	e.Sync(1.40, 6)
	if e.Current() != 1.52 || e.Elapsed() != 7 {
		t.Fatalf("sync moved backwards to %v @ %v", e.Current(), e.Elapsed())
	}
	e.Sync(5000, 200)
	if e.Current() != 1000 {
		t.Fatalf("expected clamp to max multiplier, got %v", e.Current())
	}
}

func TestFreezeAndRemaining(t *testing.T) {
	e := New(0.06, 1000)
	e.Start(10)
	e.Advance(5)

	want := math.Log(2)/0.06 - 5
	if got := e.Remaining(2); math.Abs(got-want) > 1e-9 {
		t.Fatalf("Remaining(2) = %v, want %v", got, want)
	}

	e.Freeze(3.3)
	if e.Running() || e.Current() != 3.3 {
		t.Fatalf("freeze did not pin value")
	}
	if e.Advance(1) != 3.3 {
		t.Fatalf("frozen engine advanced")
	}

	e.Reset()
	if e.Current() != 1.0 || e.Elapsed() != 0 {
		t.Fatalf("reset left state %v @ %v", e.Current(), e.Elapsed())
	}
}
