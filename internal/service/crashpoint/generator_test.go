package crashpoint

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestPickTierBoundaries(t *testing.T) {
	g := NewGenerator(rand.NewPCG(1, 2), nil)

	tests := []struct {
		name   string
		u1, u2 float64
		want   float64
	}{
		{name: "low tier start", u1: 0, u2: 0, want: 0.1},
		{name: "low tier middle", u1: 0.5, u2: 0.5, want: 1.55},
		{name: "low tier top weight", u1: 0.8699, u2: 0, want: 0.1},
		{name: "mid tier start", u1: 0.87, u2: 0, want: 3.0},
		{name: "mid tier middle", u1: 0.9, u2: 0.5, want: 6.5},
		{name: "high tier start", u1: 0.97, u2: 0, want: 10.0},
		{name: "high tier end", u1: 0.999, u2: 0.9999999, want: 1000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Pick(tt.u1, tt.u2); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Pick(%v, %v) = %v, want %v", tt.u1, tt.u2, got, tt.want)
			}
		})
	}
}

func TestDrawDistribution(t *testing.T) {
	g := NewGenerator(rand.NewPCG(42, 7), nil)

	const n = 100000
	counts := make([]int, 3)
	for i := 0; i < n; i++ {
		v := g.Draw()
		if v < 0.1 || v > 1000.0 {
			t.Fatalf("draw %v outside [0.1, 1000]", v)
		}
		if r := math.Round(v * 100); math.Abs(r-v*100) > 1e-6 {
			t.Fatalf("draw %v not rounded to 2 decimals", v)
		}
		switch {
		case v < 3.0:
			counts[0]++
		case v < 10.0:
			counts[1]++
		default:
			counts[2]++
		}
	}

	want := []float64{0.87, 0.10, 0.03}
	for i, c := range counts {
		frac := float64(c) / n
		if math.Abs(frac-want[i]) > 0.01 {
			t.Fatalf("tier %d frequency %.4f, want %.2f ± 0.01", i, frac, want[i])
		}
	}
}

func TestTierOf(t *testing.T) {
	g := NewGenerator(nil, nil)
	cases := map[float64]int{0.1: 0, 2.99: 0, 3.0: 1, 9.99: 1, 10.0: 2, 1000.0: 2, 0.05: -1}
	for v, want := range cases {
		if got := g.TierOf(v); got != want {
			t.Fatalf("TierOf(%v) = %d, want %d", v, got, want)
		}
	}
}
