package monitor

import (
	"math"
	"math/rand/v2"
)

// Level bounds
const (
	MinLevel = 0.0
	MaxLevel = 100.0
)

// Smoothing defaults
const (
	DefaultBaseline   = 30.0
	DefaultVolatility = 0.3
	// LiveVolatility is the tighter volatility used by the live monitor.
	LiveVolatility = 0.15

	// Weight of the previous level in the blend.
	carry = 0.7
)

// Rand is the random source the smoother draws from.
type Rand interface {
	Float64() float64
}

// NextLevel blends the previous level toward a randomly perturbed baseline
// and clamps the result to [0, 100]. rnd must return values in [0, 1).
func NextLevel(previous, baseline, volatility float64, rnd Rand) float64 {
	r := rnd.Float64()*2 - 1
	perturbation := r * volatility * baseline
	return clamp(carry*previous + (1-carry)*(baseline+perturbation))
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return MinLevel
	case v < MinLevel:
		return MinLevel
	case v > MaxLevel:
		return MaxLevel
	}
	return v
}

// Smoother produces the synthetic wheezing level series.
type Smoother struct {
	Baseline   float64
	Volatility float64
	rnd        Rand
}

// NewSmoother returns a smoother over rnd. A nil rnd uses a randomly seeded
// PCG source.
func NewSmoother(baseline, volatility float64, rnd Rand) *Smoother {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Smoother{Baseline: baseline, Volatility: volatility, rnd: rnd}
}

// Next returns the level following previous.
func (s *Smoother) Next(previous float64) float64 {
	return NextLevel(previous, s.Baseline, s.Volatility, s.rnd)
}
