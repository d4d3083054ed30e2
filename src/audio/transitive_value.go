package audio

import "math"

const (
	gainTimeConstant = 0.01 // sec
	minDB            = -60.0
)

// ----- Smoothed Gain ----- //

// smoothedGain is a one-pole smoother that moves toward its target a
// little every sample so that volume changes never click.
type smoothedGain struct {
	alpha   float64
	current float64
	target  float64
}

func newSmoothedGain(sampleRate int, initial float64) *smoothedGain {
	return &smoothedGain{
		alpha:   1 - math.Exp(-1/(gainTimeConstant*float64(sampleRate))),
		current: initial,
		target:  initial,
	}
}

func (g *smoothedGain) setTarget(target float64) {
	g.target = target
}

func (g *smoothedGain) next() float64 {
	g.current += g.alpha * (g.target - g.current)
	if math.Abs(g.target-g.current) < 1e-9 {
		g.current = g.target
	}
	return g.current
}

// stepToGain maps 0..max linearly onto minDB..0dB; step 0 is silence.
func stepToGain(step int, max int) float64 {
	if step <= 0 {
		return 0
	}
	if step >= max {
		return 1
	}
	db := minDB * (1 - float64(step)/float64(max))
	return math.Pow(10, db/20)
}
