package audio

import (
	"math"
)

// ----- Envelope Stage ----- //

const (
	stageIdle = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

const (
	// MaxStep is the upper bound of every ADSR parameter.
	MaxStep      = 31
	minBeats     = 1.0 / 8
	maxBeats     = 8.0
	attackCurve  = 5.0
	sustainGlide = 0.002
	minBpm       = 1.0
	maxBpm       = 999.0
	defaultBpm   = 120.0
)

var attackNorm = 1 - math.Exp(-attackCurve)

// ----- Envelope ----- //

type stageLength struct {
	samples float64
	inv     float64
}

func (s *stageLength) set(samples float64) {
	s.samples = samples
	if samples > 0 {
		s.inv = 1 / samples
	} else {
		s.inv = 0
	}
}

/*
  1 +     x
    |    / \
    |   /   \
  s +  /     x------x
    | /              \
    |/                \
  0 +-----+---+------+---
    |a    |d  |      |r |
*/

// Envelope is a tempo-synced ADSR amplitude generator. Stage lengths are
// expressed in beats and converted to samples using the current BPM.
type Envelope struct {
	sampleRate float64
	bpm        float64

	attackStep  int
	decayStep   int
	sustainStep int
	releaseStep int

	attack       stageLength
	decay        stageLength
	release      stageLength
	sustainLevel float64

	stage        int
	cursor       float64
	level        float64
	releaseStart float64
}

// NewEnvelope ...
func NewEnvelope(sampleRate int) *Envelope {
	e := &Envelope{
		sampleRate:  float64(sampleRate),
		bpm:         defaultBpm,
		sustainStep: MaxStep,
	}
	e.recompute()
	return e
}

func stepToBeats(step int) float64 {
	if step <= 0 {
		return 0
	}
	return minBeats * math.Pow(maxBeats/minBeats, float64(step)/MaxStep)
}

func (e *Envelope) stepToSamples(step int) float64 {
	return math.Round(stepToBeats(step) * 60 / e.bpm * e.sampleRate)
}

func (e *Envelope) setParams(bpm float64, p *envelopeSettings) {
	e.bpm = clampBpm(bpm)
	e.attackStep = clampInt(p.attack, 0, MaxStep)
	e.decayStep = clampInt(p.decay, 0, MaxStep)
	e.sustainStep = clampInt(p.sustain, 0, MaxStep)
	e.releaseStep = clampInt(p.release, 0, MaxStep)
	e.recompute()
}

// SetAttack ...
func (e *Envelope) SetAttack(step int) {
	e.attackStep = clampInt(step, 0, MaxStep)
	e.recompute()
}

// SetDecay ...
func (e *Envelope) SetDecay(step int) {
	e.decayStep = clampInt(step, 0, MaxStep)
	e.recompute()
}

// SetSustain ...
func (e *Envelope) SetSustain(step int) {
	e.sustainStep = clampInt(step, 0, MaxStep)
	e.recompute()
}

// SetRelease ...
func (e *Envelope) SetRelease(step int) {
	e.releaseStep = clampInt(step, 0, MaxStep)
	e.recompute()
}

// SetBpm ...
func (e *Envelope) SetBpm(bpm float64) {
	bpm = clampBpm(bpm)
	if bpm == e.bpm {
		return
	}
	e.bpm = bpm
	e.recompute()
}

// recompute rebuilds the stage lengths and moves the cursor so that the
// current level is preserved.
func (e *Envelope) recompute() {
	e.attack.set(e.stepToSamples(e.attackStep))
	e.decay.set(e.stepToSamples(e.decayStep))
	e.release.set(e.stepToSamples(e.releaseStep))
	e.sustainLevel = float64(e.sustainStep) / MaxStep
	switch e.stage {
	case stageAttack:
		e.cursor = inverseAttackCurve(e.level) * e.attack.samples
	case stageDecay:
		if e.level <= e.sustainLevel {
			// already at or below the new target: glide from here
			e.stage = stageSustain
			e.cursor = 0
		} else {
			e.cursor = (1 - e.level) / (1 - e.sustainLevel) * e.decay.samples
		}
	case stageRelease:
		if e.releaseStart > 0 {
			e.cursor = (1 - e.level/e.releaseStart) * e.release.samples
		} else {
			e.cursor = e.release.samples
		}
	}
}

func attackCurveAt(t float64) float64 {
	return (1 - math.Exp(-attackCurve*t)) / attackNorm
}

func inverseAttackCurve(level float64) float64 {
	if level <= 0 {
		return 0
	}
	if level >= 1 {
		return 1
	}
	return -math.Log(1-level*attackNorm) / attackCurve
}

// GateOn starts the attack stage from the current level.
func (e *Envelope) GateOn() {
	e.stage = stageAttack
	e.cursor = inverseAttackCurve(e.level) * e.attack.samples
}

// GateOff starts the release stage from the current level.
func (e *Envelope) GateOff() {
	if e.stage == stageIdle {
		return
	}
	e.releaseStart = e.level
	e.cursor = 0
	if e.release.samples == 0 || e.level <= 0 {
		e.enterIdle()
		return
	}
	e.stage = stageRelease
}

func (e *Envelope) enterIdle() {
	e.stage = stageIdle
	e.cursor = 0
	e.level = 0
}

func (e *Envelope) enterDecay() {
	e.stage = stageDecay
	e.cursor = 0
	e.level = 1
	if e.decay.samples == 0 || e.sustainLevel >= 1 {
		e.stage = stageSustain
		e.level = e.sustainLevel
	}
}

// Next advances one sample and returns the amplitude in [0,1].
func (e *Envelope) Next() float64 {
	switch e.stage {
	case stageAttack:
		e.cursor++
		if e.cursor >= e.attack.samples {
			e.enterDecay()
		} else {
			e.level = attackCurveAt(e.cursor * e.attack.inv)
			if e.level >= 1 {
				e.enterDecay()
			}
		}
	case stageDecay:
		e.cursor++
		level := 1 - (1-e.sustainLevel)*e.cursor*e.decay.inv
		if e.cursor >= e.decay.samples || level <= e.sustainLevel {
			e.stage = stageSustain
			e.cursor = 0
			level = e.sustainLevel
		}
		e.level = level
	case stageSustain:
		e.level += (e.sustainLevel - e.level) * sustainGlide
		if math.Abs(e.sustainLevel-e.level) < 1e-6 {
			e.level = e.sustainLevel
		}
	case stageRelease:
		e.cursor++
		if e.cursor >= e.release.samples {
			e.enterIdle()
		} else {
			e.level = e.releaseStart * (1 - e.cursor*e.release.inv)
			if e.level <= 0 {
				e.enterIdle()
			}
		}
	default:
		e.level = 0
	}
	return e.level
}

// IsIdle ...
func (e *Envelope) IsIdle() bool {
	return e.stage == stageIdle
}

// Level ...
func (e *Envelope) Level() float64 {
	return e.level
}

func clampBpm(bpm float64) float64 {
	if math.IsNaN(bpm) || bpm < minBpm {
		return minBpm
	}
	if bpm > maxBpm {
		return maxBpm
	}
	return bpm
}
