package audio

import (
	"math"
	"math/rand"
)

const (
	wavetableSize  = 4096
	numPulseTables = maxPWM + 1
	centsRange     = 4800
	filterSteps    = 128
	minCutoffHz    = 20.0
	maxCutoffHz    = 20000.0
	minQ           = 0.5
	maxQ           = 20.0
)

// ----- Wavetable ----- //

type wavetable struct {
	values []float64
}

func newWavetable(samples int, phaseToValue func(phase float64) float64) *wavetable {
	wt := &wavetable{
		values: make([]float64, samples),
	}
	for i := 0; i < samples; i++ {
		wt.values[i] = phaseToValue(float64(i) / float64(samples))
	}
	return wt
}

// phase in [0,1)
func (wt *wavetable) getAtPhase(phase float64) float64 {
	length := len(wt.values)
	pos := phase * float64(length)
	index := int(pos)
	if index >= length {
		index -= length
	}
	nextIndex := index + 1
	if nextIndex >= length {
		nextIndex = 0
	}
	mod := pos - math.Floor(pos)
	return wt.values[index]*(1-mod) + wt.values[nextIndex]*mod
}

// ----- Tables ----- //

// Tables holds every lookup table the engine reads on the audio path.
// It is built once and never written afterwards.
type Tables struct {
	sampleRate float64
	sine       *wavetable
	triangle   *wavetable
	saw        *wavetable
	pulse      [numPulseTables]*wavetable
	noise      *wavetable
	noteFreq   [128]float64
	cents      []float64 // index 0 = -centsRange
	filters    [numFilterTypes][]biquadCoefficients
}

// NewTables ...
func NewTables(sampleRate int) *Tables {
	t := &Tables{
		sampleRate: float64(sampleRate),
		sine: newWavetable(wavetableSize, func(p float64) float64 {
			return math.Sin(2 * math.Pi * p)
		}),
		triangle: newWavetable(wavetableSize, func(p float64) float64 {
			if p < 0.25 {
				return p * 4
			} else if p < 0.75 {
				return 2 - p*4
			}
			return p*4 - 4
		}),
		saw: newWavetable(wavetableSize, func(p float64) float64 {
			return p*2 - 1
		}),
	}
	for i := range t.pulse {
		duty := pulseDuty(i)
		t.pulse[i] = newWavetable(wavetableSize, func(p float64) float64 {
			if p < duty {
				return 1
			}
			return -1
		})
	}
	rnd := rand.New(rand.NewSource(1))
	t.noise = newWavetable(wavetableSize, func(float64) float64 {
		return rnd.Float64()*2 - 1
	})
	for note := range t.noteFreq {
		t.noteFreq[note] = noteToFreq(note)
	}
	t.cents = make([]float64, 2*centsRange+1)
	for i := range t.cents {
		t.cents[i] = math.Pow(2, float64(i-centsRange)/1200)
	}
	for kind := filterLP12; kind < numFilterTypes; kind++ {
		t.filters[kind] = makeFilterTable(kind, t.sampleRate)
	}
	return t
}

func pulseDuty(pwm int) float64 {
	return 0.5 - float64(pwm)/64
}

func (t *Tables) waveform(shape int, pwm int) *wavetable {
	switch shape {
	case shapeSaw:
		return t.saw
	case shapeSquare:
		return t.pulse[pwm]
	case shapeTriangle:
		return t.triangle
	case shapeNoise:
		return t.noise
	default:
		return t.sine
	}
}

// centsToRatio interpolates between whole cents.
func (t *Tables) centsToRatio(cents float64) float64 {
	pos := cents + centsRange
	if pos <= 0 {
		return t.cents[0]
	}
	last := len(t.cents) - 1
	if pos >= float64(last) {
		return t.cents[last]
	}
	index := int(pos)
	mod := pos - float64(index)
	return t.cents[index]*(1-mod) + t.cents[index+1]*mod
}

func (t *Tables) filterCoefficients(kind int, cutoff int, resonance int) biquadCoefficients {
	return t.filters[kind][cutoff*filterSteps+resonance]
}

func cutoffIndexToFreq(index int, sampleRate float64) float64 {
	freq := minCutoffHz * math.Pow(maxCutoffHz/minCutoffHz, float64(index)/(filterSteps-1))
	return math.Min(freq, sampleRate*0.45)
}

func resonanceIndexToQ(index int) float64 {
	return minQ * math.Pow(maxQ/minQ, float64(index)/(filterSteps-1))
}

func makeFilterTable(kind int, sampleRate float64) []biquadCoefficients {
	table := make([]biquadCoefficients, filterSteps*filterSteps)
	for c := 0; c < filterSteps; c++ {
		fc := cutoffIndexToFreq(c, sampleRate) / sampleRate
		for r := 0; r < filterSteps; r++ {
			table[c*filterSteps+r] = makeBiquad(kind, fc, resonanceIndexToQ(r))
		}
	}
	return table
}
