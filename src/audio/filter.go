package audio

import (
	"math"
)

// ----- Filter Kind ----- //

const (
	filterOff = iota
	filterLP12
	filterHP12
	filterBP12
	filterNotch
	numFilterTypes
)

var filterNames = [numFilterTypes]string{"off", "lp12", "hp12", "bp12", "notch"}

// ----- Biquad ----- //

type biquadCoefficients struct {
	b0, b1, b2 float64
	a1, a2     float64
}

func makeBiquad(kind int, fc float64, q float64) biquadCoefficients {
	var b, a []float64
	switch kind {
	case filterLP12:
		b, a = makeBiquadLowpassH(fc, q)
	case filterHP12:
		b, a = makeBiquadHighpassH(fc, q)
	case filterBP12:
		b, a = makeBiquadBandpassH(fc, q)
	case filterNotch:
		b, a = makeBiquadNotchH(fc, q)
	default:
		return biquadCoefficients{b0: 1}
	}
	return biquadCoefficients{b0: b[0], b1: b[1], b2: b[2], a1: a[0], a2: a[1]}
}

func makeBiquadLowpassH(fc float64, q float64) ([]float64, []float64) {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := (1 - math.Cos(w0)) / 2
	b1 := (1 - math.Cos(w0))
	b2 := (1 - math.Cos(w0)) / 2
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return []float64{b0 / a0, b1 / a0, b2 / a0}, []float64{a1 / a0, a2 / a0}
}

func makeBiquadHighpassH(fc float64, q float64) ([]float64, []float64) {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := (1 + math.Cos(w0)) / 2
	b1 := -(1 + math.Cos(w0))
	b2 := (1 + math.Cos(w0)) / 2
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return []float64{b0 / a0, b1 / a0, b2 / a0}, []float64{a1 / a0, a2 / a0}
}

// constant 0 dB peak gain
func makeBiquadBandpassH(fc float64, q float64) ([]float64, []float64) {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return []float64{b0 / a0, b1 / a0, b2 / a0}, []float64{a1 / a0, a2 / a0}
}

func makeBiquadNotchH(fc float64, q float64) ([]float64, []float64) {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := 1.0
	b1 := -2 * math.Cos(w0)
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return []float64{b0 / a0, b1 / a0, b2 / a0}, []float64{a1 / a0, a2 / a0}
}

// ----- Filter ----- //

// Filter is a 2-pole resonant filter realized in Transposed Direct Form II.
// Coefficients come from the precomputed tables and are only refetched when
// the effective (type, cutoff, resonance) triple changes.
type Filter struct {
	tables       *Tables
	kind         int
	cutoff       int
	resonance    int
	cutoffMod    int
	resonanceMod int

	coeffs        biquadCoefficients
	lastKind      int
	lastCutoff    int
	lastResonance int
	z1, z2        float64
	coeffUpdates  int
}

// NewFilter ...
func NewFilter(tables *Tables) *Filter {
	return &Filter{
		tables:     tables,
		kind:       filterOff,
		cutoff:     maxParam,
		resonance:  0,
		lastKind:   -1,
		lastCutoff: -1,
	}
}

// SetType resets the filter memory.
func (f *Filter) SetType(kind int) {
	kind = clampInt(kind, filterOff, numFilterTypes-1)
	if kind != f.kind {
		f.z1 = 0
		f.z2 = 0
	}
	f.kind = kind
}

// SetCutoff ...
func (f *Filter) SetCutoff(cutoff int) {
	f.cutoff = clampInt(cutoff, 0, maxParam)
}

// SetResonance ...
func (f *Filter) SetResonance(resonance int) {
	f.resonance = clampInt(resonance, 0, maxParam)
}

func (f *Filter) modulate(cutoffOffset int, resonanceOffset int) {
	f.cutoffMod = cutoffOffset
	f.resonanceMod = resonanceOffset
}

func (f *Filter) refresh() {
	cutoff := clampInt(f.cutoff+f.cutoffMod, 0, maxParam)
	resonance := clampInt(f.resonance+f.resonanceMod, 0, maxParam)
	if f.kind == f.lastKind && cutoff == f.lastCutoff && resonance == f.lastResonance {
		return
	}
	f.coeffs = f.tables.filterCoefficients(f.kind, cutoff, resonance)
	f.lastKind = f.kind
	f.lastCutoff = cutoff
	f.lastResonance = resonance
	f.coeffUpdates++
}

// Process ...
func (f *Filter) Process(in float64) float64 {
	if f.kind == filterOff {
		return in
	}
	f.refresh()
	c := &f.coeffs
	out := c.b0*in + f.z1
	f.z1 = c.b1*in + f.z2 - c.a1*out
	f.z2 = c.b2*in - c.a2*out
	return out
}
