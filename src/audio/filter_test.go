package audio

import (
	"math"
	"testing"
)

func TestFilterCoefficientsAreCached(t *testing.T) {
	f := NewFilter(NewTables(48000))
	f.SetType(filterLP12)
	f.Process(0.5)
	expectEqual(t, f.coeffUpdates, 1)
	for i := 0; i < 1000; i++ {
		f.Process(0.5)
	}
	expectEqual(t, f.coeffUpdates, 1)

	f.SetCutoff(64)
	f.Process(0.5)
	expectEqual(t, f.coeffUpdates, 2)

	f.modulate(10, 0)
	f.Process(0.5)
	expectEqual(t, f.coeffUpdates, 3)
	f.Process(0.5)
	expectEqual(t, f.coeffUpdates, 3)
}

func TestFilterOffIsPassthrough(t *testing.T) {
	f := NewFilter(NewTables(48000))
	expectEqual(t, f.kind, filterOff)
	expectEqual(t, f.Process(0.3), 0.3)
	expectEqual(t, f.Process(-1.0), -1.0)
	expectEqual(t, f.coeffUpdates, 0)
}

func TestFilterTypeChangeResetsState(t *testing.T) {
	f := NewFilter(NewTables(48000))
	f.SetType(filterLP12)
	for i := 0; i < 10; i++ {
		f.Process(1)
	}
	if f.z1 == 0 {
		t.Fatalf("expected filter memory")
	}
	f.SetType(filterHP12)
	expectEqual(t, f.z1, 0.0)
	expectEqual(t, f.z2, 0.0)
}

func peakAfterSettling(f *Filter, freq float64) float64 {
	peak := 0.0
	for i := 0; i < 48000; i++ {
		out := f.Process(math.Sin(2 * math.Pi * freq * float64(i) / 48000))
		if i >= 24000 {
			peak = math.Max(peak, math.Abs(out))
		}
	}
	return peak
}

func TestLowpassAttenuatesHighFrequencies(t *testing.T) {
	tables := NewTables(48000)
	low := NewFilter(tables)
	low.SetType(filterLP12)
	low.SetCutoff(40)
	if peak := peakAfterSettling(low, 50); peak < 0.8 {
		t.Errorf("expected 50Hz to pass, but got peak %v", peak)
	}
	high := NewFilter(tables)
	high.SetType(filterLP12)
	high.SetCutoff(40)
	if peak := peakAfterSettling(high, 10000); peak > 0.01 {
		t.Errorf("expected 10kHz to be attenuated, but got peak %v", peak)
	}
}

func TestHighpassAttenuatesLowFrequencies(t *testing.T) {
	tables := NewTables(48000)
	f := NewFilter(tables)
	f.SetType(filterHP12)
	f.SetCutoff(100)
	if peak := peakAfterSettling(f, 50); peak > 0.01 {
		t.Errorf("expected 50Hz to be attenuated, but got peak %v", peak)
	}
}

func TestLowpassHasUnityGainAtDC(t *testing.T) {
	tables := NewTables(48000)
	for _, cutoff := range []int{0, 50, 127} {
		for _, resonance := range []int{0, 64, 127} {
			c := tables.filterCoefficients(filterLP12, cutoff, resonance)
			expectNearlyEqual(t, (c.b0+c.b1+c.b2)/(1+c.a1+c.a2), 1)
		}
	}
}

func TestFilterParametersAreClamped(t *testing.T) {
	f := NewFilter(NewTables(48000))
	f.SetType(42)
	expectEqual(t, f.kind, filterNotch)
	f.SetCutoff(-5)
	expectEqual(t, f.cutoff, 0)
	f.SetResonance(300)
	expectEqual(t, f.resonance, maxParam)
	f.modulate(-100, 100)
	f.Process(0)
	expectEqual(t, f.lastCutoff, 0)
	expectEqual(t, f.lastResonance, maxParam)
}
