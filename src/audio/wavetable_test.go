package audio

import (
	"math"
	"testing"
)

func TestSineTableInterpolates(t *testing.T) {
	tables := NewTables(48000)
	for _, phase := range []float64{0, 0.1, 0.123456, 0.25, 0.5, 0.77, 0.999999} {
		expectWithin(t, tables.sine.getAtPhase(phase), math.Sin(2*math.Pi*phase), 1e-6)
	}
}

func TestPulseDuty(t *testing.T) {
	tables := NewTables(48000)
	square := tables.waveform(shapeSquare, 0)
	expectEqual(t, square.getAtPhase(0.25), 1.0)
	expectEqual(t, square.getAtPhase(0.75), -1.0)
	narrow := tables.waveform(shapeSquare, 16)
	expectNearlyEqual(t, narrow.getAtPhase(0.1), 1)
	expectNearlyEqual(t, narrow.getAtPhase(0.3), -1)
	expectNearlyEqual(t, pulseDuty(maxPWM), 0.5-31.0/64)
}

func TestCentsToRatio(t *testing.T) {
	tables := NewTables(48000)
	expectNearlyEqual(t, tables.centsToRatio(0), 1)
	expectNearlyEqual(t, tables.centsToRatio(1200), 2)
	expectNearlyEqual(t, tables.centsToRatio(-1200), 0.5)
	expectWithin(t, tables.centsToRatio(50.5), math.Pow(2, 50.5/1200), 1e-6)
	expectNearlyEqual(t, tables.centsToRatio(100000), 16)
	expectNearlyEqual(t, tables.centsToRatio(-100000), 1.0/16)
}

func TestNoteFrequencies(t *testing.T) {
	tables := NewTables(48000)
	expectNearlyEqual(t, tables.noteFreq[69], 440)
	expectNearlyEqual(t, tables.noteFreq[57], 220)
	expectWithin(t, tables.noteFreq[60], 261.6256, 1e-3)
}

func TestNoiseTableIsReproducible(t *testing.T) {
	a := NewTables(48000)
	b := NewTables(44100)
	for i, v := range a.noise.values {
		if v != b.noise.values[i] || v < -1 || v > 1 {
			t.Fatalf("unexpected noise value at %d: %v, %v", i, v, b.noise.values[i])
		}
	}
}

func TestCutoffIsLimitedBySampleRate(t *testing.T) {
	expectNearlyEqual(t, cutoffIndexToFreq(0, 48000), minCutoffHz)
	expectNearlyEqual(t, cutoffIndexToFreq(filterSteps-1, 48000), maxCutoffHz)
	expectNearlyEqual(t, cutoffIndexToFreq(filterSteps-1, 22050), 22050*0.45)
	expectNearlyEqual(t, resonanceIndexToQ(0), minQ)
	expectNearlyEqual(t, resonanceIndexToQ(filterSteps-1), maxQ)
}
