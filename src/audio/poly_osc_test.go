package audio

import (
	"math"
	"testing"
)

func TestOscillatorFollowsFrequency(t *testing.T) {
	o := NewOscillator(NewTables(48000))
	o.envelope.setParams(defaultBpm, &envelopeSettings{sustain: MaxStep})
	o.NoteOn(440, maxParam, 69)
	for n := 0; n < 100; n++ {
		expectWithin(t, o.Sample(), math.Sin(2*math.Pi*440*float64(n)/48000), 1e-5)
	}
	o.SetFrequency(880)
	expectNearlyEqual(t, o.increment*48000, 880)
}

func TestOscillatorPlaysThroughRelease(t *testing.T) {
	o := NewOscillator(NewTables(48000))
	o.envelope.setParams(defaultBpm, &envelopeSettings{sustain: MaxStep, release: 4})
	o.NoteOn(440, 100, 69)
	expectEqual(t, o.IsPlaying(), true)
	for i := 0; i < 10; i++ {
		o.Sample()
	}
	o.NoteOff()
	expectEqual(t, o.active, false)
	expectEqual(t, o.IsPlaying(), true)
	for i := 0; i < int(o.envelope.release.samples); i++ {
		o.Sample()
	}
	expectEqual(t, o.IsPlaying(), false)
	expectEqual(t, o.Sample(), 0.0)
}

func TestPoolInvalidatesStaleHandles(t *testing.T) {
	pool := newOscillatorPool(NewTables(48000), 1)
	h1, ok := pool.allocate()
	expectEqual(t, ok, true)
	o := pool.get(h1)
	o.NoteOn(440, 100, 69)
	o.NoteOff() // release 0: idle at once

	h2, ok := pool.allocate()
	expectEqual(t, ok, true)
	expectEqual(t, h2.index, h1.index)
	if pool.get(h1) != nil {
		t.Errorf("expected stale handle to resolve to nil")
	}
	if pool.get(h2) != o {
		t.Errorf("expected fresh handle to resolve")
	}
	if pool.get(oscHandle{index: 5, gen: h2.gen}) != nil {
		t.Errorf("expected out of range handle to resolve to nil")
	}
}

func TestPoolIsBounded(t *testing.T) {
	pool := newOscillatorPool(NewTables(48000), 2)
	for i := 0; i < 2; i++ {
		h, ok := pool.allocate()
		expectEqual(t, ok, true)
		pool.get(h).NoteOn(440, 100, 60+i)
	}
	expectEqual(t, pool.activeCount(), 2)
	_, ok := pool.allocate()
	expectEqual(t, ok, false)
}
