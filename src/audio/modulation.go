package audio

import "math"

// ----- Modulation -----

type modulation struct {
	pitchCents      float64
	ampRatio        float64
	cutoffOffset    int
	resonanceOffset int
}

func (m *modulation) init() {
	m.pitchCents = 0
	m.ampRatio = 1
	m.cutoffOffset = 0
	m.resonanceOffset = 0
}

// collect reads one value from every LFO of a voice.
func (m *modulation) collect(lfos *[numDestinations]*CachedLFO) {
	m.init()
	m.pitchCents = lfos[destPitch].Value()
	amp := lfos[destAmp]
	if v := amp.Value(); amp.depth > 0 {
		// never above unity: full depth swings between 0 and 1
		m.ampRatio = 1 - (float64(amp.depth)-v)/(2*maxParam)
	}
	m.cutoffOffset = int(math.Round(lfos[destCutoff].Value()))
	m.resonanceOffset = int(math.Round(lfos[destResonance].Value()))
}
