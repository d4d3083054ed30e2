package audio

// ----- LFO Wave ----- //

const (
	lfoSine = iota
	lfoTriangle
	lfoSaw
	lfoPulse
	numLfoWaves
)

var lfoWaveNames = [numLfoWaves]string{"sine", "triangle", "saw", "pulse"}

// cycles per beat
var lfoSubdivisions = []float64{1.0 / 4, 1.0 / 2, 1, 2, 3, 4, 6, 8, 12, 16, 24, 32}

const defaultSubdivision = 2

// ----- LFO ----- //

// LFO is a tempo-synced modulation oscillator. Its value lies in
// [-depth, +depth].
type LFO struct {
	tables      *Tables
	wave        int
	subdivision int
	depth       int
	bpm         float64
	phase       float64
	increment   float64
}

// NewLFO ...
func NewLFO(tables *Tables) *LFO {
	l := &LFO{
		tables:      tables,
		wave:        lfoSine,
		subdivision: defaultSubdivision,
		bpm:         defaultBpm,
	}
	l.updateIncrement()
	return l
}

// SetWaveform ...
func (l *LFO) SetWaveform(wave int) {
	l.wave = clampInt(wave, 0, numLfoWaves-1)
}

// SetSubdivision ...
func (l *LFO) SetSubdivision(index int) {
	l.subdivision = clampInt(index, 0, len(lfoSubdivisions)-1)
	l.updateIncrement()
}

// SetDepth ...
func (l *LFO) SetDepth(depth int) {
	l.depth = clampInt(depth, 0, maxParam)
}

// SetBpm ...
func (l *LFO) SetBpm(bpm float64) {
	l.bpm = clampBpm(bpm)
	l.updateIncrement()
}

// Reset restarts the cycle, e.g. on transport start.
func (l *LFO) Reset() {
	l.phase = 0
}

func (l *LFO) updateIncrement() {
	rateHz := l.bpm / 60 * lfoSubdivisions[l.subdivision]
	l.increment = rateHz / l.tables.sampleRate
}

func (l *LFO) shape() float64 {
	switch l.wave {
	case lfoTriangle:
		return l.tables.triangle.getAtPhase(l.phase)
	case lfoSaw:
		return l.phase*2 - 1
	case lfoPulse:
		if l.phase < 0.5 {
			return 1
		}
		return -1
	default:
		return l.tables.sine.getAtPhase(l.phase)
	}
}

func (l *LFO) advance(steps int) {
	l.phase += l.increment * float64(steps)
	if l.phase >= 1 {
		l.phase -= float64(int(l.phase))
	}
}

// Value returns waveform(phase) * depth and advances one sample.
func (l *LFO) Value() float64 {
	if l.depth == 0 {
		l.advance(1)
		return 0
	}
	v := l.shape() * float64(l.depth)
	l.advance(1)
	return v
}

// ----- Cached LFO ----- //

// CachedLFO evaluates the wrapped LFO every interval samples and holds the
// value in between.
type CachedLFO struct {
	*LFO
	interval int
	counter  int
	value    float64
}

// NewCachedLFO ...
func NewCachedLFO(tables *Tables, interval int) *CachedLFO {
	if interval < 1 {
		interval = 1
	}
	return &CachedLFO{
		LFO:      NewLFO(tables),
		interval: interval,
	}
}

// Value ...
func (c *CachedLFO) Value() float64 {
	if c.counter == 0 {
		if c.depth == 0 {
			c.value = 0
		} else {
			c.value = c.shape() * float64(c.depth)
		}
		c.advance(c.interval)
	}
	c.counter++
	if c.counter >= c.interval {
		c.counter = 0
	}
	return c.value
}

// Reset ...
func (c *CachedLFO) Reset() {
	c.LFO.Reset()
	c.counter = 0
}
