package audio

// ----- Oscillator Shape ----- //

const (
	shapeSine = iota
	shapeSaw
	shapeSquare
	shapeTriangle
	shapeNoise
	numShapes
)

var shapeNames = [numShapes]string{"sine", "saw", "square", "triangle", "noise"}

// ----- Oscillator ----- //

// Oscillator is one wavetable voice slot of the pool. It keeps rendering
// through the release tail after NoteOff.
type Oscillator struct {
	tables       *Tables
	table        *wavetable
	gen          uint32
	active       bool
	shape        int
	pwm          int
	phase        float64
	increment    float64
	freq         float64
	noteFreq     float64
	velocityNorm float64
	midiNote     int
	envelope     *Envelope
}

// NewOscillator ...
func NewOscillator(tables *Tables) *Oscillator {
	return &Oscillator{
		tables:   tables,
		table:    tables.sine,
		envelope: NewEnvelope(int(tables.sampleRate)),
	}
}

func (o *Oscillator) setShape(shape int, pwm int) {
	o.shape = clampInt(shape, 0, numShapes-1)
	o.pwm = clampInt(pwm, 0, maxPWM)
	o.table = o.tables.waveform(o.shape, o.pwm)
}

// NoteOn ...
func (o *Oscillator) NoteOn(freq float64, velocity int, note int) {
	o.phase = 0
	o.active = true
	o.midiNote = clampInt(note, 0, maxParam)
	o.velocityNorm = float64(clampInt(velocity, 0, maxParam)) / maxParam
	o.noteFreq = freq
	o.freq = 0
	o.SetFrequency(freq)
	o.envelope.GateOn()
}

// NoteOff ...
func (o *Oscillator) NoteOff() {
	o.active = false
	o.envelope.GateOff()
}

// SetFrequency ...
func (o *Oscillator) SetFrequency(freq float64) {
	if freq == o.freq {
		return
	}
	o.freq = freq
	o.increment = freq / o.tables.sampleRate
}

// Sample returns the current waveform value scaled by the envelope and
// advances the phase.
func (o *Oscillator) Sample() float64 {
	if !o.active && o.envelope.IsIdle() {
		return 0
	}
	value := o.table.getAtPhase(o.phase)
	o.phase += o.increment
	if o.phase >= 1 {
		o.phase -= float64(int(o.phase))
	}
	return value * o.envelope.Next()
}

// IsPlaying ...
func (o *Oscillator) IsPlaying() bool {
	return o.active || !o.envelope.IsIdle()
}
