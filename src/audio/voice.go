package audio

// ----- Voice Settings ----- //

type pitchSettings struct {
	octave   int // -2 ~ 2
	semitone int // -12 ~ 12
	fine     int // -50 ~ 50 cent
}

func (p *pitchSettings) cents() float64 {
	return float64(p.octave*1200 + p.semitone*100 + p.fine)
}

type envelopeSettings struct {
	attack  int
	decay   int
	sustain int
	release int
}

// ----- Voice ----- //

// Voice is one polyphonic channel. It borrows oscillators from the shared
// pool through generation-checked handles and mixes them through its own
// filter and LFO routing.
type Voice struct {
	tables      *Tables
	pool        *oscillatorPool
	midiChannel int
	bpm         float64
	volumeStep  int
	volume      *smoothedGain
	pitch       pitchSettings
	shape       int
	pwm         int
	envelope    envelopeSettings
	filter      *Filter
	lfos        [numDestinations]*CachedLFO
	active      []oscHandle
	mod         modulation
}

func newVoice(tables *Tables, pool *oscillatorPool, channel int, lfoInterval int) *Voice {
	v := &Voice{
		tables:      tables,
		pool:        pool,
		midiChannel: clampInt(channel, 0, maxChannel),
		bpm:         defaultBpm,
		volumeStep:  maxParam,
		volume:      newSmoothedGain(int(tables.sampleRate), 1),
		shape:       shapeSine,
		envelope:    envelopeSettings{sustain: MaxStep},
		filter:      NewFilter(tables),
		active:      make([]oscHandle, 0, len(pool.oscs)),
	}
	for i := range v.lfos {
		v.lfos[i] = NewCachedLFO(tables, lfoInterval)
	}
	return v
}

func (v *Voice) reclaim() {
	n := 0
	for _, h := range v.active {
		o := v.pool.get(h)
		if o != nil && o.IsPlaying() {
			v.active[n] = h
			n++
		}
	}
	v.active = v.active[:n]
}

func (v *Voice) accepts(channel int, note int) bool {
	if channel != v.midiChannel {
		return false
	}
	for _, h := range v.active {
		o := v.pool.get(h)
		if o != nil && o.active && o.midiNote == note {
			return false
		}
	}
	return true
}

// NoteOn starts the borrowed oscillator unless the event belongs to another
// channel or the note is already held on this voice.
func (v *Voice) NoteOn(h oscHandle, channel int, note int, velocity int) bool {
	note = clampInt(note, 0, maxParam)
	if !v.accepts(channel, note) {
		return false
	}
	o := v.pool.get(h)
	if o == nil {
		return false
	}
	v.reclaim()
	o.setShape(v.shape, v.pwm)
	o.envelope.setParams(v.bpm, &v.envelope)
	o.NoteOn(v.tables.noteFreq[note], velocity, note)
	v.active = append(v.active, h)
	return true
}

// NoteOff releases the oscillator holding the note; it keeps rendering
// until its envelope is idle.
func (v *Voice) NoteOff(channel int, note int) {
	if channel != v.midiChannel {
		return
	}
	for _, h := range v.active {
		o := v.pool.get(h)
		if o != nil && o.active && o.midiNote == note {
			o.NoteOff()
		}
	}
}

// AllNotesOff ...
func (v *Voice) AllNotesOff() {
	for _, h := range v.active {
		if o := v.pool.get(h); o != nil && o.active {
			o.NoteOff()
		}
	}
}

// Sample mixes every active oscillator into one filtered sample.
func (v *Voice) Sample() float64 {
	v.reclaim()
	m := &v.mod
	m.collect(&v.lfos)
	ratio := v.tables.centsToRatio(v.pitch.cents() + m.pitchCents)
	value := 0.0
	for _, h := range v.active {
		o := v.pool.oscs[h.index]
		o.SetFrequency(o.noteFreq * ratio)
		value += o.Sample() * o.velocityNorm
	}
	v.filter.modulate(m.cutoffOffset, m.resonanceOffset)
	value = v.filter.Process(value)
	return value * m.ampRatio * v.volume.next()
}

func (v *Voice) playing() int {
	return len(v.active)
}

func (v *Voice) forEachActive(f func(o *Oscillator)) {
	for _, h := range v.active {
		if o := v.pool.get(h); o != nil {
			f(o)
		}
	}
}

// ----- Voice Setters ----- //

// SetMidiChannel releases every held note when the channel changes.
func (v *Voice) SetMidiChannel(channel int) {
	channel = clampInt(channel, 0, maxChannel)
	if channel == v.midiChannel {
		return
	}
	v.AllNotesOff()
	v.midiChannel = channel
}

// SetVolume ...
func (v *Voice) SetVolume(step int) {
	v.volumeStep = clampInt(step, 0, maxParam)
	v.volume.setTarget(stepToGain(v.volumeStep, maxParam))
}

// SetShape ...
func (v *Voice) SetShape(shape int) {
	v.shape = clampInt(shape, 0, numShapes-1)
	v.forEachActive(func(o *Oscillator) { o.setShape(v.shape, v.pwm) })
}

// SetPWM ...
func (v *Voice) SetPWM(pwm int) {
	v.pwm = clampInt(pwm, 0, maxPWM)
	v.forEachActive(func(o *Oscillator) { o.setShape(v.shape, v.pwm) })
}

// SetAttack ...
func (v *Voice) SetAttack(step int) {
	v.envelope.attack = clampInt(step, 0, MaxStep)
	v.forEachActive(func(o *Oscillator) { o.envelope.SetAttack(v.envelope.attack) })
}

// SetDecay ...
func (v *Voice) SetDecay(step int) {
	v.envelope.decay = clampInt(step, 0, MaxStep)
	v.forEachActive(func(o *Oscillator) { o.envelope.SetDecay(v.envelope.decay) })
}

// SetSustain ...
func (v *Voice) SetSustain(step int) {
	v.envelope.sustain = clampInt(step, 0, MaxStep)
	v.forEachActive(func(o *Oscillator) { o.envelope.SetSustain(v.envelope.sustain) })
}

// SetRelease ...
func (v *Voice) SetRelease(step int) {
	v.envelope.release = clampInt(step, 0, MaxStep)
	v.forEachActive(func(o *Oscillator) { o.envelope.SetRelease(v.envelope.release) })
}

// SetOctave ...
func (v *Voice) SetOctave(octave int) {
	v.pitch.octave = clampInt(octave, -2, 2)
}

// SetSemitone ...
func (v *Voice) SetSemitone(semitone int) {
	v.pitch.semitone = clampInt(semitone, -12, 12)
}

// SetFine ...
func (v *Voice) SetFine(cents int) {
	v.pitch.fine = clampInt(cents, -50, 50)
}

// SetFilterType ...
func (v *Voice) SetFilterType(kind int) {
	v.filter.SetType(kind)
}

// SetCutoff ...
func (v *Voice) SetCutoff(cutoff int) {
	v.filter.SetCutoff(cutoff)
}

// SetResonance ...
func (v *Voice) SetResonance(resonance int) {
	v.filter.SetResonance(resonance)
}

// SetLFODepth ...
func (v *Voice) SetLFODepth(dest int, depth int) {
	if dest < 0 || dest >= numDestinations {
		return
	}
	v.lfos[dest].SetDepth(depth)
}

// SetLFOSubdivision ...
func (v *Voice) SetLFOSubdivision(dest int, index int) {
	if dest < 0 || dest >= numDestinations {
		return
	}
	v.lfos[dest].SetSubdivision(index)
}

// SetLFOWaveform ...
func (v *Voice) SetLFOWaveform(dest int, wave int) {
	if dest < 0 || dest >= numDestinations {
		return
	}
	v.lfos[dest].SetWaveform(wave)
}

// SetBpm applies to the LFOs now and to envelopes when the next note is
// gated.
func (v *Voice) SetBpm(bpm float64) {
	v.bpm = clampBpm(bpm)
	for _, l := range v.lfos {
		l.SetBpm(v.bpm)
	}
}

func (v *Voice) resetLFOs() {
	for _, l := range v.lfos {
		l.Reset()
	}
}
