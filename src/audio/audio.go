package audio

import (
	"context"
	"io"
	"log"
	"math"
	"sync"
)

const (
	channelNum      = 2
	bitDepthInBytes = 2
	bytesPerFrame   = bitDepthInBytes * channelNum
	maxParam        = 127
	maxPWM          = 31
	maxChannel      = 15
	baseFreq        = 440.0
)

// ----- Utility ----- //

func clampInt(v int, min int, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func noteToFreq(note int) float64 {
	return baseFreq * math.Pow(2, float64(note-69)/12)
}

// ----- Transport ----- //

const (
	transportUnknown = iota
	transportStart
	transportContinue
	transportStop
)

// ----- Config ----- //

// Config ...
type Config struct {
	SampleRate    int
	BufferSize    int // frames per render iteration
	NumVoices     int
	MaxPolyphony  int
	Amplitude     float64
	LFODecimation int
}

// DefaultConfig ...
func DefaultConfig() Config {
	return Config{
		SampleRate:    48000,
		BufferSize:    512,
		NumVoices:     8,
		MaxPolyphony:  16,
		Amplitude:     0.5,
		LFODecimation: 16,
	}
}

// BufferSizeInBytes is the size of one interleaved 16-bit stereo buffer.
func (c Config) BufferSizeInBytes() int {
	return c.BufferSize * bytesPerFrame
}

// ----- Sound Module ----- //

// SoundModule owns the oscillator pool, the voices and the global state,
// and renders PCM buffers. One mutex guards everything voice related; the
// render loop holds it only while mixing.
type SoundModule struct {
	mu               sync.Mutex
	config           Config
	tables           *Tables
	pool             *oscillatorPool
	voices           []*Voice
	master           *smoothedGain
	masterStep       int
	midiBpm          float64
	settingsBpm      float64
	bpm              float64
	usesExternalSync bool
	transport        int
	dropped          int

	ctx   context.Context
	mix   []float64 // length: BufferSize
	pcm   []int16   // length: BufferSize * channelNum
	clock midiClock
}

var _ io.Reader = (*SoundModule)(nil)

// NewSoundModule ...
func NewSoundModule(config Config) *SoundModule {
	def := DefaultConfig()
	if config.SampleRate <= 0 {
		config.SampleRate = def.SampleRate
	}
	if config.BufferSize <= 0 {
		config.BufferSize = def.BufferSize
	}
	if config.NumVoices <= 0 {
		config.NumVoices = def.NumVoices
	}
	if config.MaxPolyphony <= 0 {
		config.MaxPolyphony = def.MaxPolyphony
	}
	if config.LFODecimation <= 0 {
		config.LFODecimation = 1
	}
	tables := NewTables(config.SampleRate)
	pool := newOscillatorPool(tables, config.MaxPolyphony)
	voices := make([]*Voice, config.NumVoices)
	for i := range voices {
		voices[i] = newVoice(tables, pool, i, config.LFODecimation)
	}
	return &SoundModule{
		config:      config,
		tables:      tables,
		pool:        pool,
		voices:      voices,
		master:      newSmoothedGain(config.SampleRate, 1),
		masterStep:  maxParam,
		settingsBpm: defaultBpm,
		bpm:         defaultBpm,
		ctx:         context.Background(),
		mix:         make([]float64, config.BufferSize),
		pcm:         make([]int16, config.BufferSize*channelNum),
	}
}

// Config ...
func (m *SoundModule) Config() Config {
	return m.config
}

// ----- Notes ----- //

// HandleNote starts or releases notes. A note-on that finds no free
// oscillator is dropped.
func (m *SoundModule) HandleNote(ev NoteEvent) {
	m.mu.Lock()
	dropped := m.handleNote(ev)
	m.mu.Unlock()
	if dropped > 0 {
		log.Printf("maxPolyphony exceeded: dropped note %d on channel %d\n", ev.Note, ev.Channel())
	}
}

func (m *SoundModule) handleNote(ev NoteEvent) int {
	channel := ev.Channel()
	note := int(ev.Note)
	dropped := 0
	switch {
	case ev.IsNoteOn():
		for _, v := range m.voices {
			if !v.accepts(channel, note) {
				continue
			}
			h, ok := m.pool.allocate()
			if !ok {
				dropped++
				continue
			}
			v.NoteOn(h, channel, note, int(ev.Velocity))
		}
	case ev.IsNoteOff():
		for _, v := range m.voices {
			v.NoteOff(channel, note)
		}
	}
	m.dropped += dropped
	return dropped
}

// AllNotesOff releases every held note on every voice.
func (m *SoundModule) AllNotesOff() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.voices {
		v.AllNotesOff()
	}
}

func (m *SoundModule) channelNotesOff(channel int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.voices {
		if v.midiChannel == channel {
			v.AllNotesOff()
		}
	}
}

// ActiveOscillators ...
func (m *SoundModule) ActiveOscillators() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool.activeCount()
}

// Dropped returns the number of note-ons lost to pool exhaustion.
func (m *SoundModule) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// ----- Global State ----- //

// SetMasterVolume ...
func (m *SoundModule) SetMasterVolume(step int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setMasterVolume(step)
}

func (m *SoundModule) setMasterVolume(step int) {
	m.masterStep = clampInt(step, 0, maxParam)
	m.master.setTarget(stepToGain(m.masterStep, maxParam))
}

// SetBpmFromMidi ...
func (m *SoundModule) SetBpmFromMidi(bpm float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.midiBpm = clampBpm(bpm)
	m.updateBpmSetting()
}

// SetSettingsBpm ...
func (m *SoundModule) SetSettingsBpm(bpm float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setSettingsBpm(bpm)
}

func (m *SoundModule) setSettingsBpm(bpm float64) {
	m.settingsBpm = clampBpm(bpm)
	m.updateBpmSetting()
}

// SetExternalSync ...
func (m *SoundModule) SetExternalSync(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setExternalSync(enabled)
}

func (m *SoundModule) setExternalSync(enabled bool) {
	m.usesExternalSync = enabled
	m.updateBpmSetting()
}

// SetTransportState ...
func (m *SoundModule) SetTransportState(cmd int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cmd < transportUnknown || cmd > transportStop {
		cmd = transportUnknown
	}
	m.transport = cmd
	if cmd == transportStart {
		for _, v := range m.voices {
			v.resetLFOs()
		}
	}
	m.updateBpmSetting()
}

// Bpm returns the tempo currently applied to voices.
func (m *SoundModule) Bpm() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bpm
}

func (m *SoundModule) updateBpmSetting() {
	bpm := m.settingsBpm
	running := m.transport == transportStart || m.transport == transportContinue
	if m.usesExternalSync && running && m.midiBpm > 0 {
		bpm = m.midiBpm
	}
	bpm = clampBpm(bpm)
	if bpm == m.bpm {
		return
	}
	m.bpm = bpm
	for _, v := range m.voices {
		v.SetBpm(bpm)
	}
	m.pool.setBpm(bpm)
}

// ----- Render ----- //

// mixBlock fills m.mix[:frames] with the master-scaled voice sum.
func (m *SoundModule) mixBlock(frames int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	amplitude := m.config.Amplitude
	for i := 0; i < frames; i++ {
		gain := m.master.next()
		value := 0.0
		for _, v := range m.voices {
			value += v.Sample()
		}
		value *= amplitude * gain
		if math.IsNaN(value) || math.IsInf(value, 0) {
			value = 0
		}
		m.mix[i] = value
	}
}

// Process renders interleaved stereo frames into out and returns the
// number of frames written.
func (m *SoundModule) Process(out []int16) int {
	frames := len(out) / channelNum
	for done := 0; done < frames; {
		n := frames - done
		if n > m.config.BufferSize {
			n = m.config.BufferSize
		}
		m.mixBlock(n)
		for i := 0; i < n; i++ {
			s := quantize(m.mix[i])
			out[(done+i)*channelNum] = s
			out[(done+i)*channelNum+1] = s
		}
		done += n
	}
	return frames
}

func quantize(value float64) int16 {
	const max = 32767
	if value > 1 {
		value = 1
	} else if value < -1 {
		value = -1
	}
	return int16(value * max)
}

// Read renders little-endian 16-bit stereo PCM. It never fails while the
// context is alive: a panic while rendering yields silence.
func (m *SoundModule) Read(buf []byte) (n int, err error) {
	select {
	case <-m.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered in render loop: %v\n", r)
			for i := range buf {
				buf[i] = 0
			}
			n, err = len(buf), nil
		}
	}()
	frames := len(buf) / bytesPerFrame
	for done := 0; done < frames; {
		chunk := frames - done
		if chunk > m.config.BufferSize {
			chunk = m.config.BufferSize
		}
		pcm := m.pcm[:chunk*channelNum]
		m.Process(pcm)
		offset := done * bytesPerFrame
		for i, s := range pcm {
			buf[offset+2*i] = byte(s)
			buf[offset+2*i+1] = byte(s >> 8)
		}
		done += chunk
	}
	for i := frames * bytesPerFrame; i < len(buf); i++ {
		buf[i] = 0
	}
	return len(buf), nil
}

// Start runs the render loop until ctx is cancelled. Writes to sink block
// while its buffer is full, which paces the loop.
func (m *SoundModule) Start(ctx context.Context, sink io.Writer) error {
	m.ctx = ctx
	if _, err := io.CopyBuffer(sink, m, make([]byte, m.config.BufferSizeInBytes())); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}
