package audio

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

const (
	midiClockTick     = 0xF8
	midiStart         = 0xFA
	midiContinue      = 0xFB
	midiStop          = 0xFC
	midiControlChange = 0xB
	ccAllNotesOff     = 123
	clocksPerBeat     = 24
)

// ----- Note Event ----- //

// NoteEvent ...
type NoteEvent struct {
	Status   byte
	Note     byte
	Velocity byte
}

// NoteOn ...
func NoteOn(channel int, note int, velocity int) NoteEvent {
	return NoteEvent{
		Status:   0x90 | byte(clampInt(channel, 0, maxChannel)),
		Note:     byte(clampInt(note, 0, maxParam)),
		Velocity: byte(clampInt(velocity, 0, maxParam)),
	}
}

// NoteOff ...
func NoteOff(channel int, note int) NoteEvent {
	return NoteEvent{
		Status: 0x80 | byte(clampInt(channel, 0, maxChannel)),
		Note:   byte(clampInt(note, 0, maxParam)),
	}
}

// IsNoteOn ...
func (e NoteEvent) IsNoteOn() bool {
	return e.Status>>4 == 0x9 && e.Velocity > 0
}

// IsNoteOff treats a note-on with zero velocity as a note-off.
func (e NoteEvent) IsNoteOff() bool {
	return e.Status>>4 == 0x8 || e.Status>>4 == 0x9 && e.Velocity == 0
}

// Channel ...
func (e NoteEvent) Channel() int {
	return int(e.Status & 0x0F)
}

// ----- MIDI Clock ----- //

// midiClock derives a tempo from 24 PPQN clock ticks. Deltas are the
// microseconds since the previous message of any kind.
type midiClock struct {
	started   bool
	sinceTick int64
	window    int64
	ticks     int
}

func (c *midiClock) advance(deltaMicroseconds int64) {
	if deltaMicroseconds > 0 {
		c.sinceTick += deltaMicroseconds
	}
}

func (c *midiClock) tick() (float64, bool) {
	if c.started {
		c.window += c.sinceTick
		c.ticks++
	}
	c.started = true
	c.sinceTick = 0
	if c.ticks < clocksPerBeat {
		return 0, false
	}
	window := c.window
	c.ticks = 0
	c.window = 0
	if window <= 0 {
		return 0, false
	}
	return 60e6 / float64(window), true
}

func (c *midiClock) reset() {
	*c = midiClock{}
}

// ----- MIDI IN ----- //

// MidiMessage ...
type MidiMessage struct {
	Data              []byte
	DeltaMicroseconds int64
}

func selectIn(ins []midi.In, name string) (midi.In, error) {
	if len(ins) == 0 {
		return nil, fmt.Errorf("MIDI IN not found")
	}
	if name == "" {
		return ins[0], nil
	}
	for _, in := range ins {
		if strings.Contains(in.String(), name) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("MIDI IN %q not found in %v", name, ins)
}

// ListenToMidiIn ...
func ListenToMidiIn(ctx context.Context, portName string) <-chan MidiMessage {
	ch := make(chan MidiMessage, 65536)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		in, err := selectIn(ins, portName)
		if err != nil {
			log.Printf("WARN: %v\n", err)
			return
		}
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := MidiMessage{Data: append([]byte(nil), data...), DeltaMicroseconds: deltaMicroseconds}
			select {
			case ch <- msg:
			case <-ctx.Done():
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}

// DispatchMidi feeds MIDI messages into the module until ctx is done or
// the channel is closed.
func (m *SoundModule) DispatchMidi(ctx context.Context, ch <-chan MidiMessage) error {
	for {
		select {
		case <-ctx.Done():
			log.Println("DispatchMidi() interrupted")
			return nil
		case msg, ok := <-ch:
			if !ok {
				log.Println("DispatchMidi() ended.")
				return nil
			}
			m.handleMidiMessage(msg)
		}
	}
}

// handleMidiMessage runs on the control goroutine only.
func (m *SoundModule) handleMidiMessage(msg MidiMessage) {
	m.clock.advance(msg.DeltaMicroseconds)
	data := msg.Data
	if len(data) == 0 {
		return
	}
	switch data[0] {
	case midiClockTick:
		if bpm, ok := m.clock.tick(); ok {
			m.SetBpmFromMidi(bpm)
		}
		return
	case midiStart:
		m.clock.reset()
		m.SetTransportState(transportStart)
		return
	case midiContinue:
		m.SetTransportState(transportContinue)
		return
	case midiStop:
		m.SetTransportState(transportStop)
		return
	}
	if len(data) < 3 {
		return
	}
	switch data[0] >> 4 {
	case 0x8, 0x9:
		m.HandleNote(NoteEvent{Status: data[0], Note: data[1], Velocity: data[2]})
	case midiControlChange:
		if data[1] == ccAllNotesOff {
			m.channelNotesOff(int(data[0] & 0x0F))
		}
	}
}
