package audio

import (
	"context"
	"testing"
	"time"
)

func TestNoteEvent(t *testing.T) {
	on := NoteOn(3, 60, 100)
	expectEqual(t, on.IsNoteOn(), true)
	expectEqual(t, on.IsNoteOff(), false)
	expectEqual(t, on.Channel(), 3)

	silent := NoteOn(3, 60, 0)
	expectEqual(t, silent.IsNoteOn(), false)
	expectEqual(t, silent.IsNoteOff(), true)

	off := NoteOff(20, 200)
	expectEqual(t, off.IsNoteOff(), true)
	expectEqual(t, off.Channel(), maxChannel)
	expectEqual(t, off.Note, byte(maxParam))

	cc := NoteEvent{Status: 0xB0, Note: 1, Velocity: 64}
	expectEqual(t, cc.IsNoteOn(), false)
	expectEqual(t, cc.IsNoteOff(), false)
}

func sendClock(m *SoundModule, ticks int, intervalMicroseconds int64) {
	for i := 0; i < ticks; i++ {
		m.handleMidiMessage(MidiMessage{Data: []byte{midiClockTick}, DeltaMicroseconds: intervalMicroseconds})
	}
}

func TestMidiClockDerivesBpm(t *testing.T) {
	var c midiClock
	_, ok := c.tick()
	expectEqual(t, ok, false)
	for i := 0; i < clocksPerBeat-1; i++ {
		c.advance(20833)
		_, ok := c.tick()
		expectEqual(t, ok, false)
	}
	c.advance(10000)
	c.advance(10833) // a note message in between
	bpm, ok := c.tick()
	expectEqual(t, ok, true)
	expectWithin(t, bpm, 120, 0.01)
}

func TestMidiMessagesPlayNotes(t *testing.T) {
	m := NewSoundModule(testConfig(2, 4))
	m.handleMidiMessage(MidiMessage{Data: []byte{0x90, 60, 100}})
	m.handleMidiMessage(MidiMessage{Data: []byte{0x91, 64, 100}})
	expectEqual(t, m.ActiveOscillators(), 2)
	m.handleMidiMessage(MidiMessage{Data: []byte{0x90, 60, 0}})
	expectEqual(t, m.ActiveOscillators(), 1)
	m.handleMidiMessage(MidiMessage{Data: []byte{0xB1, ccAllNotesOff, 0}})
	expectEqual(t, m.ActiveOscillators(), 0)
	m.handleMidiMessage(MidiMessage{Data: []byte{0x90}})
	m.handleMidiMessage(MidiMessage{})
	expectEqual(t, m.ActiveOscillators(), 0)
}

func TestMidiClockDrivesBpmWhenSynced(t *testing.T) {
	m := NewSoundModule(testConfig(1, 1))
	m.SetExternalSync(true)
	sendClock(m, clocksPerBeat+1, 25000) // 100 BPM
	expectNearlyEqual(t, m.Bpm(), defaultBpm)

	m.handleMidiMessage(MidiMessage{Data: []byte{midiStart}})
	expectWithin(t, m.Bpm(), 100, 1e-6)
	sendClock(m, clocksPerBeat+1, 20000) // 125 BPM
	expectWithin(t, m.Bpm(), 125, 1e-6)

	m.handleMidiMessage(MidiMessage{Data: []byte{midiStop}})
	expectNearlyEqual(t, m.Bpm(), defaultBpm)
	m.handleMidiMessage(MidiMessage{Data: []byte{midiContinue}})
	expectWithin(t, m.Bpm(), 125, 1e-6)
}

func TestDispatchMidiEndsWithChannel(t *testing.T) {
	m := NewSoundModule(testConfig(1, 2))
	ch := make(chan MidiMessage, 2)
	ch <- MidiMessage{Data: []byte{0x90, 60, 100}}
	ch <- MidiMessage{Data: []byte{0x90, 62, 100}}
	close(ch)
	expectNoError(t, m.DispatchMidi(context.Background(), ch))
	expectEqual(t, m.ActiveOscillators(), 2)
}

func TestDispatchMidiEndsWithContext(t *testing.T) {
	m := NewSoundModule(testConfig(1, 1))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	expectNoError(t, m.DispatchMidi(ctx, make(chan MidiMessage)))
}

func TestSelectInWithoutPorts(t *testing.T) {
	_, err := selectIn(nil, "")
	expectError(t, err)
}
