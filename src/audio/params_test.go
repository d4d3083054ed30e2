package audio

import (
	"strings"
	"testing"
)

func update(t *testing.T, m *SoundModule, command string) {
	t.Helper()
	expectNoError(t, m.Update(strings.Fields(command)))
}

func TestUpdateSetsVoiceFields(t *testing.T) {
	m := NewSoundModule(testConfig(2, 2))
	v := m.voices[1]
	update(t, m, "set 1 oscillator 0 square")
	update(t, m, "set 1 oscillator 1 8")
	update(t, m, "set 1 filter 0 hp12")
	update(t, m, "set 1 filter 1 30")
	update(t, m, "set 1 envelope 0 99")
	update(t, m, "set 1 tuning 2 -70")
	update(t, m, "set 1 lfo_depth pitch 40")
	update(t, m, "set 1 lfo_rate cutoff 4")
	update(t, m, "set 1 lfo_wave amp saw")
	update(t, m, "set 1 channel 1 0")
	update(t, m, "set 1 0 0 5")

	expectEqual(t, v.shape, shapeSquare)
	expectEqual(t, v.pwm, 8)
	expectEqual(t, v.filter.kind, filterHP12)
	expectEqual(t, v.filter.cutoff, 30)
	expectEqual(t, v.envelope.attack, MaxStep)
	expectEqual(t, v.pitch.fine, -50)
	expectEqual(t, v.lfos[destPitch].depth, 40)
	expectEqual(t, v.lfos[destCutoff].subdivision, 4)
	expectEqual(t, v.lfos[destAmp].wave, lfoSaw)
	expectEqual(t, v.volumeStep, 0)
	expectEqual(t, v.midiChannel, 5)
}

func TestUpdateRejectsBadAddresses(t *testing.T) {
	m := NewSoundModule(testConfig(2, 2))
	for _, command := range []string{
		"",
		"frobnicate",
		"set 5 filter 1 3",
		"set 0 filter 7 3",
		"set 0 nope 0 0",
		"set 0 filter 0 moog",
		"set 0 lfo_depth wobble 3",
		"set 0 filter 1",
		"note_on 0 60",
		"bpm fast",
		"transport rewind",
		"master loud",
	} {
		if err := m.Update(strings.Fields(command)); err == nil {
			t.Errorf("expected %q to fail", command)
		}
	}
	expectError(t, m.ApplyUpdate(FieldUpdate{Voice: 0, Page: numPages}))
	expectError(t, m.ApplyUpdate(FieldUpdate{Voice: 0, Page: PageLFODepth, Field: numDestinations}))
	expectError(t, m.ApplyUpdate(FieldUpdate{Voice: -1, Page: PageFilter}))
}

func TestUpdateGlobalCommands(t *testing.T) {
	m := NewSoundModule(testConfig(1, 2))
	update(t, m, "bpm 90")
	expectNearlyEqual(t, m.Bpm(), 90)
	update(t, m, "set 0 global 1 140")
	expectNearlyEqual(t, m.Bpm(), 140)
	update(t, m, "master 0")
	expectEqual(t, m.masterStep, 0)
	update(t, m, "set 0 global 0 200")
	expectEqual(t, m.masterStep, maxParam)
	update(t, m, "sync on")
	expectEqual(t, m.usesExternalSync, true)
	update(t, m, "set 0 global 2 off")
	expectEqual(t, m.usesExternalSync, false)
	update(t, m, "transport start")
	expectEqual(t, m.transport, transportStart)

	update(t, m, "note_on 0 60 100")
	update(t, m, "note_on 0 64 100")
	expectEqual(t, m.ActiveOscillators(), 2)
	update(t, m, "note_off 0 60")
	expectEqual(t, m.ActiveOscillators(), 1)
	update(t, m, "panic")
	expectEqual(t, m.ActiveOscillators(), 0)
}

func TestParseTransport(t *testing.T) {
	for s, expected := range map[string]int{
		"start":    transportStart,
		"continue": transportContinue,
		"stop":     transportStop,
	} {
		cmd, err := ParseTransport(s)
		expectNoError(t, err)
		expectEqual(t, cmd, expected)
	}
}
