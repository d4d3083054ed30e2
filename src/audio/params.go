package audio

import (
	"fmt"
	"strconv"
)

// ----- Page ----- //

// Pages of the parameter space. A field indexes within a page.
const (
	PageChannel = iota
	PageOscillator
	PageFilter
	PageEnvelope
	PageTuning
	PageLFODepth
	PageLFORate
	PageLFOWave
	PageGlobal
	numPages
)

var pageNames = [numPages]string{
	"channel",
	"oscillator",
	"filter",
	"envelope",
	"tuning",
	"lfo_depth",
	"lfo_rate",
	"lfo_wave",
	"global",
}

func pageFromString(s string) (int, error) {
	for i, name := range pageNames {
		if name == s {
			return i, nil
		}
	}
	if page, err := strconv.Atoi(s); err == nil && page >= 0 && page < numPages {
		return page, nil
	}
	return 0, fmt.Errorf("unknown page %q", s)
}

func indexOf(names []string, s string) int {
	for i, name := range names {
		if name == s {
			return i
		}
	}
	return -1
}

// fieldFromString accepts a number or, on LFO pages, a destination name.
func fieldFromString(page int, s string) (int, error) {
	if field, err := strconv.Atoi(s); err == nil {
		return field, nil
	}
	switch page {
	case PageLFODepth, PageLFORate, PageLFOWave:
		return destinationFromString(s)
	}
	return 0, fmt.Errorf("unknown field %q on page %s", s, pageNames[page])
}

// valueFromString accepts a number or the name of a shape, filter type or
// LFO waveform where the field takes one.
func valueFromString(page int, field int, s string) (int, error) {
	if value, err := strconv.Atoi(s); err == nil {
		return value, nil
	}
	i := -1
	switch {
	case page == PageOscillator && field == 0:
		i = indexOf(shapeNames[:], s)
	case page == PageFilter && field == 0:
		i = indexOf(filterNames[:], s)
	case page == PageLFOWave:
		i = indexOf(lfoWaveNames[:], s)
	case page == PageGlobal && field == 2:
		i = indexOf([]string{"off", "on"}, s)
	}
	if i < 0 {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return i, nil
}

// ----- Field Update ----- //

// FieldUpdate is one parameter change addressed by (voice, page, field).
type FieldUpdate struct {
	Voice int
	Page  int
	Field int
	Value int16
}

// ApplyUpdate routes an update to the matching setter. Values are clamped
// by the setters; only bad addressing is an error.
func (m *SoundModule) ApplyUpdate(u FieldUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyUpdate(u)
}

func (m *SoundModule) applyUpdate(u FieldUpdate) error {
	value := int(u.Value)
	if u.Page == PageGlobal {
		switch u.Field {
		case 0:
			m.setMasterVolume(value)
		case 1:
			m.setSettingsBpm(float64(value))
		case 2:
			m.setExternalSync(value != 0)
		default:
			return fmt.Errorf("invalid field %d on page %s", u.Field, pageNames[u.Page])
		}
		return nil
	}
	if u.Voice < 0 || u.Voice >= len(m.voices) {
		return fmt.Errorf("invalid voice %d", u.Voice)
	}
	v := m.voices[u.Voice]
	switch u.Page {
	case PageChannel:
		switch u.Field {
		case 0:
			v.SetMidiChannel(value)
		case 1:
			v.SetVolume(value)
		default:
			return m.invalidField(u)
		}
	case PageOscillator:
		switch u.Field {
		case 0:
			v.SetShape(value)
		case 1:
			v.SetPWM(value)
		default:
			return m.invalidField(u)
		}
	case PageFilter:
		switch u.Field {
		case 0:
			v.SetFilterType(value)
		case 1:
			v.SetCutoff(value)
		case 2:
			v.SetResonance(value)
		default:
			return m.invalidField(u)
		}
	case PageEnvelope:
		switch u.Field {
		case 0:
			v.SetAttack(value)
		case 1:
			v.SetDecay(value)
		case 2:
			v.SetSustain(value)
		case 3:
			v.SetRelease(value)
		default:
			return m.invalidField(u)
		}
	case PageTuning:
		switch u.Field {
		case 0:
			v.SetOctave(value)
		case 1:
			v.SetSemitone(value)
		case 2:
			v.SetFine(value)
		default:
			return m.invalidField(u)
		}
	case PageLFODepth, PageLFORate, PageLFOWave:
		if u.Field < 0 || u.Field >= numDestinations {
			return m.invalidField(u)
		}
		switch u.Page {
		case PageLFODepth:
			v.SetLFODepth(u.Field, value)
		case PageLFORate:
			v.SetLFOSubdivision(u.Field, value)
		default:
			v.SetLFOWaveform(u.Field, value)
		}
	default:
		return fmt.Errorf("invalid page %d", u.Page)
	}
	return nil
}

func (m *SoundModule) invalidField(u FieldUpdate) error {
	return fmt.Errorf("invalid field %d on page %s", u.Field, pageNames[u.Page])
}

// ----- Commands ----- //

// ParseTransport ...
func ParseTransport(s string) (int, error) {
	switch s {
	case "start":
		return transportStart, nil
	case "continue":
		return transportContinue, nil
	case "stop":
		return transportStop, nil
	}
	return transportUnknown, fmt.Errorf("unknown transport command %q", s)
}

func parseInts(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d arguments but got %v", n, args)
	}
	values := make([]int, n)
	for i, arg := range args {
		value, err := strconv.Atoi(arg)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

// Update applies one command of the text control protocol:
//   note_on <ch> <note> <vel> | note_off <ch> <note>
//   set <voice> <page> <field> <value>
//   bpm <bpm> | transport start|continue|stop | master <0-127> | sync on|off | panic
func (m *SoundModule) Update(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}
	args := command[1:]
	switch command[0] {
	case "note_on":
		v, err := parseInts(args, 3)
		if err != nil {
			return fmt.Errorf("note_on: %w", err)
		}
		m.HandleNote(NoteOn(v[0], v[1], v[2]))
	case "note_off":
		v, err := parseInts(args, 2)
		if err != nil {
			return fmt.Errorf("note_off: %w", err)
		}
		m.HandleNote(NoteOff(v[0], v[1]))
	case "set":
		u, err := parseFieldUpdate(args)
		if err != nil {
			return fmt.Errorf("set: %w", err)
		}
		return m.ApplyUpdate(u)
	case "bpm":
		if len(args) != 1 {
			return fmt.Errorf("bpm: expected 1 argument but got %v", args)
		}
		bpm, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("bpm: %w", err)
		}
		m.SetSettingsBpm(bpm)
	case "transport":
		if len(args) != 1 {
			return fmt.Errorf("transport: expected 1 argument but got %v", args)
		}
		cmd, err := ParseTransport(args[0])
		if err != nil {
			return err
		}
		m.SetTransportState(cmd)
	case "master":
		v, err := parseInts(args, 1)
		if err != nil {
			return fmt.Errorf("master: %w", err)
		}
		m.SetMasterVolume(v[0])
	case "sync":
		if len(args) != 1 {
			return fmt.Errorf("sync: expected 1 argument but got %v", args)
		}
		m.SetExternalSync(args[0] == "on")
	case "panic":
		m.AllNotesOff()
	default:
		return fmt.Errorf("unknown command %v", command[0])
	}
	return nil
}

func parseFieldUpdate(args []string) (FieldUpdate, error) {
	if len(args) != 4 {
		return FieldUpdate{}, fmt.Errorf("expected <voice> <page> <field> <value> but got %v", args)
	}
	voice, err := strconv.Atoi(args[0])
	if err != nil {
		return FieldUpdate{}, err
	}
	page, err := pageFromString(args[1])
	if err != nil {
		return FieldUpdate{}, err
	}
	field, err := fieldFromString(page, args[2])
	if err != nil {
		return FieldUpdate{}, err
	}
	value, err := valueFromString(page, field, args[3])
	if err != nil {
		return FieldUpdate{}, err
	}
	return FieldUpdate{Voice: voice, Page: page, Field: field, Value: int16(clampInt(value, -32768, 32767))}, nil
}
