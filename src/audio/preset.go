package audio

import (
	"encoding/json"
	"fmt"
	"os"
)

// ----- Patch ----- //

// Patch is the initial state of the module, loaded from JSON.
type Patch struct {
	Bpm          float64      `json:"bpm"`
	MasterVolume int          `json:"masterVolume"`
	ExternalSync bool         `json:"externalSync"`
	Voices       []VoicePatch `json:"voices"`
}

// VoicePatch ...
type VoicePatch struct {
	Voice    int                 `json:"voice"`
	Channel  int                 `json:"channel"` // -1: keep
	Volume   int                 `json:"volume"`
	Shape    string              `json:"shape"`
	PWM      int                 `json:"pwm"`
	Filter   filterPatch         `json:"filter"`
	Envelope envelopePatch       `json:"envelope"`
	Tuning   tuningPatch         `json:"tuning"`
	LFOs     map[string]lfoPatch `json:"lfos"`
}

type filterPatch struct {
	Type      string `json:"type"`
	Cutoff    int    `json:"cutoff"`
	Resonance int    `json:"resonance"`
}

type envelopePatch struct {
	Attack  int `json:"attack"`
	Decay   int `json:"decay"`
	Sustain int `json:"sustain"`
	Release int `json:"release"`
}

type tuningPatch struct {
	Octave   int `json:"octave"`
	Semitone int `json:"semitone"`
	Fine     int `json:"fine"`
}

type lfoPatch struct {
	Wave  string `json:"wave"`
	Rate  int    `json:"rate"`
	Depth int    `json:"depth"`
}

func newPatch() *Patch {
	return &Patch{
		Bpm:          defaultBpm,
		MasterVolume: maxParam,
	}
}

func newVoicePatch() VoicePatch {
	return VoicePatch{
		Channel:  -1,
		Volume:   maxParam,
		Shape:    shapeNames[shapeSine],
		Filter:   filterPatch{Type: filterNames[filterOff], Cutoff: maxParam},
		Envelope: envelopePatch{Sustain: MaxStep},
	}
}

// UnmarshalJSON fills missing keys with defaults.
func (p *VoicePatch) UnmarshalJSON(data []byte) error {
	type plain VoicePatch
	v := plain(newVoicePatch())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = VoicePatch(v)
	return nil
}

// UnmarshalJSON ...
func (l *lfoPatch) UnmarshalJSON(data []byte) error {
	type plain lfoPatch
	v := plain{Wave: lfoWaveNames[lfoSine], Rate: defaultSubdivision}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = lfoPatch(v)
	return nil
}

// LoadPatch ...
func LoadPatch(path string) (*Patch, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parsePatch(bytes)
}

func parsePatch(data []byte) (*Patch, error) {
	p := newPatch()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse patch: %w", err)
	}
	return p, nil
}

func (p *VoicePatch) updates() ([]FieldUpdate, error) {
	shape := indexOf(shapeNames[:], p.Shape)
	if shape < 0 {
		return nil, fmt.Errorf("voice %d: unknown shape %q", p.Voice, p.Shape)
	}
	filterType := indexOf(filterNames[:], p.Filter.Type)
	if filterType < 0 {
		return nil, fmt.Errorf("voice %d: unknown filter type %q", p.Voice, p.Filter.Type)
	}
	set := func(page int, field int, value int) FieldUpdate {
		return FieldUpdate{Voice: p.Voice, Page: page, Field: field, Value: int16(clampInt(value, -32768, 32767))}
	}
	ups := []FieldUpdate{
		set(PageChannel, 1, p.Volume),
		set(PageOscillator, 0, shape),
		set(PageOscillator, 1, p.PWM),
		set(PageFilter, 0, filterType),
		set(PageFilter, 1, p.Filter.Cutoff),
		set(PageFilter, 2, p.Filter.Resonance),
		set(PageEnvelope, 0, p.Envelope.Attack),
		set(PageEnvelope, 1, p.Envelope.Decay),
		set(PageEnvelope, 2, p.Envelope.Sustain),
		set(PageEnvelope, 3, p.Envelope.Release),
		set(PageTuning, 0, p.Tuning.Octave),
		set(PageTuning, 1, p.Tuning.Semitone),
		set(PageTuning, 2, p.Tuning.Fine),
	}
	if p.Channel >= 0 {
		ups = append(ups, set(PageChannel, 0, p.Channel))
	}
	for name, l := range p.LFOs {
		dest, err := destinationFromString(name)
		if err != nil {
			return nil, fmt.Errorf("voice %d: %w", p.Voice, err)
		}
		wave := indexOf(lfoWaveNames[:], l.Wave)
		if wave < 0 {
			return nil, fmt.Errorf("voice %d: unknown LFO wave %q", p.Voice, l.Wave)
		}
		ups = append(ups,
			set(PageLFOWave, dest, wave),
			set(PageLFORate, dest, l.Rate),
			set(PageLFODepth, dest, l.Depth),
		)
	}
	return ups, nil
}

// ApplyPatch ...
func (m *SoundModule) ApplyPatch(p *Patch) error {
	var ups []FieldUpdate
	for i := range p.Voices {
		vu, err := p.Voices[i].updates()
		if err != nil {
			return err
		}
		ups = append(ups, vu...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range ups {
		if err := m.applyUpdate(u); err != nil {
			return err
		}
	}
	m.setMasterVolume(p.MasterVolume)
	m.setExternalSync(p.ExternalSync)
	m.setSettingsBpm(p.Bpm)
	return nil
}
