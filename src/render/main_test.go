package main

import (
	"os"
	"path/filepath"
	"testing"

	synth "github.com/jinjor/desktop-synth/src/audio"
)

func TestParseNotes(t *testing.T) {
	notes, err := parseNotes("60, 64,67")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 3 || notes[0] != 60 || notes[2] != 67 {
		t.Errorf("unexpected notes: %v", notes)
	}
	if _, err := parseNotes("60,x"); err == nil {
		t.Errorf("expected an error")
	}
}

func TestRenderShape(t *testing.T) {
	config := synth.DefaultConfig()
	config.SampleRate = 8000
	opts := renderOptions{
		config:       config,
		notes:        []int{60},
		velocity:     100,
		duration:     0.5,
		releaseAfter: 0.25,
		bpm:          120,
	}
	samples, err := render("saw", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 4000*numChannels {
		t.Errorf("unexpected length: %d", len(samples))
	}
	if _, err := render("organ", opts); err == nil {
		t.Errorf("expected an error for unknown shape")
	}

	path := filepath.Join(t.TempDir(), "saw.wav")
	if err := renderShape(path, "saw", opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Size() <= 44 {
		t.Errorf("expected PCM data after the header, but size was %d", info.Size())
	}
}
