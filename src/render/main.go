package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	synth "github.com/jinjor/desktop-synth/src/audio"
	"golang.org/x/sync/errgroup"
)

const numChannels = 2

type renderOptions struct {
	config       synth.Config
	patch        *synth.Patch
	notes        []int
	velocity     int
	duration     float64
	releaseAfter float64
	bpm          float64
}

func main() {
	config := synth.DefaultConfig()
	flag.IntVar(&config.SampleRate, "sample-rate", config.SampleRate, "Render sample rate in Hz")
	flag.IntVar(&config.MaxPolyphony, "polyphony", config.MaxPolyphony, "Size of the oscillator pool")
	flag.Float64Var(&config.Amplitude, "amplitude", config.Amplitude, "Output amplitude (0-1)")
	shapes := flag.String("shapes", "sine,saw,square,triangle", "Comma separated oscillator shapes, one WAV each")
	notes := flag.String("notes", "60,64,67", "Comma separated MIDI notes played on channel 0")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	duration := flag.Float64("duration", 2.0, "Duration in seconds")
	releaseAfter := flag.Float64("release-after", 1.0, "Send NoteOff after this many seconds")
	bpm := flag.Float64("bpm", 120, "Tempo used for envelope and LFO timing")
	patchPath := flag.String("patch", "", "Patch JSON file (optional)")
	flag.Parse()
	dir := flag.Arg(0)
	if dir == "" {
		dir = "."
	}
	log.SetFlags(log.Lshortfile)

	opts := renderOptions{
		config:       config,
		velocity:     *velocity,
		duration:     *duration,
		releaseAfter: *releaseAfter,
		bpm:          *bpm,
	}
	var err error
	opts.notes, err = parseNotes(*notes)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	if *patchPath != "" {
		opts.patch, err = synth.LoadPatch(*patchPath)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
	}

	g, _ := errgroup.WithContext(context.Background())
	for _, shape := range strings.Split(*shapes, ",") {
		shape := strings.TrimSpace(shape)
		g.Go(func() error {
			path := filepath.Join(dir, shape+".wav")
			if err := renderShape(path, shape, opts); err != nil {
				return fmt.Errorf("%s: %w", shape, err)
			}
			log.Printf("saved %s\n", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("Successfully rendered.")
}

func parseNotes(s string) ([]int, error) {
	var notes []int
	for _, item := range strings.Split(s, ",") {
		note, err := strconv.Atoi(strings.TrimSpace(item))
		if err != nil {
			return nil, fmt.Errorf("invalid note %q: %w", item, err)
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func render(shape string, opts renderOptions) ([]int16, error) {
	module := synth.NewSoundModule(opts.config)
	if opts.patch != nil {
		if err := module.ApplyPatch(opts.patch); err != nil {
			return nil, err
		}
	}
	if err := module.Update([]string{"set", "0", "oscillator", "0", shape}); err != nil {
		return nil, err
	}
	module.SetSettingsBpm(opts.bpm)
	for _, note := range opts.notes {
		module.HandleNote(synth.NoteOn(0, note, opts.velocity))
	}

	sampleRate := opts.config.SampleRate
	totalFrames := int(float64(sampleRate) * opts.duration)
	releaseAtFrame := int(float64(sampleRate) * opts.releaseAfter)
	blockSize := opts.config.BufferSize
	samples := make([]int16, totalFrames*numChannels)
	released := false
	for done := 0; done < totalFrames; {
		if !released && done >= releaseAtFrame {
			for _, note := range opts.notes {
				module.HandleNote(synth.NoteOff(0, note))
			}
			released = true
		}
		n := blockSize
		if done+n > totalFrames {
			n = totalFrames - done
		}
		if !released && done+n > releaseAtFrame {
			n = releaseAtFrame - done
		}
		module.Process(samples[done*numChannels : (done+n)*numChannels])
		done += n
	}
	return samples, nil
}

func renderShape(path string, shape string, opts renderOptions) error {
	samples, err := render(shape, opts)
	if err != nil {
		return err
	}
	data := make([]float32, len(samples))
	for i, s := range samples {
		data[i] = float32(s) / 32768
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// 16-bit PCM (audioFormat = 1)
	encoder := wav.NewEncoder(file, opts.config.SampleRate, 16, numChannels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  opts.config.SampleRate,
			NumChannels: numChannels,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		return err
	}
	return encoder.Close()
}
