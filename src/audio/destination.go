package audio

import "fmt"

// ----- Destination ----- //

// Every voice owns one LFO per destination.
const (
	destPitch = iota
	destAmp
	destCutoff
	destResonance
	numDestinations
)

var destinationNames = [numDestinations]string{"pitch", "amp", "cutoff", "resonance"}

func destinationFromString(s string) (int, error) {
	for i, name := range destinationNames {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown destination %q", s)
}
