package audio

import (
	"log"

	"github.com/hajimehoshi/oto"
)

// ----- Sink ----- //

// Sink is the audio device. Writes block until the device has room, so it
// is the backpressure of the render loop.
type Sink struct {
	otoContext *oto.Context
	player     *oto.Player
}

// OpenSink ...
func OpenSink(config Config) (*Sink, error) {
	otoContext, err := oto.NewContext(config.SampleRate, channelNum, bitDepthInBytes, config.BufferSizeInBytes())
	if err != nil {
		return nil, err
	}
	return &Sink{
		otoContext: otoContext,
		player:     otoContext.NewPlayer(),
	}, nil
}

// Write ...
func (s *Sink) Write(buf []byte) (int, error) {
	return s.player.Write(buf)
}

// Close ...
func (s *Sink) Close() error {
	log.Println("Closing Sink...")
	if err := s.player.Close(); err != nil {
		log.Printf("error while closing player: %v\n", err)
	}
	return s.otoContext.Close()
}
