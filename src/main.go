package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/jinjor/desktop-synth/src/audio"
	"golang.org/x/sync/errgroup"
)

func main() {
	config := audio.DefaultConfig()
	flag.IntVar(&config.SampleRate, "sample-rate", config.SampleRate, "Sample rate in Hz")
	flag.IntVar(&config.BufferSize, "buffer-size", config.BufferSize, "Frames per render iteration")
	flag.IntVar(&config.NumVoices, "voices", config.NumVoices, "Number of voices (voice i listens on MIDI channel i)")
	flag.IntVar(&config.MaxPolyphony, "polyphony", config.MaxPolyphony, "Size of the oscillator pool")
	flag.Float64Var(&config.Amplitude, "amplitude", config.Amplitude, "Output amplitude (0-1)")
	flag.IntVar(&config.LFODecimation, "lfo-decimation", config.LFODecimation, "Evaluate LFOs every N samples")
	midiPort := flag.String("midi", "", "MIDI IN port name (first port if empty)")
	sockFileName := flag.String("sock", "/tmp/desktop-synth.sock", "Unix socket for control commands")
	patchPath := flag.String("patch", "", "Patch JSON file (optional)")
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	module := audio.NewSoundModule(config)
	if *patchPath != "" {
		patch, err := audio.LoadPatch(*patchPath)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		if err := module.ApplyPatch(patch); err != nil {
			log.Fatalf("error: %v\n", err)
		}
	}
	sink, err := audio.OpenSink(module.Config())
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer sink.Close()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runtime.LockOSThread()
		return module.Start(ctx, sink)
	})
	g.Go(func() error {
		return module.DispatchMidi(ctx, audio.ListenToMidiIn(ctx, *midiPort))
	})
	g.Go(func() error {
		return withIPCConnection(ctx, *sockFileName, func(conn net.Conn) error {
			return receiveCommands(ctx, conn, module)
		})
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func withIPCConnection(ctx context.Context, sockFileName string, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	log.Printf("start listening %s...\n", sockFileName)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		err = f(conn)
		if cerr := conn.Close(); cerr != nil {
			log.Printf("error while closing connection: %v", cerr)
		}
		if err != nil {
			return err
		}
	}
}

func receiveCommands(ctx context.Context, conn net.Conn, module *audio.SoundModule) error {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	reader := bufio.NewReader(conn)
	var line []byte
	for {
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF || ctx.Err() != nil {
			break
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		line = line[:0]
		if err != nil {
			log.Printf("invalid command: %v\n", err)
			continue
		}
		if err := module.Update(command); err != nil {
			log.Printf("failed to apply command %v: %v\n", command, err)
			continue
		}
		log.Printf("received: %v\n", command)
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	items := strings.Fields(line)
	for i, item := range items {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		items[i] = escaped
	}
	return items, nil
}
