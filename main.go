// SPDX-License-Identifier: MIT
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"regionplay/cmd"
	"regionplay/internal/audio"
	"regionplay/internal/config"
	"regionplay/internal/eventloop"
	applog "regionplay/internal/log"
	"regionplay/internal/region"
	"regionplay/internal/session"
	"regionplay/internal/transport"
	"regionplay/internal/transport/udp"
	"regionplay/internal/tui"
	"regionplay/internal/waveform"
	"regionplay/pkg/build"

	"gopkg.in/yaml.v3"
)

// main is the entry point for the region selector.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and the config file
//   - Configure logging
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Decode the track and analyze its waveform
//   - Start the event loop, the player and the state mirrors
//   - Run the terminal UI
//
// 3. Shutdown Phase (Cold Path):
//   - Close the session on its loop
//   - Stop the loop and the mirrors
//   - Terminate PortAudio
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Development builds carry no ldflags; the placeholders are fine.
	buildErr := build.Initialize()

	cfg, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if cfg == nil {
		// Help or version output.
		return
	}

	if err := setupLogging(cfg); err != nil {
		fatal(err)
	}
	defer applog.Sync()
	if buildErr != nil {
		applog.Debugf("build: %v", buildErr)
	}

	// Handle one-off commands that don't need the event loop.
	if cfg.Command != "" {
		if err := executeCommand(cfg); err != nil {
			fatal(err)
		}
		return
	}

	// Exit if not running in TUI mode
	if !cfg.TUIMode {
		return
	}

	if err := run(cfg); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	applog.Errorf("%v", err)
	_ = applog.Sync()
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// setupLogging routes logs to the configured file. Without one, the
// full-screen UIs run with logging discarded.
func setupLogging(cfg *config.Config) error {
	level, _ := applog.ParseLevel(cfg.LogLevel)
	fullScreen := cfg.TUIMode || cfg.Command == cmd.CommandDevices
	if fullScreen && cfg.LogFile == "" {
		applog.SetLevel(level)
		applog.Discard()
		return nil
	}
	return applog.Setup(level, cfg.LogFile, cfg.Debug)
}

// run owns the interactive session from decoding to shutdown.
func run(cfg *config.Config) error {
	gate := waveform.NewGate(cfg.Waveform.SilenceThreshold)

	var (
		track *audio.Track
		wf    waveform.Waveform
		err   error
	)
	if cfg.InputFile != "" {
		track, wf, err = decode(cfg.InputFile, cfg.Waveform.Points)
		if err != nil {
			return err
		}
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	loop := eventloop.New(cfg.Playback.FrameRate)

	wire, err := buildTransport(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := wire.Close(); err != nil {
			applog.Warnf("transport: close: %v", err)
		}
	}()

	// Selection keeps working without an output device.
	var backend session.Backend
	if player, err := audio.NewPlayer(loop, cfg.Audio); err != nil {
		applog.Warnf("audio: %v; playback disabled", err)
	} else {
		backend = player
	}

	sess := session.New(loop, backend, session.Options{
		Selection: cfg.Selection,
		Transport: wire,
	})
	loop.Start()
	defer loop.Stop()

	if cfg.Transport.UDPEnabled {
		stop, err := startPublisher(cfg, sess)
		if err != nil {
			return err
		}
		defer stop()
	}

	if track != nil {
		sess.Load(track, wf)
	}

	// SIGTERM closes the session; the UI notices and quits.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		if _, ok := <-signals; ok {
			applog.Infof("received termination signal")
			loop.Call(sess.Close)
		}
	}()

	uiErr := tui.Run(sess, gate, cfg.Playback.FrameRate)

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	loop.Call(sess.Close)
	return uiErr
}

// decode reads a WAV file and reduces it to its waveform.
func decode(path string, points int) (*audio.Track, waveform.Waveform, error) {
	track, err := audio.Decode(path)
	if err != nil {
		return nil, waveform.Waveform{}, err
	}
	wf, err := waveform.Analyze(track.Data, track.Channels, track.SampleRate, points)
	if err != nil {
		return nil, waveform.Waveform{}, fmt.Errorf("%s: %w", path, err)
	}
	applog.Infof("decoded %s: %.1fs, %d channels at %d Hz",
		path, track.Duration(), track.Channels, track.SampleRate)
	return track, wf, nil
}

// buildTransport assembles the enabled session mirrors.
func buildTransport(cfg *config.Config) (transport.Multi, error) {
	wire := transport.Multi{transport.NewLoggingTransport()}
	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
		if err != nil {
			return nil, err
		}
		applog.Infof("transport: websocket listening on %s", ws.Addr())
		wire = append(wire, ws)
	}
	return wire, nil
}

// startPublisher streams playback status packets until the returned stop
// function is called.
func startPublisher(cfg *config.Config, sess *session.Session) (func(), error) {
	sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
	if err != nil {
		return nil, err
	}
	publisher, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender, sess)
	if err != nil {
		_ = sender.Close()
		return nil, err
	}
	publisher.Start()

	return func() {
		if err := publisher.Close(); err != nil {
			applog.Warnf("udp: stopping publisher: %v", err)
		}
		if err := sender.Close(); err != nil {
			applog.Warnf("udp: closing sender: %v", err)
		}
	}, nil
}

// executeCommand handles one-off commands that don't require the event
// loop, such as listing devices or exporting a region.
func executeCommand(cfg *config.Config) error {
	switch cfg.Command {
	case cmd.CommandList:
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
		return audio.ListDevices(os.Stdout)

	case cmd.CommandDevices:
		chosen, ok, err := tui.StartDeviceListUI(cfg.Audio)
		if err != nil || !ok {
			return err
		}
		out, err := yaml.Marshal(struct {
			Audio config.AudioConfig `yaml:"audio"`
		}{chosen})
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err

	case cmd.CommandPeaks:
		_, wf, err := decode(cfg.InputFile, cfg.Waveform.Points)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(wf)

	case cmd.CommandExport:
		track, err := audio.Decode(cfg.InputFile)
		if err != nil {
			return err
		}
		r := region.Region{Start: cfg.ClipStart, End: cfg.ClipEnd}
		if err := audio.ExportRegion(track, r, cfg.OutputFile); err != nil {
			return err
		}
		fmt.Printf("Exported %s to %s\n", r, cfg.OutputFile)
		return nil
	}
	return fmt.Errorf("unknown command %q", cfg.Command)
}
