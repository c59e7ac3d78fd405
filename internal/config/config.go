package config

import (
	"errors"
	"time"
)

// Core configuration constants that define the boundaries and defaults
// for the region selector.
const (
	// Audio output
	DefaultDeviceID        = MinDeviceID // Default to system default device
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultLowLatency      = false       // Standard latency mode

	// Waveform analysis
	DefaultWaveformPoints   = 200  // Points per track
	DefaultSilenceThreshold = 0.02 // Amplitudes below this draw flat

	// Selection
	DefaultDragThreshold = 3.0  // Pointer travel before a click becomes a drag
	DefaultHandleWidth   = 1.0  // Hit radius around each boundary
	DefaultRegionLength  = 30.0 // Seconds selected when a track loads

	// Playback
	DefaultFrameRate = 60 // Playhead refreshes per second

	// Transport
	DefaultWebSocketAddr    = "127.0.0.1:8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond // ~30Hz

	// Misc
	DefaultLogLevel  = "info"
	DefaultCommand   = "" // No command by default
	DefaultVerbosity = false

	// Hardware and processing limits
	MinDeviceID     = -1   // -1 represents system default device
	MinBufferFrames = 64   // Smallest sensible callback size
	MaxBufferFrames = 8192 // Maximum frames per buffer (power of 2)
	MaxFrameRate    = 240
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the main application configuration structure, loaded from YAML
// and overridden by command line flags.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Enable debug mode (development log encoding).
	LogLevel  string          `yaml:"log_level"`         // Logging level (e.g., "debug", "info", "warn", "error").
	LogFile   string          `yaml:"log_file"`          // Log destination; empty logs to stderr outside the TUI.
	Command   string          `yaml:"command,omitempty"` // A one-off command to execute instead of running the UI.
	Audio     AudioConfig     `yaml:"audio"`             // Audio output settings.
	Waveform  WaveformConfig  `yaml:"waveform"`          // Waveform analysis settings.
	Selection SelectionConfig `yaml:"selection"`         // Pointer and region settings.
	Playback  PlaybackConfig  `yaml:"playback"`          // Playback loop settings.
	Transport TransportConfig `yaml:"transport"`         // Mirrors of the session state (websocket, UDP).

	// Runtime options, set from the command line only.
	InputFile  string  `yaml:"-"` // WAV file to open.
	OutputFile string  `yaml:"-"` // Destination of the export command.
	ClipStart  float64 `yaml:"-"` // Region start for the export command, in seconds.
	ClipEnd    float64 `yaml:"-"` // Region end for the export command, in seconds.
	Verbose    bool    `yaml:"-"` // Shortcut for log_level=debug.
	TUIMode    bool    `yaml:"-"` // Terminal UI mode enabled.
}

// AudioConfig holds settings related to audio output.
type AudioConfig struct {
	OutputDevice    int  `yaml:"output_device"`     // PortAudio device index for playback (-1 for default).
	FramesPerBuffer int  `yaml:"frames_per_buffer"` // Frames per output callback (power of two).
	LowLatency      bool `yaml:"low_latency"`       // Request low latency settings from the PortAudio device.
}

// WaveformConfig holds settings for the waveform analysis step.
type WaveformConfig struct {
	Points           int     `yaml:"points"`            // Number of (offset, amplitude) points per track.
	SilenceThreshold float64 `yaml:"silence_threshold"` // Display gate threshold in [0,1].
}

// SelectionConfig holds settings for the drag controller.
type SelectionConfig struct {
	DragThreshold float64 `yaml:"drag_threshold"` // Pointer travel (cells) that turns a click into a drag.
	HandleWidth   float64 `yaml:"handle_width"`   // Hit radius (cells) around each region boundary.
	DefaultLength float64 `yaml:"default_length"` // Seconds selected when a track loads.
}

// PlaybackConfig holds settings for the playback synchronizer.
type PlaybackConfig struct {
	FrameRate int `yaml:"frame_rate"` // Frame loop ticks per second.
}

// TransportConfig holds settings related to mirroring state over the network.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Serve state snapshots over a websocket.
	WebSocketAddr    string        `yaml:"websocket_addr"`     // Listen address for the websocket server.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send binary snapshot packets over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets.
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
}

// NewConfig creates a new Config instance with default values.
// This is the base configuration before a config file or command line
// flags are applied.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Command:  DefaultCommand,
		Verbose:  DefaultVerbosity,
		Audio: AudioConfig{
			OutputDevice:    DefaultDeviceID,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
		},
		Waveform: WaveformConfig{
			Points:           DefaultWaveformPoints,
			SilenceThreshold: DefaultSilenceThreshold,
		},
		Selection: SelectionConfig{
			DragThreshold: DefaultDragThreshold,
			HandleWidth:   DefaultHandleWidth,
			DefaultLength: DefaultRegionLength,
		},
		Playback: PlaybackConfig{
			FrameRate: DefaultFrameRate,
		},
		Transport: TransportConfig{
			WebSocketAddr:    DefaultWebSocketAddr,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}
