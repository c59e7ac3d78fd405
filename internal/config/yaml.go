// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	applog "regionplay/internal/log"
	"regionplay/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// candidates are searched, in order, when LoadConfig is given no path.
var candidates = []string{
	"regionplay.yaml",
	"config.yaml",
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches the default locations. If no file is found, it uses built-in defaults.
// After loading defaults or from file, it applies environment variable overrides and
// validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("configuration: loaded %s", path)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q is not recognized", ErrInvalid, c.LogLevel)
	}

	// Audio Validation
	if c.Audio.OutputDevice < MinDeviceID {
		return fmt.Errorf("%w: audio.output_device %d is below %d", ErrInvalid, c.Audio.OutputDevice, MinDeviceID)
	}
	fpb := c.Audio.FramesPerBuffer
	if fpb < MinBufferFrames || fpb > MaxBufferFrames || !bitint.IsPowerOfTwo(fpb) {
		return fmt.Errorf("%w: audio.frames_per_buffer %d must be a power of two in [%d, %d]",
			ErrInvalid, fpb, MinBufferFrames, MaxBufferFrames)
	}

	// Waveform Validation
	if c.Waveform.Points <= 0 {
		return fmt.Errorf("%w: waveform.points must be positive", ErrInvalid)
	}
	if c.Waveform.SilenceThreshold < 0 || c.Waveform.SilenceThreshold > 1 {
		return fmt.Errorf("%w: waveform.silence_threshold must be within [0, 1]", ErrInvalid)
	}

	// Selection Validation
	if c.Selection.DragThreshold < 0 {
		return fmt.Errorf("%w: selection.drag_threshold must not be negative", ErrInvalid)
	}
	if c.Selection.HandleWidth < 0 {
		return fmt.Errorf("%w: selection.handle_width must not be negative", ErrInvalid)
	}
	if c.Selection.DefaultLength < 1 {
		return fmt.Errorf("%w: selection.default_length must be at least one second", ErrInvalid)
	}

	// Playback Validation
	if c.Playback.FrameRate <= 0 || c.Playback.FrameRate > MaxFrameRate {
		return fmt.Errorf("%w: playback.frame_rate must be within (0, %d]", ErrInvalid, MaxFrameRate)
	}

	// Transport Validation
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddr == "" {
		return fmt.Errorf("%w: transport.websocket_addr must be set when the websocket is enabled", ErrInvalid)
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("%w: transport.udp_target_address must be set when UDP is enabled", ErrInvalid)
		}
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("%w: transport.udp_target_address '%s' appears invalid (missing port?)",
				ErrInvalid, c.Transport.UDPTargetAddress)
		}
		if c.Transport.UDPSendInterval <= 0 {
			return fmt.Errorf("%w: transport.udp_send_interval must be positive when UDP is enabled", ErrInvalid)
		}
	}

	return nil
}

// applyEnvOverrides applies ENV_* variables on top of file values.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			applog.Debugf("configuration: overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		applog.Debugf("configuration: overriding log_level from env: %s", val)
	}

	// ENV_WS_{...}
	// These are specific to the websocket mirror.

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
			applog.Debugf("configuration: overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDR
	if val, ok := os.LookupEnv("ENV_WS_ADDR"); ok {
		cfg.Transport.WebSocketAddr = val
		applog.Debugf("configuration: overriding transport.websocket_addr from env: %s", val)
	}

	// ENV_UDP_{...}
	// These are specific to the UDP mirror.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			applog.Debugf("configuration: overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		applog.Debugf("configuration: overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
			applog.Debugf("configuration: overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
