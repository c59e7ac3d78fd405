// SPDX-License-Identifier: MIT
package cmd

import (
	"regionplay/internal/config"
	"regionplay/pkg/build"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Command names set in Config.Command.
const (
	CommandList    = "list"
	CommandDevices = "devices"
	CommandPeaks   = "peaks"
	CommandExport  = "export"
)

// ParseArgs builds the configuration from the config file, the environment
// and the command line, in increasing order of precedence. A nil config
// with a nil error means cobra already handled the invocation (help,
// version).
func ParseArgs(args []string) (*config.Config, error) {
	buildInfo := build.Current()

	var (
		options    *config.Config
		configPath string
		flags      = config.NewConfig()
	)

	load := func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd.Flags(), flags, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		options = cfg
		return nil
	}

	rootCmd := &cobra.Command{
		Use:               buildInfo.Name + " [file.wav]",
		Short:             "Select and preview a region of an audio track",
		Version:           buildInfo.Version,
		Args:              cobra.MaximumNArgs(1),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: load,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.TUIMode = true
			if len(args) == 1 {
				options.InputFile = args[0]
			}
			return nil
		},
	}
	rootCmd.SetVersionTemplate(buildInfo.String() + "\n")

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	rootCmd.AddCommand(&cobra.Command{
		Use:   CommandList,
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandList
		},
	})

	// Interactive device picker
	rootCmd.AddCommand(&cobra.Command{
		Use:   CommandDevices,
		Short: "Choose an output device and buffer size, and print the config section",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandDevices
		},
	})

	// Waveform peaks
	peaksCmd := &cobra.Command{
		Use:   CommandPeaks + " <file.wav>",
		Short: "Print the waveform of a file as JSON",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandPeaks
			options.InputFile = args[0]
		},
	}
	peaksCmd.Flags().IntVarP(&flags.Waveform.Points, "points", "n", config.DefaultWaveformPoints,
		"Number of waveform points")
	rootCmd.AddCommand(peaksCmd)

	// Region export
	exportCmd := &cobra.Command{
		Use:   CommandExport + " <file.wav>",
		Short: "Write a region of a file to a new WAV file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandExport
			options.InputFile = args[0]
			options.ClipStart = flags.ClipStart
			options.ClipEnd = flags.ClipEnd
			options.OutputFile = flags.OutputFile
		},
	}
	exportCmd.Flags().Float64Var(&flags.ClipStart, "start", 0, "Region start in seconds")
	exportCmd.Flags().Float64Var(&flags.ClipEnd, "end", 0, "Region end in seconds")
	exportCmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Output file name")
	_ = exportCmd.MarkFlagRequired("end")
	_ = exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)

	// Configuration file
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file (default regionplay.yaml or config.yaml)")

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&flags.Audio.OutputDevice, "device", "d", config.DefaultDeviceID,
		"Specify output device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&flags.Audio.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Audio.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for playback")

	// Transport Configuration
	rootCmd.PersistentFlags().BoolVar(&flags.Transport.WebSocketEnabled, "websocket", false,
		"Serve session snapshots over a websocket")
	rootCmd.PersistentFlags().BoolVar(&flags.Transport.UDPEnabled, "udp", false,
		"Send playback status packets over UDP")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", config.DefaultVerbosity,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.LogFile, "log-file", "",
		"Write logs to this file")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

// applyFlags copies the flags the user actually set onto cfg so that
// unset flags never mask config file values.
func applyFlags(fs *pflag.FlagSet, flags, cfg *config.Config) {
	if fs.Changed("device") {
		cfg.Audio.OutputDevice = flags.Audio.OutputDevice
	}
	if fs.Changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = flags.Audio.FramesPerBuffer
	}
	if fs.Changed("low-latency") {
		cfg.Audio.LowLatency = flags.Audio.LowLatency
	}
	if fs.Changed("websocket") {
		cfg.Transport.WebSocketEnabled = flags.Transport.WebSocketEnabled
	}
	if fs.Changed("udp") {
		cfg.Transport.UDPEnabled = flags.Transport.UDPEnabled
	}
	if fs.Changed("points") {
		cfg.Waveform.Points = flags.Waveform.Points
	}
	if fs.Changed("log-file") {
		cfg.LogFile = flags.LogFile
	}
	if fs.Changed("verbose") {
		cfg.Verbose = flags.Verbose
		if cfg.Verbose {
			cfg.LogLevel = "debug"
		}
	}
}
