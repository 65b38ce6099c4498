package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/qinggan/qinggan/internal/analyze"
	"github.com/qinggan/qinggan/internal/api"
	"github.com/qinggan/qinggan/internal/bench"
	"github.com/qinggan/qinggan/internal/cli"
	"github.com/qinggan/qinggan/internal/config"
	"github.com/qinggan/qinggan/internal/logging"
	"github.com/qinggan/qinggan/internal/mock"
	"github.com/qinggan/qinggan/internal/tui"
	"github.com/qinggan/qinggan/internal/version"
)

var buildVersion = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		// UserMessage appends the categorized hint for transport
		// failures (connection refused, DNS, timeout).
		fmt.Fprintf(os.Stderr, "Error: %s\n", api.UserMessage(err))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "qinggan",
	Short: "qinggan - Chinese sentiment analysis client",
	Long: `qinggan is a terminal client for a Chinese sentiment-analysis backend.

Run without arguments to start the interactive TUI, or use a subcommand
for one-shot analysis.

Examples:
  qinggan                              # Start interactive TUI
  qinggan analyze "今天很开心"          # Analyze one text
  echo "今天很开心" | qinggan analyze   # Analyze stdin
  qinggan batch texts.txt              # One text per line
  qinggan batch - < texts.txt          # Batch from stdin
  qinggan audio speech.wav             # Speech recognition + analysis
  qinggan analyze "不错" -o json -q sentiment
  qinggan watch                        # Realtime analysis of stdin lines
  qinggan health                       # Probe the backend
  qinggan mock                         # Run a local stub backend
  qinggan bench texts.txt -n 100 -c 4  # Load-test the backend`,
	Version:       buildVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := setup()
		if err != nil {
			return err
		}
		defer logging.Close()
		return tui.Run(applyFlags(settings))
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze the sentiment of one text",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := setup()
		if err != nil {
			return err
		}
		defer logging.Close()

		text, err := readInput(args)
		if err != nil {
			return err
		}
		return cli.RunAnalyze(cliOptions(settings), text)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <file|->",
	Short: "Analyze a batch of texts, one per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := setup()
		if err != nil {
			return err
		}
		defer logging.Close()

		var data []byte
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		return cli.RunBatch(cliOptions(settings), string(data))
	},
}

var audioCmd = &cobra.Command{
	Use:   "audio <file|url>",
	Short: "Analyze the sentiment of recorded speech",
	Long: `Sends audio through the backend's speech-recognition pipeline and
analyzes the recognized text. A local file is uploaded; an http(s) URL
is fetched by the backend itself.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := setup()
		if err != nil {
			return err
		}
		defer logging.Close()
		return cli.RunAudio(cliOptions(settings), args[0], flagAudioFormat, flagAudioRate)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the backend health endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := setup()
		if err != nil {
			return err
		}
		defer logging.Close()
		return cli.RunHealth(cliOptions(settings))
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Analyze stdin lines over a realtime session",
	Long: `Opens a WebSocket session to the backend and analyzes each line read
from stdin as it arrives. End with Ctrl+C or EOF.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := setup()
		if err != nil {
			return err
		}
		defer logging.Close()
		return cli.RunWatch(cliOptions(settings), os.Stdin)
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local stub backend with canned responses",
	Long: `Serves the backend's HTTP and WebSocket contract on a local port and
answers with deterministic canned results. Useful for demos and for
developing against an unavailable backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := setup(); err != nil {
			return err
		}
		defer logging.Close()

		server := mock.NewServer(mock.Config{Host: flagMockHost, Port: flagMockPort, Delay: flagMockDelay})
		if err := server.Start(); err != nil {
			return err
		}
		fmt.Printf("stub backend listening on %s (Ctrl+C to stop)\n", server.Address())

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt)
		<-sigChan
		return server.Stop()
	},
}

var benchCmd = &cobra.Command{
	Use:   "bench <file|->",
	Short: "Load-test the backend with sample texts",
	Long: `Reads sample texts (one per line) and fires single-text analyses at the
backend from a pool of concurrent workers, then prints latency
percentiles and error counts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := setup()
		if err != nil {
			return err
		}
		defer logging.Close()

		var data []byte
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		client := api.New(settings.Server, settings.Timeout())
		stats, err := bench.Run(ctx, client,
			bench.Config{Workers: flagBenchWorkers, Requests: flagBenchRequests},
			analyze.SplitLines(string(data)))
		if err != nil {
			return err
		}
		fmt.Print(bench.Report(stats))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update-check",
	Short: "Check GitHub for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		release, err := version.Latest(cmd.Context(), buildVersion)
		if err != nil {
			return err
		}
		if release.NewerThan(buildVersion) {
			fmt.Printf("new version available: %s (current %s)\n%s\n", release.Version(), buildVersion, release.URL)
		} else {
			fmt.Printf("up to date (%s)\n", buildVersion)
		}
		return nil
	},
}

var (
	flagServer  string
	flagTimeout int
	flagOutput  string
	flagQuery   string

	flagAudioFormat string
	flagAudioRate   int

	flagMockHost  string
	flagMockPort  int
	flagMockDelay int

	flagBenchWorkers  int
	flagBenchRequests int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Backend origin (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "Request timeout in seconds (overrides config)")

	for _, cmd := range []*cobra.Command{analyzeCmd, batchCmd, audioCmd, healthCmd, watchCmd} {
		cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml)")
		cmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query applied to json output")
	}

	audioCmd.Flags().StringVar(&flagAudioFormat, "format", "wav", "Audio codec (wav/pcm/amr/m4a)")
	audioCmd.Flags().IntVar(&flagAudioRate, "rate", 16000, "Sample rate in Hz")

	mockCmd.Flags().StringVar(&flagMockHost, "host", "", "Interface to bind (default 127.0.0.1)")
	mockCmd.Flags().IntVar(&flagMockPort, "port", 0, "Port to bind (default 8000)")
	mockCmd.Flags().IntVar(&flagMockDelay, "delay", 0, "Per-request delay in milliseconds")

	benchCmd.Flags().IntVarP(&flagBenchWorkers, "concurrency", "c", 4, "Concurrent workers")
	benchCmd.Flags().IntVarP(&flagBenchRequests, "requests", "n", 100, "Total requests to send")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(audioCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(updateCmd)
}

// setup initializes the config directory, logging, and settings.
func setup() (config.Settings, error) {
	if err := config.Initialize(); err != nil {
		return config.Settings{}, fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := logging.Init(buildVersion); err != nil {
		// Logging is best effort; the client still works without it.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	settings, err := config.Load()
	if err != nil {
		return config.Settings{}, err
	}
	return applyFlags(settings), nil
}

// applyFlags overlays command-line overrides on the loaded settings.
func applyFlags(settings config.Settings) config.Settings {
	if flagServer != "" {
		settings.Server = flagServer
	}
	if flagTimeout > 0 {
		settings.TimeoutSeconds = flagTimeout
	}
	if flagOutput != "" {
		settings.Output = flagOutput
	}
	return settings
}

func cliOptions(settings config.Settings) cli.Options {
	return cli.Options{
		Server:       settings.Server,
		Timeout:      time.Duration(settings.TimeoutSeconds) * time.Second,
		OutputFormat: settings.Output,
		Query:        flagQuery,
	}
}

// readInput returns the text argument, or stdin when piped.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}

	return "", fmt.Errorf("no text provided (pipe it or provide as argument)")
}
