package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qinggan/qinggan/internal/analyze"
	"github.com/qinggan/qinggan/internal/api"
	"github.com/qinggan/qinggan/internal/filter"
	"github.com/qinggan/qinggan/internal/render"
	"github.com/qinggan/qinggan/internal/stats"
	"github.com/qinggan/qinggan/internal/types"
)

// Options configures a non-interactive run.
type Options struct {
	Server       string
	Timeout      time.Duration
	OutputFormat string // text, json, yaml
	Query        string // JMESPath expression, applied to json output
	Out          io.Writer
	Err          io.Writer
}

func (o Options) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

func (o Options) err() io.Writer {
	if o.Err != nil {
		return o.Err
	}
	return os.Stderr
}

// printerView renders coordinator outcomes to the configured writers.
// Notify is a no-op: in CLI mode the error is surfaced once by the
// command runner through the returned error and the exit code.
type printerView struct {
	opts Options
}

func (v *printerView) RenderSingleResult(result types.AnalysisResult) {
	v.print(result, func() string { return render.Single(result) })
}

func (v *printerView) RenderBatchResults(results []types.AnalysisResult) {
	v.print(results, func() string { return render.Batch(results) })
}

func (v *printerView) SetLoading(loading bool) {
	if loading && isTerminal(os.Stderr) {
		fmt.Fprintln(v.opts.err(), "分析中...")
	}
}

func (v *printerView) Notify(err error) {}

// print emits value in the requested output format; textFn produces
// the human-readable rendition.
func (v *printerView) print(value interface{}, textFn func() string) {
	switch v.opts.OutputFormat {
	case "json":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			fmt.Fprintf(v.opts.err(), "Warning: failed to encode result: %v\n", err)
			return
		}
		body := string(data)
		if v.opts.Query != "" {
			filtered, err := filter.Apply(body, v.opts.Query)
			if err != nil {
				fmt.Fprintf(v.opts.err(), "Warning: %v\n", err)
			} else {
				body = filtered
			}
		}
		fmt.Fprintln(v.opts.out(), body)
	case "yaml":
		data, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintf(v.opts.err(), "Warning: failed to encode result: %v\n", err)
			return
		}
		fmt.Fprint(v.opts.out(), string(data))
	default:
		fmt.Fprint(v.opts.out(), textFn())
	}
}

func newCoordinator(opts Options) *analyze.Coordinator {
	return analyze.New(api.New(opts.Server, opts.Timeout), stats.NewTracker())
}

// RunAnalyze submits one text and prints the result.
func RunAnalyze(opts Options, rawText string) error {
	return newCoordinator(opts).SubmitText(context.Background(), rawText, &printerView{opts: opts})
}

// RunBatch submits multi-line input, one text per line.
func RunBatch(opts Options, rawLines string) error {
	return newCoordinator(opts).SubmitBatch(context.Background(), rawLines, &printerView{opts: opts})
}

// RunAudio analyzes recorded speech. A source starting with http:// or
// https:// is handed to the backend to download; anything else is read
// as a local file and uploaded.
func RunAudio(opts Options, source, format string, rate int) error {
	client := api.New(opts.Server, opts.Timeout)
	view := &printerView{opts: opts}

	var (
		result *types.AnalysisResult
		err    error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		result, err = client.AnalyzeAudioURL(context.Background(), source, format, rate)
	} else {
		data, readErr := os.ReadFile(source)
		if readErr != nil {
			return fmt.Errorf("failed to read audio file: %w", readErr)
		}
		result, err = client.AnalyzeAudioFile(context.Background(), source, data, format, rate)
	}
	if err != nil {
		return err
	}

	view.RenderSingleResult(*result)
	return nil
}

// RunHealth probes the backend and prints its status.
func RunHealth(opts Options) error {
	client := api.New(opts.Server, opts.Timeout)
	status, err := client.Health(context.Background())
	if err != nil {
		return err
	}

	view := &printerView{opts: opts}
	view.print(status, func() string {
		return fmt.Sprintf("status: %s\nversion: %s\ntimestamp: %s\n",
			status.Status, status.Version, status.Timestamp)
	})
	return nil
}

// RunWatch opens a realtime session and analyzes stdin line by line,
// printing each result as it arrives. Ctrl+C or EOF ends the session.
func RunWatch(opts Options, in io.Reader) error {
	client := api.New(opts.Server, opts.Timeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := client.DialRealtime(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(opts.err(), "\nrealtime session closed")
		session.Close()
		cancel()
	}()

	// Reader goroutine feeds lines to the socket; blanks are skipped
	// locally, matching the HTTP validation rules. EOF starts the
	// close handshake instead of tearing the socket down, so results
	// for lines already sent still come through.
	sendErrs := make(chan error, 1)
	go func() {
		defer close(sendErrs)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			for _, text := range analyze.SplitLines(scanner.Text()) {
				if err := session.Send(text); err != nil {
					sendErrs <- err
					return
				}
			}
		}
		session.CloseSend()
	}()

	view := &printerView{opts: opts}
	for {
		select {
		case frame, ok := <-session.Frames():
			if !ok {
				select {
				case err := <-session.Err():
					return err
				default:
				}
				select {
				case err := <-sendErrs:
					return err
				default:
					return nil
				}
			}
			switch {
			case frame.Type == "error":
				fmt.Fprintf(opts.err(), "错误: %s\n", frame.Detail)
			case frame.Result != nil:
				view.RenderSingleResult(*frame.Result)
			}
		case err := <-session.Err():
			return err
		}
	}
}

// isTerminal checks whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
