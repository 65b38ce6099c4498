// Package bench load-tests the analysis backend: a worker pool cycles
// through sample texts and reports latency percentiles and error
// rates.
package bench

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/qinggan/qinggan/internal/api"
	"github.com/qinggan/qinggan/internal/logging"
	"github.com/qinggan/qinggan/internal/types"
)

// Backend is the single-text part of the API client the runner needs.
type Backend interface {
	AnalyzeText(ctx context.Context, text string) (*types.AnalysisResult, error)
}

// Config controls a benchmark run.
type Config struct {
	Workers  int // concurrent workers
	Requests int // total requests across all workers
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Requests <= 0 {
		return fmt.Errorf("requests must be positive, got %d", c.Requests)
	}
	if c.Workers > c.Requests {
		return fmt.Errorf("workers (%d) exceed total requests (%d)", c.Workers, c.Requests)
	}
	return nil
}

// Run fires config.Requests single-text analyses at the backend,
// cycling through texts in order. It stops early when ctx is
// cancelled and returns the stats gathered so far.
func Run(ctx context.Context, backend Backend, config Config, texts []string) (*Stats, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, errors.New("no sample texts to send")
	}

	stats := NewStats(config.Requests)
	var statsMutex sync.Mutex

	jobs := make(chan string)
	go func() {
		defer close(jobs)
		for i := 0; i < config.Requests; i++ {
			select {
			case jobs <- texts[i%len(texts)]:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for text := range jobs {
				start := time.Now()
				_, err := backend.AnalyzeText(ctx, text)
				durationMs := time.Since(start).Milliseconds()

				statsMutex.Lock()
				stats.AddResult(durationMs, classify(err))
				statsMutex.Unlock()
			}
		}()
	}
	wg.Wait()

	logging.Info("benchmark finished",
		"requests", stats.CompletedRequests,
		"success_rate", stats.SuccessRate(),
		"p95_ms", stats.P95())
	return stats, nil
}

func classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var appErr *api.ApplicationError
	if errors.As(err, &appErr) {
		return OutcomeBackendError
	}
	return OutcomeTransportError
}

// Report formats the run summary for the terminal.
func Report(stats *Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "请求总数: %d\n", stats.CompletedRequests)
	fmt.Fprintf(&b, "成功率: %.1f%%\n", stats.SuccessRate())
	if stats.TransportErrors > 0 {
		fmt.Fprintf(&b, "传输错误: %d\n", stats.TransportErrors)
	}
	if stats.BackendErrors > 0 {
		fmt.Fprintf(&b, "后端错误: %d\n", stats.BackendErrors)
	}
	fmt.Fprintf(&b, "延迟 (ms): avg %.1f  min %d  max %d\n",
		stats.AvgDurationMs(), stats.Min(), stats.Max())
	fmt.Fprintf(&b, "百分位 (ms): p50 %d  p95 %d  p99 %d\n",
		stats.P50(), stats.P95(), stats.P99())
	return b.String()
}
