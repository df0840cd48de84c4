package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/htmlfn/pkg/render"
)

type benchConfig struct {
	Template string
	Workers  int
	Duration time.Duration
	Count    int
	Samples  int
}

type benchCounters struct {
	renders atomic.Uint64
	errors  atomic.Uint64
	bytes   atomic.Uint64
}

type benchReport struct {
	Version    string         `json:"version"`
	Run        runInfo        `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	LatencyMS  latencyInfo    `json:"latency_ms"`
	Throughput throughputInfo `json:"throughput"`
	GC         gcInfo         `json:"gc"`
	Errors     uint64         `json:"errors"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
}

type workloadInfo struct {
	Template   string `json:"template"`
	Workers    int    `json:"workers"`
	DurationMS int64  `json:"duration_ms"`
	Count      int    `json:"count,omitempty"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	RendersTotal  uint64  `json:"renders_total"`
	RendersPerSec float64 `json:"renders_per_sec"`
	BytesTotal    uint64  `json:"bytes_total"`
	AvgBytes      float64 `json:"avg_bytes"`
}

type gcInfo struct {
	AllocMB      float64 `json:"alloc_mb"`
	HeapLiveMB   float64 `json:"heap_live_mb"`
	NumGC        uint32  `json:"num_gc"`
	PauseTotalMS float64 `json:"pause_total_ms"`
}

func benchCmd(opts *globalOptions) *cobra.Command {
	var (
		cfg         benchConfig
		contextFile string
		jsonOut     string
	)

	cmd := &cobra.Command{
		Use:   "bench <template>",
		Short: "Measure render throughput and latency",
		Long: `Render a template repeatedly from concurrent workers and report
latency percentiles, throughput and allocation statistics.

The run stops after --duration, or after --count renders when set.

Examples:
  htmlfn bench index
  htmlfn bench blog/post --workers 8 --duration 30s --json report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.loadConfig()
			if err != nil {
				return err
			}
			r, err := newRenderer(conf)
			if err != nil {
				return err
			}

			var data any
			if contextFile != "" {
				if data, err = loadContext(contextFile); err != nil {
					return err
				}
			}

			cfg.Template = args[0]
			// Fail fast on a template that cannot render at all.
			if _, err := r.RenderToString(cmd.Context(), cfg.Template, data); err != nil {
				return err
			}

			report, err := runBench(cmd.Context(), r, cfg, data)
			if err != nil {
				return err
			}

			writeSummary(cmd.OutOrStdout(), report)
			if jsonOut != "" {
				return writeReport(cmd.OutOrStdout(), jsonOut, report)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.GOMAXPROCS(0), "Concurrent render workers")
	cmd.Flags().DurationVarP(&cfg.Duration, "duration", "d", 10*time.Second, "Run length")
	cmd.Flags().IntVarP(&cfg.Count, "count", "n", 0, "Stop after this many renders (0 = run for --duration)")
	cmd.Flags().IntVar(&cfg.Samples, "samples", 100000, "Maximum latency samples kept")
	cmd.Flags().StringVarP(&contextFile, "context", "c", "", "YAML or JSON file with the render context")
	cmd.Flags().StringVar(&jsonOut, "json", "", "Also write a JSON report to this path (- for stdout)")

	return cmd
}

// runBench renders cfg.Template until the duration elapses or the count
// is reached.
func runBench(ctx context.Context, r *render.Renderer, cfg benchConfig, data any) (benchReport, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Samples <= 0 {
		cfg.Samples = 1
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var (
		counters  benchCounters
		remaining atomic.Int64
		mu        sync.Mutex
	)
	remaining.Store(int64(cfg.Count))
	latencies := make([]time.Duration, 0, min(cfg.Samples, 4096))

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			local := make([]time.Duration, 0, 256)
			defer func() {
				mu.Lock()
				room := cfg.Samples - len(latencies)
				latencies = append(latencies, local[:min(room, len(local))]...)
				mu.Unlock()
			}()

			for ctx.Err() == nil {
				if cfg.Count > 0 && remaining.Add(-1) < 0 {
					return nil
				}
				t0 := time.Now()
				out, err := r.RenderToString(ctx, cfg.Template, data)
				elapsed := time.Since(t0)
				if err != nil {
					counters.errors.Add(1)
					continue
				}
				counters.renders.Add(1)
				counters.bytes.Add(uint64(len(out)))
				if len(local) < cfg.Samples {
					local = append(local, elapsed)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return benchReport{}, err
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)
	slices.Sort(latencies)

	return buildReport(cfg, elapsed, latencies, &counters, before, after), nil
}

func buildReport(cfg benchConfig, elapsed time.Duration, latencies []time.Duration, counters *benchCounters, before, after runtime.MemStats) benchReport {
	renders := counters.renders.Load()
	bytes := counters.bytes.Load()
	seconds := math.Max(0.001, elapsed.Seconds())

	latency := latencyInfo{}
	if len(latencies) > 0 {
		latency = latencyInfo{
			Min: ms(latencies[0]),
			P50: ms(percentile(latencies, 0.50)),
			P95: ms(percentile(latencies, 0.95)),
			P99: ms(percentile(latencies, 0.99)),
			Max: ms(latencies[len(latencies)-1]),
		}
	}

	avgBytes := 0.0
	if renders > 0 {
		avgBytes = float64(bytes) / float64(renders)
	}

	return benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
		},
		Workload: workloadInfo{
			Template:   cfg.Template,
			Workers:    cfg.Workers,
			DurationMS: elapsed.Milliseconds(),
			Count:      cfg.Count,
		},
		LatencyMS: latency,
		Throughput: throughputInfo{
			RendersTotal:  renders,
			RendersPerSec: float64(renders) / seconds,
			BytesTotal:    bytes,
			AvgBytes:      avgBytes,
		},
		GC: gcInfo{
			AllocMB:      float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			HeapLiveMB:   float64(after.HeapAlloc) / (1024 * 1024),
			NumGC:        after.NumGC - before.NumGC,
			PauseTotalMS: ms(time.Duration(after.PauseTotalNs - before.PauseTotalNs)),
		},
		Errors: counters.errors.Load(),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== htmlfn render benchmark ===")
	fmt.Fprintf(w, "Template: %s\n", report.Workload.Template)
	fmt.Fprintf(w, "Workers:  %d\n", report.Workload.Workers)
	fmt.Fprintf(w, "Elapsed:  %s\n", time.Duration(report.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Renders:    %d\n", report.Throughput.RendersTotal)
	fmt.Fprintf(w, "Throughput: %.1f renders/s\n", report.Throughput.RendersPerSec)
	fmt.Fprintf(w, "Output:     %.1f bytes/render\n", report.Throughput.AvgBytes)
	fmt.Fprintf(w, "Errors:     %d\n", report.Errors)
	fmt.Fprintln(w)

	if report.Throughput.RendersTotal == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "Latency:")
		fmt.Fprintf(w, "  min: %.3f ms\n", report.LatencyMS.Min)
		fmt.Fprintf(w, "  p50: %.3f ms\n", report.LatencyMS.P50)
		fmt.Fprintf(w, "  p95: %.3f ms\n", report.LatencyMS.P95)
		fmt.Fprintf(w, "  p99: %.3f ms\n", report.LatencyMS.P99)
		fmt.Fprintf(w, "  max: %.3f ms\n", report.LatencyMS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC:")
	fmt.Fprintf(w, "  alloc:     %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  heap_live: %.2f MB\n", report.GC.HeapLiveMB)
	fmt.Fprintf(w, "  num_gc:    %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (total)\n", report.GC.PauseTotalMS)
}

// writeReport writes report as indented JSON to path, or to stdout for "-".
func writeReport(stdout io.Writer, path string, report benchReport) error {
	out := stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
