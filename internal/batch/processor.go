package batch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mask-hysteresis/internal/codec"
	"mask-hysteresis/internal/hysteresis"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Filter       *hysteresis.Filter
	Depth        Depth
	OutputDir    string
	OutputFormat string
	Workers      int
}

// Result holds the outcome of processing one frame.
type Result struct {
	Frame      int
	Seed       string
	Candidate  string
	Output     string
	Success    bool
	Skipped    bool
	Error      string
	Components int
	Pixels     int
}

// Run processes every frame of the seed clip using a worker pool. The
// candidate frame for output frame n is chosen by the filter. Cancelling
// ctx stops handing out new frames; frames never started are reported as
// skipped.
func Run(ctx context.Context, cfg Config, seed, candidate Clip) []Result {
	total := seed.Len()
	results := make([]Result, total)
	for i := range results {
		results[i] = Result{
			Frame:     i,
			Seed:      seed.Frames[i],
			Candidate: candidate.Frames[cfg.Filter.CandidateFrame(i)],
			Skipped:   true,
			Error:     "skipped",
		}
	}
	var processed atomic.Int64
	log := hysteresis.Logger()

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Info("batch: progress",
						"done", p,
						"total", total,
						"fps", float64(p)/elapsed,
					)
				}
			}
		}
	}()

	workers := max(cfg.Workers, 1)
	frameChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range frameChan {
				results[n] = processFrame(cfg, seed, candidate, n)
				if !results[n].Success {
					log.Warn("batch: frame failed", "frame", n, "seed", results[n].Seed, "error", results[n].Error)
				}
				processed.Add(1)
			}
		}()
	}

	// Send work
send:
	for i := 0; i < total && ctx.Err() == nil; i++ {
		select {
		case <-ctx.Done():
			break send
		case frameChan <- i:
		}
	}
	close(frameChan)

	wg.Wait()
	close(done)

	return results
}

func processFrame(cfg Config, seed, candidate Clip, n int) Result {
	res := Result{
		Frame:     n,
		Seed:      seed.Frames[n],
		Candidate: candidate.Frames[cfg.Filter.CandidateFrame(n)],
	}

	src1, err := seed.LoadFrame(n, cfg.Depth)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	src2, err := candidate.LoadFrame(cfg.Filter.CandidateFrame(n), cfg.Depth)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	dst, st, err := cfg.Filter.Process(src1, src2)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Output = OutputPath(cfg.OutputDir, res.Seed, cfg.OutputFormat)
	if err := codec.Save(res.Output, dst); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Success = true
	res.Components = st.Components()
	res.Pixels = st.Pixels()
	return res
}

// OutputPath returns where the result for the seed frame file is written.
func OutputPath(outputDir, seedFrame, ext string) string {
	return filepath.Join(outputDir, frameStem(seedFrame)+"."+strings.TrimPrefix(ext, "."))
}
