// Package winrate estimates the uncertainty around an observed winrate by
// bootstrap resampling the per-hand results. Point winrates over small
// samples are close to meaningless; the interval is the honest answer.
package winrate

import (
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/pkg/formulas"
)

// BootstrapEstimator resamples hand results to put an interval around the
// observed winrate.
type BootstrapEstimator struct {
	log zerolog.Logger
}

// NewBootstrapEstimator creates a new bootstrap estimator.
func NewBootstrapEstimator(log zerolog.Logger) *BootstrapEstimator {
	return &BootstrapEstimator{
		log: log.With().Str("component", "winrate").Logger(),
	}
}

// Estimate draws opts.Iterations resamples of the hand results (n with
// replacement), computes the mean winrate of each in bb/100, and reports the
// empirical percentile interval at opts.Confidence. A non-zero seed makes
// the run reproducible.
func (b *BootstrapEstimator) Estimate(handResultsBB []float64, opts Options) (*Result, error) {
	n := len(handResultsBB)
	if n < 1 {
		return nil, &domain.InsufficientDataError{
			Op:       "winrate.estimate",
			Required: 1,
			Actual:   n,
		}
	}

	if opts.Iterations == 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.Iterations < 1 || opts.Iterations > MaxIterations {
		return nil, &domain.InvalidParameterError{Param: "iterations", Reason: "out of range"}
	}
	if opts.Confidence == 0 {
		opts.Confidence = DefaultConfidence
	}
	if opts.Confidence <= 0 || opts.Confidence >= 1 {
		return nil, &domain.InvalidParameterError{Param: "confidence", Reason: "must be strictly between 0 and 1"}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	means := b.resampleMeans(handResultsBB, opts.Iterations, seed)

	tail := (1 - opts.Confidence) / 2
	profitable := 0
	for _, m := range means {
		if m > 0 {
			profitable++
		}
	}

	result := &Result{
		PointEstimate:  formulas.BB100(handResultsBB),
		IntervalLow:    formulas.Quantile(tail, means),
		IntervalHigh:   formulas.Quantile(1-tail, means),
		Confidence:     opts.Confidence,
		StdError:       formulas.StdDev(means),
		ProbProfitable: float64(profitable) / float64(len(means)),
		Hands:          n,
		Iterations:     opts.Iterations,
		LowSample:      n < MeaningfulMinHands,
		Seed:           seed,
	}

	b.log.Debug().
		Int("hands", n).
		Int("iterations", opts.Iterations).
		Float64("point", result.PointEstimate).
		Float64("low", result.IntervalLow).
		Float64("high", result.IntervalHigh).
		Msg("Bootstrap estimate complete")

	return result, nil
}

// resampleMeans fans the iteration space across a bounded worker pool. The
// space is split into a fixed number of chunks, each with its own seed
// derived from the base seed and the chunk index, so results are identical
// regardless of worker count or scheduling.
func (b *BootstrapEstimator) resampleMeans(data []float64, iterations int, seed uint64) []float64 {
	n := len(data)
	means := make([]float64, iterations)

	chunkSize := (iterations + resampleChunks - 1) / resampleChunks

	workers := runtime.GOMAXPROCS(0)
	if workers > resampleChunks {
		workers = resampleChunks
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range jobs {
				rng := rand.New(rand.NewPCG(seed, uint64(chunk)+1))
				start := chunk * chunkSize
				end := start + chunkSize
				if end > iterations {
					end = iterations
				}
				for i := start; i < end; i++ {
					sum := 0.0
					for j := 0; j < n; j++ {
						sum += data[rng.IntN(n)]
					}
					means[i] = sum / float64(n) * 100
				}
			}
		}()
	}

	for chunk := 0; chunk < resampleChunks; chunk++ {
		jobs <- chunk
	}
	close(jobs)
	wg.Wait()

	return means
}

// RequiredSampleSize returns how many hands are needed before a winrate
// estimate lands within marginBB100 of the truth at the given confidence,
// from the normal approximation of the sampling error.
func (b *BootstrapEstimator) RequiredSampleSize(stdDevBB100, marginBB100, confidence float64) (*SampleSizeResult, error) {
	if stdDevBB100 <= 0 {
		return nil, &domain.InvalidParameterError{Param: "std_dev_bb100", Reason: "must be positive"}
	}
	if marginBB100 <= 0 {
		return nil, &domain.InvalidParameterError{Param: "margin_bb100", Reason: "must be positive"}
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, &domain.InvalidParameterError{Param: "confidence", Reason: "must be strictly between 0 and 1"}
	}

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - (1-confidence)/2)

	// SE(bb/100 estimate over n hands) = stddev * 10 / sqrt(n).
	hands := int(math.Ceil(math.Pow(10*z*stdDevBB100/marginBB100, 2)))

	return &SampleSizeResult{
		HandsNeeded: hands,
		MarginBB100: marginBB100,
		Confidence:  confidence,
		StdDevBB100: stdDevBB100,
	}, nil
}
