// Package simulation runs Monte Carlo bankroll trajectories and derives
// bankroll-sizing guidance (risk of ruin, percentile fan charts, Kelly
// fractions) from a winrate / standard deviation pair.
package simulation

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

// maxMatrixCells bounds trajectories x steps so a single request cannot
// exhaust memory building the fan-chart matrix.
const maxMatrixCells = 50_000_000

// Simulator runs Monte Carlo bankroll simulations.
type Simulator struct {
	log zerolog.Logger
}

// NewSimulator creates a new Monte Carlo simulator.
func NewSimulator(log zerolog.Logger) *Simulator {
	return &Simulator{
		log: log.With().Str("component", "simulation").Logger(),
	}
}

// Simulate runs params.Trajectories independent bankroll paths of
// params.HandsPerTrajectory hands each, in 100-hand steps with normally
// distributed increments. A trajectory that touches zero or below is ruined
// and its path freezes there. A non-zero seed makes the run bit-for-bit
// reproducible regardless of worker scheduling.
func (s *Simulator) Simulate(params Params) (*Result, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	if params.Trajectories == 0 {
		params.Trajectories = DefaultTrajectories
	}
	if params.HandsPerTrajectory == 0 {
		params.HandsPerTrajectory = DefaultHands
	}
	percentiles := params.Percentiles
	if len(percentiles) == 0 {
		percentiles = DefaultPercentiles
	}

	seed := params.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	fullSteps := params.HandsPerTrajectory / HandsPerStep
	remHands := params.HandsPerTrajectory % HandsPerStep
	steps := fullSteps
	if remHands > 0 {
		steps++
	}

	if int64(params.Trajectories)*int64(steps+1) > maxMatrixCells {
		return nil, &domain.InvalidParameterError{
			Param:  "trajectories",
			Reason: "trajectories x hands combination too large to simulate",
		}
	}

	start := time.Now()

	paths := make([][]float64, params.Trajectories)
	ruined := make([]bool, params.Trajectories)
	maxDrawdowns := make([]float64, params.Trajectories)
	reachedTarget := make([]bool, params.Trajectories)

	// Each trajectory derives its RNG from the base seed and its own index,
	// so results do not depend on how work is spread across workers.
	workers := runtime.GOMAXPROCS(0)
	if workers > params.Trajectories {
		workers = params.Trajectories
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				src := rand.NewPCG(seed, uint64(i)+1)
				dist := distuv.Normal{
					Mu:    params.WinRateBB100,
					Sigma: params.StdDevBB100,
					Src:   src,
				}

				path := make([]float64, steps+1)
				path[0] = params.StartingBankrollBB
				bankroll := params.StartingBankrollBB
				isRuined := false
				hitTarget := params.TargetBankrollBB > 0 && bankroll >= params.TargetBankrollBB

				for step := 1; step <= steps; step++ {
					if !isRuined {
						increment := dist.Rand()
						if step == steps && remHands > 0 {
							// Partial final step: scale mean linearly and
							// spread by sqrt of the hand fraction.
							frac := float64(remHands) / HandsPerStep
							increment = params.WinRateBB100*frac +
								(increment-params.WinRateBB100)*math.Sqrt(frac)
						}
						bankroll += increment
						if bankroll <= 0 {
							isRuined = true
						}
						if params.TargetBankrollBB > 0 && bankroll >= params.TargetBankrollBB {
							hitTarget = true
						}
					}
					path[step] = bankroll
				}

				paths[i] = path
				ruined[i] = isRuined
				maxDrawdowns[i] = formulas.MaxDrawdown(path)
				reachedTarget[i] = hitTarget
			}
		}()
	}

	for i := 0; i < params.Trajectories; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := s.aggregate(params, percentiles, seed, steps, paths, ruined, maxDrawdowns, reachedTarget)

	s.log.Debug().
		Int("trajectories", params.Trajectories).
		Int("hands", params.HandsPerTrajectory).
		Float64("risk_of_ruin", result.RiskOfRuin).
		Dur("elapsed", time.Since(start)).
		Msg("Simulation complete")

	return result, nil
}

func (s *Simulator) aggregate(
	params Params,
	percentiles []float64,
	seed uint64,
	steps int,
	paths [][]float64,
	ruined []bool,
	maxDrawdowns []float64,
	reachedTarget []bool,
) *Result {
	n := len(paths)

	finals := make([]float64, n)
	ruinCount := 0
	targetCount := 0
	for i, path := range paths {
		finals[i] = path[len(path)-1]
		if ruined[i] {
			ruinCount++
		}
		if reachedTarget[i] {
			targetCount++
		}
	}

	bands := make([]Band, len(percentiles))
	column := make([]float64, n)
	for bi, p := range percentiles {
		bands[bi] = Band{
			Percentile: p,
			Values:     make([]float64, steps+1),
		}
	}
	for step := 0; step <= steps; step++ {
		for i := range paths {
			column[i] = paths[i][step]
		}
		for bi, p := range percentiles {
			bands[bi].Values[step] = formulas.Quantile(p/100, column)
		}
	}

	probTarget := 0.0
	if params.TargetBankrollBB > 0 {
		probTarget = float64(targetCount) / float64(n)
	}

	return &Result{
		RiskOfRuin:        float64(ruinCount) / float64(n),
		ExpectedFinalBB:   formulas.Mean(finals),
		MedianFinalBB:     formulas.Median(finals),
		MedianMaxDrawdown: formulas.Median(maxDrawdowns),
		ProbReachTarget:   probTarget,
		Bands:             bands,
		Steps:             steps,
		TrajectoriesRun:   n,
		HandsSimulated:    params.HandsPerTrajectory,
		Seed:              seed,
	}
}

func validateParams(params Params) error {
	if params.StartingBankrollBB <= 0 {
		return &domain.InvalidParameterError{Param: "starting_bankroll_bb", Reason: "must be positive"}
	}
	if params.StdDevBB100 <= 0 {
		return &domain.InvalidParameterError{Param: "std_dev_bb100", Reason: "must be positive"}
	}
	if params.Trajectories < 0 || params.Trajectories > MaxTrajectories {
		return &domain.InvalidParameterError{Param: "trajectories", Reason: "out of range"}
	}
	if params.HandsPerTrajectory < 0 || params.HandsPerTrajectory > MaxHands {
		return &domain.InvalidParameterError{Param: "hands_per_trajectory", Reason: "out of range"}
	}
	for _, p := range params.Percentiles {
		if p <= 0 || p >= 100 {
			return &domain.InvalidParameterError{Param: "percentiles", Reason: "percentiles must be strictly between 0 and 100"}
		}
	}
	return nil
}
