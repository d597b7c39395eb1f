package optim

import (
	"context"
	"sync"
)

// Ensemble runs one session under consecutive seeds in parallel.
type Ensemble struct {
	session   Session
	numRuns   int
	seedStart int64
}

func NewEnsemble(s Session, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{session: s, numRuns: max(1, numRuns), seedStart: seedStart}
}

// Run returns one trial per seed, in seed order.
func (e *Ensemble) Run(ctx context.Context, patch map[string]float64) ([]Trial, error) {
	trials := make([]Trial, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			trials[idx], errs[idx] = e.session.Run(ctx, e.seedStart+int64(idx), patch)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return trials, nil
}

// Mean averages every metric across trials.
func Mean(trials []Trial) map[string]float64 {
	out := make(map[string]float64)
	if len(trials) == 0 {
		return out
	}
	for _, t := range trials {
		for k, v := range t.Metrics {
			out[k] += v
		}
	}
	for k := range out {
		out[k] /= float64(len(trials))
	}
	return out
}
