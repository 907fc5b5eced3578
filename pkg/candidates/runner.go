// Package candidates turns probability maps into candidate lists, one peak list
// per detection threshold, for many cases at once.
package candidates

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"manet/internal/models"
	"manet/pkg/errs"
	"manet/pkg/ndarray"
	"manet/pkg/peak"
)

// Loader reads the probability map of a case.
type Loader func(path string) (*ndarray.Array, error)

// Params holds the batch detection parameters.
type Params struct {
	// NumCores is the number of cases processed concurrently.
	// Zero or less uses all available CPUs.
	NumCores int

	// MinDistance is the peak suppression radius in pixels.
	MinDistance float64

	// Thresholds are the detection thresholds; every case is swept over all of them.
	Thresholds []float64

	// Verbose enables progress output.
	Verbose bool
}

// Thresholds returns n evenly spaced values from lo to hi inclusive.
func Thresholds(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Runner detects candidates for a batch of cases.
type Runner struct {
	params   Params
	detector *peak.Detector
}

// NewRunner validates params and returns a Runner.
func NewRunner(params Params) (*Runner, error) {
	if len(params.Thresholds) == 0 {
		return nil, errs.Invalid("at least one threshold is required")
	}
	det, err := peak.NewDetector(peak.Options{MinDistance: params.MinDistance})
	if err != nil {
		return nil, err
	}
	if params.NumCores <= 0 {
		params.NumCores = runtime.NumCPU()
	}
	return &Runner{params: params, detector: det}, nil
}

// Run processes all cases on NumCores goroutines and returns one result per
// case, in the order of cases. A failing case carries its error and does not
// stop the batch. Cases not yet started when ctx is cancelled fail with the
// context's error.
func (r *Runner) Run(ctx context.Context, cases []models.Case, load Loader) []models.CaseResult {
	results := make([]models.CaseResult, len(cases))
	if len(cases) == 0 {
		return results
	}

	type processingResult struct {
		idx    int
		result models.CaseResult
	}
	jobs := make(chan int)
	resultChan := make(chan processingResult)

	workers := min(r.params.NumCores, len(cases))
	for w := 0; w < workers; w++ {
		go func() {
			for idx := range jobs {
				c := cases[idx]
				res := models.CaseResult{Case: c}
				if err := ctx.Err(); err != nil {
					res.Err = err
				} else {
					res.Candidates, res.Err = r.processCase(c, load)
				}
				resultChan <- processingResult{idx: idx, result: res}
			}
		}()
	}

	go func() {
		for i := range cases {
			jobs <- i
		}
		close(jobs)
	}()

	// Collect results
	for completed := 0; completed < len(cases); completed++ {
		res := <-resultChan
		results[res.idx] = res.result
		if res.result.Err != nil {
			log.Printf("Case %s failed: %v", res.result.Case.ID, res.result.Err)
		}
		if r.params.Verbose {
			progress := float64(completed+1) / float64(len(cases)) * 100
			fmt.Printf("\rDetecting candidates: %.1f%% complete", progress)
		}
	}
	if r.params.Verbose {
		fmt.Println()
	}

	return results
}

// ProcessCase loads a single case and sweeps it over all thresholds.
func (r *Runner) ProcessCase(c models.Case, load Loader) (models.CaseCandidates, error) {
	return r.processCase(c, load)
}

func (r *Runner) processCase(c models.Case, load Loader) (models.CaseCandidates, error) {
	pred, err := load(c.ImagePath)
	if err != nil {
		return models.CaseCandidates{}, fmt.Errorf("loading %s: %w", c.ImagePath, err)
	}
	if pred.NDim() == 3 && pred.Shape()[0] == 1 {
		s := pred.Shape()
		if pred, err = ndarray.FromSlice(pred.Data(), s[1], s[2]); err != nil {
			return models.CaseCandidates{}, err
		}
	}
	if pred.NDim() != 2 {
		return models.CaseCandidates{}, fmt.Errorf("%w: probability map of case %s is %dD",
			errs.ErrUnsupportedConfiguration, c.ID, pred.NDim())
	}

	out := models.CaseCandidates{CaseID: c.ID}
	for _, lvl := range r.detector.Sweep(pred, r.params.Thresholds) {
		for _, p := range lvl.Peaks {
			out.Candidates = append(out.Candidates, models.Candidate{
				Threshold: lvl.Threshold,
				Row:       p[0],
				Col:       p[1],
			})
		}
	}
	return out, nil
}
