package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"
)

// evaluateFunc scores one set of trait values; lower fitness is better.
type evaluateFunc func(values []float64) (fitness, quality float64)

// search minimizes an evaluateFunc over the normalized trait space and keeps
// the best values seen, since CMA-ES may end away from them.
type search struct {
	params   *ParamVector
	evaluate evaluateFunc
	log      *csv.Writer // nil disables the evaluation log
	maxEvals int

	evals       int
	bestFitness float64
	best        []float64
	start       time.Time
}

func newSearch(params *ParamVector, evaluate evaluateFunc, maxEvals int) *search {
	return &search{params: params, evaluate: evaluate, maxEvals: maxEvals}
}

// logTo writes the header then one row per evaluation: eval, fitness,
// quality and one column per tunable trait.
func (s *search) logTo(w *csv.Writer) error {
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range s.params.Specs {
		header = append(header, spec.Name)
	}
	s.log = w
	return s.flush(header)
}

func (s *search) flush(row []string) error {
	if err := s.log.Write(row); err != nil {
		return err
	}
	s.log.Flush()
	return s.log.Error()
}

// objective is the CMA-ES callback. Evaluations run one at a time.
func (s *search) objective(x []float64) float64 {
	values := s.params.Clamp(s.params.Denormalize(x))
	fitness, quality := s.evaluate(values)
	s.evals++

	if s.best == nil || fitness < s.bestFitness {
		s.bestFitness = fitness
		s.best = values
	}

	if s.log != nil {
		row := []string{strconv.Itoa(s.evals), fmtFloat(fitness), fmtFloat(quality)}
		for _, v := range values {
			row = append(row, fmtFloat(v))
		}
		if err := s.flush(row); err != nil {
			slog.Error("failed to write evaluation log", "error", err)
		}
	}

	elapsed := time.Since(s.start)
	eta := time.Duration(s.maxEvals-s.evals) * (elapsed / time.Duration(s.evals))
	slog.Info("evaluation",
		"eval", s.evals,
		"of", s.maxEvals,
		// fitness = -survival * (1 + 0.2*quality)
		"survived", int(-fitness/(1+0.2*quality)),
		"quality", quality,
		"best", s.bestFitness,
		"elapsed", formatDuration(elapsed),
		"eta", formatDuration(eta),
	)
	return fitness
}

// run starts from the base config's values and returns the best clamped
// values found. population <= 0 picks 4 + 3n/2.
func (s *search) run(population int) ([]float64, error) {
	dim := s.params.Dim()
	if dim == 0 {
		return nil, errors.New("config has no species to optimize")
	}
	if population <= 0 {
		population = 4 + 3*dim/2
	}

	slog.Info("starting CMA-ES", "params", dim, "population", population, "max_evals", s.maxEvals)
	s.start = time.Now()

	result, err := optimize.Minimize(
		optimize.Problem{Func: s.objective},
		s.params.Normalize(s.params.DefaultVector()),
		&optimize.Settings{FuncEvaluations: s.maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: population},
	)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	if s.best == nil && result != nil {
		s.best = s.params.Clamp(s.params.Denormalize(result.X))
	}
	if s.best == nil {
		return nil, errors.New("no evaluation completed")
	}
	return s.best, nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatDuration formats a duration as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	sec := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	return fmt.Sprintf("%dm%02ds", m, sec)
}

// createLog opens path for the evaluation log.
func createLog(path string) (*os.File, *csv.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, csv.NewWriter(f), nil
}
