package mcl

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// StepRecord captures the filter state right after one step.
type StepRecord struct {
	Step      int
	WDist     float64
	Injection float64
	Converged bool
}

// RunRecorder accumulates per-step records for a single simulation run.
type RunRecorder struct {
	Steps       []StepRecord
	ConvergedAt int // first converged step, 0 when never converged
}

// NewRunRecorder creates an empty run recorder.
func NewRunRecorder() *RunRecorder {
	return &RunRecorder{}
}

// Record appends the filter state after the given 1-based step number.
func (r *RunRecorder) Record(step int, f *ParticleFilter, converged bool) {
	r.Steps = append(r.Steps, StepRecord{
		Step:      step,
		WDist:     f.ConvergenceError(),
		Injection: f.InjectionFraction(),
		Converged: converged,
	})
	if converged && r.ConvergedAt == 0 {
		r.ConvergedAt = step
	}
}

// WriteCSV emits one row per recorded step.
func (r *RunRecorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"step", "w_dist", "injection", "converged"}); err != nil {
		return err
	}
	for _, s := range r.Steps {
		row := []string{
			strconv.Itoa(s.Step),
			strconv.FormatFloat(s.WDist, 'f', 4, 64),
			strconv.FormatFloat(s.Injection, 'f', 4, 64),
			strconv.FormatBool(s.Converged),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Experiment collects convergence times across repeated runs of one or
// more filter variants, one column per variant and one row per iteration.
// A zero time means the variant never converged within the step budget.
type Experiment struct {
	Columns []string
	Rows    [][]int
}

// NewExperiment creates an experiment with the given column names.
func NewExperiment(columns ...string) *Experiment {
	return &Experiment{Columns: columns}
}

// AddRow appends one iteration's convergence times.
func (e *Experiment) AddRow(times ...int) error {
	if len(times) != len(e.Columns) {
		return fmt.Errorf("row has %d values, want %d", len(times), len(e.Columns))
	}
	e.Rows = append(e.Rows, times)
	return nil
}

// WriteCSV emits the column header and one row per iteration.
func (e *Experiment) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(e.Columns); err != nil {
		return err
	}
	for _, row := range e.Rows {
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = strconv.Itoa(v)
		}
		if err := cw.Write(fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
