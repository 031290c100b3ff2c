// Package observ carries the lightweight timing instrumentation the
// checker surfaces through `check --timings`.
package observ

import (
	"time"
)

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
}

// Timer collects named phase durations for one run. Not safe for
// concurrent use; each run owns its own Timer.
type Timer struct {
	phases []phase
}

func NewTimer() *Timer { return &Timer{} }

// Phase starts timing name and returns the function that stops it.
func (t *Timer) Phase(name string) func() {
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name, start: time.Now()})
	return func() {
		p := &t.phases[idx]
		p.dur = time.Since(p.start)
	}
}

// PhaseReport is the serializable form of one finished phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
}

// Report aggregates a Timer's phases with their total.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report flattens the recorded phases into milliseconds.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	out := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.dur
		out.Phases[i] = PhaseReport{
			Name:       p.name,
			DurationMS: float64(p.dur) / float64(time.Millisecond),
		}
	}
	out.TotalMS = float64(total) / float64(time.Millisecond)
	return out
}
