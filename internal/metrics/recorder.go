package metrics

import "time"

// Outcome labels the result of a generation or export.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Recorder defines observability hooks for the e-book workflow. Implementations
// may forward to Prometheus; NoopRecorder is used when metrics are not wired.
type Recorder interface {
	ObserveGeneration(d time.Duration, outcome Outcome)
	IncExport(format string, outcome Outcome)
	IncEdit()
	IncSession(event string) // event: started|ended|expired
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveGeneration(time.Duration, Outcome) {}
func (NoopRecorder) IncExport(string, Outcome)                {}
func (NoopRecorder) IncEdit()                                 {}
func (NoopRecorder) IncSession(string)                        {}
