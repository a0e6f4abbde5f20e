package metrics

import "time"

// OutcomeLabel enumerates generator run outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeUpToDate OutcomeLabel = "up_to_date"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for generator runs and their stages.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome OutcomeLabel)
	AddFilesScanned(n int)
	AddCallSites(variant string, n int)
	AddNewKeys(variant string, n int)
	SetStaleKeys(n int)
	IncDiagnostics(kind string)
	SetWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                 {}
func (NoopRecorder) AddFilesScanned(int)                        {}
func (NoopRecorder) AddCallSites(string, int)                   {}
func (NoopRecorder) AddNewKeys(string, int)                     {}
func (NoopRecorder) SetStaleKeys(int)                           {}
func (NoopRecorder) IncDiagnostics(string)                      {}
func (NoopRecorder) SetWorkers(int)                             {}
