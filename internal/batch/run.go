package batch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/classify"
)

// Status describes the final disposition of a single input ID.
type Status string

const (
	StatusSuccess Status = "success"
	StatusNoData  Status = "no_data"
	StatusError   Status = "error"
)

// Result is the record a run emits for each processed ID. Seq preserves the
// input position so the aggregator can restore input order regardless of
// worker completion order. Verdict is nil when Status is StatusError.
type Result struct {
	Seq     int
	CPF     string
	Name    string
	Verdict *classify.Verdict
	Status  Status
	Reason  string
}

// Run tracks the identity and live progress of one batch execution. Counters
// are updated as records are produced, so Snapshot is safe to call from a
// progress reporter while workers are still running.
type Run struct {
	ID        uuid.UUID
	Variant   classify.Variant
	Total     int
	StartedAt time.Time

	processed atomic.Int64
	succeeded atomic.Int64
	errored   atomic.Int64
	noData    atomic.Int64
	acquitted atomic.Int64

	mu    sync.Mutex
	cause error
}

func newRun(variant classify.Variant, total int) *Run {
	return &Run{
		ID:        uuid.New(),
		Variant:   variant,
		Total:     total,
		StartedAt: time.Now(),
	}
}

// Totals is a point-in-time view of a run's counters. Succeeded, Errored and
// NoData always sum to Processed.
type Totals struct {
	Processed int
	Succeeded int
	Errored   int
	NoData    int
	Acquitted int
}

func (r *Run) record(res *Result) {
	r.processed.Add(1)

	switch res.Status {
	case StatusSuccess:
		r.succeeded.Add(1)
	case StatusNoData:
		r.noData.Add(1)
	default:
		r.errored.Add(1)
	}

	if res.Verdict != nil && res.Verdict.Outcome == classify.OutcomeAcquitted {
		r.acquitted.Add(1)
	}
}

func (r *Run) abort(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cause == nil {
		r.cause = cause
	}
}

// Err reports why the run stopped early, wrapped in ErrAborted, or nil if the
// run was allowed to finish. Stable once the result channel has closed.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cause
}

func (r *Run) Snapshot() Totals {
	return Totals{
		Processed: int(r.processed.Load()),
		Succeeded: int(r.succeeded.Load()),
		Errored:   int(r.errored.Load()),
		NoData:    int(r.noData.Load()),
		Acquitted: int(r.acquitted.Load()),
	}
}

func (r *Run) Elapsed() time.Duration {
	return time.Since(r.StartedAt)
}
