package report

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/mintcheck/internal/ledger"
)

// Kind classifies a check outcome.
type Kind string

const (
	KindPass    Kind = "pass"
	KindFailure Kind = "failure" // the invariant did not hold
	KindError   Kind = "error"   // the check could not be carried out
)

// Metric is a measured value attached to an outcome.
type Metric struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Outcome is the result of one check.
type Outcome struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Detail  string   `json:"detail"`
	Metrics []Metric `json:"metrics,omitempty"`
}

// Report is a snapshot of a run.
type Report struct {
	RunID      string            `json:"run_id"`
	Target     ledger.DeployArgs `json:"target"`
	Runtime    string            `json:"runtime,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Outcomes   []Outcome         `json:"outcomes"`
	Passed     int               `json:"passed"`
	Failed     int               `json:"failed"`
	Errored    int               `json:"errored"`
	Total      int               `json:"total"`
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.Errored == 0
}

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies run IDs.
type IDGenerator interface {
	Generate() string
}

// SystemClock reads the real clock, in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Options configures a Collector. Zero Clock and IDs fall back to
// SystemClock and UUIDv7Generator.
type Options struct {
	Target  ledger.DeployArgs
	Runtime string
	Clock   Clock
	IDs     IDGenerator
}

// Collector accumulates outcomes for one run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Collector struct {
	mu       sync.Mutex
	clock    Clock
	runID    string
	target   ledger.DeployArgs
	runtime  string
	started  time.Time
	outcomes []Outcome
}

// NewCollector starts a run: it assigns the run ID and stamps the start time.
func NewCollector(opts Options) *Collector {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	ids := opts.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &Collector{
		clock:    clock,
		runID:    ids.Generate(),
		target:   opts.Target,
		runtime:  opts.Runtime,
		started:  clock.Now(),
		outcomes: []Outcome{},
	}
}

// RunID returns the identifier of this run.
func (c *Collector) RunID() string {
	return c.runID
}

// Add records an outcome.
func (c *Collector) Add(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

// Passed reports whether no check has failed or errored so far.
func (c *Collector) Passed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.outcomes {
		if o.Kind != KindPass {
			return false
		}
	}
	return true
}

// Report returns the outcomes so far with their counts, stamped with the
// current time as the finish time.
func (c *Collector) Report() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &Report{
		RunID:      c.runID,
		Target:     c.target,
		Runtime:    c.runtime,
		StartedAt:  c.started,
		FinishedAt: c.clock.Now(),
		Outcomes:   make([]Outcome, len(c.outcomes)),
		Total:      len(c.outcomes),
	}
	copy(r.Outcomes, c.outcomes)

	for _, o := range c.outcomes {
		switch o.Kind {
		case KindPass:
			r.Passed++
		case KindFailure:
			r.Failed++
		default:
			r.Errored++
		}
	}
	return r
}
