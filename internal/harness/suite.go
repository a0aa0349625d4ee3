package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path"

	"github.com/roach88/mintcheck/internal/ledger"
	"github.com/roach88/mintcheck/internal/report"
)

// Sink receives outcomes as checks finish. *report.Collector is a Sink.
type Sink interface {
	Add(report.Outcome)
}

// Suite runs a selection of checks against one runtime, one at a time.
type Suite struct {
	runtime ledger.Runtime
	cfg     Config
	checks  []Check
	logger  *slog.Logger
}

// New validates cfg and selects the checks it names.
func New(rt ledger.Runtime, cfg Config, logger *slog.Logger) (*Suite, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite config: %w", err)
	}
	if cfg.Order == "" {
		cfg.Order = OrderDeclared
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	checks, err := Select(cfg.Checks)
	if err != nil {
		return nil, err
	}

	return &Suite{
		runtime: rt,
		cfg:     cfg,
		checks:  order(checks, cfg.Order, cfg.Seed),
		logger:  logger,
	}, nil
}

// Select returns the checks whose names match any of patterns, in declared
// order. No patterns selects every check. A pattern that matches nothing is
// an error.
func Select(patterns []string) ([]Check, error) {
	all := Checks()
	if len(patterns) == 0 {
		return all, nil
	}

	selected := make(map[string]bool)
	for _, p := range patterns {
		matched := false
		for _, c := range all {
			ok, err := path.Match(p, c.Name)
			if err != nil {
				return nil, fmt.Errorf("invalid check pattern %q: %w", p, err)
			}
			if ok {
				selected[c.Name] = true
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("no check matches %q", p)
		}
	}

	var out []Check
	for _, c := range all {
		if selected[c.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

// order returns checks in run order. Shuffled order is a permutation that
// depends only on seed.
func order(checks []Check, o Order, seed int64) []Check {
	out := make([]Check, len(checks))
	copy(out, checks)
	if o != OrderShuffled {
		return out
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Checks returns the selected checks in run order.
func (s *Suite) Checks() []Check {
	out := make([]Check, len(s.checks))
	copy(out, s.checks)
	return out
}

// Run executes every selected check and streams each outcome to sink.
// Failures and harness errors are outcomes, not errors; Run only returns
// an error when ctx ends, after recording the check that was interrupted.
func (s *Suite) Run(ctx context.Context, sink Sink) error {
	s.logger.Info("suite started",
		"checks", len(s.checks),
		"order", string(s.cfg.Order),
		"seed", s.cfg.Seed,
		"target", s.cfg.Target.Name,
	)

	var passed, failed, errored int
	for _, c := range s.checks {
		if err := ctx.Err(); err != nil {
			return err
		}

		out := s.runCheck(ctx, c)
		switch out.Kind {
		case report.KindPass:
			passed++
		case report.KindFailure:
			failed++
		default:
			errored++
		}
		sink.Add(out)
	}

	s.logger.Info("suite finished", "passed", passed, "failed", failed, "errored", errored)
	return ctx.Err()
}

func (s *Suite) runCheck(ctx context.Context, c Check) (out report.Outcome) {
	logger := s.logger.With("check", c.Name)
	env := &Env{
		runtime: s.runtime,
		cfg:     s.cfg,
		logger:  logger,
		check:   c.Name,
	}

	defer func() {
		if r := recover(); r != nil {
			out = s.classify(c, env, fmt.Errorf("check panicked: %v", r))
		}
	}()

	logger.Debug("check started")
	return s.classify(c, env, c.Run(ctx, env))
}

func (s *Suite) classify(c Check, env *Env, err error) report.Outcome {
	out := report.Outcome{Name: c.Name, Metrics: env.metrics}
	logger := s.logger.With("check", c.Name)

	var failure *CheckFailure
	switch {
	case err == nil:
		out.Kind = report.KindPass
		out.Detail = env.detail
		logger.Info("check passed", "detail", out.Detail)

	case errors.As(err, &failure):
		out.Kind = report.KindFailure
		out.Detail = failure.Detail()
		logger.Warn("check failed", "expected", failure.Expected, "actual", failure.Actual)

	default:
		out.Kind = report.KindError
		out.Detail = err.Error()
		logger.Error("check aborted by harness error", "error", err)
	}
	return out
}
