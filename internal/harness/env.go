package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/mintcheck/internal/contract"
	"github.com/roach88/mintcheck/internal/ledger"
	"github.com/roach88/mintcheck/internal/report"
)

// Env is what a check sees while it runs: the runtime, the configuration,
// and a place to put its measurements and pass detail.
type Env struct {
	runtime ledger.Runtime
	cfg     Config
	logger  *slog.Logger
	check   string
	metrics []report.Metric
	detail  string
}

// Config returns the suite configuration.
func (e *Env) Config() Config { return e.cfg }

// Deploy deploys a fresh instance of the configured target.
func (e *Env) Deploy(ctx context.Context) (*contract.Handle, error) {
	return e.DeployArgs(ctx, e.cfg.Target)
}

// DeployArgs deploys a fresh instance with custom constructor arguments.
func (e *Env) DeployArgs(ctx context.Context, args ledger.DeployArgs) (*contract.Handle, error) {
	h, err := contract.Deploy(ctx, e.runtime, args)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("contract deployed",
		"address", h.Address().Hex(),
		"max_supply", args.MaxSupply,
		"gas_used", h.DeployGas(),
	)
	return h, nil
}

// Record attaches a measured value to the outcome.
func (e *Env) Record(name string, value uint64, unit string) {
	e.metrics = append(e.metrics, report.Metric{Name: name, Value: value, Unit: unit})
}

// Notef sets the detail shown when the check passes.
func (e *Env) Notef(format string, args ...any) {
	e.detail = fmt.Sprintf(format, args...)
}

// Fail returns a *CheckFailure for this check.
func (e *Env) Fail(expected string, actualFormat string, args ...any) error {
	return &CheckFailure{
		Check:    e.check,
		Expected: expected,
		Actual:   fmt.Sprintf(actualFormat, args...),
	}
}
