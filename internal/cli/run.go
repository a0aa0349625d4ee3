package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/mintcheck/internal/config"
	"github.com/roach88/mintcheck/internal/harness"
	"github.com/roach88/mintcheck/internal/report"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	ConfigPath  string
	Name        string
	Symbol      string
	MaxSupply   uint64
	BaseURI     string
	CostCeiling uint64
	MintCount   int
	Runtime     string
	Accounts    int
	RPCURL      string
	Artifact    string
	Keys        []string
	Checks      []string
	Order       string
	Seed        int64
	ReportFile  string

	// Test seams; zero values use OpenRuntime and the report defaults.
	open  RuntimeOpener
	clock report.Clock
	ids   report.IDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Deploy the target contract and run the invariant checks",
		Long: `Run the invariant checks against the target contract.

Settings come from the built-in defaults, then the --config descriptor,
then individual flags. Each check deploys its own instance of the
target.

Exit codes:
  0 - All checks passed
  1 - One or more checks failed
  2 - Command error (invalid flags or config, runtime unreachable)
  3 - No check failed, but one or more could not be carried out

Examples:
  mintcheck run
  mintcheck run --config mintcheck.yaml
  mintcheck run --checks "*_ceiling" --mint-count 5
  mintcheck run --runtime rpc --rpc-url http://127.0.0.1:8545 \
      --artifact out/NftCollection.json --key $OWNER_KEY --key $USER_KEY
  mintcheck run --format json --report-file report.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecks(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "run descriptor (YAML)")
	f.StringVar(&opts.Name, "name", "", "collection name")
	f.StringVar(&opts.Symbol, "symbol", "", "collection symbol")
	f.Uint64Var(&opts.MaxSupply, "max-supply", 0, "collection supply cap")
	f.StringVar(&opts.BaseURI, "base-uri", "", "token metadata base URI")
	f.Uint64Var(&opts.CostCeiling, "cost-ceiling", 0, "gas ceiling for a single mint")
	f.IntVar(&opts.MintCount, "mint-count", 0, "mints performed by identifier_monotonicity")
	f.StringVar(&opts.Runtime, "runtime", "", "runtime kind (sim|rpc)")
	f.IntVar(&opts.Accounts, "accounts", 0, "signers of the sim runtime")
	f.StringVar(&opts.RPCURL, "rpc-url", "", "JSON-RPC endpoint of the node")
	f.StringVar(&opts.Artifact, "artifact", "", "compiled contract artifact (Hardhat or Foundry JSON)")
	f.StringArrayVar(&opts.Keys, "key", nil, "hex private key; first is the owner (repeatable)")
	f.StringSliceVar(&opts.Checks, "checks", nil, "check name patterns (glob, comma separated)")
	f.StringVar(&opts.Order, "order", "", "check order (declared|shuffled)")
	f.Int64Var(&opts.Seed, "seed", 0, "seed for --order shuffled")
	f.StringVar(&opts.ReportFile, "report-file", "", "also write the JSON report to this file")

	return cmd
}

func runChecks(opts *RunOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := cmd.Context()

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return fail(out, ExitCommandError, ErrCodeConfigLoad, "failed to load config", err, nil)
		}
		cfg = loaded
		out.VerboseLog("Loaded config from %s", opts.ConfigPath)
	}
	opts.apply(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return invalidConfig(out, ExitCommandError, err)
	}

	logger := opts.logger(out.GetErrWriter())

	open := opts.open
	if open == nil {
		open = OpenRuntime
	}
	rt, label, err := open(ctx, cfg.Runtime, logger)
	if err != nil {
		return fail(out, ExitCommandError, ErrCodeRuntime, "failed to open runtime", err, nil)
	}
	defer rt.Close()

	suite, err := harness.New(rt, cfg.Suite(), logger)
	if err != nil {
		return fail(out, ExitCommandError, ErrCodeSelection, "failed to set up checks", err, nil)
	}

	collector := report.NewCollector(report.Options{
		Target:  cfg.Target,
		Runtime: label,
		Clock:   opts.clock,
		IDs:     opts.ids,
	})
	out.VerboseLog("Run %s: %d check(s) on %s", collector.RunID(), len(suite.Checks()), label)

	runErr := suite.Run(ctx, collector)
	rep := collector.Report()

	if opts.ReportFile != "" {
		if err := writeReportFile(opts.ReportFile, rep); err != nil {
			return fail(out, ExitCommandError, ErrCodeReportWrite, "failed to write report file", err, nil)
		}
		out.VerboseLog("Wrote report to %s", opts.ReportFile)
	}

	exitErr := runExitError(rep, runErr)
	if out.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: rep}
		if exitErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: runErrorCode(rep, runErr), Message: exitErr.Error()}
		}
		if err := out.Respond(resp); err != nil {
			return err
		}
		return exitErr
	}

	if err := report.WriteText(out.Writer, rep); err != nil {
		return err
	}
	return exitErr
}

// apply overrides cfg with the flags the user set explicitly.
func (o *RunOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed

	if set("name") {
		cfg.Target.Name = o.Name
	}
	if set("symbol") {
		cfg.Target.Symbol = o.Symbol
	}
	if set("max-supply") {
		cfg.Target.MaxSupply = o.MaxSupply
	}
	if set("base-uri") {
		cfg.Target.BaseURI = o.BaseURI
	}
	if set("cost-ceiling") {
		cfg.CostCeiling = o.CostCeiling
	}
	if set("mint-count") {
		cfg.MintCount = o.MintCount
	}
	if set("runtime") {
		cfg.Runtime.Kind = o.Runtime
	}
	if set("accounts") {
		cfg.Runtime.Accounts = o.Accounts
	}
	if set("rpc-url") {
		cfg.Runtime.RPCURL = o.RPCURL
	}
	if set("artifact") {
		cfg.Runtime.Artifact = o.Artifact
	}
	if set("key") {
		cfg.Runtime.Keys = o.Keys
	}
	if set("checks") {
		cfg.Checks = o.Checks
	}
	if set("order") {
		cfg.Order = o.Order
	}
	if set("seed") {
		cfg.Seed = o.Seed
	}
}

func runExitError(rep *report.Report, runErr error) error {
	switch {
	case runErr != nil:
		return WrapExitError(ExitCommandError, fmt.Sprintf("run interrupted after %d check(s)", rep.Total), runErr)
	case rep.Failed > 0:
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d check(s) failed", rep.Failed, rep.Total))
	case rep.Errored > 0:
		return NewExitError(ExitErrored, fmt.Sprintf("%d of %d check(s) could not be carried out", rep.Errored, rep.Total))
	}
	return nil
}

func runErrorCode(rep *report.Report, runErr error) string {
	switch {
	case runErr != nil:
		return ErrCodeInterrupted
	case rep.Failed > 0:
		return ErrCodeChecksFailed
	}
	return ErrCodeChecksErrored
}

func writeReportFile(path string, rep *report.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return report.WriteJSON(f, rep)
}
