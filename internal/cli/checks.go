package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/mintcheck/internal/harness"
)

// CheckInfo describes one available check.
type CheckInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewChecksCommand creates the checks command.
func NewChecksCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checks [pattern...]",
		Short: "List the invariant checks",
		Long: `List the invariant checks in declared order. run executes them in
this order unless --order shuffled is given.

Patterns are globs matched against check names, as accepted by
run --checks.

Examples:
  mintcheck checks
  mintcheck checks "*_ceiling"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListChecks(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runListChecks(opts *RootOptions, patterns []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	checks, err := harness.Select(patterns)
	if err != nil {
		return fail(out, ExitCommandError, ErrCodeSelection, "failed to select checks", err, nil)
	}

	infos := make([]CheckInfo, len(checks))
	for i, c := range checks {
		infos[i] = CheckInfo{Name: c.Name, Description: c.Description}
	}

	if out.IsJSON() {
		return out.Success(infos)
	}

	tw := tabwriter.NewWriter(out.Writer, 0, 4, 2, ' ', 0)
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.Description)
	}
	return tw.Flush()
}
