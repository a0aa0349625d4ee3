package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mintcheck/internal/config"
)

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Path   string       `json:"path"`
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError is one descriptor violation.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a run descriptor without running checks",
		Long: `Validate a run descriptor against the configuration schema.

Every violation is reported, not just the first. No runtime is opened.

Exit codes:
  0 - Descriptor is valid
  1 - Descriptor violates the schema
  2 - Descriptor could not be read or parsed`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg, err := config.Load(path)
	if err != nil {
		return fail(out, ExitCommandError, ErrCodeConfigLoad, "failed to load config", err, nil)
	}

	if err := cfg.Validate(); err != nil {
		return invalidConfig(out, ExitFailure, err, path)
	}

	if out.IsJSON() {
		return out.Success(ValidationResult{Path: path, Valid: true})
	}
	fmt.Fprintf(out.Writer, "✓ %s is valid\n", path)
	return nil
}

// invalidConfig reports every violation in err and returns an ExitError
// with exitCode.
func invalidConfig(out *OutputFormatter, exitCode int, err error, path ...string) error {
	violations := fieldErrors(err)
	message := fmt.Sprintf("invalid configuration: %d violation(s)", len(violations))

	if out.IsJSON() {
		result := ValidationResult{Valid: false, Errors: violations}
		if len(path) > 0 {
			result.Path = path[0]
		}
		if werr := out.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeInvalidConfig, Message: message},
		}); werr != nil {
			return werr
		}
		return WrapExitError(exitCode, "invalid configuration", err)
	}

	w := out.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", ErrCodeInvalidConfig, message)
	for _, v := range violations {
		if v.Field != "" {
			fmt.Fprintf(w, "  ✗ %s: %s\n", v.Field, v.Message)
		} else {
			fmt.Fprintf(w, "  ✗ %s\n", v.Message)
		}
	}
	return WrapExitError(exitCode, "invalid configuration", err)
}

// fieldErrors flattens a joined validation error into its violations.
func fieldErrors(err error) []FieldError {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		var verr *config.ValidationError
		if errors.As(e, &verr) {
			out = append(out, FieldError{Field: verr.Field, Message: verr.Message})
			continue
		}
		out = append(out, FieldError{Message: e.Error()})
	}
	return out
}
