package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tilematch/internal/level"
)

// ValidationIssue is one problem found in a level directory.
type ValidationIssue struct {
	Code    string `json:"code"`
	Level   string `json:"level,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Levels []string          `json:"levels,omitempty"`
	Files  int               `json:"files"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <levels-dir>",
		Short: "Validate level definitions",
		Long: `Validate the CUE level definitions in a directory.

Checks every level against the level schema, then the rules the schema
cannot express (layout shape and kinds, promotion thresholds). All errors
are reported, not just the first.

Exit codes:
  0 - All levels valid
  1 - One or more levels invalid
  2 - Command error (directory not found, no CUE files, CUE syntax)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, loadErrors := level.Load(dir, level.LoadModeCollectAll)

	// Directory or CUE build failures: nothing to validate.
	if loadResult == nil {
		var loadErr *level.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, level.ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	issues := make([]ValidationIssue, 0, len(loadErrors))
	for _, err := range loadErrors {
		issues = append(issues, toIssue(err))
	}
	if len(issues) > 0 {
		return outputValidationErrors(formatter, loadResult, issues)
	}
	return outputValidateSuccess(formatter, loadResult)
}

// toIssue converts a load or validation error.
func toIssue(err error) ValidationIssue {
	var loadErr *level.LoadError
	if errors.As(err, &loadErr) {
		issue := ValidationIssue{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			issue.Line = loadErr.Pos.Line()
		}
		return issue
	}
	var vErr level.ValidationError
	if errors.As(err, &vErr) {
		return ValidationIssue{
			Code:    vErr.Code,
			Level:   vErr.Level,
			Field:   vErr.Field,
			Message: vErr.Message,
		}
	}
	return ValidationIssue{Code: level.ErrCodeGeneric, Message: err.Error()}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, loadResult *level.LoadResult) error {
	result := ValidationResult{Valid: true, Levels: loadResult.Names(), Files: loadResult.FileCount}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	for _, name := range result.Levels {
		formatter.VerboseLog("  %s", name)
	}
	fmt.Fprintf(formatter.Writer, "\u2713 All levels valid (%d level(s))\n", len(result.Levels))
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, loadResult *level.LoadResult, issues []ValidationIssue) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))

	if formatter.IsJSON() {
		err := formatter.encode(CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Levels: loadResult.Names(),
				Files:  loadResult.FileCount,
				Errors: issues,
			},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		})
		if err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "\u2717 Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		if issue.Level != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s.%s: %s\n\n", issue.Code, issue.Level, issue.Field, issue.Message)
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}
	return failure
}
