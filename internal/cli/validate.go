package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult is the validate command's output.
type ValidationResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Kind  string `json:"kind"`
	Table string `json:"table"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Check a statement document without printing SQL",
		Long: `Check a statement document: its fields, its criteria keys and operands,
and the clauses allowed for its kind. Exits 1 when the document is invalid.`,
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
	s, err := opts.newSession(cmd)
	if err != nil {
		return err
	}

	doc, err := s.loadDocument(path, ExitFailure)
	if err != nil {
		return err
	}

	// Criteria errors do not depend on the dialect.
	if _, err := doc.Compile(); err != nil {
		return s.documentError(err, ExitFailure)
	}

	result := ValidationResult{Path: path, Valid: true, Kind: doc.Kind, Table: doc.Table}
	if s.formatter.Format == "json" {
		return s.formatter.Success(result)
	}
	fmt.Fprintf(s.formatter.Writer, "\u2713 %s is valid (%s %s)\n", path, doc.Kind, doc.Table)
	return nil
}
