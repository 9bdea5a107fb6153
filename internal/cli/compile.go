package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mapql/internal/query"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Inline  bool
	Dialect string
}

// CompileResult is the compile command's output.
type CompileResult struct {
	Name    string `json:"name,omitempty"`
	Kind    string `json:"kind"`
	Dialect string `json:"dialect"`
	SQL     string `json:"sql"`
	Args    []any  `json:"args"`
	Query   string `json:"query,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <document>",
		Short: "Compile a statement document to SQL",
		Long: `Compile a statement document (.yaml, .yml, .json or .cue) into SQL.

Prints the statement with placeholders and its bound arguments. With
--inline, prints the statement with literal values instead; that form is
for reading and logging, not for execution.

Example:
  mapql compile users.yaml
  mapql compile --dialect postgres --format json users.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Inline, "inline", false, "print literal values instead of placeholders")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "SQL dialect (mysql|sqlite3|postgres); default derives from the driver")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	s, err := opts.newSession(cmd)
	if err != nil {
		return err
	}

	dialect, err := s.cfg.SQLDialect()
	if err != nil {
		_ = s.formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "resolving dialect", err)
	}

	doc, err := s.loadDocument(path, ExitCommandError)
	if err != nil {
		return err
	}
	s.formatter.VerboseLog("Compiling %s (%s %s) for %s", path, doc.Kind, doc.Table, dialect.Name())

	stmt, err := doc.Compile(query.WithDialect(dialect))
	if err != nil {
		return s.documentError(err, ExitCommandError)
	}

	result := CompileResult{
		Name:    doc.Name,
		Kind:    stmt.Kind().String(),
		Dialect: dialect.Name(),
		SQL:     stmt.SQL(),
		Args:    stmt.Args(),
	}
	if result.Args == nil {
		result.Args = []any{}
	}
	if opts.Inline {
		if result.Query, err = doc.Inline(query.WithDialect(dialect)); err != nil {
			return s.documentError(err, ExitCommandError)
		}
	}

	return outputCompileSuccess(s.formatter, result, opts.Inline)
}

func outputCompileSuccess(formatter *OutputFormatter, result CompileResult, inline bool) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if inline {
		fmt.Fprintln(formatter.Writer, result.Query)
		return nil
	}

	args, err := json.Marshal(result.Args)
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding args", err)
	}
	fmt.Fprintln(formatter.Writer, result.SQL)
	fmt.Fprintf(formatter.Writer, "args: %s\n", args)
	return nil
}
