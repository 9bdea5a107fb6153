package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/mapql/internal/query"
	"github.com/roach88/mapql/internal/querydoc"
	"github.com/roach88/mapql/internal/store"
	"github.com/roach88/mapql/internal/value"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Driver string
	DSN    string
	One    bool
}

// ExecResult is the exec command's output.
type ExecResult struct {
	Kind         string      `json:"kind"`
	Rows         []store.Row `json:"rows,omitempty"`
	RowsAffected int64       `json:"rows_affected,omitempty"`
	LastInsertID int64       `json:"last_insert_id,omitempty"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <document>",
		Short: "Run a statement document against a database",
		Long: `Compile a statement document and run it with bound arguments.

The database comes from --driver/--dsn, MAPQL_DRIVER/MAPQL_DSN, .env files
or .mapql.yaml. SELECT results are printed one JSON object per row.

Example:
  mapql exec --driver sqlite3 --dsn ./app.db users.yaml
  mapql exec --driver postgres --dsn "postgres://localhost/app" --one user.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|mysql|postgres)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name")
	cmd.Flags().BoolVar(&opts.One, "one", false, "return at most one row")

	return cmd
}

func runExec(opts *ExecOptions, path string, cmd *cobra.Command) error {
	s, err := opts.newSession(cmd)
	if err != nil {
		return err
	}

	doc, err := s.loadDocument(path, ExitFailure)
	if err != nil {
		return err
	}

	dialect, err := s.cfg.SQLDialect()
	if err != nil {
		_ = s.formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "resolving dialect", err)
	}

	s.logger.Info("opening database", "driver", s.cfg.Driver)
	db, err := store.Open(s.cfg.Driver, s.cfg.DSN)
	if err != nil {
		_ = s.formatter.Error("E003", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			s.logger.Error("error closing database", "error", closeErr)
		}
	}()

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge := store.NewBridge(db, store.WithDriver(s.cfg.Driver), store.WithLogger(s.logger))
	b := doc.Build(query.WithDialect(dialect), query.WithBridge(bridge))

	var res store.Result
	if opts.One {
		var row store.Row
		row, err = b.ExecOne(ctx)
		res = store.Result{Kind: store.KindSelect}
		if row != nil {
			res.Rows = []store.Row{row}
		}
	} else {
		res, err = b.Exec(ctx)
	}
	if err != nil {
		return outputExecError(s.formatter, err)
	}

	return outputExecSuccess(s.formatter, res)
}

func outputExecError(formatter *OutputFormatter, err error) error {
	switch {
	case store.IsExecutionError(err):
		_ = formatter.Error(store.CodeQueryExecution, err.Error(), nil)
	case store.IsNoAutoIncrement(err):
		_ = formatter.Error(store.CodeNoAutoIncrement, err.Error(), nil)
	case query.IsBuildError(err), query.IsAlreadyStarted(err):
		_ = formatter.Error(query.CodeBuild, err.Error(), nil)
	default:
		_ = formatter.Error(querydoc.CodeCriteria, err.Error(), nil)
	}
	return WrapExitError(ExitFailure, "statement failed", err)
}

func outputExecSuccess(formatter *OutputFormatter, res store.Result) error {
	result := ExecResult{
		Kind:         res.Kind.String(),
		Rows:         res.Rows,
		RowsAffected: res.RowsAffected,
		LastInsertID: res.LastInsertID,
	}
	if formatter.Format == "json" {
		if res.Kind == store.KindSelect && result.Rows == nil {
			result.Rows = []store.Row{}
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	switch res.Kind {
	case store.KindSelect:
		for _, row := range res.Rows {
			line, err := value.MarshalJSON(map[string]any(row))
			if err != nil {
				return WrapExitError(ExitFailure, "encoding row", err)
			}
			fmt.Fprintln(w, string(line))
		}
		fmt.Fprintf(w, "%d row(s)\n", len(res.Rows))
	case store.KindInsert:
		fmt.Fprintf(w, "inserted, last insert id %d\n", res.LastInsertID)
	default:
		fmt.Fprintf(w, "%d row(s) affected\n", res.RowsAffected)
	}
	return nil
}
