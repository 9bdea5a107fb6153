package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/roach88/mapql/internal/config"
	"github.com/roach88/mapql/internal/querydoc"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	fs         afero.Fs
	configOpts []config.Option
}

// Option configures the root command.
type Option func(*RootOptions)

// WithFs reads documents, config and .env files from fs.
func WithFs(fs afero.Fs) Option {
	return func(o *RootOptions) {
		o.fs = fs
		o.configOpts = append(o.configOpts, config.WithFs(fs))
	}
}

// WithConfigOptions passes extra options to the config loader.
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *RootOptions) {
		o.configOpts = append(o.configOpts, opts...)
	}
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// NewRootCommand creates the root command for the mapql CLI.
func NewRootCommand(opts ...Option) *cobra.Command {
	rootOpts := &RootOptions{}
	for _, opt := range opts {
		opt(rootOpts)
	}

	cmd := &cobra.Command{
		Use:   "mapql",
		Short: "mapql - compile criteria mappings to SQL",
		Long: `Compile statement documents written as criteria mappings into
parameterized SQL for MySQL, SQLite or PostgreSQL, and run them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, rootOpts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", rootOpts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&rootOpts.Verbose, config.KeyVerbose, "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&rootOpts.Format, config.KeyFormat, config.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&rootOpts.ConfigFile, "config", "", "config file (default: .mapql.yaml in ., $HOME or $HOME/.config/mapql)")

	cmd.AddCommand(NewCompileCommand(rootOpts))
	cmd.AddCommand(NewValidateCommand(rootOpts))
	cmd.AddCommand(NewExecCommand(rootOpts))

	return cmd
}

// session is the per-invocation state shared by the subcommands.
type session struct {
	cfg       *config.Config
	formatter *OutputFormatter
	logger    *slog.Logger
	docs      *querydoc.Loader
}

// newSession resolves configuration for cmd. Its error is already an
// ExitError.
func (o *RootOptions) newSession(cmd *cobra.Command) (*session, error) {
	loaderOpts := slices.Clone(o.configOpts)
	if o.ConfigFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.ConfigFile))
	}

	cfg, err := config.NewLoader(loaderOpts...).Load(cmd.Flags())
	if err != nil {
		formatter := &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
		_ = formatter.Error("E002", err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "loading config", err)
	}

	s := &session{
		cfg: cfg,
		formatter: &OutputFormatter{
			Format:    cfg.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
			Verbose:   cfg.Verbose,
		},
		logger: newLogger(cmd.ErrOrStderr(), cfg.Verbose),
		docs:   querydoc.NewLoader(o.fs),
	}
	if cfg.File != "" {
		s.logger.Debug("config loaded", "file", cfg.File)
	}
	return s, nil
}

// loadDocument loads path, reporting load errors through the formatter.
func (s *session) loadDocument(path string, failCode int) (*querydoc.Document, error) {
	doc, err := s.docs.Load(path)
	if err != nil {
		return nil, s.documentError(err, failCode)
	}
	s.logger.Debug("document loaded", "path", path, "kind", doc.Kind, "table", doc.Table)
	return doc, nil
}

// documentError reports a querydoc error. Read and format errors are
// command errors; anything else exits with failCode.
func (s *session) documentError(err error, failCode int) error {
	code := querydoc.CodeOf(err)
	if code == "" {
		code = "E001"
	}
	_ = s.formatter.Error(code, err.Error(), nil)

	exit := failCode
	if code == querydoc.CodeReadFailed || code == querydoc.CodeFormat {
		exit = ExitCommandError
	}
	return WrapExitError(exit, code, err)
}

// newLogger writes text logs to w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
