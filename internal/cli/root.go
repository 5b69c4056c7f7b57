// Package cli implements the contentdesk command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/contentdesk/internal/config"
	"github.com/mesh-intelligence/contentdesk/internal/logging"
	"github.com/mesh-intelligence/contentdesk/internal/paths"
	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// session is the state shared by one command invocation.
type session struct {
	flags     rootFlags
	configDir string
	cfg       *config.Config
	log       *zap.Logger

	// store, when set, replaces the configured backend.
	store types.ContentStore
}

// Option configures the root command.
type Option func(*session)

// WithStore makes every command use store instead of the configured
// backend.
func WithStore(store types.ContentStore) Option {
	return func(s *session) { s.store = store }
}

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }

func sysError(err error) error { return &exitError{code: exitSysError, err: err} }

// exitCode maps an error returned by a command to a process exit code.
// Errors without an explicit code are argument or flag errors from cobra.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// NewRootCmd creates the top-level "contentdesk" command with global flags
// and all subcommands registered.
func NewRootCmd(opts ...Option) *cobra.Command {
	s := &session{}
	for _, opt := range opts {
		opt(s)
	}

	root := &cobra.Command{
		Use:   "contentdesk",
		Short: "Manage services, team members, testimonials, and case studies",
		Long: `contentdesk administers the four content collections of an agency site
held in a Cosmic bucket (or a local store for offline work). Use the list,
get, create, update, and delete commands directly, or run "contentdesk serve"
for the JSON API behind the dashboard.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  s.setup,
		PersistentPostRunE: s.teardown,
	}

	root.PersistentFlags().StringVar(&s.flags.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	root.PersistentFlags().StringVar(&s.flags.dataDir, "data-dir", "", "data directory for the sqlite backend (env "+paths.EnvDataDir+")")
	root.PersistentFlags().BoolVar(&s.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&s.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default warn; serve uses logging.level)")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(s),
		newKindsCmd(s),
		newOverviewCmd(s),
		newListCmd(s),
		newGetCmd(s),
		newCreateCmd(s),
		newUpdateCmd(s),
		newDeleteCmd(s),
		newServeCmd(s),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "contentdesk:", err)
	}
	return exitCode(err)
}

// setup loads configuration and builds the logger. The version command
// needs neither.
func (s *session) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(s.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return sysError(err)
	}
	dataDir, err := paths.ResolveDataDir(s.flags.dataDir, cfg.DataDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg.DataDir = dataDir

	level := s.flags.logLevel
	if level == "" {
		level = "warn"
		if cmd.Name() == "serve" {
			level = cfg.Logging.Level
		}
	}
	log, err := logging.New(level)
	if err != nil {
		return userError(err)
	}

	s.configDir = configDir
	s.cfg = cfg
	s.log = log
	return nil
}

func (s *session) teardown(*cobra.Command, []string) error {
	if s.log != nil {
		_ = s.log.Sync()
	}
	return nil
}

// out returns the writer commands print results to.
func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
