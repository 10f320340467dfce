package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ggonzalez94/rgbldk-cli/internal/config"
	"github.com/ggonzalez94/rgbldk-cli/internal/contexts"
	"github.com/ggonzalez94/rgbldk-cli/internal/daemon"
	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
	"github.com/ggonzalez94/rgbldk-cli/internal/httpx"
	"github.com/ggonzalez94/rgbldk-cli/internal/journal"
	"github.com/ggonzalez94/rgbldk-cli/internal/out"
	"github.com/ggonzalez94/rgbldk-cli/internal/policy"
	"github.com/ggonzalez94/rgbldk-cli/internal/schema"
	"github.com/ggonzalez94/rgbldk-cli/internal/version"
)

type Runner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func NewRunner() *Runner {
	return NewRunnerWithIO(os.Stdin, os.Stdout, os.Stderr)
}

func NewRunnerWithIO(stdin io.Reader, stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		getenv: os.Getenv,
	}
}

// runtimeState is everything a single invocation resolves up front. It is
// built in the root PersistentPreRunE and handed to every command.
type runtimeState struct {
	runner   *Runner
	flags    config.GlobalFlags
	settings config.Settings
	target   config.Target
	contexts *contexts.Store
	render   *out.Renderer
	logger   *slog.Logger
	daemon   *daemon.Client
	journal  *journal.Store
	root     *cobra.Command
}

// reportedError marks a failure whose details were already written, so only
// the exit status remains to be surfaced.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func (r *Runner) Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	state := &runtimeState{runner: r}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetIn(r.stdin)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.ExecuteContext(ctx)
	err = normalizeRunError(err)
	state.close()
	if err == nil {
		return 0
	}
	state.renderError(err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Command-line client for the rgbldk Lightning node daemon",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return s.init()
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&s.flags.Connect, "connect", "", "Daemon base URL (overrides RGBLDK_URL, RGBLDK_CONNECT and contexts)")
	pf.Var(newChoiceValue(&s.flags.Output, config.OutputAuto, config.OutputText, config.OutputJSON), "output", "Output format")
	pf.Var(newChoiceValue(&s.flags.Color, config.ColorAuto, config.ColorAlways, config.ColorNever), "color", "Colorize text output")
	pf.BoolVar(&s.flags.Pretty, "pretty", false, "Indent JSON output")
	pf.BoolVar(&s.flags.Yes, "yes", false, "Skip confirmation prompts for dangerous operations")
	pf.BoolVar(&s.flags.NoTruncate, "no-truncate", false, "Print ids in full")
	pf.StringVar(&s.flags.Timeout, "timeout", "", "Per-request timeout, e.g. 10s (long polls are unbounded)")
	pf.StringVar(&s.flags.ConfigPath, "config", "", "Path to settings file")
	pf.BoolVarP(&s.flags.Verbose, "verbose", "v", false, "Log HTTP exchanges and target resolution to stderr")

	cmd.AddCommand(s.newCtxCommand())
	cmd.AddCommand(s.newNodeCommand())
	cmd.AddCommand(s.newWalletCommand())
	cmd.AddCommand(s.newPeerCommand())
	cmd.AddCommand(s.newChannelCommand())
	cmd.AddCommand(s.newPayCommand())
	cmd.AddCommand(s.newEventsCommand())
	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func (s *runtimeState) init() error {
	settings, err := config.Load(s.flags)
	if err != nil {
		return clierr.Wrap(clierr.CodeConfig, "load configuration", err)
	}
	s.settings = settings
	s.logger = slog.New(slog.NewTextHandler(s.runner.stderr, &slog.HandlerOptions{Level: settings.LogLevel}))

	term := out.Probe(s.runner.stdout)
	s.render = out.New(s.runner.stdout, s.runner.stderr, out.Options{
		Mode:       out.ResolveMode(settings.OutputMode, term.TTY),
		Theme:      out.ResolveTheme(settings.ColorMode, term, s.runner.getenv),
		Pretty:     settings.Pretty,
		NoTruncate: settings.NoTruncate,
		Spinner:    spinnerEnabled(out.IsTerminal(s.runner.stderr), settings.LogLevel),
	})

	store, err := contexts.Open(settings.ContextsPath)
	if err != nil {
		return clierr.Wrap(clierr.CodeConfig, "load contexts", err)
	}
	s.contexts = store

	s.target = config.ResolveTarget(s.flags.Connect, s.runner.getenv, store)
	s.daemon = daemon.New(httpx.New(settings.Timeout, s.logger), s.target.URL)
	s.logger.Debug("resolved daemon target", "url", s.daemon.BaseURL(), "source", string(s.target.Source), "context", s.target.Context)
	return nil
}

// spinnerEnabled reports whether progress indicators may draw on stderr. Debug
// logging shares that stream, so it turns them off.
func spinnerEnabled(stderrTTY bool, level slog.Level) bool {
	return stderrTTY && level > slog.LevelDebug
}

func (s *runtimeState) prompt() policy.Prompt {
	return policy.Prompt{
		In:          s.runner.stdin,
		Out:         s.runner.stderr,
		Interactive: out.IsTerminal(s.runner.stdin),
	}
}

func (s *runtimeState) openJournal() (*journal.Store, error) {
	if s.journal != nil {
		return s.journal, nil
	}
	store, err := journal.Open(s.settings.JournalPath, s.settings.JournalLockPath)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "open event journal", err)
	}
	s.journal = store
	return store, nil
}

func (s *runtimeState) close() {
	if s.journal != nil {
		_ = s.journal.Close()
	}
}

func (s *runtimeState) renderError(err error) {
	var reported reportedError
	if errors.As(err, &reported) {
		return
	}
	if s.render == nil {
		// Failed before settings were resolved; honour an explicit --output json.
		mode := out.ResolveMode(s.flags.Output, out.Probe(s.runner.stdout).TTY)
		s.render = out.New(s.runner.stdout, s.runner.stderr, out.Options{Mode: mode})
	}
	s.render.Error(err)
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema as JSON",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Build(s.root, strings.Join(args, " "))
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "build schema", err)
			}
			return s.render.JSON(data)
		},
	}
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}
