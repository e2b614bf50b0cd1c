package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillsmp-cli/internal/config"
	"github.com/kamusis/skillsmp-cli/internal/logging"
	"github.com/kamusis/skillsmp-cli/internal/skillsmp"
)

// skipSettingsAnnotation marks commands that must run even when the
// configuration cannot be loaded.
const skipSettingsAnnotation = "skillsmp/skip-settings"

var (
	flagConfig string
	flagDebug  bool

	// Resolved once per run in PersistentPreRunE.
	settings  *config.Settings
	logger    = logging.Discard()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "skillsmp",
	Short:         "Search the SkillsMP skill marketplace from the terminal",
	SilenceUsage:  true, // don't print usage on operational errors
	SilenceErrors: true, // Execute prints the error once
	Long: `skillsmp searches the SkillsMP marketplace by keyword or with AI semantic
search, and prints ready-to-run install commands for the skills it finds.

The API key is read from SKILLSMP_API_KEY or ~/.skillsmp/.env (see 'skillsmp setup').`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Annotations[skipSettingsAnnotation] != "" {
			return nil
		}
		return loadRuntime(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeRuntime()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.yaml (default ~/.skillsmp/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "write debug entries to the CLI log")
}

// exitError carries a specific process exit code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

// Execute is called by main.go.
func Execute() {
	setupConsole()
	err := rootCmd.Execute()
	closeRuntime()
	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.ExitCode())
		}
		os.Exit(1)
	}
}

// loadRuntime resolves settings and opens the log file.
func loadRuntime(cmd *cobra.Command) error {
	s, err := config.LoadSettings(flagConfig)
	if err != nil {
		return fmt.Errorf("cannot load settings: %w", err)
	}
	settings = s

	opts := logging.Options{
		Level:    s.Logging.Level,
		File:     s.Logging.File,
		MaxSize:  s.Logging.MaxSize,
		MaxFiles: s.Logging.MaxFiles,
	}
	if flagDebug {
		opts.Level = "debug"
	}
	log, closer, err := logging.New(s.Home, opts)
	if err != nil {
		// A read-only home should not stop a search.
		newPrinter(cmd).warn("", fmt.Sprintf("logging disabled: %v", err))
		return nil
	}
	logger, logCloser = log, closer
	logger.Debug("settings loaded",
		slog.String("base_url", s.BaseURL),
		slog.Bool("api_key_set", s.APIKey != ""),
		slog.Duration("timeout", s.Timeout),
	)
	return nil
}

func closeRuntime() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	logger = logging.Discard()
}

// requireAPIKey fails fast, before any request, when no key is configured.
func requireAPIKey() error {
	if settings == nil || settings.APIKey == "" {
		return &exitError{code: 1, msg: fmt.Sprintf("%s is not set\n"+
			"  Run 'skillsmp setup <apiKey>' or export %s.\n"+
			"  Get a key at https://skillsmp.com/settings/api", config.APIKeyEnv, config.APIKeyEnv)}
	}
	return nil
}

// newClient builds the API client from the resolved settings.
func newClient() *skillsmp.Client {
	return skillsmp.NewClient(skillsmp.ConfigFromSettings(settings, version), logger)
}

// queryArgs validates positional arguments of the search commands. A missing
// query prints the usage line and exits 1 before anything else runs.
func queryArgs(max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return &exitError{code: 1, msg: "error: a search query is required\nusage: " + cmd.UseLine()}
		}
		if max > 0 && len(args) > max {
			return &exitError{code: 1, msg: fmt.Sprintf("error: accepts at most %d arg(s), received %d\nusage: %s", max, len(args), cmd.UseLine())}
		}
		return nil
	}
}
