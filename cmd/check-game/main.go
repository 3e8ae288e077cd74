package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minigame-lab/gamecheck/internal/agent"
	"github.com/minigame-lab/gamecheck/internal/checks"
	"github.com/minigame-lab/gamecheck/internal/config"
	"github.com/minigame-lab/gamecheck/internal/escalation"
	"github.com/minigame-lab/gamecheck/internal/project"
	"github.com/minigame-lab/gamecheck/internal/remediation"
	"github.com/minigame-lab/gamecheck/internal/utils"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// app carries the collaborators a run depends on.
type app struct {
	fs             afero.Fs
	v              *viper.Viper
	loadCapability func(apiURL string, timeout time.Duration) agent.Capability

	configFile string
	logLevel   string
	logFormat  string
	verbose    bool
}

func newApp() *app {
	return &app{
		fs:             afero.NewOsFs(),
		v:              config.New(),
		loadCapability: agent.LoadCloud,
	}
}

func main() {
	if err := newRootCommand(newApp()).Execute(); err != nil {
		if errors.Is(err, checks.ErrSelfTestFailed) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "check-game",
		Short: "Self-test for a browser game project",
		Long: `Verify that the game's entry HTML page exists, references the game engine and
the main script, that every local script it references exists, and that the
main script defines the expected scenes.

On failure a remediation prompt is composed and sent to the remote coding agent
named by CURSOR_AGENT_ID (authenticated with CURSOR_API_KEY). When that is not
possible the prompt is saved next to the game instead.

Examples:
  check-game
  check-game --root ./games/winter
  check-game --format json --no-escalate`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loggerConfig := utils.LoggerConfig{
				Level:  utils.LogLevel(a.logLevel),
				Format: utils.LogFormat(a.logFormat),
				Output: cmd.ErrOrStderr(),
			}
			if a.verbose {
				loggerConfig.Level = utils.LogLevelDebug
			}
			logger := utils.NewLogger(loggerConfig)

			cmd.SetContext(utils.WithLogger(cmd.Context(), logger))
			return nil
		},
		RunE: a.runSelfTest,
	}

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is <root>/gamecheck.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "info", "Set log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "text", "Log format (text, json)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output (equivalent to --log-level debug)")

	rootCmd.Flags().String("root", ".", "Game project root")
	rootCmd.Flags().StringP("format", "f", "text", "Output format (json, text)")
	rootCmd.Flags().Bool("no-escalate", false, "Do not send or save a remediation prompt on failure")
	cobra.CheckErr(a.v.BindPFlag("root", rootCmd.Flags().Lookup("root")))
	cobra.CheckErr(a.v.BindPFlag("format", rootCmd.Flags().Lookup("format")))
	cobra.CheckErr(a.v.BindPFlag("no_escalate", rootCmd.Flags().Lookup("no-escalate")))

	return rootCmd
}

// runSelfTest runs the checklist and escalates on failure
func (a *app) runSelfTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := utils.LoggerFromContext(ctx)
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	out := cmd.OutOrStdout()

	if err := config.ReadFile(a.v, a.fs, a.configFile, a.v.GetString("root")); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}

	// resolved once; later use sites only check availability
	capability := a.loadCapability(cfg.Agent.APIURL, cfg.Agent.Timeout)
	if loadErr := capability.LoadError(); loadErr != nil {
		logger.WithComponent("agent").WithError(loadErr).Debug("Agent client unavailable")
	}

	logger.WithComponent("check").Infof("Running self-test in %s", cfg.Root)
	report := checks.NewGameChecker(a.fs, cfg, logger).Run()

	if err := outputReport(out, report, cfg.Format); err != nil {
		return fmt.Errorf("failed to output report: %w", err)
	}

	if report.IsReportPassing() {
		logger.WithComponent("check").Infof("All checks passed: %d/%d", report.PassedChecks, report.TotalChecks)
		if cfg.Format == "text" {
			fmt.Fprintln(out, "Self-test passed")
		}
		return nil
	}

	logger.WithComponent("check").Warnf("Self-test failed: %d/%d checks passed", report.PassedChecks, report.TotalChecks)

	if cfg.NoEscalate {
		logger.WithComponent("escalation").Info("Escalation disabled")
		return checks.ErrSelfTestFailed
	}

	candidates, err := project.DiscoverScripts(a.fs, cfg.Root, cfg.Scripts.Extension)
	if err != nil {
		logger.WithComponent("escalation").WithError(err).Debug("Script discovery failed")
	}
	prompt := remediation.BuildPrompt(report.Failures(), cfg.Entry.Name, report.EntryPath, candidates)

	// keep stdout a single JSON document
	statusOut := out
	if cfg.Format == "json" {
		statusOut = cmd.ErrOrStderr()
	}

	dispatcher := escalation.NewDispatcher(escalation.Options{
		Fs:           a.fs,
		Out:          statusOut,
		Logger:       logger,
		Capability:   capability,
		AgentID:      cfg.Agent.ID,
		APIKey:       cfg.Agent.APIKey,
		FallbackPath: cfg.FallbackPath(),
	})
	dispatcher.Dispatch(ctx, prompt)

	return checks.ErrSelfTestFailed
}

// outputReport writes the report in the requested format
func outputReport(w io.Writer, report *checks.Report, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "text":
		for _, result := range report.Results {
			if _, err := fmt.Fprintln(w, result.Line()); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
