package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/codetime/internal/git"
	"github.com/joescharf/codetime/internal/output"
	"github.com/joescharf/codetime/internal/sessions"
	"github.com/joescharf/codetime/internal/source"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	remote  bool
)

var rootCmd = &cobra.Command{
	Use:   "codetime <tag-file|repo>",
	Short: "Estimate coding time from compile and submission tags",
	Long: `codetime estimates how long was spent coding on a project.

It reads compile-YYYY.MM.DD_HH.MM.SS and submission-* tags from a file
(one tag per line), a local git repository, or a remote repository, groups
the compile timestamps into sessions separated by breaks, and reports
total, longest, mean and median session time, the longest break, and the
share of elapsed time spent coding.`,
	Args:              rootArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyzeRun(args[0])
	},
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints a fatal error. ui is nil when cobra fails before
// running the initializers, e.g. on an unknown flag.
func reportError(err error) {
	if ui == nil {
		ui = output.New()
	}
	ui.Error("Error: %v", err)
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/codetime/config.yaml)")

	f := rootCmd.Flags()
	f.BoolVar(&remote, "remote", false, "List tags from a remote with git ls-remote")
	f.String("format", output.FormatText, "Output format: "+strings.Join(output.Formats, ", "))
	f.Bool("sessions", false, "List every session")
	f.Duration("break-threshold", sessions.DefaultBreakThreshold, "Gap that starts a new session")
	f.Duration("lead-time", sessions.DefaultLeadTime, "Assumed work before the first compile of a session")
	f.Duration("lone-session", sessions.DefaultLoneSession, "Time credited to a single-compile session")

	_ = viper.BindPFlag("output.format", f.Lookup("format"))
	_ = viper.BindPFlag("output.sessions", f.Lookup("sessions"))
	_ = viper.BindPFlag("session.break_threshold", f.Lookup("break-threshold"))
	_ = viper.BindPFlag("session.lead_time", f.Lookup("lead-time"))
	_ = viper.BindPFlag("session.lone_session", f.Lookup("lone-session"))
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CODETIME")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func setDefaults() {
	def := sessions.DefaultConfig()
	viper.SetDefault("session.break_threshold", def.BreakThreshold)
	viper.SetDefault("session.lead_time", def.LeadTime)
	viper.SetDefault("session.lone_session", def.LoneSession)
	viper.SetDefault("output.format", output.FormatText)
	viper.SetDefault("output.sessions", false)
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}

// rootArgs requires exactly one source locator and reports usage otherwise.
func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", cmd.UseLine())
	}
	return nil
}

// sessionConfig returns the effective session parameters.
func sessionConfig() sessions.Config {
	return sessions.Config{
		BreakThreshold: viper.GetDuration("session.break_threshold"),
		LeadTime:       viper.GetDuration("session.lead_time"),
		LoneSession:    viper.GetDuration("session.lone_session"),
	}
}

func newLoader() *source.Loader {
	return source.NewLoader(git.NewClient())
}

func analyzeRun(locator string) error {
	format := viper.GetString("output.format")
	if !slices.Contains(output.Formats, format) {
		return fmt.Errorf("unknown format: %s (use: %s)", format, strings.Join(output.Formats, ", "))
	}

	cfg := sessionConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	loader := newLoader()
	opts := source.Options{Remote: remote}
	ui.VerboseLog("Reading %s tags from %s", loader.Resolve(locator, opts), locator)

	in, err := loader.Load(locator, opts)
	if err != nil {
		if errors.Is(err, source.ErrSourceUnavailable) {
			return fmt.Errorf("%w. Try again", err)
		}
		return err
	}
	ui.VerboseLog("Found %d compile tags", len(in.Timestamps))
	ui.VerboseLog("Break threshold %s, lead time %s, lone session %s", cfg.BreakThreshold, cfg.LeadTime, cfg.LoneSession)

	report, err := sessions.Analyze(cfg, in.Timestamps)
	if err != nil {
		return err
	}
	ui.VerboseLog("Segmented into %d sessions", len(report.Sessions))

	return ui.Report(in.Name(), report, format, viper.GetBool("output.sessions"))
}
