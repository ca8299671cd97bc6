package main

import (
	"io"

	"dirsort/internal/config"
	serr "dirsort/internal/errors"
	"dirsort/internal/log"
	"dirsort/internal/organize"
	"dirsort/internal/rules"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewOrganizeCmd creates the organize command
func NewOrganizeCmd() *cobra.Command {
	var (
		source   string
		target   string
		dryRun   bool
		logLevel string
		logFile  string
		jsonLogs bool
		exclude  []string
	)

	cmd := &cobra.Command{
		Use:   "organize [source]",
		Short: "Move entries of the source directory into the target tree",
		Long: `Organize walks the source directory and moves every file or folder
matching a rule to <target>/<rule target>/<name>. The first matching rule in
priority order wins; entries no rule matches stay where they are.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags override the configuration file
			flags := cmd.Flags()
			if len(args) > 0 {
				cfg.Settings.SourceDir = args[0]
			}
			if flags.Changed("source") {
				cfg.Settings.SourceDir = source
			}
			if flags.Changed("target") {
				cfg.Settings.TargetDir = target
			}
			if flags.Changed("dry-run") {
				cfg.Settings.DryRun = dryRun
			}
			if flags.Changed("log-level") {
				cfg.Settings.LogLevel = logLevel
			}
			if flags.Changed("log-file") {
				cfg.Settings.LogFile = logFile
			}
			if jsonLogs {
				cfg.Settings.LogFormat = config.FormatJSON
			}
			cfg.Settings.Exclude = append(cfg.Settings.Exclude, exclude...)

			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := configureLogging(cmd.OutOrStdout(), cfg.Settings); err != nil {
				return err
			}
			// Restore the console logger, closing any log file
			defer log.Configure()

			ruleSet, err := rules.NewRegistry().NewRuleSet(cfg.Rules)
			if err != nil {
				log.LogError(err, "Invalid rules")
				return err
			}
			if ruleSet.Len() == 0 {
				return serr.New("no rules configured, nothing to do")
			}

			runLogger := log.LogWithFields(log.F("run_id", uuid.NewString()))

			organizer := organize.CurrentOrganizerFactory(cfg, ruleSet)
			organizer.SetLogger(runLogger)
			stats := organizer.Run()

			printSummary(cmd.OutOrStdout(), stats, organizer.IsDryRun())

			if stats.Failed() {
				return serr.Newf("organization finished with %d errors", stats.Errors)
			}
			return nil
		},
	}

	// Add flags
	cmd.Flags().StringVarP(&source, "source", "s", "", "Directory to organize (overrides positional argument)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Root of the organized tree")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be moved without making changes")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Also append log entries to this file")
	cmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "Write log entries as JSON")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "Glob of entries to leave alone, relative to the source (repeatable)")

	return cmd
}

// configureLogging installs the package-level logger for a run
func configureLogging(out io.Writer, s config.Settings) error {
	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}

	opts := []log.Option{log.WithOutput(out), log.WithLevel(level)}
	if s.LogFormat == config.FormatJSON {
		opts = append(opts, log.WithJSON())
	}
	if s.LogFile != "" {
		opts = append(opts, log.WithFile(s.LogFile))
	}
	log.Configure(opts...)
	return nil
}
