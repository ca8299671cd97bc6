package main

import (
	"dirsort/internal/config"
	serr "dirsort/internal/errors"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = nil

	rootCmd := &cobra.Command{
		Use:   "dirsort",
		Short: "Rule based directory organizer",
		Long: `dirsort moves the files and folders of a source directory into a
target tree, following prioritized rules built from conditions such as
extension, size, age and name.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgFile != "" {
				cfg, err = config.LoadConfigFile(cfgFile)
			} else {
				cfg, err = config.LoadConfig()
			}
			if err != nil {
				return serr.Wrap(err, "loading configuration")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file, YAML (.yaml/.yml) or classic format (default is $HOME/.config/dirsort/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(NewOrganizeCmd())
	rootCmd.AddCommand(NewRulesCmd())
	rootCmd.AddCommand(NewValidateCmd())

	return rootCmd
}
