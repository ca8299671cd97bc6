package main

import (
	"fmt"

	serr "dirsort/internal/errors"
	"dirsort/internal/rules"

	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and its rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if err := cfg.Validate(); err != nil {
				fmt.Fprintln(out, errorText("Configuration is invalid:"))
				fmt.Fprintln(out, err)
				return serr.ErrInvalidConfig
			}

			ruleSet, err := rules.NewRegistry().NewRuleSet(cfg.Rules)
			if err != nil {
				fmt.Fprintln(out, errorText("Rules are invalid:"))
				fmt.Fprintln(out, err)
				return serr.ErrInvalidRule
			}

			fmt.Fprintln(out, successText(fmt.Sprintf("Configuration is valid: %d rules", ruleSet.Len())))
			return nil
		},
	}
}
