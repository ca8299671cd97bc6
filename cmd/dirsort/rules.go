package main

import (
	"fmt"

	"dirsort/internal/rules"

	"github.com/spf13/cobra"
)

// NewRulesCmd creates the rules command
func NewRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the configured rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleSet, err := rules.NewRegistry().NewRuleSet(cfg.Rules)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ruleSet.Len() == 0 {
				fmt.Fprintln(out, warningText("No rules configured"))
				return nil
			}

			fmt.Fprintln(out, headerText(fmt.Sprintf("%d rules, first match wins:", ruleSet.Len())))
			for i, r := range ruleSet.Rules() {
				fmt.Fprintf(out, "%3d. %s [applies to: %s]\n", i+1, r.Describe(), r.AppliesTo())
			}
			return nil
		},
	}

	cmd.AddCommand(newRulesConditionsCmd())

	return cmd
}

// newRulesConditionsCmd creates the 'rules conditions' command
func newRulesConditionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conditions",
		Short: "List the condition types rules can use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerText("Condition types:"))
			for _, key := range rules.NewRegistry().Keys() {
				fmt.Fprintf(out, "  %-18s %s\n", key, conditionHelp[key])
			}
		},
	}
}

var conditionHelp = map[string]string{
	rules.KeyExtension:       "file extension, case-insensitive (\"pdf\", \".PDF\"; empty for none)",
	rules.KeySizeGreaterThan: "file size strictly above a size (\"500\", \"10kb\", \"1.5 GiB\")",
	rules.KeySizeLessThan:    "file size strictly below a size",
	rules.KeyAgeOlderThan:    "modified longer ago than an age (\"12h\", \"7d\", \"2w\", \"6m\", \"1y\")",
	rules.KeyAgeNewerThan:    "modified more recently than an age",
	rules.KeyNameMatches:     "name matches a glob (\"IMG_*.{jpg,png}\")",
}
