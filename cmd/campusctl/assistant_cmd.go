package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <query...>",
		Short: "Print the intent a query resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, classifier, err := opts.load()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), classifier.Classify(strings.Join(args, " ")))
			return nil
		},
	}
}

func newExplainCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <query...>",
		Short: "Show which trigger matched a query and the reply it gets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, classifier, err := opts.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			intent, trigger, ok := classifier.Match(strings.Join(args, " "))
			fmt.Fprintf(out, "intent:  %s\n", intent)
			if ok {
				fmt.Fprintf(out, "trigger: %q\n", trigger)
			} else {
				fmt.Fprintln(out, "trigger: (none, fallback)")
			}
			fmt.Fprintf(out, "\n%s\n", catalog.Lookup(intent))
			return nil
		},
	}
}

func newIntentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "intents",
		Short: "List the classification rules in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, classifier, err := opts.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, r := range classifier.Rules() {
				fmt.Fprintf(out, "%d. %-10s %s\n", i+1, r.Intent, strings.Join(r.Triggers, ", "))
			}
			return nil
		},
	}
}
