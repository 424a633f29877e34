// Package main provides the tracegrad CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/born-ml/tracegrad/internal/envconfig"
)

const version = "v0.1.0-dev"

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "tracegrad",
		Short:         "Define-by-run automatic differentiation",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Print(cmd.UsageString())
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tracegrad %s\n", version)
		},
	}

	trainCmd := newTrainCmd()
	appendEnvDocs(trainCmd, []string{"TRACEGRAD_DEBUG", "TRACEGRAD_SEED", "TRACEGRAD_LR"})

	rootCmd.AddCommand(versionCmd, trainCmd, newInspectCmd())
	return rootCmd
}

func appendEnvDocs(cmd *cobra.Command, names []string) {
	vars := envconfig.AsMap()
	envUsage := "\nEnvironment Variables:\n"
	for _, name := range names {
		envUsage += fmt.Sprintf("      %-24s   %s\n", name, vars[name].Description)
	}
	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewCLI().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
