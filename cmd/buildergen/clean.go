package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/buildergen/internal/cli"
)

func newCleanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [patterns...]",
		Short: "Delete generated builder files",
		Long: `clean removes every generated *_builder.go file carrying the configured ` +
			`prefix. Patterns ending in /... are walked recursively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, config, err := resolveConfig(cmd, opts, args)
			reporter := cli.NewDiagnosticReporter(opts.verbose)
			reporter.SetOutput(cmd.ErrOrStderr(), false)
			if err != nil {
				reporter.ReportError(err)
				return err
			}

			diagnostics := newDiagnostics(config, cmd.OutOrStdout(), cmd.ErrOrStderr())
			diagnostics.StartProgress("Cleaning generated files")

			cleaner := cli.NewCleaner(workDir, config.FilePrefix, config.DryRun)
			removed, err := cleaner.CleanGeneratedFiles(cmd.Context(), config.Patterns)
			if err != nil {
				diagnostics.EndProgress(false, "")
				reporter.ReportError(err)
				return err
			}
			diagnostics.EndProgress(true, "")

			for _, file := range removed {
				diagnostics.List("%s", file)
			}
			if config.DryRun {
				diagnostics.Success("%d generated files would be removed", len(removed))
			} else {
				diagnostics.Success("Removed %d generated files", len(removed))
			}
			return nil
		},
	}
}
