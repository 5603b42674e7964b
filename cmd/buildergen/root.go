package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toyz/buildergen/internal/cli"
	"github.com/toyz/buildergen/internal/utils"
)

// options are the raw command line values shared by all commands
type options struct {
	configPath string
	verbose    bool
	quiet      bool
	dryRun     bool
	prefix     string
	tags       []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "buildergen [patterns...]",
		Short: "Generate fluent builders for //builder::property setters",
		Long: `buildergen scans Go packages for methods marked with //builder::property ` +
			`and writes a <Type>Builder with chained setters next to each owning type. ` +
			`Patterns follow the go tool, e.g. ./... for every package below the current directory.`,
		Example: `  buildergen ./...
  buildergen --dry-run --verbose ./internal/...
  buildergen clean ./...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", cli.DefaultConfigFile, "path to the YAML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output and detailed error reporting")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only show errors")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "report what would be written or removed without touching files")
	flags.StringVar(&opts.prefix, "prefix", "", "file name prefix for generated builders (default \"autogen_\")")
	rootCmd.Flags().StringSliceVar(&opts.tags, "tags", nil, "build tags used when loading packages")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.AddCommand(newCleanCmd(opts))

	return rootCmd
}

// resolveConfig loads the config file and overlays the flags the user set
func resolveConfig(cmd *cobra.Command, opts *options, args []string) (string, cli.Config, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return "", cli.Config{}, fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := opts.configPath
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(workDir, configPath)
	}

	config, err := cli.LoadConfig(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return workDir, config, err
	}

	overrides := cli.Overrides{Patterns: args}
	if cmd.Flags().Changed("verbose") {
		overrides.Verbose = &opts.verbose
	}
	if cmd.Flags().Changed("quiet") {
		overrides.Quiet = &opts.quiet
	}
	if cmd.Flags().Changed("dry-run") {
		overrides.DryRun = &opts.dryRun
	}
	if cmd.Flags().Changed("prefix") {
		overrides.FilePrefix = &opts.prefix
	}
	if f := cmd.Flags().Lookup("tags"); f != nil && f.Changed {
		overrides.BuildTags = opts.tags
	}
	config.Apply(overrides)

	if err := config.Validate(); err != nil {
		return workDir, config, fmt.Errorf("invalid flags: %w", err)
	}
	return workDir, config, nil
}

func newDiagnostics(config cli.Config, out, errOut io.Writer) *utils.DiagnosticSystem {
	level := utils.DiagnosticInfo
	switch {
	case config.Quiet:
		level = utils.DiagnosticError
	case config.Verbose:
		level = utils.DiagnosticVerbose
	}

	diagnostics := utils.NewDiagnosticSystem(level)
	diagnostics.SetOutput(out, errOut)
	return diagnostics
}

func runGenerate(cmd *cobra.Command, opts *options, args []string) error {
	workDir, config, err := resolveConfig(cmd, opts, args)
	if err != nil {
		reporter := cli.NewDiagnosticReporter(opts.verbose)
		reporter.SetOutput(cmd.ErrOrStderr(), false)
		reporter.ReportError(err)
		return err
	}

	diagnostics := newDiagnostics(config, cmd.OutOrStdout(), cmd.ErrOrStderr())
	diagnostics.Section("buildergen")

	generator := cli.NewGenerator(workDir, config, diagnostics)
	err = generator.Run(cmd.Context())
	generator.ReportSummary()

	switch {
	case err == nil:
		diagnostics.Success("Builders are up to date")
		return nil
	case errors.Is(err, cli.ErrDiagnosticsReported):
		// Already printed one by one as they were reported
		diagnostics.Error("%v", err)
	default:
		generator.Reporter().ReportError(err)
	}
	return err
}
