package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toyz/buildergen/internal/annotations"
	"github.com/toyz/buildergen/internal/models"
	"github.com/toyz/buildergen/internal/parser"
	"github.com/toyz/buildergen/internal/processor"
	"github.com/toyz/buildergen/internal/utils"
)

// ErrDiagnosticsReported is returned when a pass reported ERROR diagnostics
// but no group failed outright
var ErrDiagnosticsReported = errors.New("generation reported errors")

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	Module            string
	PackagesProcessed int
	MarkedMethods     int
	BuildersGenerated int
	GroupsSkipped     int
	GroupsFailed      int
	Errors            int
	Warnings          int
	GeneratedFiles    []string
	Duration          time.Duration
}

// Generator coordinates discovery, processing and emission for one run
type Generator struct {
	dir         string
	config      Config
	diagnostics *utils.DiagnosticSystem
	reporter    *DiagnosticReporter
	resolver    *ModuleResolver
	summary     GenerationSummary
}

// NewGenerator creates a generator working in dir
func NewGenerator(dir string, config Config, diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}

	reporter := NewDiagnosticReporter(config.Verbose)
	reporter.SetOutput(diagnostics.ErrorWriter(), diagnostics.Colors())

	return &Generator{
		dir:         dir,
		config:      config,
		diagnostics: diagnostics,
		reporter:    reporter,
		resolver:    NewModuleResolver(),
	}
}

// Reporter returns the reporter used for diagnostics and errors
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Run executes the complete generation process
func (g *Generator) Run(ctx context.Context) error {
	startTime := time.Now()
	g.summary = GenerationSummary{}
	defer func() { g.summary.Duration = time.Since(startTime) }()

	g.diagnostics.Debug("Scanning patterns: %v", []string(g.config.Patterns))

	module, err := g.resolver.Resolve(g.dir)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeConfiguration,
			Message: "buildergen must run inside a Go module",
			Cause:   err,
			Suggestions: []string{
				"Run buildergen from a directory containing go.mod or below it",
				"Use go:generate so the tool runs in the package directory",
			},
			Context: map[string]interface{}{"directory": g.dir},
		}
	}
	g.summary.Module = module.Path
	g.diagnostics.Verbose("Module %s at %s", module.Path, module.Root)

	g.diagnostics.StartProgress("Loading packages")
	loader := parser.NewLoader(g.dir, annotations.NewMarkerParser(nil))
	loader.SetBuildFlags(g.config.BuildFlags())

	discovery, err := loader.Load(ctx, g.config.Patterns...)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d packages", discovery.Packages))
	g.summary.PackagesProcessed = discovery.Packages
	g.summary.MarkedMethods = discovery.Elements

	for _, warning := range discovery.Warnings {
		g.diagnostics.Verbose("type check: %s", warning)
	}

	messager := NewMessager(g.reporter)
	for _, d := range discovery.Diagnostics {
		messager.Report(d)
	}

	filer := NewFiler(discovery.PackageDirs, g.config.FilePrefix, g.config.DryRun)
	proc, err := processor.NewProcessor(annotations.PropertyMarker, messager, filer)
	if err != nil {
		return err
	}

	g.diagnostics.StartProgress("Generating builders")
	result, procErr := proc.Process(discovery.Groups)
	g.diagnostics.EndProgress(procErr == nil, fmt.Sprintf("%d groups", len(discovery.Groups)))

	g.collectSummary(result, filer, messager)

	for _, group := range result.Groups {
		switch group.Outcome {
		case processor.OutcomeGenerated:
			path, _ := filer.PathOf(group.Unit)
			g.diagnostics.Verbose("%s -> %s", group.Unit, path)
		case processor.OutcomeNoSetters, processor.OutcomeNameConflict:
			g.diagnostics.Verbose("skipped %s: %s", ownerLabel(group), group.Outcome)
		}
	}

	if procErr != nil {
		return procErr
	}
	if messager.HasErrors() {
		return fmt.Errorf("%w: %d error(s)", ErrDiagnosticsReported, g.summary.Errors)
	}
	return nil
}

func (g *Generator) collectSummary(result *processor.Result, filer *Filer, messager *Messager) {
	for _, group := range result.Groups {
		switch group.Outcome {
		case processor.OutcomeGenerated:
			g.summary.BuildersGenerated++
		case processor.OutcomeFailed:
			g.summary.GroupsFailed++
		default:
			g.summary.GroupsSkipped++
		}
	}
	g.summary.GeneratedFiles = filer.Written()
	g.summary.Errors = messager.Count(models.SeverityError)
	g.summary.Warnings = messager.Count(models.SeverityWarning)
}

// ReportSummary prints the summary of the last run
func (g *Generator) ReportSummary() {
	title := "Generation Complete!"
	if g.config.DryRun {
		title = "Dry Run Complete! (no files written)"
	}

	g.diagnostics.Summary(title, []utils.Stat{
		{Label: "Module", Value: g.summary.Module},
		{Label: "Packages processed", Value: g.summary.PackagesProcessed},
		{Label: "Marked methods", Value: g.summary.MarkedMethods},
		{Label: "Builders generated", Value: g.summary.BuildersGenerated},
		{Label: "Groups skipped", Value: g.summary.GroupsSkipped},
		{Label: "Errors", Value: g.summary.Errors + g.summary.GroupsFailed},
		{Label: "Duration", Value: g.summary.Duration.Round(time.Millisecond)},
	})

	if g.diagnostics.Enabled(utils.DiagnosticVerbose) && len(g.summary.GeneratedFiles) > 0 {
		g.diagnostics.Subsection("Generated Files")
		for _, file := range g.summary.GeneratedFiles {
			g.diagnostics.List("%s", file)
		}
	}
}

func ownerLabel(group processor.GroupResult) string {
	if group.Owner != "" {
		return group.Owner
	}
	return "group"
}
