// Package runner drives the extraction pipeline for one invocation:
// read the document, build the global tables, locate device blocks,
// validate the fact snapshot, run the policy checks and emit one CSV
// per block instance. It holds no state between runs.
package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/panelworks/smwjoin/internal/config"
	"github.com/panelworks/smwjoin/internal/extractor"
	"github.com/panelworks/smwjoin/internal/facts"
	"github.com/panelworks/smwjoin/internal/policy"
	"github.com/panelworks/smwjoin/internal/report"
	"github.com/panelworks/smwjoin/internal/validator"
)

// Runner executes the pipeline with one fixed configuration.
type Runner struct {
	Config *config.Config

	// Model is an explicitly requested model name. Empty means scan
	// the configured model list, skipping absent models silently.
	Model string

	// OutPath overrides the derived output file name. With several
	// matched block instances later instances overwrite earlier ones;
	// preserved behavior, flagged in DESIGN.md.
	OutPath string

	// Verbose enables per-block progress output.
	Verbose bool

	// Out and Errs default to stdout and stderr.
	Out  io.Writer
	Errs io.Writer
}

// FileReport describes one emitted (or skipped) output file.
type FileReport struct {
	Model    string
	Instance int
	Path     string
	Rows     int
	Written  bool
}

// RunReport summarizes a run for programmatic callers and tests.
type RunReport struct {
	Files      []FileReport
	Violations []policy.Violation
}

// New creates a Runner with the given configuration.
func New(cfg *config.Config) *Runner {
	return &Runner{
		Config: cfg,
		Out:    os.Stdout,
		Errs:   os.Stderr,
	}
}

// Run processes a project file, or every *.smw file inside a
// directory. Any unreadable input is fatal for the whole run.
func (r *Runner) Run(path string) (*RunReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	if !info.IsDir() {
		return r.runFile(path)
	}

	matches, err := filepath.Glob(filepath.Join(path, "*.smw"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .smw files in %s", path)
	}
	sort.Strings(matches)

	combined := &RunReport{}
	for _, file := range matches {
		rep, err := r.runFile(file)
		if err != nil {
			return combined, err
		}
		combined.Files = append(combined.Files, rep.Files...)
		combined.Violations = append(combined.Violations, rep.Violations...)
	}
	return combined, nil
}

func (r *Runner) runFile(path string) (*RunReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	if r.Verbose {
		fmt.Fprintf(r.Out, "Parsing %s (%d bytes)\n", path, len(raw))
	}

	project := extractor.Parse(string(raw))

	models := []string{r.Model}
	required := r.Config.RequireModel
	suffix := report.SignalMapSuffix
	if r.Model == "" {
		models = r.Config.Models
		required = false
		suffix = report.MapSuffix
	} else if !required {
		suffix = report.MapSuffix
	}

	tables := facts.BuildTables(project, models)

	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	if err := v.Validate(tables); err != nil {
		return nil, fmt.Errorf("fact tables violate the schema contract: %w", err)
	}

	var engine *policy.Engine
	if !r.Config.Check.Disabled {
		engine, err = policy.New(r.Config.Check.PolicyDir)
		if err != nil {
			return nil, fmt.Errorf("loading policies: %w", err)
		}
	}

	rep := &RunReport{}

	for _, model := range models {
		blocks := project.Blocks(model)
		if len(blocks) == 0 {
			if r.Model == "" {
				if r.Verbose {
					fmt.Fprintf(r.Out, "  %-14s no device block, skipped\n", model)
				}
				continue
			}
			if required {
				return rep, fmt.Errorf("model %s not found in %s", model, path)
			}
			fmt.Fprintf(r.Errs, "Warning: model %s not found in %s\n", model, path)
			continue
		}

		modelTables := facts.FilterModel(tables, model)

		for i, block := range blocks {
			instance := i + 1

			if block.Counts.TotalIn == 0 {
				if required {
					return rep, fmt.Errorf("model %s in %s declares zero inputs", model, path)
				}
				if r.Verbose {
					fmt.Fprintf(r.Out, "  %-14s instance %d declares zero inputs, skipped\n", model, instance)
				}
				continue
			}

			var joins []facts.JoinRow
			for _, j := range modelTables.Joins {
				if j.Instance == instance {
					joins = append(joins, j)
				}
			}

			outPath := r.OutPath
			if outPath == "" {
				outPath = report.OutputName(path, model, block.Address(project.Addresses), suffix)
			}

			written, err := report.WriteFile(outPath, joins)
			if err != nil {
				return rep, err
			}
			rep.Files = append(rep.Files, FileReport{
				Model:    model,
				Instance: instance,
				Path:     outPath,
				Rows:     len(joins),
				Written:  written,
			})

			if written {
				fmt.Fprintf(r.Out, "  %-14s %d joins -> %s\n", model, len(joins), outPath)
			} else {
				fmt.Fprintf(r.Out, "  %-14s no joins, nothing written\n", model)
			}
		}

		if engine != nil {
			violations, err := r.check(engine, modelTables)
			if err != nil {
				return rep, err
			}
			rep.Violations = append(rep.Violations, violations...)
		}
	}

	r.printViolations(rep.Violations)
	return rep, nil
}

// check evaluates the policy rules over one model's fact snapshot and
// applies configured severities. Rules set to "off" are dropped.
func (r *Runner) check(engine *policy.Engine, tables facts.Tables) ([]policy.Violation, error) {
	result, err := engine.Evaluate(tables)
	if err != nil {
		return nil, fmt.Errorf("evaluating policies: %w", err)
	}

	var kept []policy.Violation
	for _, v := range result.Violations {
		if !r.Config.IsRuleEnabled(v.Rule) {
			continue
		}
		v.Severity = r.Config.GetRuleSeverity(v.Rule, v.Severity)
		kept = append(kept, v)
	}
	return kept, nil
}

func (r *Runner) printViolations(violations []policy.Violation) {
	if len(violations) == 0 {
		return
	}

	for _, v := range violations {
		fmt.Fprintf(r.Errs, "%s: [%s] %s (model %s, instance %d)\n",
			strings.ToUpper(v.Severity), v.Rule, v.Message, v.Model, v.Instance)
	}
	s := policy.Summarize(violations)
	fmt.Fprintf(r.Errs, "%d finding(s): %d error(s), %d warning(s), %d info\n",
		s.TotalViolations, s.Errors, s.Warnings, s.Info)
}
