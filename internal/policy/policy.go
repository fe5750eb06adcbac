// Package policy evaluates Rego checks against extracted join maps.
// The built-in policies cover the mistakes seen most in the field
// (dangling signal handles, doubled joins, count mismatches); a
// config-supplied policy directory can add project-specific rules.
package policy

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/open-policy-agent/opa/v1/rego"
)

//go:embed policies/*.rego
var builtinFS embed.FS

// Engine evaluates policies against join map fact tables
type Engine struct {
	queries map[string]rego.PreparedEvalQuery
}

// Violation represents one policy finding
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Model    string `json:"model"`
	Instance int    `json:"instance"`
	Message  string `json:"message"`
}

// Summary provides aggregate counts
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// Result contains the evaluation results
type Result struct {
	Violations []Violation
	Summary    Summary
}

// New creates a policy engine from the built-in policies plus any
// .rego files found in policyDir. An empty policyDir means built-ins
// only.
func New(policyDir string) (*Engine, error) {
	var modules []func(*rego.Rego)

	builtins, err := fs.Glob(builtinFS, "policies/*.rego")
	if err != nil {
		return nil, fmt.Errorf("listing built-in policies: %w", err)
	}
	for _, name := range builtins {
		content, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading built-in policy %s: %w", name, err)
		}
		modules = append(modules, rego.Module(name, string(content)))
	}

	if policyDir != "" {
		files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
		if err != nil {
			return nil, fmt.Errorf("finding policy files: %w", err)
		}
		for _, f := range files {
			content, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", f, err)
			}
			modules = append(modules, rego.Module(f, string(content)))
		}
	}

	engine := &Engine{
		queries: make(map[string]rego.PreparedEvalQuery),
	}

	opts := append(append([]func(*rego.Rego){}, modules...), rego.Query("data.smwjoin.compliance.violations"))
	query, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}
	engine.queries["violations"] = query

	opts = append(append([]func(*rego.Rego){}, modules...), rego.Query("data.smwjoin.compliance.summary"))
	query, err = rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing summary query: %w", err)
	}
	engine.queries["summary"] = query

	return engine, nil
}

// Evaluate runs the policies against one model's fact table snapshot.
func (e *Engine) Evaluate(input interface{}) (*Result, error) {
	ctx := context.Background()

	inputMap, err := structToMap(input)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	result := &Result{}

	rs, err := e.queries["violations"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}

	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		violations, ok := rs[0].Expressions[0].Value.([]interface{})
		if ok {
			for _, v := range violations {
				vmap, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				result.Violations = append(result.Violations, Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					Model:    getString(vmap, "model"),
					Instance: getInt(vmap, "instance"),
					Message:  getString(vmap, "message"),
				})
			}
		}
	}

	rs, err = e.queries["summary"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}

	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		smap, ok := rs[0].Expressions[0].Value.(map[string]interface{})
		if ok {
			result.Summary = Summary{
				TotalViolations: getInt(smap, "total_violations"),
				Errors:          getInt(smap, "errors"),
				Warnings:        getInt(smap, "warnings"),
				Info:            getInt(smap, "info"),
			}
		}
	}

	return result, nil
}

// Summarize recounts violations, for callers that filtered or
// re-severitied them after evaluation.
func Summarize(violations []Violation) Summary {
	s := Summary{TotalViolations: len(violations)}
	for _, v := range violations {
		switch v.Severity {
		case "error":
			s.Errors++
		case "warning":
			s.Warnings++
		default:
			s.Info++
		}
	}
	return s
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
