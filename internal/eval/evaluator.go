// Package eval evaluates PKL infrastructure templates into IR types.
package eval

import (
	"context"
	"fmt"
	"net/url"

	"github.com/apple/pkl-go/pkl"

	"github.com/cloudforge-io/cloudforge/internal/ir"
)

// Evaluator loads declarative templates from a project directory.
type Evaluator struct {
	projectDir string
}

func NewEvaluator(projectDir string) *Evaluator {
	return &Evaluator{
		projectDir: projectDir,
	}
}

// LoadTemplate evaluates the template entry point and returns the IR.
// Input parameters (template defaults overridable from the CLI) are passed
// through as PKL external properties.
func (e *Evaluator) LoadTemplate(ctx context.Context, entryPoint string, parameters map[string]string) (*ir.Template, error) {
	u, err := url.Parse("file://" + e.projectDir + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse project directory URL: %w", err)
	}

	opts := []func(*pkl.EvaluatorOptions){pkl.PreconfiguredOptions}
	if len(parameters) > 0 {
		opts = append(opts, func(o *pkl.EvaluatorOptions) {
			if o.Properties == nil {
				o.Properties = make(map[string]string)
			}
			for k, v := range parameters {
				o.Properties[k] = v
			}
		})
	}

	evaluator, err := pkl.NewProjectEvaluator(ctx, u, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create PKL evaluator: %w", err)
	}
	defer evaluator.Close()

	var tpl ir.Template
	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(entryPoint), &tpl); err != nil {
		return nil, fmt.Errorf("failed to evaluate template: %w", err)
	}

	return &tpl, nil
}
