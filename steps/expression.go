package steps

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/simon020286/go-flow/models"
)

var (
	ErrExpressionEmpty = errors.New("expression is empty")
	ErrNotAFilter      = errors.New("step is not a filter")
)

// compileExpression checks that expr is a valid JavaScript expression
func compileExpression(name, expr string) (*goja.Program, error) {
	if expr == "" {
		return nil, ErrExpressionEmpty
	}
	prog, err := goja.Compile(name, wrapExpression(expr), false)
	if err != nil {
		return nil, fmt.Errorf("invalid expression '%s': %w", expr, err)
	}
	return prog, nil
}

// Wrap the expression in an anonymous function so statements like
// `return x > 1` and bare expressions both work
func wrapExpression(expr string) string {
	return "(function() {\n return (" + expr + ")\n})()"
}

// FilterExpression returns the JavaScript expression a filter step applies
// to the message body
func FilterExpression(step *models.Step) (string, error) {
	if step == nil {
		return "", ErrNotAFilter
	}
	switch step.StepKind {
	case KindExpressionFilter:
		expr, _ := step.ConfiguredProperties["filter"].(string)
		if expr == "" {
			return "", ErrExpressionEmpty
		}
		return expr, nil
	case KindRuleFilter:
		cfg, err := parseRuleFilter(step.ConfiguredProperties)
		if err != nil {
			return "", err
		}
		return cfg.Expression(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotAFilter, step.StepKind)
	}
}

// EvaluateFilter runs a filter step against a sample body and reports
// whether the message would continue
func EvaluateFilter(step *models.Step, body map[string]any) (bool, error) {
	expr, err := FilterExpression(step)
	if err != nil {
		return false, err
	}
	prog, err := compileExpression(step.StepKind, expr)
	if err != nil {
		return false, err
	}

	runtime := goja.New()
	if body == nil {
		body = map[string]any{}
	}
	if err := runtime.Set("body", body); err != nil {
		return false, fmt.Errorf("failed to set body: %w", err)
	}

	result, err := runtime.RunProgram(prog)
	if err != nil {
		return false, fmt.Errorf("failed to execute filter '%s': %w", expr, err)
	}
	return result.ToBoolean(), nil
}
