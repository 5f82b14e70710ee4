package steps

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/simon020286/go-flow/catalog"
)

const (
	KindRuleFilter       = "rule-filter"
	KindExpressionFilter = "expression-filter"

	PredicateAnd = "AND"
	PredicateOr  = "OR"
)

var (
	ErrInvalidPredicate = errors.New("predicate must be AND or OR")
	ErrInvalidRules     = errors.New("invalid filter rules")
	ErrInvalidOperator  = errors.New("invalid rule operator")
	ErrInvalidPath      = errors.New("invalid rule path")
)

var pathPattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*(\.[A-Za-z_$][\w$]*)*$`)

// RuleFilterConfig holds the properties of the basic filter
type RuleFilterConfig struct {
	Predicate string `step:"name=predicate,required,default=AND,enum=AND|OR,desc=Whether all or any of the rules must match"`
	Rules     string `step:"name=rules,required,desc=JSON list of rules with path, op and value"`
}

// ExpressionFilterConfig holds the properties of the advanced filter
type ExpressionFilterConfig struct {
	Filter string `step:"name=filter,required,desc=JavaScript expression evaluated against body"`
}

// Rule compares one body field against a value
type Rule struct {
	Path  string `json:"path"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

type ruleFilter struct {
	Predicate string
	Rules     []Rule
}

var ruleFilterStep = catalog.StepKindDescriptor{
	StepKind:    KindRuleFilter,
	Name:        "Basic Filter",
	Description: "Continue only if incoming data match all or any of the filter rules",
	Properties:  catalog.PropertiesOf(RuleFilterConfig{}),
	Custom:      true,
	Visible:     catalog.RequiresUpstreamOutput,
	Validate:    validateRuleFilter,
}

var expressionFilterStep = catalog.StepKindDescriptor{
	StepKind:    KindExpressionFilter,
	Name:        "Advanced Filter",
	Description: "Continue only if incoming data match the supplied expression",
	Properties:  catalog.PropertiesOf(ExpressionFilterConfig{}),
	Validate:    validateExpressionFilter,
}

func validateExpressionFilter(props map[string]any) error {
	expr, _ := props["filter"].(string)
	_, err := compileExpression(KindExpressionFilter, expr)
	return err
}

func validateRuleFilter(props map[string]any) error {
	cfg, err := parseRuleFilter(props)
	if err != nil {
		return err
	}
	_, err = compileExpression(KindRuleFilter, cfg.Expression())
	return err
}

func parseRuleFilter(props map[string]any) (*ruleFilter, error) {
	cfg := &ruleFilter{Predicate: PredicateAnd}

	if p, ok := props["predicate"].(string); ok && p != "" {
		cfg.Predicate = strings.ToUpper(p)
	}
	if cfg.Predicate != PredicateAnd && cfg.Predicate != PredicateOr {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPredicate, cfg.Predicate)
	}

	var raw []byte
	switch v := props["rules"].(type) {
	case string:
		raw = []byte(v)
	case nil:
		return nil, fmt.Errorf("%w: no rules", ErrInvalidRules)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
		}
		raw = data
	}

	if err := json.Unmarshal(raw, &cfg.Rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrInvalidRules)
	}

	for i, r := range cfg.Rules {
		if !pathPattern.MatchString(r.Path) {
			return nil, fmt.Errorf("%w: rule %d: '%s'", ErrInvalidPath, i, r.Path)
		}
		if _, ok := ruleOperators[r.Op]; !ok {
			return nil, fmt.Errorf("%w: rule %d: '%s'", ErrInvalidOperator, i, r.Op)
		}
	}
	return cfg, nil
}

var ruleOperators = map[string]func(field, value string) string{
	"==": binary("=="),
	"!=": binary("!="),
	">":  binary(">"),
	">=": binary(">="),
	"<":  binary("<"),
	"<=": binary("<="),
	"contains": func(field, value string) string {
		return "String(" + field + ").indexOf(" + value + ") !== -1"
	},
	"not contains": func(field, value string) string {
		return "String(" + field + ").indexOf(" + value + ") === -1"
	},
	"matches": func(field, value string) string {
		return "new RegExp(" + value + ").test(String(" + field + "))"
	},
	"not matches": func(field, value string) string {
		return "!new RegExp(" + value + ").test(String(" + field + "))"
	},
}

func binary(op string) func(field, value string) string {
	return func(field, value string) string {
		return field + " " + op + " " + value
	}
}

// Expression renders the rules as a single JavaScript boolean expression
func (f *ruleFilter) Expression() string {
	join := " && "
	if f.Predicate == PredicateOr {
		join = " || "
	}

	parts := make([]string, 0, len(f.Rules))
	for _, r := range f.Rules {
		value, err := json.Marshal(r.Value)
		if err != nil {
			value = []byte("null")
		}
		field := "body." + r.Path
		parts = append(parts, "("+ruleOperators[r.Op](field, string(value))+")")
	}
	return strings.Join(parts, join)
}
