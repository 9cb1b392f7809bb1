package models

import "time"

// ConditionOperator compares a context field against a rule value.
type ConditionOperator string

const (
	OpEquals       ConditionOperator = "equals"
	OpNotEquals    ConditionOperator = "not_equals"
	OpContains     ConditionOperator = "contains"
	OpNotContains  ConditionOperator = "not_contains"
	OpStartsWith   ConditionOperator = "starts_with"
	OpEndsWith     ConditionOperator = "ends_with"
	OpMatchesRegex ConditionOperator = "matches_regex"
	OpGreaterThan  ConditionOperator = "greater_than"
	OpLessThan     ConditionOperator = "less_than"
	OpInList       ConditionOperator = "in_list"
	OpNotInList    ConditionOperator = "not_in_list"
)

// ConditionLogic combines the results of a rule's conditions.
type ConditionLogic string

const (
	LogicAnd ConditionLogic = "and"
	LogicOr  ConditionLogic = "or"
)

// PolicyCondition is one field comparison inside a rule.
type PolicyCondition struct {
	Field    string            `json:"field" yaml:"field"`
	Operator ConditionOperator `json:"operator" yaml:"operator"`
	Value    interface{}       `json:"value" yaml:"value"`
}

// PolicyRule is a declarative detection rule. Identity is ID; rules are
// immutable once added except for enabled toggling and full replacement.
type PolicyRule struct {
	ID             string            `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	Category       string            `json:"category,omitempty" yaml:"category,omitempty"`
	Severity       Severity          `json:"severity" yaml:"severity"`
	Enabled        bool              `json:"enabled" yaml:"enabled"`
	Conditions     []PolicyCondition `json:"conditions" yaml:"conditions"`
	ConditionLogic ConditionLogic    `json:"condition_logic,omitempty" yaml:"condition_logic,omitempty"`
	Remediation    string            `json:"remediation,omitempty" yaml:"remediation,omitempty"`
	Tags           []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// PolicyContext is the flat evidence map a domain's signals are folded
// into before rule evaluation. Unknown fields evaluate as not-matching.
type PolicyContext map[string]interface{}

// Clone returns a shallow copy of the context.
func (c PolicyContext) Clone() PolicyContext {
	out := make(PolicyContext, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Domain returns the domain field if present.
func (c PolicyContext) Domain() string {
	if v, ok := c["domain"].(string); ok {
		return v
	}
	return ""
}

// PolicyViolation records a rule that fired during one evaluation.
type PolicyViolation struct {
	ID           string        `json:"id"`
	RuleID       string        `json:"rule_id"`
	RuleName     string        `json:"rule_name"`
	Severity     Severity      `json:"severity"`
	Category     string        `json:"category,omitempty"`
	Domain       string        `json:"domain,omitempty"`
	Description  string        `json:"description,omitempty"`
	Remediation  string        `json:"remediation,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	Context      PolicyContext `json:"context,omitempty"`
	Acknowledged bool          `json:"acknowledged"`
}
