package policy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"trustmon/pkg/models"
)

// evalCondition applies one condition to the context. Unknown fields and
// malformed values evaluate as not-matching, never as errors.
func evalCondition(cond models.PolicyCondition, ctx models.PolicyContext) bool {
	value, ok := lookupField(ctx, cond.Field)
	if !ok {
		return false
	}

	switch cond.Operator {
	case models.OpEquals:
		return valuesEqual(value, cond.Value)
	case models.OpNotEquals:
		return !valuesEqual(value, cond.Value)
	case models.OpContains:
		return strings.Contains(asString(value), asString(cond.Value))
	case models.OpNotContains:
		return !strings.Contains(asString(value), asString(cond.Value))
	case models.OpStartsWith:
		return strings.HasPrefix(asString(value), asString(cond.Value))
	case models.OpEndsWith:
		return strings.HasSuffix(asString(value), asString(cond.Value))
	case models.OpMatchesRegex:
		re, err := regexp.Compile(asString(cond.Value))
		if err != nil {
			return false
		}
		return re.MatchString(asString(value))
	case models.OpGreaterThan:
		a, aok := asNumber(value)
		b, bok := asNumber(cond.Value)
		return aok && bok && a > b
	case models.OpLessThan:
		a, aok := asNumber(value)
		b, bok := asNumber(cond.Value)
		return aok && bok && a < b
	case models.OpInList:
		return inList(value, cond.Value)
	case models.OpNotInList:
		return !inList(value, cond.Value)
	default:
		return false
	}
}

// lookupField resolves a dot-path into the context, descending through
// nested maps when present.
func lookupField(ctx models.PolicyContext, field string) (interface{}, bool) {
	if v, ok := ctx[field]; ok {
		return v, true
	}

	parts := strings.Split(field, ".")
	var current interface{} = map[string]interface{}(ctx)
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func valuesEqual(a, b interface{}) bool {
	if an, aok := asNumber(a); aok {
		if bn, bok := asNumber(b); bok {
			return an == bn
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			return ab == bb
		}
	}
	return asString(a) == asString(b)
}

func asString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func asNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		n, err := strconv.ParseFloat(val, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func inList(value, listValue interface{}) bool {
	needle := asString(value)
	switch list := listValue.(type) {
	case []string:
		for _, item := range list {
			if item == needle {
				return true
			}
		}
	case []interface{}:
		for _, item := range list {
			if asString(item) == needle {
				return true
			}
		}
	}
	return false
}
