// Compiles user-authored filter rules into Notion's filter expression tree.

package notion

import "math"

// FilterOperator is one of the operators a list view filter rule can use.
type FilterOperator string

// The closed set of filter operators.
const (
	OpEquals               FilterOperator = "equals"
	OpDoesNotEqual         FilterOperator = "does_not_equal"
	OpContains             FilterOperator = "contains"
	OpDoesNotContain       FilterOperator = "does_not_contain"
	OpStartsWith           FilterOperator = "starts_with"
	OpEndsWith             FilterOperator = "ends_with"
	OpGreaterThan          FilterOperator = "greater_than"
	OpLessThan             FilterOperator = "less_than"
	OpGreaterThanOrEqualTo FilterOperator = "greater_than_or_equal_to"
	OpLessThanOrEqualTo    FilterOperator = "less_than_or_equal_to"
	OpIsEmpty              FilterOperator = "is_empty"
	OpIsNotEmpty           FilterOperator = "is_not_empty"
)

// FilterRule is one user-authored condition in a list view's filter set.
// PropertyType is stored alongside PropertyID so rules compile without a
// schema lookup. Value is absent only for the emptiness operators.
type FilterRule struct {
	PropertyID   string         `json:"property_id" yaml:"property"`
	PropertyType PropertyType   `json:"property_type" yaml:"type"`
	Operator     FilterOperator `json:"operator" yaml:"operator"`
	Value        any            `json:"value,omitempty" yaml:"value,omitempty"`
}

// CompileFilter translates filter rules into the nested filter expression the
// database query endpoint accepts. Rules combine with implicit AND; OR
// composition is unsupported.
//
// Rules whose operator/type pair has no mapping produce no condition and are
// dropped, so a misconfigured filter silently narrows the list instead of
// breaking it. A number rule whose value does not parse as a number is
// dropped the same way rather than coerced to zero, which would match the
// wrong rows. With zero surviving rules the result is nil (no filtering);
// with exactly one it is the bare condition object (a lone condition is not
// wrapped in "and", matching the existing API contract); with more it is
// {"and": [...]}.
func CompileFilter(rules []FilterRule) any {
	conditions := make([]any, 0, len(rules))
	for i := range rules {
		if cond := compileRule(&rules[i]); cond != nil {
			conditions = append(conditions, cond)
		}
	}
	switch len(conditions) {
	case 0:
		return nil
	case 1:
		return conditions[0]
	default:
		return map[string]any{"and": conditions}
	}
}

// compileRule produces {property: id, <type>: condition} or nil.
func compileRule(rule *FilterRule) any {
	cond := compileCondition(rule.PropertyType, rule.Operator, rule.Value)
	if cond == nil {
		return nil
	}
	wrapped := map[string]any{"property": rule.PropertyID}
	wrapped[string(rule.PropertyType)] = cond
	return wrapped
}

// compileCondition maps an (operator, type) pair to a condition object, or nil
// when the combination is unsupported.
func compileCondition(t PropertyType, op FilterOperator, value any) any {
	// Emptiness checks apply to every property type.
	switch op {
	case OpIsEmpty:
		return map[string]any{"is_empty": true}
	case OpIsNotEmpty:
		return map[string]any{"is_not_empty": true}
	}

	switch t {
	case TypeTitle, TypeRichText, TypeURL, TypeEmail, TypePhoneNumber:
		switch op {
		case OpEquals, OpDoesNotEqual, OpContains, OpDoesNotContain, OpStartsWith, OpEndsWith:
			return map[string]any{string(op): toString(value)}
		}
	case TypeNumber:
		switch op {
		case OpEquals, OpDoesNotEqual, OpGreaterThan, OpLessThan, OpGreaterThanOrEqualTo, OpLessThanOrEqualTo:
			n := toNumber(value)
			if math.IsNaN(n) {
				return nil
			}
			return map[string]any{string(op): n}
		}
	case TypeSelect, TypeStatus:
		switch op {
		case OpEquals, OpDoesNotEqual:
			return map[string]any{string(op): toString(value)}
		}
	case TypeMultiSelect, TypePeople:
		switch op {
		case OpContains, OpDoesNotContain:
			return map[string]any{string(op): toString(value)}
		}
	case TypeCheckbox:
		// Checkbox ignores the requested operator entirely.
		return map[string]any{"equals": toBool(value)}
	case TypeDate:
		key := ""
		switch op {
		case OpEquals:
			key = "equals"
		case OpGreaterThan:
			key = "after"
		case OpLessThan:
			key = "before"
		case OpGreaterThanOrEqualTo:
			key = "on_or_after"
		case OpLessThanOrEqualTo:
			key = "on_or_before"
		}
		if key != "" {
			return map[string]any{key: toString(value)}
		}
	}
	return nil
}
