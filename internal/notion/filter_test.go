// Tests for the filter compiler.

package notion

import (
	"reflect"
	"testing"
)

func TestCompileFilter(t *testing.T) {
	t.Run("zero rules yields no filter", func(t *testing.T) {
		if got := CompileFilter(nil); got != nil {
			t.Errorf("filter = %v, want nil", got)
		}
		if got := CompileFilter([]FilterRule{}); got != nil {
			t.Errorf("filter = %v, want nil", got)
		}
	})

	t.Run("single rule is not wrapped in and", func(t *testing.T) {
		rules := []FilterRule{{
			PropertyID:   "abc",
			PropertyType: TypeDate,
			Operator:     OpGreaterThanOrEqualTo,
			Value:        "2024-01-01",
		}}
		got := CompileFilter(rules)
		want := map[string]any{
			"property": "abc",
			"date":     map[string]any{"on_or_after": "2024-01-01"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("filter = %v, want %v", got, want)
		}
	})

	t.Run("multiple rules wrap in and", func(t *testing.T) {
		rules := []FilterRule{
			{PropertyID: "a", PropertyType: TypeTitle, Operator: OpContains, Value: "x"},
			{PropertyID: "b", PropertyType: TypeNumber, Operator: OpGreaterThan, Value: 5},
			{PropertyID: "c", PropertyType: TypeCheckbox, Operator: OpEquals, Value: true},
		}
		got, ok := CompileFilter(rules).(map[string]any)
		if !ok {
			t.Fatalf("filter = %T, want map", CompileFilter(rules))
		}
		and, ok := got["and"].([]any)
		if !ok {
			t.Fatalf("missing and wrapper: %v", got)
		}
		if len(and) != 3 {
			t.Errorf("len(and) = %d, want 3", len(and))
		}
	})

	t.Run("invalid rules are dropped not errored", func(t *testing.T) {
		rules := []FilterRule{
			{PropertyID: "a", PropertyType: TypeTitle, Operator: OpContains, Value: "x"},
			{PropertyID: "b", PropertyType: TypeRollup, Operator: OpEquals, Value: "x"},
		}
		got := CompileFilter(rules)
		// The rollup rule compiles to nothing, so the lone survivor stays bare.
		want := map[string]any{
			"property": "a",
			"title":    map[string]any{"contains": "x"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("filter = %v, want %v", got, want)
		}
	})

	t.Run("all rules invalid yields no filter", func(t *testing.T) {
		rules := []FilterRule{
			{PropertyID: "a", PropertyType: TypeRollup, Operator: OpEquals, Value: "x"},
		}
		if got := CompileFilter(rules); got != nil {
			t.Errorf("filter = %v, want nil", got)
		}
	})
}

func TestCompileCondition(t *testing.T) {
	t.Run("emptiness operators apply to every type", func(t *testing.T) {
		types := []PropertyType{
			TypeTitle, TypeRichText, TypeNumber, TypeSelect, TypeMultiSelect,
			TypeDate, TypePeople, TypeFiles, TypeCheckbox, TypeURL, TypeEmail,
			TypePhoneNumber, TypeStatus, TypeFormula, TypeRollup, TypeRelation,
		}
		for _, pt := range types {
			got := compileCondition(pt, OpIsEmpty, nil)
			if !reflect.DeepEqual(got, map[string]any{"is_empty": true}) {
				t.Errorf("%s is_empty = %v", pt, got)
			}
			got = compileCondition(pt, OpIsNotEmpty, nil)
			if !reflect.DeepEqual(got, map[string]any{"is_not_empty": true}) {
				t.Errorf("%s is_not_empty = %v", pt, got)
			}
		}
	})

	t.Run("text operators", func(t *testing.T) {
		for _, op := range []FilterOperator{OpEquals, OpDoesNotEqual, OpContains, OpDoesNotContain, OpStartsWith, OpEndsWith} {
			got := compileCondition(TypeRichText, op, "v")
			want := map[string]any{string(op): "v"}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("%s = %v, want %v", op, got, want)
			}
		}
	})

	t.Run("number coerces value", func(t *testing.T) {
		got := compileCondition(TypeNumber, OpLessThanOrEqualTo, "10")
		want := map[string]any{"less_than_or_equal_to": 10.0}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("condition = %v, want %v", got, want)
		}
	})

	t.Run("non-numeric number value drops the rule", func(t *testing.T) {
		if got := compileCondition(TypeNumber, OpEquals, "ten"); got != nil {
			t.Errorf("condition = %v, want nil", got)
		}
	})

	t.Run("checkbox ignores requested operator", func(t *testing.T) {
		for _, op := range []FilterOperator{OpEquals, OpContains, OpGreaterThan, OpStartsWith} {
			got := compileCondition(TypeCheckbox, op, "true")
			if !reflect.DeepEqual(got, map[string]any{"equals": true}) {
				t.Errorf("%s = %v, want {equals: true}", op, got)
			}
			got = compileCondition(TypeCheckbox, op, "no")
			if !reflect.DeepEqual(got, map[string]any{"equals": false}) {
				t.Errorf("%s = %v, want {equals: false}", op, got)
			}
		}
	})

	t.Run("date operators rename", func(t *testing.T) {
		tests := []struct {
			op   FilterOperator
			want string
		}{
			{OpEquals, "equals"},
			{OpGreaterThan, "after"},
			{OpLessThan, "before"},
			{OpGreaterThanOrEqualTo, "on_or_after"},
			{OpLessThanOrEqualTo, "on_or_before"},
		}
		for _, tt := range tests {
			got := compileCondition(TypeDate, tt.op, "2024-05-01")
			want := map[string]any{tt.want: "2024-05-01"}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("%s = %v, want %v", tt.op, got, want)
			}
		}
	})

	t.Run("people contains", func(t *testing.T) {
		got := compileCondition(TypePeople, OpContains, "u1")
		if !reflect.DeepEqual(got, map[string]any{"contains": "u1"}) {
			t.Errorf("condition = %v", got)
		}
	})

	t.Run("unsupported pairs compile to nothing", func(t *testing.T) {
		tests := []struct {
			typ PropertyType
			op  FilterOperator
		}{
			{TypeTitle, OpGreaterThan},
			{TypeNumber, OpContains},
			{TypeSelect, OpContains},
			{TypeMultiSelect, OpEquals},
			{TypeDate, OpContains},
			{TypePeople, OpEquals},
			{TypeFiles, OpEquals},
			{TypeFormula, OpEquals},
			{TypeRollup, OpEquals},
			{TypeRelation, OpContains},
			{TypeCreatedTime, OpEquals},
		}
		for _, tt := range tests {
			if got := compileCondition(tt.typ, tt.op, "x"); got != nil {
				t.Errorf("(%s, %s) = %v, want nil", tt.typ, tt.op, got)
			}
		}
	})
}
