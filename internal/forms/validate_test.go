package forms

import (
	"testing"

	"github.com/realsalbednarz/notion-form-sub000/internal/notion"
)

func f64Ptr(v float64) *float64 { return &v }

func TestValidateValues(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		form := &FormConfig{Fields: []FieldDefinition{
			{PropertyID: "title", PropertyType: notion.TypeTitle, Required: true},
		}}
		for name, values := range map[string]map[string]any{
			"missing": {},
			"nil":     {"title": nil},
			"empty":   {"title": ""},
		} {
			t.Run(name, func(t *testing.T) {
				verr := ValidateValues(form, values)
				if verr == nil || verr.Fields["title"] == "" {
					t.Errorf("verr = %+v", verr)
				}
			})
		}
		if verr := ValidateValues(form, map[string]any{"title": "hello"}); verr != nil {
			t.Errorf("verr = %+v", verr)
		}
	})

	t.Run("optional empty passes", func(t *testing.T) {
		form := &FormConfig{Fields: []FieldDefinition{
			{PropertyID: "note", PropertyType: notion.TypeRichText},
		}}
		if verr := ValidateValues(form, map[string]any{}); verr != nil {
			t.Errorf("verr = %+v", verr)
		}
	})

	t.Run("number coercion and bounds", func(t *testing.T) {
		form := &FormConfig{Fields: []FieldDefinition{
			{
				PropertyID:   "qty",
				PropertyType: notion.TypeNumber,
				Validation:   &Validation{Min: f64Ptr(1), Max: f64Ptr(10)},
			},
		}}
		if verr := ValidateValues(form, map[string]any{"qty": "5"}); verr != nil {
			t.Errorf("string number rejected: %+v", verr)
		}
		if verr := ValidateValues(form, map[string]any{"qty": "twelve"}); verr == nil {
			t.Error("non-numeric accepted")
		}
		if verr := ValidateValues(form, map[string]any{"qty": 0.5}); verr == nil {
			t.Error("below min accepted")
		}
		if verr := ValidateValues(form, map[string]any{"qty": 11}); verr == nil {
			t.Error("above max accepted")
		}
	})

	t.Run("text length bounds", func(t *testing.T) {
		form := &FormConfig{Fields: []FieldDefinition{
			{
				PropertyID:   "title",
				PropertyType: notion.TypeTitle,
				Validation:   &Validation{Min: f64Ptr(3), Max: f64Ptr(5)},
			},
		}}
		if verr := ValidateValues(form, map[string]any{"title": "abcd"}); verr != nil {
			t.Errorf("verr = %+v", verr)
		}
		if verr := ValidateValues(form, map[string]any{"title": "ab"}); verr == nil {
			t.Error("too short accepted")
		}
		if verr := ValidateValues(form, map[string]any{"title": "abcdef"}); verr == nil {
			t.Error("too long accepted")
		}
	})

	t.Run("email and url", func(t *testing.T) {
		form := &FormConfig{Fields: []FieldDefinition{
			{PropertyID: "email", PropertyType: notion.TypeEmail},
			{PropertyID: "site", PropertyType: notion.TypeURL},
		}}
		if verr := ValidateValues(form, map[string]any{"email": "a@b.co", "site": "https://example.com"}); verr != nil {
			t.Errorf("verr = %+v", verr)
		}
		verr := ValidateValues(form, map[string]any{"email": "not-an-email", "site": "not a url"})
		if verr == nil || verr.Fields["email"] == "" || verr.Fields["site"] == "" {
			t.Errorf("verr = %+v", verr)
		}
	})

	t.Run("pattern with custom message", func(t *testing.T) {
		form := &FormConfig{Fields: []FieldDefinition{
			{
				PropertyID:   "code",
				PropertyType: notion.TypeRichText,
				Validation:   &Validation{Pattern: `^[A-Z]{3}-\d+$`, Message: "use the format ABC-123"},
			},
		}}
		if verr := ValidateValues(form, map[string]any{"code": "ABC-42"}); verr != nil {
			t.Errorf("verr = %+v", verr)
		}
		verr := ValidateValues(form, map[string]any{"code": "nope"})
		if verr == nil || verr.Fields["code"] != "use the format ABC-123" {
			t.Errorf("verr = %+v", verr)
		}
	})

	t.Run("non-editable fields are skipped", func(t *testing.T) {
		form := &FormConfig{Fields: []FieldDefinition{
			{PropertyID: "locked", PropertyType: notion.TypeNumber, Required: true, Editable: boolPtr(false)},
			{PropertyID: "score", PropertyType: notion.TypeFormula, Required: false},
		}}
		if verr := ValidateValues(form, map[string]any{}); verr != nil {
			t.Errorf("verr = %+v", verr)
		}
	})
}
