// Converts between Notion property values and flat form values.

package notion

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DecodedValue is the render-ready representation of a property's current
// value. Value holds a string, float64, bool, []string, []UserRef, []FileRef,
// UserRef, UniqueID, []any (rollup arrays), or nil when the property is unset
// or its type is unknown.
type DecodedValue struct {
	Type  PropertyType `json:"type"`
	Value any          `json:"value"`
}

// UserRef is a decoded person reference.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// FileRef is a decoded file reference.
type FileRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// UniqueID is a decoded unique_id value.
type UniqueID struct {
	Prefix string `json:"prefix,omitempty"`
	Number int    `json:"number"`
}

// Decode converts a page property value into its flat form representation.
//
// The property type comes from the form configuration rather than the payload
// so that a schema drift (property retyped in Notion since the form was saved)
// degrades to a nil value instead of a misrendered one.
func Decode(t PropertyType, pv *PropertyValue) DecodedValue {
	return DecodedValue{Type: t, Value: decodeValue(t, pv)}
}

func decodeValue(t PropertyType, pv *PropertyValue) any {
	if pv == nil {
		return nil
	}
	switch t {
	case TypeTitle:
		return richTextToPlain(pv.Title)
	case TypeRichText:
		return richTextToPlain(pv.RichText)
	case TypeNumber:
		if pv.Number == nil {
			return nil
		}
		return *pv.Number
	case TypeSelect:
		if pv.Select == nil {
			return nil
		}
		return pv.Select.Name
	case TypeStatus:
		if pv.Status == nil {
			return nil
		}
		return pv.Status.Name
	case TypeMultiSelect:
		names := make([]string, 0, len(pv.MultiSelect))
		for _, opt := range pv.MultiSelect {
			names = append(names, opt.Name)
		}
		return names
	case TypeDate:
		if pv.Date == nil {
			return nil
		}
		return pv.Date.Start
	case TypeCheckbox:
		return pv.Checkbox != nil && *pv.Checkbox
	case TypeURL:
		return strPtrValue(pv.URL)
	case TypeEmail:
		return strPtrValue(pv.Email)
	case TypePhoneNumber:
		return strPtrValue(pv.PhoneNumber)
	case TypePeople:
		people := make([]UserRef, 0, len(pv.People))
		for i := range pv.People {
			people = append(people, decodePerson(&pv.People[i]))
		}
		return people
	case TypeFiles:
		files := make([]FileRef, 0, len(pv.Files))
		for _, f := range pv.Files {
			ref := FileRef{Name: f.Name}
			if f.File != nil {
				ref.URL = f.File.URL
			} else if f.External != nil {
				ref.URL = f.External.URL
			}
			files = append(files, ref)
		}
		return files
	case TypeCreatedTime:
		if pv.CreatedTime == nil {
			return nil
		}
		return pv.CreatedTime.Format(time.RFC3339)
	case TypeLastEditedTime:
		if pv.LastEditedTime == nil {
			return nil
		}
		return pv.LastEditedTime.Format(time.RFC3339)
	case TypeCreatedBy:
		if pv.CreatedBy == nil {
			return nil
		}
		return UserRef{ID: pv.CreatedBy.ID, Name: pv.CreatedBy.Name}
	case TypeLastEditedBy:
		if pv.LastEditedBy == nil {
			return nil
		}
		return UserRef{ID: pv.LastEditedBy.ID, Name: pv.LastEditedBy.Name}
	case TypeFormula:
		if pv.Formula == nil {
			return nil
		}
		return decodeFormula(pv.Formula)
	case TypeRollup:
		if pv.Rollup == nil {
			return nil
		}
		return decodeRollup(pv.Rollup)
	case TypeRelation:
		ids := make([]string, 0, len(pv.Relation))
		for _, rel := range pv.Relation {
			ids = append(ids, rel.ID)
		}
		return ids
	case TypeUniqueID:
		if pv.UniqueID == nil {
			return nil
		}
		uid := UniqueID{Number: pv.UniqueID.Number}
		if pv.UniqueID.Prefix != nil {
			uid.Prefix = *pv.UniqueID.Prefix
		}
		return uid
	default:
		return nil
	}
}

func decodePerson(p *Person) UserRef {
	ref := UserRef{ID: p.ID, Name: p.Name}
	if p.Person != nil {
		ref.Email = p.Person.Email
	}
	return ref
}

// decodeFormula unwraps the value under the formula's own declared result type.
func decodeFormula(f *FormulaValue) any {
	switch f.Type {
	case "string":
		return strPtrValue(f.String)
	case "number":
		if f.Number == nil {
			return nil
		}
		return *f.Number
	case "boolean":
		if f.Boolean == nil {
			return nil
		}
		return *f.Boolean
	case "date":
		if f.Date == nil {
			return nil
		}
		return f.Date.Start
	default:
		return nil
	}
}

// decodeRollup unwraps the value under the rollup's own type. Array rollups
// decode every element recursively; rollups of rollups terminate because the
// nesting is finite in practice.
func decodeRollup(r *RollupValue) any {
	switch r.Type {
	case "number":
		if r.Number == nil {
			return nil
		}
		return *r.Number
	case "date":
		if r.Date == nil {
			return nil
		}
		return r.Date.Start
	case "array":
		values := make([]any, 0, len(r.Array))
		for i := range r.Array {
			values = append(values, decodeValue(r.Array[i].Type, &r.Array[i]))
		}
		return values
	default:
		return nil
	}
}

func strPtrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// richTextToPlain concatenates the plain-text runs of a rich text array.
// An empty array yields an empty string, never nil.
func richTextToPlain(rt []RichText) string {
	parts := make([]string, 0, len(rt))
	for i := range rt {
		parts = append(parts, rt[i].PlainText)
	}
	return strings.Join(parts, "")
}

// Encode converts a flat form value into the write-side payload for the given
// property type. ok is false when the property must be omitted from the
// outgoing request: nil or empty-string values (Notion treats presence and
// absence differently for some types, so omission is the safe default),
// array-typed properties whose value coerces to zero elements, and read-only
// types regardless of value.
//
// A non-numeric value for a number property encodes to NaN, which fails JSON
// marshalling of the request; the caller's validation layer is expected to
// reject it first, and it must never be silently coerced to zero.
func Encode(t PropertyType, value any) (payload PropertyPayload, ok bool) {
	if t.ReadOnly() {
		return PropertyPayload{}, false
	}
	if value == nil {
		return PropertyPayload{}, false
	}
	if s, isStr := value.(string); isStr && s == "" {
		return PropertyPayload{}, false
	}

	switch t {
	case TypeTitle:
		return PropertyPayload{Title: textRun(toString(value))}, true
	case TypeRichText:
		return PropertyPayload{RichText: textRun(toString(value))}, true
	case TypeNumber:
		n := toNumber(value)
		return PropertyPayload{Number: &n}, true
	case TypeCheckbox:
		b := toBool(value)
		return PropertyPayload{Checkbox: &b}, true
	case TypeSelect:
		return PropertyPayload{Select: &SelectOption{Name: toString(value)}}, true
	case TypeStatus:
		return PropertyPayload{Status: &SelectOption{Name: toString(value)}}, true
	case TypeMultiSelect:
		items := toStringSlice(value)
		if len(items) == 0 {
			return PropertyPayload{}, false
		}
		opts := make([]SelectOption, 0, len(items))
		for _, item := range items {
			opts = append(opts, SelectOption{Name: item})
		}
		return PropertyPayload{MultiSelect: opts}, true
	case TypeDate:
		return PropertyPayload{Date: &DateValue{Start: toString(value)}}, true
	case TypeURL:
		s := toString(value)
		return PropertyPayload{URL: &s}, true
	case TypeEmail:
		s := toString(value)
		return PropertyPayload{Email: &s}, true
	case TypePhoneNumber:
		s := toString(value)
		return PropertyPayload{PhoneNumber: &s}, true
	case TypeRelation:
		ids := toIDSlice(value)
		if len(ids) == 0 {
			return PropertyPayload{}, false
		}
		rels := make([]RelationValue, 0, len(ids))
		for _, id := range ids {
			rels = append(rels, RelationValue{ID: id})
		}
		return PropertyPayload{Relation: rels}, true
	case TypePeople:
		ids := toIDSlice(value)
		if len(ids) == 0 {
			return PropertyPayload{}, false
		}
		people := make([]Person, 0, len(ids))
		for _, id := range ids {
			people = append(people, Person{Object: "user", ID: id})
		}
		return PropertyPayload{People: people}, true
	default:
		// Best effort for unknown types.
		return PropertyPayload{RichText: textRun(toString(value))}, true
	}
}

func textRun(s string) []RichText {
	return []RichText{{Type: "text", Text: &TextContent{Content: s}}}
}

// toString renders a form value the way JavaScript's String() would.
func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(v)
	}
}

// toNumber coerces a form value to a float. Unparseable values become NaN so
// that they propagate as an API validation failure instead of a silent zero.
func toNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return math.NaN()
		}
		return n
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	default:
		return false
	}
}

// toStringSlice coerces a value to a string array, wrapping scalars in a
// single-element array.
func toStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, toString(item))
		}
		return out
	default:
		return []string{toString(v)}
	}
}

// toIDSlice coerces a value to an ID array. Accepts a real array or a
// comma-separated string; entries are trimmed and empties dropped.
func toIDSlice(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			raw = append(raw, toString(item))
		}
	case []UserRef:
		for _, ref := range t {
			raw = append(raw, ref.ID)
		}
	case string:
		raw = strings.Split(t, ",")
	default:
		raw = []string{toString(v)}
	}
	out := make([]string, 0, len(raw))
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
