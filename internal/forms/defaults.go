// Resolves field default values at render time.

package forms

import (
	"time"
)

// ResolveDefault returns the effective default value for a field, or nil when
// the field has none. Function defaults are evaluated against now and viewer;
// formula defaults pass through opaque for the client to evaluate.
func ResolveDefault(fd *FieldDefinition, viewer string, now time.Time) any {
	d := fd.Default
	if d == nil {
		return nil
	}
	switch d.Kind {
	case DefaultStatic:
		return d.Value
	case DefaultFunction:
		switch d.Function {
		case FuncToday:
			return now.Format("2006-01-02")
		case FuncNow:
			return now.Format(time.RFC3339)
		case FuncCurrentUser:
			if viewer == "" {
				return nil
			}
			return viewer
		}
	case DefaultFormula:
		return d.Expression
	}
	return nil
}
