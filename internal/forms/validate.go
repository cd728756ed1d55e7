// Validates submitted form values against field configuration.

package forms

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/realsalbednarz/notion-form-sub000/internal/notion"
)

// ValidationError carries per-field validation failures keyed by property ID.
type ValidationError struct {
	Fields map[string]string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateValues checks submitted values against the form's field
// configuration. It returns nil when everything passes. Read-only and
// non-editable fields are ignored; unknown keys in values are ignored too,
// the encode step drops them.
func ValidateValues(form *FormConfig, values map[string]any) *ValidationError {
	failures := make(map[string]string)
	for i := range form.Fields {
		fd := &form.Fields[i]
		if !fd.IsEditable() {
			continue
		}
		value, present := values[fd.PropertyID]
		if value == nil || value == "" {
			present = false
		}
		if !present {
			if fd.Required {
				failures[fd.PropertyID] = fieldMessage(fd, "this field is required")
			}
			continue
		}
		if msg := checkValue(fd, value); msg != "" {
			failures[fd.PropertyID] = fieldMessage(fd, msg)
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &ValidationError{Fields: failures}
}

// fieldMessage prefers the field's configured message over the generic one.
func fieldMessage(fd *FieldDefinition, generic string) string {
	if fd.Validation != nil && fd.Validation.Message != "" {
		return fd.Validation.Message
	}
	return generic
}

func checkValue(fd *FieldDefinition, value any) string {
	switch fd.PropertyType {
	case notion.TypeNumber:
		n, ok := asNumber(value)
		if !ok {
			return "must be a number"
		}
		if fd.Validation != nil {
			if fd.Validation.Min != nil && n < *fd.Validation.Min {
				return fmt.Sprintf("must be at least %v", *fd.Validation.Min)
			}
			if fd.Validation.Max != nil && n > *fd.Validation.Max {
				return fmt.Sprintf("must be at most %v", *fd.Validation.Max)
			}
		}
	case notion.TypeEmail:
		if s, ok := value.(string); ok && !emailRe.MatchString(s) {
			return "must be a valid email address"
		}
	case notion.TypeURL:
		if s, ok := value.(string); ok {
			u, err := url.Parse(s)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return "must be a valid URL"
			}
		}
	case notion.TypeTitle, notion.TypeRichText, notion.TypePhoneNumber:
		if s, ok := value.(string); ok && fd.Validation != nil {
			length := float64(len([]rune(s)))
			if fd.Validation.Min != nil && length < *fd.Validation.Min {
				return fmt.Sprintf("must be at least %v characters", *fd.Validation.Min)
			}
			if fd.Validation.Max != nil && length > *fd.Validation.Max {
				return fmt.Sprintf("must be at most %v characters", *fd.Validation.Max)
			}
		}
	}

	if fd.Validation != nil && fd.Validation.Pattern != "" {
		re, err := regexp.Compile(fd.Validation.Pattern)
		// Pattern syntax is checked at form save time.
		if err == nil && !re.MatchString(asString(value)) {
			return "does not match the expected format"
		}
	}
	return ""
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
