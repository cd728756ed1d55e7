// Package forms holds form configurations and the submission pipeline that
// bridges public form values and Notion database pages.
package forms

import (
	"errors"
	"fmt"
	"iter"
	"regexp"

	"github.com/maruel/ksid"

	"github.com/realsalbednarz/notion-form-sub000/internal/jsonldb"
	"github.com/realsalbednarz/notion-form-sub000/internal/notion"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
)

// FormMode selects what a published form does.
type FormMode string

const (
	// FormModeCreate submits new pages into the database.
	FormModeCreate FormMode = "create"
	// FormModeList displays existing pages, optionally editable.
	FormModeList FormMode = "list"
)

// FormConfig describes one published form over a Notion database.
type FormConfig struct {
	ID           ksid.ID             `json:"id" yaml:"-" jsonschema:"description=Unique form identifier"`
	Slug         string              `json:"slug" yaml:"slug" jsonschema:"description=Public URL token"`
	Name         string              `json:"name" yaml:"name" jsonschema:"description=Form title shown to visitors"`
	DatabaseID   string              `json:"database_id" yaml:"database_id" jsonschema:"description=Notion database the form is bound to"`
	Mode         FormMode            `json:"mode" yaml:"mode" jsonschema:"description=create or list"`
	Fields       []FieldDefinition   `json:"fields" yaml:"fields" jsonschema:"description=Ordered field configuration"`
	Filters      []notion.FilterRule `json:"filters,omitempty" yaml:"filters,omitempty" jsonschema:"description=Row filters for list mode"`
	Sorts        []SortRule          `json:"sorts,omitempty" yaml:"sorts,omitempty" jsonschema:"description=Row ordering for list mode"`
	SubmitLabel  string              `json:"submit_label,omitempty" yaml:"submit_label,omitempty" jsonschema:"description=Submit button label"`
	Confirmation string              `json:"confirmation,omitempty" yaml:"confirmation,omitempty" jsonschema:"description=Message shown after submission"`
	Published    bool                `json:"published,omitempty" yaml:"published,omitempty" jsonschema:"description=Whether the public URL is live"`
	Notify       bool                `json:"notify,omitempty" yaml:"notify,omitempty" jsonschema:"description=Push a notification to admins on submission"`
	Created      storage.Time        `json:"created" yaml:"-" jsonschema:"description=Creation timestamp"`
	Modified     storage.Time        `json:"modified" yaml:"-" jsonschema:"description=Last modification timestamp"`
}

// Clone returns a deep copy of the form.
func (f *FormConfig) Clone() *FormConfig {
	c := *f
	if f.Fields != nil {
		c.Fields = make([]FieldDefinition, len(f.Fields))
		copy(c.Fields, f.Fields)
	}
	if f.Filters != nil {
		c.Filters = make([]notion.FilterRule, len(f.Filters))
		copy(c.Filters, f.Filters)
	}
	if f.Sorts != nil {
		c.Sorts = make([]SortRule, len(f.Sorts))
		copy(c.Sorts, f.Sorts)
	}
	return &c
}

// GetID returns the form's ID.
func (f *FormConfig) GetID() ksid.ID {
	return f.ID
}

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

// Validate checks that the form configuration is well-formed.
func (f *FormConfig) Validate() error {
	if !slugRe.MatchString(f.Slug) {
		return fmt.Errorf("invalid slug %q", f.Slug)
	}
	if f.Name == "" {
		return errors.New("name is required")
	}
	if f.DatabaseID == "" {
		return errors.New("database_id is required")
	}
	if f.Mode != FormModeCreate && f.Mode != FormModeList {
		return fmt.Errorf("invalid mode %q", f.Mode)
	}
	if len(f.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	seen := make(map[string]bool, len(f.Fields))
	for i := range f.Fields {
		fd := &f.Fields[i]
		if err := fd.Validate(); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		if seen[fd.PropertyID] {
			return fmt.Errorf("field %d: duplicate property %q", i, fd.PropertyID)
		}
		seen[fd.PropertyID] = true
	}
	for i := range f.Sorts {
		if err := f.Sorts[i].Validate(); err != nil {
			return fmt.Errorf("sort %d: %w", i, err)
		}
	}
	return nil
}

// FieldDefinition configures one form field bound to a database property.
// Fields are referenced by property ID, which is stable across property
// renames in Notion.
type FieldDefinition struct {
	PropertyID   string              `json:"property_id" yaml:"property"`
	PropertyType notion.PropertyType `json:"property_type" yaml:"type"`
	Label        string              `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder  string              `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText     string              `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	Required     bool                `json:"required,omitempty" yaml:"required,omitempty"`
	Editable     *bool               `json:"editable,omitempty" yaml:"editable,omitempty"` // nil means editable
	Visible      *bool               `json:"visible,omitempty" yaml:"visible,omitempty"`   // nil means visible
	ShowInList   *bool               `json:"show_in_list,omitempty" yaml:"show_in_list,omitempty"`
	Default      *DefaultValue       `json:"default,omitempty" yaml:"default,omitempty"`
	Validation   *Validation         `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// IsEditable reports whether visitors may write this field. Read-only
// property types are never editable.
func (fd *FieldDefinition) IsEditable() bool {
	if fd.PropertyType.ReadOnly() {
		return false
	}
	return fd.Editable == nil || *fd.Editable
}

// IsVisible reports whether the field shows up on the rendered form.
func (fd *FieldDefinition) IsVisible() bool {
	return fd.Visible == nil || *fd.Visible
}

// InList reports whether the field shows up in list-mode rows.
func (fd *FieldDefinition) InList() bool {
	return fd.ShowInList == nil || *fd.ShowInList
}

// Validate checks that the field definition is well-formed.
func (fd *FieldDefinition) Validate() error {
	if fd.PropertyID == "" {
		return errors.New("property_id is required")
	}
	if fd.PropertyType == "" {
		return errors.New("property_type is required")
	}
	if fd.Required && fd.PropertyType.ReadOnly() {
		return fmt.Errorf("read-only property type %q cannot be required", fd.PropertyType)
	}
	if fd.Default != nil {
		if err := fd.Default.Validate(); err != nil {
			return err
		}
	}
	if fd.Validation != nil {
		if err := fd.Validation.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Default value kinds.
const (
	DefaultStatic   = "static"
	DefaultFunction = "function"
	DefaultFormula  = "formula"
)

// Default value functions, resolved at render time.
const (
	FuncToday       = "today"
	FuncNow         = "now"
	FuncCurrentUser = "current_user"
)

// DefaultValue pre-fills a field when the form is rendered.
type DefaultValue struct {
	Kind       string `json:"kind" yaml:"kind"`
	Value      any    `json:"value,omitempty" yaml:"value,omitempty"`
	Function   string `json:"function,omitempty" yaml:"function,omitempty"`
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// Validate checks that the default value is well-formed.
func (d *DefaultValue) Validate() error {
	switch d.Kind {
	case DefaultStatic:
		return nil
	case DefaultFunction:
		switch d.Function {
		case FuncToday, FuncNow, FuncCurrentUser:
			return nil
		}
		return fmt.Errorf("unknown default function %q", d.Function)
	case DefaultFormula:
		if d.Expression == "" {
			return errors.New("formula default requires an expression")
		}
		return nil
	}
	return fmt.Errorf("unknown default kind %q", d.Kind)
}

// Validation constrains submitted values for one field.
type Validation struct {
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Validate checks that the validation rules themselves are well-formed.
func (v *Validation) Validate() error {
	if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
		return errors.New("min must not exceed max")
	}
	if v.Pattern != "" {
		if _, err := regexp.Compile(v.Pattern); err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
	}
	return nil
}

// SortRule orders list-mode rows. Property references a field's property ID;
// Timestamp may name created_time or last_edited_time instead.
type SortRule struct {
	Property  string `json:"property,omitempty" yaml:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Direction string `json:"direction" yaml:"direction"`
}

// Validate checks that the sort rule is well-formed.
func (s *SortRule) Validate() error {
	if s.Property == "" && s.Timestamp == "" {
		return errors.New("property or timestamp is required")
	}
	if s.Timestamp != "" && s.Timestamp != "created_time" && s.Timestamp != "last_edited_time" {
		return fmt.Errorf("invalid timestamp %q", s.Timestamp)
	}
	if s.Direction != "ascending" && s.Direction != "descending" {
		return fmt.Errorf("invalid direction %q", s.Direction)
	}
	return nil
}

// FormService stores form configurations.
type FormService struct {
	table    *jsonldb.Table[*FormConfig]
	bySlug   *jsonldb.UniqueIndex[string, *FormConfig]
	maxForms int
}

// NewFormService creates a new form service. maxForms caps the total number
// of forms; 0 disables the limit.
func NewFormService(tablePath string, maxForms int) (*FormService, error) {
	table, err := jsonldb.NewTable[*FormConfig](tablePath)
	if err != nil {
		return nil, err
	}
	bySlug := jsonldb.NewUniqueIndex(table, func(f *FormConfig) string { return f.Slug })
	return &FormService{table: table, bySlug: bySlug, maxForms: maxForms}, nil
}

// Create validates and stores a new form. The ID and timestamps are assigned
// here.
func (s *FormService) Create(form *FormConfig) (*FormConfig, error) {
	if s.maxForms > 0 && s.table.Len() >= s.maxForms {
		return nil, ErrFormQuotaExceeded
	}
	stored := form.Clone()
	stored.ID = ksid.NewID()
	now := storage.Now()
	stored.Created = now
	stored.Modified = now
	if err := stored.Validate(); err != nil {
		return nil, err
	}
	if s.bySlug.Has(stored.Slug) {
		return nil, ErrSlugTaken
	}
	if err := s.table.Append(stored); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

// Get retrieves a form by ID.
func (s *FormService) Get(id ksid.ID) (*FormConfig, error) {
	form := s.table.Get(id)
	if form == nil {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// GetBySlug retrieves a form by its public slug. O(1) via index.
func (s *FormService) GetBySlug(slug string) (*FormConfig, error) {
	form := s.bySlug.Get(slug)
	if form == nil {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// All returns an iterator over all forms.
func (s *FormService) All() iter.Seq[*FormConfig] {
	return s.table.All()
}

// Len returns the number of forms.
func (s *FormService) Len() int {
	return s.table.Len()
}

// Modify atomically modifies a form and bumps the Modified stamp.
func (s *FormService) Modify(id ksid.ID, fn func(form *FormConfig) error) (*FormConfig, error) {
	return s.table.Modify(id, func(form *FormConfig) error {
		prevSlug := form.Slug
		if err := fn(form); err != nil {
			return err
		}
		if err := form.Validate(); err != nil {
			return err
		}
		if form.Slug != prevSlug && s.bySlug.Has(form.Slug) {
			return ErrSlugTaken
		}
		form.Modified = storage.Now()
		return nil
	})
}

// Delete removes a form.
func (s *FormService) Delete(id ksid.ID) error {
	return s.table.Delete(id)
}

var (
	// ErrFormNotFound is returned when a form lookup misses.
	ErrFormNotFound = errors.New("form not found")
	// ErrSlugTaken is returned when a slug is already in use.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrFormQuotaExceeded is returned when the server form quota is reached.
	ErrFormQuotaExceeded = errors.New("maximum number of forms exceeded")
)
