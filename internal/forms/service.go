// Orchestrates render, submit, list and update flows against Notion.

package forms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/realsalbednarz/notion-form-sub000/internal/notion"
)

// NotionClient is the subset of the Notion API the submission pipeline needs.
type NotionClient interface {
	GetDatabase(ctx context.Context, id string) (*notion.Database, error)
	QueryDatabaseAll(ctx context.Context, databaseID string, opts *notion.QueryOptions) ([]notion.Page, error)
	CreatePage(ctx context.Context, databaseID string, properties map[string]notion.PropertyPayload) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]notion.PropertyPayload) (*notion.Page, error)
}

// Service runs form flows against a Notion database. It holds no state of
// its own; form configurations come from the caller.
type Service struct {
	client  NotionClient
	log     *slog.Logger
	maxRows int
}

// NewService creates a new form flow service. maxRows caps list-mode results;
// 0 disables the cap.
func NewService(client NotionClient, logger *slog.Logger, maxRows int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, log: logger, maxRows: maxRows}
}

// RenderedField is one field of the public form model.
type RenderedField struct {
	PropertyID  string   `json:"property_id"`
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	HelpText    string   `json:"help_text,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Editable    bool     `json:"editable"`
	Options     []string `json:"options,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// RenderedForm is the public form model served to visitors.
type RenderedForm struct {
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Mode         FormMode        `json:"mode"`
	SubmitLabel  string          `json:"submit_label,omitempty"`
	Confirmation string          `json:"confirmation,omitempty"`
	Fields       []RenderedField `json:"fields"`
}

// Row is one decoded database page in list mode.
type Row struct {
	PageID string                         `json:"page_id"`
	Values map[string]notion.DecodedValue `json:"values"`
}

// Render builds the public form model: visible fields with labels, select
// options from the live schema, and resolved defaults. Fields whose property
// no longer exists in the database are skipped with a warning.
func (s *Service) Render(ctx context.Context, form *FormConfig, viewer string) (*RenderedForm, error) {
	db, err := s.client.GetDatabase(ctx, form.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch database schema: %w", err)
	}
	schema := notion.NewSchemaIndex(db)
	now := time.Now()

	rendered := &RenderedForm{
		Slug:         form.Slug,
		Name:         form.Name,
		Mode:         form.Mode,
		SubmitLabel:  form.SubmitLabel,
		Confirmation: form.Confirmation,
	}
	for i := range form.Fields {
		fd := &form.Fields[i]
		if !fd.IsVisible() {
			continue
		}
		prop, ok := schema.Property(fd.PropertyID)
		if !ok {
			s.log.Warn("skipping field: property missing from database",
				"form", form.Slug, "property_id", fd.PropertyID)
			continue
		}
		label := fd.Label
		if label == "" {
			label = prop.Name
		}
		rendered.Fields = append(rendered.Fields, RenderedField{
			PropertyID:  fd.PropertyID,
			Type:        string(fd.PropertyType),
			Label:       label,
			Placeholder: fd.Placeholder,
			HelpText:    fd.HelpText,
			Required:    fd.Required,
			Editable:    fd.IsEditable(),
			Options:     propertyOptions(prop),
			Default:     ResolveDefault(fd, viewer, now),
		})
	}
	return rendered, nil
}

// propertyOptions extracts selectable option names from the schema.
func propertyOptions(prop *notion.DBProperty) []string {
	var opts []notion.SelectOption
	switch {
	case prop.Select != nil:
		opts = prop.Select.Options
	case prop.MultiSelect != nil:
		opts = prop.MultiSelect.Options
	case prop.Status != nil:
		opts = prop.Status.Options
	default:
		return nil
	}
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		names = append(names, o.Name)
	}
	return names
}

// Submit validates values and creates a new page in the form's database.
func (s *Service) Submit(ctx context.Context, form *FormConfig, values map[string]any) (*notion.Page, error) {
	if form.Mode != FormModeCreate {
		return nil, ErrWrongMode
	}
	if verr := ValidateValues(form, values); verr != nil {
		return nil, verr
	}
	properties, err := s.encodeValues(ctx, form, values)
	if err != nil {
		return nil, err
	}
	page, err := s.client.CreatePage(ctx, form.DatabaseID, properties)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return page, nil
}

// Update validates values and patches an existing page. Only list-mode forms
// may update rows.
func (s *Service) Update(ctx context.Context, form *FormConfig, pageID string, values map[string]any) (*notion.Page, error) {
	if form.Mode != FormModeList {
		return nil, ErrWrongMode
	}
	if verr := ValidateValues(form, values); verr != nil {
		return nil, verr
	}
	properties, err := s.encodeValues(ctx, form, values)
	if err != nil {
		return nil, err
	}
	page, err := s.client.UpdatePage(ctx, pageID, properties)
	if err != nil {
		return nil, fmt.Errorf("failed to update page: %w", err)
	}
	return page, nil
}

// encodeValues maps submitted values to Notion write payloads keyed by
// property name. Fields whose property vanished from the schema are skipped
// with a warning; non-editable fields and omitted values never reach the
// payload.
func (s *Service) encodeValues(ctx context.Context, form *FormConfig, values map[string]any) (map[string]notion.PropertyPayload, error) {
	db, err := s.client.GetDatabase(ctx, form.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch database schema: %w", err)
	}
	schema := notion.NewSchemaIndex(db)

	properties := make(map[string]notion.PropertyPayload)
	for i := range form.Fields {
		fd := &form.Fields[i]
		if !fd.IsEditable() {
			continue
		}
		name, ok := schema.Name(fd.PropertyID)
		if !ok {
			s.log.Warn("skipping field: property missing from database",
				"form", form.Slug, "property_id", fd.PropertyID)
			continue
		}
		payload, ok := notion.Encode(fd.PropertyType, values[fd.PropertyID])
		if !ok {
			continue
		}
		properties[name] = payload
	}
	if len(properties) == 0 {
		return nil, ErrNothingToWrite
	}
	return properties, nil
}

// List queries the form's database with its configured filters and sorts and
// decodes the rows visitors may see.
func (s *Service) List(ctx context.Context, form *FormConfig) ([]Row, error) {
	if form.Mode != FormModeList {
		return nil, ErrWrongMode
	}
	db, err := s.client.GetDatabase(ctx, form.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch database schema: %w", err)
	}
	schema := notion.NewSchemaIndex(db)

	opts := &notion.QueryOptions{
		Filter: notion.CompileFilter(form.Filters),
		Sorts:  s.notionSorts(form, schema),
	}
	pages, err := s.client.QueryDatabaseAll(ctx, form.DatabaseID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	if s.maxRows > 0 && len(pages) > s.maxRows {
		pages = pages[:s.maxRows]
	}

	rows := make([]Row, 0, len(pages))
	for _, page := range pages {
		row := Row{PageID: page.ID, Values: make(map[string]notion.DecodedValue)}
		for i := range form.Fields {
			fd := &form.Fields[i]
			if !fd.InList() {
				continue
			}
			pv, _ := schema.ValueByID(&page, fd.PropertyID)
			row.Values[fd.PropertyID] = notion.Decode(fd.PropertyType, pv)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// notionSorts translates sort rules, resolving property IDs to names. Rules
// for vanished properties are dropped with a warning.
func (s *Service) notionSorts(form *FormConfig, schema *notion.SchemaIndex) []notion.Sort {
	var sorts []notion.Sort
	for i := range form.Sorts {
		rule := &form.Sorts[i]
		sort := notion.Sort{Direction: rule.Direction}
		if rule.Timestamp != "" {
			sort.Timestamp = rule.Timestamp
		} else {
			name, ok := schema.Name(rule.Property)
			if !ok {
				s.log.Warn("skipping sort: property missing from database",
					"form", form.Slug, "property_id", rule.Property)
				continue
			}
			sort.Property = name
		}
		sorts = append(sorts, sort)
	}
	return sorts
}

var (
	// ErrWrongMode is returned when an operation does not match the form's mode.
	ErrWrongMode = errors.New("operation not supported by form mode")
	// ErrNothingToWrite is returned when no submitted value survived encoding.
	ErrNothingToWrite = errors.New("no writable values in submission")
)
