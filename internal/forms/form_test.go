package forms

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/realsalbednarz/notion-form-sub000/internal/notion"
)

func boolPtr(b bool) *bool { return &b }

func validForm() *FormConfig {
	return &FormConfig{
		Slug:       "contact",
		Name:       "Contact us",
		DatabaseID: "db-1",
		Mode:       FormModeCreate,
		Fields: []FieldDefinition{
			{PropertyID: "title", PropertyType: notion.TypeTitle, Required: true},
			{PropertyID: "em%40l", PropertyType: notion.TypeEmail},
		},
	}
}

func newFormService(t *testing.T, maxForms int) *FormService {
	t.Helper()
	svc, err := NewFormService(filepath.Join(t.TempDir(), "forms.jsonl"), maxForms)
	if err != nil {
		t.Fatalf("NewFormService: %v", err)
	}
	return svc
}

func TestFormConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := validForm().Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("rejects bad configs", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*FormConfig)
		}{
			{"empty slug", func(f *FormConfig) { f.Slug = "" }},
			{"uppercase slug", func(f *FormConfig) { f.Slug = "Contact" }},
			{"slug with slash", func(f *FormConfig) { f.Slug = "a/b" }},
			{"missing name", func(f *FormConfig) { f.Name = "" }},
			{"missing database", func(f *FormConfig) { f.DatabaseID = "" }},
			{"bad mode", func(f *FormConfig) { f.Mode = "wiki" }},
			{"no fields", func(f *FormConfig) { f.Fields = nil }},
			{"duplicate property", func(f *FormConfig) {
				f.Fields = append(f.Fields, FieldDefinition{PropertyID: "title", PropertyType: notion.TypeTitle})
			}},
			{"field without property", func(f *FormConfig) {
				f.Fields[0].PropertyID = ""
			}},
			{"required read-only field", func(f *FormConfig) {
				f.Fields[0].PropertyType = notion.TypeFormula
			}},
			{"bad default function", func(f *FormConfig) {
				f.Fields[0].Default = &DefaultValue{Kind: DefaultFunction, Function: "yesterday"}
			}},
			{"bad validation pattern", func(f *FormConfig) {
				f.Fields[0].Validation = &Validation{Pattern: "["}
			}},
			{"min above max", func(f *FormConfig) {
				minV, maxV := 10.0, 5.0
				f.Fields[0].Validation = &Validation{Min: &minV, Max: &maxV}
			}},
			{"bad sort direction", func(f *FormConfig) {
				f.Sorts = []SortRule{{Property: "title", Direction: "up"}}
			}},
			{"bad sort timestamp", func(f *FormConfig) {
				f.Sorts = []SortRule{{Timestamp: "modified", Direction: "ascending"}}
			}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				form := validForm()
				tt.mutate(form)
				if err := form.Validate(); err == nil {
					t.Error("Validate should fail")
				}
			})
		}
	})
}

func TestFieldDefinitionFlags(t *testing.T) {
	fd := FieldDefinition{PropertyID: "p", PropertyType: notion.TypeRichText}
	if !fd.IsEditable() || !fd.IsVisible() || !fd.InList() {
		t.Error("defaults should be editable, visible, in list")
	}
	fd.Editable = boolPtr(false)
	fd.Visible = boolPtr(false)
	fd.ShowInList = boolPtr(false)
	if fd.IsEditable() || fd.IsVisible() || fd.InList() {
		t.Error("explicit false flags ignored")
	}

	ro := FieldDefinition{PropertyID: "f", PropertyType: notion.TypeFormula, Editable: boolPtr(true)}
	if ro.IsEditable() {
		t.Error("read-only property type must never be editable")
	}
}

func TestFormService(t *testing.T) {
	t.Run("create assigns id and stamps", func(t *testing.T) {
		svc := newFormService(t, 0)
		form, err := svc.Create(validForm())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if form.ID.IsZero() || form.Created.IsZero() {
			t.Errorf("form = %+v", form)
		}
		got, err := svc.GetBySlug("contact")
		if err != nil || got.ID != form.ID {
			t.Errorf("GetBySlug = %+v, %v", got, err)
		}
	})

	t.Run("rejects duplicate slug", func(t *testing.T) {
		svc := newFormService(t, 0)
		if _, err := svc.Create(validForm()); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := svc.Create(validForm()); !errors.Is(err, ErrSlugTaken) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("enforces form quota", func(t *testing.T) {
		svc := newFormService(t, 1)
		if _, err := svc.Create(validForm()); err != nil {
			t.Fatalf("Create: %v", err)
		}
		second := validForm()
		second.Slug = "other"
		if _, err := svc.Create(second); !errors.Is(err, ErrFormQuotaExceeded) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("modify revalidates and reindexes slug", func(t *testing.T) {
		svc := newFormService(t, 0)
		form, err := svc.Create(validForm())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		updated, err := svc.Modify(form.ID, func(f *FormConfig) error {
			f.Slug = "contact-v2"
			f.Published = true
			return nil
		})
		if err != nil {
			t.Fatalf("Modify: %v", err)
		}
		if !updated.Published || updated.Modified.Before(form.Created) {
			t.Errorf("updated = %+v", updated)
		}
		if _, err := svc.GetBySlug("contact"); !errors.Is(err, ErrFormNotFound) {
			t.Errorf("old slug still resolves: %v", err)
		}
		if _, err := svc.GetBySlug("contact-v2"); err != nil {
			t.Errorf("new slug missing: %v", err)
		}

		if _, err := svc.Modify(form.ID, func(f *FormConfig) error {
			f.Mode = "bogus"
			return nil
		}); err == nil {
			t.Error("invalid modify should fail")
		}
	})

	t.Run("delete frees the slug", func(t *testing.T) {
		svc := newFormService(t, 0)
		form, err := svc.Create(validForm())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := svc.Delete(form.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := svc.Create(validForm()); err != nil {
			t.Errorf("slug not freed: %v", err)
		}
	})
}
