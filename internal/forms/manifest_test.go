package forms

import (
	"strings"
	"testing"
)

const sampleManifest = `version: 1
forms:
  - slug: contact
    name: Contact us
    database_id: db-1
    mode: create
    submit_label: Send
    fields:
      - property: title
        type: title
        required: true
      - property: "em%40l"
        type: email
        label: Your email
      - property: qty
        type: number
        validation:
          min: 1
          max: 10
    filters:
      - property: st%40t
        type: status
        operator: equals
        value: Open
`

func TestParseManifestBytes(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := ParseManifestBytes([]byte(sampleManifest))
		if err != nil {
			t.Fatalf("ParseManifestBytes: %v", err)
		}
		if len(m.Forms) != 1 {
			t.Fatalf("forms = %d", len(m.Forms))
		}
		form := m.Forms[0]
		if form.Slug != "contact" || form.Mode != FormModeCreate {
			t.Errorf("form = %+v", form)
		}
		if len(form.Fields) != 3 || form.Fields[1].PropertyID != "em%40l" {
			t.Errorf("fields = %+v", form.Fields)
		}
		if form.Fields[2].Validation == nil || *form.Fields[2].Validation.Max != 10 {
			t.Errorf("validation = %+v", form.Fields[2].Validation)
		}
		if len(form.Filters) != 1 || form.Filters[0].Value != "Open" {
			t.Errorf("filters = %+v", form.Filters)
		}
	})

	t.Run("rejects wrong version", func(t *testing.T) {
		bad := strings.Replace(sampleManifest, "version: 1", "version: 2", 1)
		if _, err := ParseManifestBytes([]byte(bad)); err == nil {
			t.Error("wrong version accepted")
		}
	})

	t.Run("rejects invalid form", func(t *testing.T) {
		bad := strings.Replace(sampleManifest, "mode: create", "mode: wiki", 1)
		if _, err := ParseManifestBytes([]byte(bad)); err == nil {
			t.Error("invalid mode accepted")
		}
	})

	t.Run("rejects duplicate slugs", func(t *testing.T) {
		m, err := ParseManifestBytes([]byte(sampleManifest))
		if err != nil {
			t.Fatalf("ParseManifestBytes: %v", err)
		}
		m.Forms = append(m.Forms, m.Forms[0])
		if err := m.Validate(); err == nil {
			t.Error("duplicate slug accepted")
		}
	})

	t.Run("round trips through export", func(t *testing.T) {
		m, err := ParseManifestBytes([]byte(sampleManifest))
		if err != nil {
			t.Fatalf("ParseManifestBytes: %v", err)
		}
		data, err := ExportManifest(m.Forms)
		if err != nil {
			t.Fatalf("ExportManifest: %v", err)
		}
		again, err := ParseManifestBytes(data)
		if err != nil {
			t.Fatalf("reparse: %v", err)
		}
		if len(again.Forms) != 1 || again.Forms[0].Slug != "contact" {
			t.Errorf("forms = %+v", again.Forms)
		}
		if again.Forms[0].Fields[0].PropertyType != m.Forms[0].Fields[0].PropertyType {
			t.Error("field type lost in round trip")
		}
	})
}
