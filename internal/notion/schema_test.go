// Tests for schema index resolution.

package notion

import "testing"

func testDatabase() *Database {
	return &Database{
		ID: "db-1",
		Properties: map[string]DBProperty{
			"Name":   {ID: "title", Name: "Name", Type: TypeTitle},
			"Status": {ID: "st%40t", Name: "Status", Type: TypeStatus},
			"Count":  {ID: "cnt", Type: TypeNumber},
		},
	}
}

func TestSchemaIndex(t *testing.T) {
	idx := NewSchemaIndex(testDatabase())

	t.Run("resolves name and type by id", func(t *testing.T) {
		name, ok := idx.Name("st%40t")
		if !ok || name != "Status" {
			t.Errorf("Name = %q ok=%v", name, ok)
		}
		typ, ok := idx.Type("st%40t")
		if !ok || typ != TypeStatus {
			t.Errorf("Type = %q ok=%v", typ, ok)
		}
	})

	t.Run("falls back to map key when name is empty", func(t *testing.T) {
		name, ok := idx.Name("cnt")
		if !ok || name != "Count" {
			t.Errorf("Name = %q ok=%v", name, ok)
		}
	})

	t.Run("missing id is a miss not an error", func(t *testing.T) {
		if _, ok := idx.Name("deleted"); ok {
			t.Error("expected miss for unknown property id")
		}
	})

	t.Run("re-keys page values by id", func(t *testing.T) {
		page := &Page{Properties: map[string]PropertyValue{
			"Status": {Type: TypeStatus, Status: &SelectOption{Name: "Open"}},
		}}
		pv, ok := idx.ValueByID(page, "st%40t")
		if !ok || pv.Status.Name != "Open" {
			t.Errorf("ValueByID = %+v ok=%v", pv, ok)
		}
		if _, ok := idx.ValueByID(page, "deleted"); ok {
			t.Error("expected miss for unknown property id")
		}
	})
}
