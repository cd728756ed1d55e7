package jsonldb

import (
	"testing"
	"time"
)

func TestSchemaFromType(t *testing.T) {
	type sample struct {
		Name    string         `json:"name" jsonschema:"description=Display name"`
		Age     int            `json:"age,omitempty"`
		Active  bool           `json:"active"`
		Born    time.Time      `json:"born"`
		Tags    []string       `json:"tags,omitempty"`
		Blob    []byte         `json:"blob,omitempty"`
		Ignored string         `json:"-"`
		Extra   map[string]any `json:"extra,omitempty"`
	}

	columns, err := schemaFromType[*sample]()
	if err != nil {
		t.Fatalf("schemaFromType: %v", err)
	}
	byName := map[string]column{}
	for _, col := range columns {
		byName[col.Name] = col
	}
	if _, ok := byName["Ignored"]; ok {
		t.Error("json:\"-\" field should be excluded")
	}
	want := map[string]columnType{
		"name":   columnTypeText,
		"age":    columnTypeNumber,
		"active": columnTypeBool,
		"born":   columnTypeDate,
		"tags":   columnTypeJSONB,
		"blob":   columnTypeBlob,
		"extra":  columnTypeJSONB,
	}
	for name, typ := range want {
		col, ok := byName[name]
		if !ok {
			t.Errorf("column %q missing", name)
			continue
		}
		if col.Type != typ {
			t.Errorf("column %q type = %q, want %q", name, col.Type, typ)
		}
	}
	if byName["name"].Description != "Display name" {
		t.Errorf("description = %q", byName["name"].Description)
	}
	if !byName["name"].Required || byName["age"].Required {
		t.Errorf("required flags: name=%v age=%v", byName["name"].Required, byName["age"].Required)
	}

	if _, err := schemaFromType[int](); err == nil {
		t.Error("non-struct type should fail")
	}
}

func TestSchemaHeaderValidate(t *testing.T) {
	h := &schemaHeader{}
	if err := h.Validate(); err == nil {
		t.Error("missing version should fail")
	}
	h.Version = currentVersion
	h.Columns = []column{{Name: "", Type: columnTypeText}}
	if err := h.Validate(); err == nil {
		t.Error("unnamed column should fail")
	}
	h.Columns = []column{{Name: "x", Type: columnTypeText}}
	if err := h.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
