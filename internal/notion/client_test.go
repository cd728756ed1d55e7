// Tests for the Notion API client.

package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient(t *testing.T) {
	t.Run("sets auth and version headers", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("Authorization = %q", got)
			}
			if got := r.Header.Get("Notion-Version"); got != APIVersion {
				t.Errorf("Notion-Version = %q", got)
			}
			_ = json.NewEncoder(w).Encode(Database{ID: "db-1"})
		}))
		defer srv.Close()

		c := NewClient("secret")
		c.SetBaseURL(srv.URL)
		db, err := c.GetDatabase(context.Background(), "db-1")
		if err != nil {
			t.Fatalf("GetDatabase: %v", err)
		}
		if db.ID != "db-1" {
			t.Errorf("ID = %q", db.ID)
		}
	})

	t.Run("create page keys properties by name", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req CreatePageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if req.Parent.DatabaseID != "db-1" {
				t.Errorf("parent = %+v", req.Parent)
			}
			if _, ok := req.Properties["Name"]; !ok {
				t.Errorf("properties = %v", req.Properties)
			}
			_ = json.NewEncoder(w).Encode(Page{ID: "page-1"})
		}))
		defer srv.Close()

		c := NewClient("secret")
		c.SetBaseURL(srv.URL)
		payload, _ := Encode(TypeTitle, "hello")
		page, err := c.CreatePage(context.Background(), "db-1", map[string]PropertyPayload{"Name": payload})
		if err != nil {
			t.Fatalf("CreatePage: %v", err)
		}
		if page.ID != "page-1" {
			t.Errorf("ID = %q", page.ID)
		}
	})

	t.Run("api errors surface code and message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(Error{Object: "error", Status: 400, Code: "validation_error", Message: "bad filter"})
		}))
		defer srv.Close()

		c := NewClient("secret")
		c.SetBaseURL(srv.URL)
		_, err := c.QueryDatabase(context.Background(), "db-1", nil)
		apiErr, ok := err.(*Error)
		if !ok {
			t.Fatalf("err = %T %v, want *Error", err, err)
		}
		if apiErr.Code != "validation_error" || apiErr.Message != "bad filter" {
			t.Errorf("err = %+v", apiErr)
		}
	})
}
