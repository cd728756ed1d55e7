package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/maruel/ksid"
)

func TestSubmissionService(t *testing.T) {
	svc, err := NewSubmissionService(filepath.Join(t.TempDir(), "submissions.jsonl"))
	if err != nil {
		t.Fatalf("NewSubmissionService: %v", err)
	}

	formA := ksid.NewID()
	formB := ksid.NewID()

	t.Run("record requires form and page", func(t *testing.T) {
		if _, err := svc.Record(0, "page-1", "", ""); err == nil {
			t.Error("zero form ID should fail")
		}
		if _, err := svc.Record(formA, "", "", ""); err == nil {
			t.Error("empty page ID should fail")
		}
	})

	t.Run("record and iterate by form", func(t *testing.T) {
		if _, err := svc.Record(formA, "page-1", "203.0.113.7", "CH"); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if _, err := svc.Record(formA, "page-2", "203.0.113.8", "FR"); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if _, err := svc.Record(formB, "page-3", "", ""); err != nil {
			t.Fatalf("Record: %v", err)
		}

		count := 0
		for sub := range svc.ByForm(formA) {
			count++
			if sub.FormID != formA {
				t.Errorf("FormID = %s", sub.FormID)
			}
		}
		if count != 2 {
			t.Errorf("ByForm(formA) count = %d", count)
		}
		if svc.Len() != 3 {
			t.Errorf("Len = %d", svc.Len())
		}
	})

	t.Run("count since cutoff", func(t *testing.T) {
		if got := svc.CountSince(formA, time.Hour); got != 2 {
			t.Errorf("CountSince = %d", got)
		}
		if got := svc.CountSince(formB, time.Hour); got != 1 {
			t.Errorf("CountSince(formB) = %d", got)
		}
	})
}
