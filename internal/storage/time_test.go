package storage

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTime(t *testing.T) {
	t.Run("round trips through JSON", func(t *testing.T) {
		orig := ToTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
		data, err := json.Marshal(orig)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var got Time
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got != orig {
			t.Errorf("got %d, want %d", got, orig)
		}
	})

	t.Run("accepts float timestamps", func(t *testing.T) {
		var got Time
		if err := json.Unmarshal([]byte("1709294400.6"), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got != 1709294401 {
			t.Errorf("got %d", got)
		}
	})

	t.Run("ordering", func(t *testing.T) {
		earlier := Time(100)
		later := Time(200)
		if !later.After(earlier) || !earlier.Before(later) {
			t.Error("ordering broken")
		}
		if !Time(0).IsZero() || earlier.IsZero() {
			t.Error("IsZero broken")
		}
	})
}
