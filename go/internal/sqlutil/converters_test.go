package sqlutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNullUUIDRoundTrip(t *testing.T) {
	if got := FromNullUUID(ToNullUUID(nil)); got != nil {
		t.Fatalf("nil uuid came back as %v", got)
	}
	id := uuid.New()
	got := FromNullUUID(ToNullUUID(&id))
	if got == nil || *got != id {
		t.Fatalf("got %v, want %s", got, id)
	}
}

func TestFromSqlTimeIsUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	in := time.Date(2024, 3, 1, 14, 0, 0, 0, loc)
	got := FromSqlTime(ToSqlTime(&in))
	if got == nil || got.Location() != time.UTC || !got.Equal(in) {
		t.Fatalf("got %v", got)
	}
}

func TestNullJSON(t *testing.T) {
	raw, err := ToNullJSON(nil)
	if err != nil || raw.Valid {
		t.Fatalf("nil value: %+v %v", raw, err)
	}

	raw, err = ToNullJSON(map[string]any{"n": 9007199254740993, "s": "x"})
	if err != nil {
		t.Fatalf("ToNullJSON: %v", err)
	}
	out, err := FromNullJSON(raw)
	if err != nil {
		t.Fatalf("FromNullJSON: %v", err)
	}
	m := out.(map[string]any)
	if m["n"] != json.Number("9007199254740993") || m["s"] != "x" {
		t.Fatalf("decoded %v", m)
	}
}
