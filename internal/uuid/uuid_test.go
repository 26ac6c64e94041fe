package uuid

import (
	"encoding/json"
	"testing"
)

func TestUUID_ScanValueRoundTrip(t *testing.T) {
	id := NewUUID()

	v, err := id.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	b, ok := v.([]byte)
	if !ok || len(b) != 16 {
		t.Fatalf("expected 16 raw bytes, got %T %v", v, v)
	}

	var back UUID
	if err := back.Scan(b); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if back != id {
		t.Errorf("round trip mismatch: %s != %s", back, id)
	}
}

func TestUUID_ScanWrongType(t *testing.T) {
	var u UUID
	err := u.Scan("not-bytes")
	if err == nil || err.Error() != "UUID.Scan: expected []byte, got string" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUUID_JSON(t *testing.T) {
	id := MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	raw, err := json.Marshal(struct {
		ID UUID `json:"id"`
	}{id})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"id":"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"}` {
		t.Errorf("unexpected json %s", raw)
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("nope"); err == nil {
		t.Fatal("expected error for invalid uuid")
	}
	id, err := Parse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.IsNil() {
		t.Error("parsed id should not be nil")
	}
	if !Nil.IsNil() {
		t.Error("Nil should report IsNil")
	}
}
