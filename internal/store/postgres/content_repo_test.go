package postgres

import (
	"reflect"
	"testing"
)

func TestGroupFieldRows(t *testing.T) {
	rows := []itemFieldRow{
		{ItemID: 1, FieldID: "sessions", RowIndex: 0, Subfield: "room", Value: "A"},
		{ItemID: 1, FieldID: "sessions", RowIndex: 0, Subfield: "session_date", Value: "2025-03-01"},
		{ItemID: 1, FieldID: "sessions", RowIndex: 2, Subfield: "session_date", Value: "2025-06-01"},
		{ItemID: 1, FieldID: "sessions", RowIndex: 5, Subfield: "room", Value: "B"},
	}

	got := groupFieldRows(rows)
	want := []map[string]string{
		{"room": "A", "session_date": "2025-03-01"},
		{"session_date": "2025-06-01"},
		{"room": "B"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("groupFieldRows = %v, want %v", got, want)
	}
}

func TestGroupFieldRows_Empty(t *testing.T) {
	if got := groupFieldRows(nil); got != nil {
		t.Fatalf("groupFieldRows(nil) = %v, want nil", got)
	}
}
