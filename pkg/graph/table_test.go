package graph

import (
	"encoding/json"
	"testing"
)

func TestNilTable(t *testing.T) {
	var tbl *Table
	if tbl.Len() != 0 || !tbl.Empty() || tbl.HasColumn("id") {
		t.Fatal("nil table must behave as empty and columnless")
	}
	if _, ok := tbl.FirstColumn("id"); ok {
		t.Fatal("nil table has no columns")
	}
}

func TestAsString(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"string", "abc", "abc", true},
		{"bytes", []byte("abc"), "abc", true},
		{"integral float", 3.0, "3", true},
		{"fraction", 2.5, "2.5", true},
		{"json number", json.Number("17"), "17", true},
		{"int", 42, "42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsString(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("AsString(%v) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   int64
		wantOK bool
	}{
		{"nil", nil, 0, false},
		{"int32", int32(7), 7, true},
		{"int64", int64(9), 9, true},
		{"integral float", 4.0, 4, true},
		{"fractional float", 4.5, 0, false},
		{"json number", json.Number("12"), 12, true},
		{"padded string", " 5 ", 5, true},
		{"word", "five", 0, false},
		{"negative", "-3", -3, true},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("AsInt(%v) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAsStrings(t *testing.T) {
	got := AsStrings([]any{"a", nil, 2})
	if len(got) != 2 || got[0] != "a" || got[1] != "2" {
		t.Fatalf("unexpected %v", got)
	}
	if len(AsStrings(nil)) != 0 {
		t.Fatal("nil must give empty slice")
	}
	if got := AsStrings("solo"); len(got) != 1 || got[0] != "solo" {
		t.Fatalf("unexpected %v", got)
	}
}
