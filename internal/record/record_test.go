package record

import (
	"strings"
	"testing"
)

/*
TestFromString_PadTruncate verifies the fixed-width construction rules: short
input is space-padded to 80 bytes, long input is truncated, and the result is
always exactly Width bytes.
*/
func TestFromString_PadTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // expected prefix before padding
	}{
		{"empty", "", ""},
		{"short", "HELLO", "HELLO"},
		{"exact", strings.Repeat("x", Width), strings.Repeat("x", Width)},
		{"long", strings.Repeat("y", Width+20), strings.Repeat("y", Width)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.in)
			s := r.String()
			if len(s) != Width {
				t.Fatalf("record length = %d, want %d", len(s), Width)
			}
			if !strings.HasPrefix(s, tt.want) {
				t.Fatalf("record = %q, want prefix %q", s, tt.want)
			}
			if rest := s[len(tt.want):]; strings.Trim(rest, " ") != "" {
				t.Fatalf("padding is not all spaces: %q", rest)
			}
		})
	}
}

/*
TestFromString_NonASCII verifies that bytes outside the ASCII range are
replaced with '?'. A multi-byte UTF-8 character degrades to one '?' per byte.
*/
func TestFromString_NonASCII(t *testing.T) {
	r := FromString("caf\xe9 ok")
	if got := r.Field(0, 7); got != "caf? ok" {
		t.Fatalf("Field = %q, want %q", got, "caf? ok")
	}

	// Two-byte UTF-8 é becomes two '?' bytes.
	r = FromString("café")
	if got := r.Field(0, 5); got != "caf??" {
		t.Fatalf("Field = %q, want %q", got, "caf??")
	}
}

/*
TestField_Clamping verifies that field access is total: out-of-range and
partially-in-range specs clamp to the record bounds instead of failing.
*/
func TestField_Clamping(t *testing.T) {
	r := FromString("ABCDEFGH")

	tests := []struct {
		name        string
		pos, length int
		want        string
	}{
		{"in_range", 2, 3, "CDE"},
		{"zero_length", 4, 0, ""},
		{"past_end", Width + 5, 10, ""},
		{"straddles_end", Width - 2, 10, "  "},
		{"negative_pos", -3, 4, "ABCD"},
		{"negative_length", 2, -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Field(tt.pos, tt.length); got != tt.want {
				t.Fatalf("Field(%d,%d) = %q, want %q", tt.pos, tt.length, got, tt.want)
			}
		})
	}
}

/*
TestSetField verifies write semantics: the target range is cleared to spaces,
the value is truncated to the field, the receiver is never mutated, and
writes past the record end are clamped.
*/
func TestSetField(t *testing.T) {
	orig := FromString("XXXXXXXXXX")

	t.Run("value_semantics", func(t *testing.T) {
		got := orig.SetField(0, 4, "AB")
		if orig.Field(0, 4) != "XXXX" {
			t.Fatalf("receiver mutated: %q", orig.Field(0, 4))
		}
		if got.Field(0, 4) != "AB  " {
			t.Fatalf("SetField result = %q, want %q", got.Field(0, 4), "AB  ")
		}
	})

	t.Run("truncates_long_value", func(t *testing.T) {
		got := orig.SetField(0, 3, "ABCDEF")
		if got.Field(0, 4) != "ABCX" {
			t.Fatalf("SetField result = %q, want %q", got.Field(0, 4), "ABCX")
		}
	})

	t.Run("clamped_at_end", func(t *testing.T) {
		got := New().SetField(Width-2, 10, "ZZZZ")
		if got.Field(Width-2, 2) != "ZZ" {
			t.Fatalf("tail = %q, want %q", got.Field(Width-2, 2), "ZZ")
		}
	})

	t.Run("non_ascii_value", func(t *testing.T) {
		got := New().SetField(0, 4, "a\xffb")
		if got.Field(0, 3) != "a?b" {
			t.Fatalf("field = %q, want %q", got.Field(0, 3), "a?b")
		}
	})
}

/*
TestFieldPredicates covers the comparison helpers: trimmed equality, exact
equality, prefix, and substring.
*/
func TestFieldPredicates(t *testing.T) {
	r := New().SetField(10, 10, "SALES")

	if !r.FieldEq(10, 10, "SALES") {
		t.Errorf("FieldEq should ignore field padding")
	}
	if !r.FieldEq(10, 10, "  SALES  ") {
		t.Errorf("FieldEq should ignore value padding")
	}
	if r.FieldEq(10, 10, "SALE") {
		t.Errorf("FieldEq matched a different value")
	}
	if r.FieldEqExact(10, 10, "SALES") {
		t.Errorf("FieldEqExact should see the trailing field padding")
	}
	if !r.FieldEqExact(10, 10, "SALES     ") {
		t.Errorf("FieldEqExact with exact padding should match")
	}
	if !r.FieldStartsWith(10, 10, "SAL") {
		t.Errorf("FieldStartsWith failed")
	}
	if !r.FieldContains(10, 10, "ALE") {
		t.Errorf("FieldContains failed")
	}
}

/*
TestIsBlank verifies blank detection for constructed records and that the
zero value (all NUL) is not considered blank.
*/
func TestIsBlank(t *testing.T) {
	if !New().IsBlank() {
		t.Errorf("New() should be blank")
	}
	if FromString("x").IsBlank() {
		t.Errorf("non-empty record reported blank")
	}
	var zero Record
	if zero.IsBlank() {
		t.Errorf("zero value (NUL bytes) must not count as blank")
	}
}

/*
TestFromLines_Render verifies the line codec: blank lines and CR are handled
on the way in, trailing spaces are trimmed on the way out, and content
round-trips.
*/
func TestFromLines_Render(t *testing.T) {
	text := "FIRST LINE\r\n\nSECOND  LINE\n\n"
	recs := FromLines(text)
	if len(recs) != 2 {
		t.Fatalf("FromLines = %d records, want 2", len(recs))
	}
	if got := Render(recs); got != "FIRST LINE\nSECOND  LINE" {
		t.Fatalf("Render = %q", got)
	}
}

/*
TestFoldASCII verifies accent folding: decomposable characters map to their
ASCII base letters, and characters with no decomposition pass through.
*/
func TestFoldASCII(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"café", "cafe"},
		{"Škoda Octavia", "Skoda Octavia"},
		{"naïve résumé", "naive resume"},
		{"plain ascii", "plain ascii"},
	}
	for _, tt := range tests {
		if got := FoldASCII(tt.in); got != tt.want {
			t.Errorf("FoldASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
