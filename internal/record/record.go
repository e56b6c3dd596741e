// Package record implements the fixed-width 80-byte record used throughout
// the pipeline engine. The width matches the historical punch card format:
// every record is exactly 80 ASCII bytes, space-padded on the right.
//
// Design goals:
//
//  1. Value semantics: a Record is a plain byte array, cheap to copy and
//     byte-for-byte comparable with ==.
//  2. Total field access: field reads and writes clamp to the record bounds
//     and never fail. Mainframe layouts routinely address "filler" regions,
//     so an out-of-range field yields an empty or partial slice, not an error.
//  3. ASCII only: non-ASCII input bytes are replaced with '?' (mirroring the
//     information loss of historical EBCDIC round trips).
package record

import "strings"

// Width is the fixed record width in bytes (punch card width).
const Width = 80

// Record is a fixed-width 80-byte record.
//
// The zero value is NOT a valid blank record (it is all NUL bytes); use New
// or one of the constructors, which produce space-filled records.
type Record struct {
	data [Width]byte
}

// New returns a blank record filled with spaces.
func New() Record {
	var r Record
	for i := range r.data {
		r.data[i] = ' '
	}
	return r
}

// FromString builds a record from s, truncated to 80 bytes or padded with
// spaces if shorter. Non-ASCII bytes are replaced with '?'.
func FromString(s string) Record {
	return FromBytes([]byte(s))
}

// FromBytes builds a record from raw bytes with the same truncate/pad and
// ASCII substitution rules as FromString.
func FromBytes(b []byte) Record {
	r := New()
	n := len(b)
	if n > Width {
		n = Width
	}
	for i := 0; i < n; i++ {
		if b[i] < 0x80 {
			r.data[i] = b[i]
		} else {
			r.data[i] = '?'
		}
	}
	return r
}

// String returns the full 80-byte record text, including trailing spaces.
func (r Record) String() string {
	return string(r.data[:])
}

// Bytes returns a copy of the raw 80 record bytes.
func (r Record) Bytes() []byte {
	b := make([]byte, Width)
	copy(b, r.data[:])
	return b
}

// IsBlank reports whether every byte of the record is a space.
func (r Record) IsBlank() bool {
	for _, b := range r.data {
		if b != ' ' {
			return false
		}
	}
	return true
}

// Field extracts the byte range [pos, pos+length) as a string. The range is
// clamped to the record bounds; a fully out-of-range field yields "".
func (r Record) Field(pos, length int) string {
	start, end := clamp(pos, length)
	if start >= end {
		return ""
	}
	return string(r.data[start:end])
}

// SetField writes value into the byte range [pos, pos+length), returning the
// modified record. The target range is cleared to spaces first; value is
// truncated if longer than the field and non-ASCII bytes become '?'. The
// receiver is not mutated.
func (r Record) SetField(pos, length int, value string) Record {
	start, end := clamp(pos, length)
	if start >= end {
		return r
	}
	for i := start; i < end; i++ {
		r.data[i] = ' '
	}
	for i := 0; i < len(value) && start+i < end; i++ {
		b := value[i]
		if b >= 0x80 {
			b = '?'
		}
		r.data[start+i] = b
	}
	return r
}

// FieldEq reports whether the field at pos/length equals value after trimming
// surrounding spaces on both sides of the comparison.
func (r Record) FieldEq(pos, length int, value string) bool {
	return strings.TrimSpace(r.Field(pos, length)) == strings.TrimSpace(value)
}

// FieldEqExact compares the field byte-for-byte, including padding.
func (r Record) FieldEqExact(pos, length int, value string) bool {
	return r.Field(pos, length) == value
}

// FieldStartsWith reports whether the field, left-trimmed, starts with prefix.
func (r Record) FieldStartsWith(pos, length int, prefix string) bool {
	return strings.HasPrefix(strings.TrimLeft(r.Field(pos, length), " "), prefix)
}

// FieldContains reports whether the raw field contains substr.
func (r Record) FieldContains(pos, length int, substr string) bool {
	return strings.Contains(r.Field(pos, length), substr)
}

func clamp(pos, length int) (start, end int) {
	if pos < 0 {
		pos = 0
	}
	if length < 0 {
		length = 0
	}
	start = pos
	if start > Width {
		start = Width
	}
	end = pos + length
	if end > Width {
		end = Width
	}
	return start, end
}
