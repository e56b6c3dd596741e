// Package dsl parses the textual pipeline language into validated commands.
//
// Pipeline format (CMS Pipelines style):
//
//	PIPE FILTER 18,10 = "SALES"
//	   | SELECT 0,8,0; 28,8,8
//	   | TAKE 10 ?
//
// Rules:
//
//   - `PIPE` starts the pipeline, followed by the first stage on the same line.
//   - A leading `|` marks a continuation line holding the next stage.
//   - A trailing `?` optionally terminates the pipeline.
//   - Lines starting with `#` are comments; blank lines are ignored.
//
// Supported stages:
//
//	FILTER pos,len = "value"     keep records where the field equals value
//	FILTER pos,len != "value"    drop records where the field equals value
//	SELECT s,l,d; s,l,d; ...     copy fields into new positions
//	TAKE n                       keep the first n records
//	SKIP n                       skip the first n records
//	DEDUP pos,len                keep the first record per distinct key field
//	SORT pos,len [DESC]          buffer all records, emit sorted by key field
package dsl

import "fmt"

// Kind identifies a command variant.
type Kind string

const (
	KindFilterEq Kind = "filter_eq"
	KindFilterNe Kind = "filter_ne"
	KindSelect   Kind = "select"
	KindTake     Kind = "take"
	KindSkip     Kind = "skip"
	KindDedup    Kind = "dedup"
	KindSort     Kind = "sort"
)

// FieldSpec is one SELECT clause: copy Len bytes from Src to Dst.
type FieldSpec struct {
	Src int
	Len int
	Dst int
}

// Command is a parsed, validated pipeline instruction. Exactly the fields
// relevant to Kind are populated; the rest stay at their zero values. Commands
// are immutable once produced by Parse and compile 1:1 into pipeline stages.
type Command struct {
	Kind Kind

	// FilterEq/FilterNe, Dedup, Sort: key field.
	Pos int
	Len int

	// FilterEq/FilterNe: comparison value.
	Value string

	// Select: ordered field copies.
	Fields []FieldSpec

	// Take/Skip: record count.
	N int

	// Sort: descending order.
	Desc bool
}

// Label returns the human-readable stage label used in traces and the
// debugger stage list, e.g. `FILTER 18,10 = "SALES"`.
func (c Command) Label() string {
	switch c.Kind {
	case KindFilterEq:
		return fmt.Sprintf("FILTER %d,%d = %q", c.Pos, c.Len, c.Value)
	case KindFilterNe:
		return fmt.Sprintf("FILTER %d,%d != %q", c.Pos, c.Len, c.Value)
	case KindSelect:
		s := "SELECT"
		for i, f := range c.Fields {
			sep := " "
			if i > 0 {
				sep = "; "
			}
			s += fmt.Sprintf("%s%d,%d,%d", sep, f.Src, f.Len, f.Dst)
		}
		return s
	case KindTake:
		return fmt.Sprintf("TAKE %d", c.N)
	case KindSkip:
		return fmt.Sprintf("SKIP %d", c.N)
	case KindDedup:
		return fmt.Sprintf("DEDUP %d,%d", c.Pos, c.Len)
	case KindSort:
		if c.Desc {
			return fmt.Sprintf("SORT %d,%d DESC", c.Pos, c.Len)
		}
		return fmt.Sprintf("SORT %d,%d", c.Pos, c.Len)
	}
	return string(c.Kind)
}
