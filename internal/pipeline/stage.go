// Package pipeline implements the record pipeline engine: the compiler from
// parsed commands to stages, the batch executor, and the record-at-a-time
// (RAT) executor with its step trace model.
//
// Design goals:
//
//  1. One semantics, two granularities. Batch and RAT runs are driven through
//     the same stage cascade, so they cannot diverge: the RAT executor differs
//     only in what it observes, never in what it computes.
//  2. Explicit state. Stages are tagged variants dispatched through a single
//     process switch, not opaque closures, so every piece of stage-local state
//     (counters, dedup keys, sort buffers) is inspectable by the trace model.
//  3. Fresh instances per run. Stage counters are never shared between runs or
//     between the two executors; each run mints its own stage slice.
package pipeline

import (
	"sort"

	"github.com/zeebo/xxh3"

	"recpipe/internal/dsl"
	"recpipe/internal/record"
)

// stage is a single unit of processing over the record stream. It holds the
// immutable parameters compiled from its command plus whatever mutable state
// its kind needs across records within one run.
type stage struct {
	kind  dsl.Kind
	label string

	// filter, dedup, sort: key field.
	pos    int
	length int

	// filter: comparison value; negate inverts the match (FILTER !=).
	value  string
	negate bool

	// select: ordered field copies.
	fields []dsl.FieldSpec

	// take, skip: limit and the running counter.
	limit int
	count int

	// dedup: key hashes already passed through.
	seen map[uint64]struct{}

	// sort: buffered records awaiting flush; desc flips the order.
	buf  []record.Record
	desc bool
}

// process feeds one record through the stage. It returns the resulting record
// and true to pass it downstream, or false when the record is dropped or, for
// a buffering stage, absorbed until flush.
func (s *stage) process(rec record.Record) (record.Record, bool) {
	switch s.kind {
	case dsl.KindFilterEq, dsl.KindFilterNe:
		match := rec.FieldEq(s.pos, s.length, s.value)
		if match != s.negate {
			return rec, true
		}
		return record.Record{}, false

	case dsl.KindSelect:
		out := record.New()
		for _, f := range s.fields {
			out = out.SetField(f.Dst, f.Len, rec.Field(f.Src, f.Len))
		}
		return out, true

	case dsl.KindTake:
		if s.count >= s.limit {
			return record.Record{}, false
		}
		s.count++
		return rec, true

	case dsl.KindSkip:
		if s.count < s.limit {
			s.count++
			return record.Record{}, false
		}
		return rec, true

	case dsl.KindDedup:
		key := xxh3.HashString(rec.Field(s.pos, s.length))
		if _, dup := s.seen[key]; dup {
			return record.Record{}, false
		}
		s.seen[key] = struct{}{}
		return rec, true

	case dsl.KindSort:
		s.buf = append(s.buf, rec)
		return record.Record{}, false
	}

	// Unreachable for compiled stages.
	return record.Record{}, false
}

// buffered reports whether the stage holds records pending release at end of
// input. Only buffering kinds (sort) ever return true.
func (s *stage) buffered() bool {
	return len(s.buf) > 0
}

// flush drains and returns the stage's buffered records in emission order.
// The buffer is left empty; a second flush yields nothing.
func (s *stage) flush() []record.Record {
	if len(s.buf) == 0 {
		return nil
	}
	out := s.buf
	s.buf = nil

	pos, length, desc := s.pos, s.length, s.desc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Field(pos, length), out[j].Field(pos, length)
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}

// cascade pushes recs through stages[from:] in order, invoking observe (when
// non-nil) with each stage's output set. It returns the records surviving the
// whole suffix. Both executors are built on this one function.
func cascade(stages []*stage, from int, recs []record.Record, observe func(stageIdx int, out []record.Record)) []record.Record {
	for i := from; i < len(stages); i++ {
		out := make([]record.Record, 0, len(recs))
		for _, rec := range recs {
			if r, ok := stages[i].process(rec); ok {
				out = append(out, r)
			}
		}
		if observe != nil {
			observe(i, out)
		}
		recs = out
	}
	return recs
}
