package pipeline

import (
	"iter"

	"recpipe/internal/record"
)

// Records composes the pipeline over input as a lazy record sequence. No
// stage touches record k+1 until the downstream stages have consumed what
// they will of record k; buffering stages (sort) release their records after
// the input is exhausted, in stage order. Memory use is O(1) beyond
// stage-local state.
//
// The returned sequence is single-use: it owns a fresh stage slice and the
// counters inside it.
func (p *Pipeline) Records(input iter.Seq[record.Record]) iter.Seq[record.Record] {
	stages := p.newStages()
	return func(yield func(record.Record) bool) {
		for rec := range input {
			for _, out := range cascade(stages, 0, []record.Record{rec}, nil) {
				if !yield(out) {
					return
				}
			}
		}
		// End of input: drain buffered stages in ascending order, pushing
		// each drain through the remaining downstream stages.
		for i, st := range stages {
			if !st.buffered() {
				continue
			}
			for _, out := range cascade(stages, i+1, st.flush(), nil) {
				if !yield(out) {
					return
				}
			}
		}
	}
}

// Run applies the pipeline to input and returns the full output sequence.
// This is the reference semantics the RAT executor must reproduce exactly.
func (p *Pipeline) Run(input []record.Record) []record.Record {
	out := []record.Record{}
	for rec := range p.Records(sliceSeq(input)) {
		out = append(out, rec)
	}
	return out
}

// Count consumes the pipeline and returns the number of output records.
func (p *Pipeline) Count(input []record.Record) int {
	n := 0
	for range p.Records(sliceSeq(input)) {
		n++
	}
	return n
}

// First returns the first output record, if any. Evaluation stops as soon as
// one record survives the pipeline.
func (p *Pipeline) First(input []record.Record) (record.Record, bool) {
	for rec := range p.Records(sliceSeq(input)) {
		return rec, true
	}
	return record.Record{}, false
}

// Last returns the final output record, if any. The whole input is consumed.
func (p *Pipeline) Last(input []record.Record) (record.Record, bool) {
	var last record.Record
	found := false
	for rec := range p.Records(sliceSeq(input)) {
		last, found = rec, true
	}
	return last, found
}

// Any reports whether any output record satisfies pred, stopping early on the
// first match.
func (p *Pipeline) Any(input []record.Record, pred func(record.Record) bool) bool {
	for rec := range p.Records(sliceSeq(input)) {
		if pred(rec) {
			return true
		}
	}
	return false
}

// All reports whether every output record satisfies pred, stopping early on
// the first failure. An empty output yields true.
func (p *Pipeline) All(input []record.Record, pred func(record.Record) bool) bool {
	for rec := range p.Records(sliceSeq(input)) {
		if !pred(rec) {
			return false
		}
	}
	return true
}

// Fold reduces the pipeline output into an accumulator without materializing
// the intermediate record slices.
func Fold[T any](p *Pipeline, input []record.Record, init T, fn func(T, record.Record) T) T {
	acc := init
	for rec := range p.Records(sliceSeq(input)) {
		acc = fn(acc, rec)
	}
	return acc
}

func sliceSeq(recs []record.Record) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for _, rec := range recs {
			if !yield(rec) {
				return
			}
		}
	}
}
