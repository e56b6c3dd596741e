package pipeline

import "recpipe/internal/record"

// RecordTrace captures one input record's journey through every pipe point.
// PipePoints has exactly StageCount()+1 entries: index 0 is the raw input
// record, index i (i>=1) is the output of stage i-1. A record dropped at
// stage i leaves every pipe point past i empty.
type RecordTrace struct {
	PipePoints [][]record.Record
}

// FlushTrace captures one stage's end-of-input drain. StageIndex names the
// originating stage; PipePoints are relative to it: PipePoints[0] is what the
// stage emitted, PipePoints[k] the output of stage StageIndex+k, extending to
// the end of the pipeline (length = stageCount - StageIndex).
type FlushTrace struct {
	StageIndex int
	PipePoints [][]record.Record
}

// RatDebugTrace is the complete observation record of one RAT run: the record
// traces in input order, then the flush traces in stage order, plus the
// stage labels for display. It is owned by the caller that drove the run and
// is read-only once the executor reaches Done.
type RatDebugTrace struct {
	RecordTraces []RecordTrace
	FlushTraces  []FlushTrace
	StageNames   []string
}

// Output reconstructs the run's final output: the last pipe point of every
// record trace (skipping records that were dropped) followed by the last pipe
// point of every flush trace, in emission order. For any pipeline and input
// this equals the batch executor's output exactly.
func (t *RatDebugTrace) Output() []record.Record {
	out := []record.Record{}
	for _, rt := range t.RecordTraces {
		out = append(out, rt.PipePoints[len(rt.PipePoints)-1]...)
	}
	for _, ft := range t.FlushTraces {
		out = append(out, ft.PipePoints[len(ft.PipePoints)-1]...)
	}
	return out
}

// Steps returns the number of trace entries (record plus flush).
func (t *RatDebugTrace) Steps() int {
	return len(t.RecordTraces) + len(t.FlushTraces)
}
