package pipeline

import "recpipe/internal/record"

// State is the RAT executor's position in its lifecycle. The executor is
// forward-only: no transition regresses, and a finished run cannot be
// restarted (construct a new executor instead, since stage counters are not
// restorable).
type State string

const (
	StateNotStarted State = "not_started"
	StateConsuming  State = "consuming_input"
	StateFlushing   State = "flushing"
	StateDone       State = "done"
)

// StepKind tags the result of one Step call.
type StepKind int

const (
	// StepRecord: one input record was fed through every stage and a
	// RecordTrace produced.
	StepRecord StepKind = iota
	// StepFlush: one stage drained its buffer and a FlushTrace was produced.
	StepFlush
	// StepNone: the run is complete; no trace was produced.
	StepNone
)

// StepResult is the outcome of a single Step. Exactly one of Record or Flush
// is non-nil for StepRecord/StepFlush; both are nil for StepNone.
type StepResult struct {
	Kind   StepKind
	Record *RecordTrace
	Flush  *FlushTrace
}

// RatExecutor replays a compiled pipeline one input record at a time,
// capturing the contents of every pipe point at every step. It is driven by
// the caller: each Step consumes one input record or performs one flush, then
// returns control. Suspension is purely logical; partially-stepped state
// remains valid and inspectable indefinitely.
type RatExecutor struct {
	stages []*stage
	input  []record.Record

	state   State
	next    int // next input record index
	flushAt int // next stage index to examine during flushing

	trace RatDebugTrace
}

// StartRat begins a RAT run of the pipeline over input. The executor owns a
// fresh stage slice; it shares stage semantics with the batch executor but
// never live instances.
func (p *Pipeline) StartRat(input []record.Record) *RatExecutor {
	recs := make([]record.Record, len(input))
	copy(recs, input)
	return &RatExecutor{
		stages: p.newStages(),
		input:  recs,
		state:  StateNotStarted,
		trace:  RatDebugTrace{StageNames: p.StageNames()},
	}
}

// State returns the executor's current lifecycle state.
func (e *RatExecutor) State() State {
	return e.state
}

// CurrentStep returns the number of steps performed so far. Step 0 means
// nothing has been processed; after n steps, trace entry n-1 is the one just
// produced.
func (e *RatExecutor) CurrentStep() int {
	return e.trace.Steps()
}

// Trace returns the debug trace accumulated so far. The returned value shares
// the executor's trace slices; callers must not mutate it while stepping.
func (e *RatExecutor) Trace() RatDebugTrace {
	return e.trace
}

// RunAll steps the executor to completion and returns the full trace.
func (e *RatExecutor) RunAll() RatDebugTrace {
	for e.Step().Kind != StepNone {
	}
	return e.trace
}

// Step advances the run by exactly one unit of work: one input record fed
// through the full stage sequence, or, after input exhaustion, one stage's
// buffered output drained and propagated downstream. It returns the trace
// entry produced, or a StepNone result once the run is Done.
func (e *RatExecutor) Step() StepResult {
	switch e.state {
	case StateDone:
		return StepResult{Kind: StepNone}

	case StateNotStarted:
		if len(e.input) == 0 {
			// Nothing to consume and stages cannot have buffered anything.
			e.state = StateDone
			return StepResult{Kind: StepNone}
		}
		e.state = StateConsuming
		return e.stepRecord()

	case StateConsuming:
		return e.stepRecord()

	case StateFlushing:
		return e.stepFlush()
	}
	return StepResult{Kind: StepNone}
}

// stepRecord feeds input[next] through every stage, recording the record set
// present at every pipe point.
func (e *RatExecutor) stepRecord() StepResult {
	rec := e.input[e.next]
	e.next++

	points := make([][]record.Record, len(e.stages)+1)
	points[0] = []record.Record{rec}
	cascade(e.stages, 0, points[0], func(stageIdx int, out []record.Record) {
		points[stageIdx+1] = out
	})

	e.trace.RecordTraces = append(e.trace.RecordTraces, RecordTrace{PipePoints: points})

	if e.next >= len(e.input) {
		if e.anyBuffered(0) {
			e.state = StateFlushing
		} else {
			e.state = StateDone
		}
	}

	rt := &e.trace.RecordTraces[len(e.trace.RecordTraces)-1]
	return StepResult{Kind: StepRecord, Record: rt}
}

// stepFlush drains the next stage (in ascending index order) holding buffered
// records and propagates the drain through the downstream stages. Stages with
// nothing buffered contribute no flush trace.
func (e *RatExecutor) stepFlush() StepResult {
	for e.flushAt < len(e.stages) && !e.stages[e.flushAt].buffered() {
		e.flushAt++
	}
	if e.flushAt >= len(e.stages) {
		e.state = StateDone
		return StepResult{Kind: StepNone}
	}

	origin := e.flushAt
	drained := e.stages[origin].flush()
	e.flushAt++

	points := make([][]record.Record, len(e.stages)-origin)
	points[0] = drained
	cascade(e.stages, origin+1, drained, func(stageIdx int, out []record.Record) {
		points[stageIdx-origin] = out
	})

	e.trace.FlushTraces = append(e.trace.FlushTraces, FlushTrace{
		StageIndex: origin,
		PipePoints: points,
	})

	// A drain can refill a buffering stage further downstream; only stages at
	// or past flushAt can still hold records.
	if !e.anyBuffered(e.flushAt) {
		e.state = StateDone
	}

	ft := &e.trace.FlushTraces[len(e.trace.FlushTraces)-1]
	return StepResult{Kind: StepFlush, Flush: ft}
}

func (e *RatExecutor) anyBuffered(from int) bool {
	for _, st := range e.stages[from:] {
		if st.buffered() {
			return true
		}
	}
	return false
}
