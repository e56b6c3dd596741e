package pipeline

import (
	"fmt"

	"recpipe/internal/dsl"
)

// Pipeline is an ordered stage sequence compiled from a command list. It is
// immutable after compilation; each run (batch or RAT) mints its own stage
// instances so no counter state leaks between runs.
type Pipeline struct {
	commands []dsl.Command
	names    []string
}

// CompileError reports a structurally invalid command reaching the compiler.
// Commands produced by dsl.Parse are already validated, so in practice this
// is a defensive boundary.
type CompileError struct {
	Index  int
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("command %d: %s", e.Index, e.Reason)
}

// Compile turns a validated command list into a Pipeline. The mapping is
// fixed and 1:1; the only failure mode is a command whose structure could not
// have come from the parser.
func Compile(commands []dsl.Command) (*Pipeline, error) {
	names := make([]string, 0, len(commands))
	for i, cmd := range commands {
		if err := checkCommand(cmd); err != nil {
			return nil, &CompileError{Index: i, Reason: err.Error()}
		}
		names = append(names, cmd.Label())
	}
	cloned := make([]dsl.Command, len(commands))
	copy(cloned, commands)
	return &Pipeline{commands: cloned, names: names}, nil
}

func checkCommand(cmd dsl.Command) error {
	switch cmd.Kind {
	case dsl.KindFilterEq, dsl.KindFilterNe:
		if cmd.Pos < 0 || cmd.Len < 0 {
			return fmt.Errorf("filter field spec must be non-negative")
		}
	case dsl.KindSelect:
		if len(cmd.Fields) == 0 {
			return fmt.Errorf("select requires at least one field")
		}
		for _, f := range cmd.Fields {
			if f.Src < 0 || f.Len < 0 || f.Dst < 0 {
				return fmt.Errorf("select field spec must be non-negative")
			}
		}
	case dsl.KindTake, dsl.KindSkip:
		if cmd.N < 0 {
			return fmt.Errorf("count must be non-negative")
		}
	case dsl.KindDedup, dsl.KindSort:
		if cmd.Pos < 0 || cmd.Len < 0 {
			return fmt.Errorf("key field spec must be non-negative")
		}
	default:
		return fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
	return nil
}

// StageCount returns the number of stages; a pipeline has StageCount()+1 pipe
// points, with pipe point 0 holding the raw input.
func (p *Pipeline) StageCount() int {
	return len(p.commands)
}

// StageNames returns the human-readable stage labels in stage order.
func (p *Pipeline) StageNames() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// newStages builds fresh stage instances for one run.
func (p *Pipeline) newStages() []*stage {
	stages := make([]*stage, len(p.commands))
	for i, cmd := range p.commands {
		st := &stage{kind: cmd.Kind, label: p.names[i]}
		switch cmd.Kind {
		case dsl.KindFilterEq:
			st.pos, st.length, st.value = cmd.Pos, cmd.Len, cmd.Value
		case dsl.KindFilterNe:
			st.pos, st.length, st.value = cmd.Pos, cmd.Len, cmd.Value
			st.negate = true
		case dsl.KindSelect:
			st.fields = cmd.Fields
		case dsl.KindTake, dsl.KindSkip:
			st.limit = cmd.N
		case dsl.KindDedup:
			st.pos, st.length = cmd.Pos, cmd.Len
			st.seen = make(map[uint64]struct{})
		case dsl.KindSort:
			st.pos, st.length, st.desc = cmd.Pos, cmd.Len, cmd.Desc
		}
		stages[i] = st
	}
	return stages
}
