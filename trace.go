// trace.go — THE CANONICAL TRACE DATA MODEL shared by every execution path.
//
// OVERVIEW
// ========
// This file defines the replayable representation of one program run:
//
//   - `StepKind`       — the closed set of observable event kinds.
//   - `Payload`        — kind-specific structured data for one event.
//   - `ExecutionStep`  — one atomic observable event (1-based, monotonic
//     step number; 1-based source line; full variable snapshot; the
//     output text produced strictly during the step).
//   - `ExecutionTrace` — the ordered step sequence plus derived views:
//     per-variable history, control-flow path, call stack, I/O
//     operations, final state, and a summary record.
//
// Both producers — the probe log parser (probelog.go) and the restricted
// interpreter (interpreter.go) — build traces through the private
// `traceBuilder` in this file, so their output is indistinguishable to a
// consumer. That equivalence is the hard constraint of the design.
//
// IMMUTABILITY & REPLAY
// ---------------------
// A trace is created once per program run and never mutated after
// `seal()`. Replay and rewind operate by indexing into `Steps` or by
// deterministic re-execution from the origin; nothing ever edits a
// produced trace.
//
// INVARIANTS
// ----------
//   - StepNumber is 1-based, strictly monotonic, unique within a trace.
//   - For declaration/assignment/trace_var kinds, the snapshot at step n
//     equals the snapshot at n-1 with exactly the payload's mutation
//     applied. For purely control-flow kinds it is unchanged.
//   - The call stack only grows: `function_enter` pushes and no record
//     ever pops. This preserves the probe wire format's behavior, which
//     has no leave record; it is a recorded decision (see DESIGN.md),
//     not an accident, and it is tested.
package stepscope

import (
	"sort"
	"time"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// StepKind identifies the kind of one observable event.
type StepKind string

const (
	StepVariableDeclaration StepKind = "variable_declaration"
	StepVariableAssignment  StepKind = "variable_assignment"
	StepIfCondition         StepKind = "if_condition"
	StepElseBranch          StepKind = "else_branch"
	StepForLoop             StepKind = "for_loop"
	StepWhileLoop           StepKind = "while_loop"
	StepDoWhileLoop         StepKind = "do_while_loop"
	StepFunctionEnter       StepKind = "function_enter"
	StepFunctionCall        StepKind = "function_call"
	StepInputOperation      StepKind = "input_operation"
	StepOutputOperation     StepKind = "output_operation"
	StepTraceVar            StepKind = "trace_var"
)

// IsControlFlow reports whether the kind belongs to the control-flow path
// view (branches and loop entries).
func (k StepKind) IsControlFlow() bool {
	switch k {
	case StepIfCondition, StepElseBranch, StepForLoop, StepWhileLoop, StepDoWhileLoop:
		return true
	}
	return false
}

// IsMutation reports whether the kind mutates the variable table.
func (k StepKind) IsMutation() bool {
	switch k {
	case StepVariableDeclaration, StepVariableAssignment, StepTraceVar:
		return true
	}
	return false
}

// IsIO reports whether the kind belongs to the I/O operations view.
func (k StepKind) IsIO() bool {
	return k == StepInputOperation || k == StepOutputOperation
}

// Payload carries the kind-specific data of one step. Unused fields stay
// zero; Value uses the invalid zero Value to signal absence.
type Payload struct {
	Name      string   // variable name (mutation kinds) or function name
	VarType   string   // declared/observed type of the variable
	Value     Value    // the value written by a mutation kind
	Condition string   // condition text for branch/loop kinds, e.g. "a > b"
	Taken     bool     // branch/loop condition outcome
	Args      []string // function_call argument texts
	Text      string   // output_operation / input_operation text
}

// ExecutionStep is one atomic observable event of a program run.
type ExecutionStep struct {
	StepNumber  int              // 1-based, monotonic, unique in the trace
	Line        int              // 1-based source line of the event
	Kind        StepKind
	Payload     Payload
	Variables   map[string]Value // every live variable at this step
	OutputDelta string           // output produced strictly during this step
}

// FinalState is the end-of-run view of a sealed trace.
type FinalState struct {
	Variables map[string]Value
	CallStack []string
	Output    string
}

// TraceSummary aggregates a sealed trace. When no wall-clock signal is
// available the per-step estimate is zero; producers with a real elapsed
// duration apportion it evenly across steps.
type TraceSummary struct {
	Counts     map[StepKind]int
	TotalSteps int
	Elapsed    time.Duration
	PerStep    time.Duration
}

// ExecutionTrace is the ordered sequence of steps for one run plus its
// derived views. It is immutable after construction; treat every exported
// field as read-only.
type ExecutionTrace struct {
	Steps []ExecutionStep

	// VariableHistory lists each variable's distinct consecutive values
	// (repeats collapsed). VariableOrder holds first-seen order.
	VariableHistory map[string][]Value
	VariableOrder   []string

	// ControlFlowPath contains only the control-flow-kind steps, in order.
	ControlFlowPath []ExecutionStep

	// CallStack lists active function frames in entry order. It never
	// shrinks (see the file-header invariant).
	CallStack []string

	// IOOperations contains only the input/output-kind steps, in order.
	IOOperations []ExecutionStep

	Final   FinalState
	Summary TraceSummary
}

// StepAt returns the step with the given 1-based number, or nil when out
// of range. Random navigation for replay consumers.
func (t *ExecutionTrace) StepAt(n int) *ExecutionStep {
	if n < 1 || n > len(t.Steps) {
		return nil
	}
	return &t.Steps[n-1]
}

// Len returns the number of steps.
func (t *ExecutionTrace) Len() int { return len(t.Steps) }

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

// traceBuilder accumulates steps and seals them into an ExecutionTrace.
// It owns the per-run mutable state the design note warns about: one
// builder per run, never a process-wide singleton.
type traceBuilder struct {
	steps     []ExecutionStep
	callStack []string
	output    []string // non-probe/raw output fragments, joined at seal
}

func newTraceBuilder() *traceBuilder {
	return &traceBuilder{}
}

// add appends a step, assigning the next monotonic step number. vars must
// already be a private copy (builders snapshot before calling).
func (b *traceBuilder) add(kind StepKind, line int, p Payload, vars map[string]Value, outputDelta string) *ExecutionStep {
	st := ExecutionStep{
		StepNumber:  len(b.steps) + 1,
		Line:        line,
		Kind:        kind,
		Payload:     p,
		Variables:   vars,
		OutputDelta: outputDelta,
	}
	if kind == StepFunctionEnter {
		b.callStack = append(b.callStack, p.Name)
	}
	if outputDelta != "" {
		b.output = append(b.output, outputDelta)
	}
	b.steps = append(b.steps, st)
	return &b.steps[len(b.steps)-1]
}

// appendRaw records program output that did not arrive through a step
// (non-probe lines in a log). It feeds the final concatenated output.
func (b *traceBuilder) appendRaw(text string) {
	if text != "" {
		b.output = append(b.output, text)
	}
}

// seal computes the derived views and freezes the trace. elapsed may be
// zero when the producer has no wall-clock signal.
func (b *traceBuilder) seal(elapsed time.Duration) *ExecutionTrace {
	t := &ExecutionTrace{
		Steps:           b.steps,
		VariableHistory: map[string][]Value{},
		CallStack:       b.callStack,
	}

	for _, st := range b.steps {
		if st.Kind.IsControlFlow() {
			t.ControlFlowPath = append(t.ControlFlowPath, st)
		}
		if st.Kind.IsIO() {
			t.IOOperations = append(t.IOOperations, st)
		}
		for _, name := range sortedVarNames(st.Variables) {
			hist, seen := t.VariableHistory[name]
			if !seen {
				t.VariableOrder = append(t.VariableOrder, name)
			}
			v := st.Variables[name]
			if len(hist) == 0 || !hist[len(hist)-1].Equal(v) {
				t.VariableHistory[name] = append(hist, v)
			}
		}
	}

	counts := map[StepKind]int{}
	var out string
	for _, frag := range b.output {
		out += frag
	}
	for _, st := range b.steps {
		counts[st.Kind]++
	}
	t.Summary = TraceSummary{
		Counts:     counts,
		TotalSteps: len(b.steps),
		Elapsed:    elapsed,
	}
	if len(b.steps) > 0 && elapsed > 0 {
		t.Summary.PerStep = elapsed / time.Duration(len(b.steps))
	}

	t.Final = b.finalState(out)
	return t
}

func (b *traceBuilder) finalState(out string) FinalState {
	final := FinalState{CallStack: b.callStack, Output: out}
	if n := len(b.steps); n > 0 {
		final.Variables = snapshotVars(b.steps[n-1].Variables)
	} else {
		final.Variables = map[string]Value{}
	}
	return final
}

// sortedVarNames gives a deterministic iteration order over a snapshot.
// Snapshot key order is semantically irrelevant, so sorting is a safe
// tiebreak when several variables first appear in the same step.
func sortedVarNames(m map[string]Value) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
