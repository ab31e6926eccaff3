// interpreter.go — PUBLIC SURFACE of the restricted-subset interpreter.
//
// OVERVIEW
// ========
// The interpreter executes the conservative C-subset grammar directly,
// producing one ExecutionStep per Step() call, with snapshot/history
// semantics identical to the instrumented-compiler path — and it never
// spawns an external process.
//
// EVALUATION MODEL
// ----------------
// Execution uses an explicit frame stack, not recursion, because the
// driver paces stepping externally. Each open block, loop, or branch
// body is one frame: a statement list and a cursor. A Step() call looks
// at the top frame; if the cursor has exhausted the body the frame is
// resolved (plain blocks pop; loop frames run their increment, re-check
// their condition, and either rewind to the body start or pop) and the
// walk continues with the new top. Otherwise it executes exactly one
// statement, advances the cursor, and records the resulting step (line,
// payload, a full deep-copied variable snapshot, and any output produced
// during the step). Entering a compound statement pushes a frame rather
// than in-lining it, so every nested block is independently steppable.
//
// Loop-kind steps are emitted once per body entry: a for-loop that runs
// its body three times contributes exactly three for_loop steps, and its
// header increment appears as an ordinary variable_assignment step so the
// state-delta invariant holds at every step.
//
// STATE MACHINE
// -------------
//	NotStarted → Running → {Completed | Failed}
//
// Reset() returns to NotStarted and discards all frame-stack state while
// retaining the parsed tree (parse once, run many). A reset run replays
// deterministically: the re-produced trace is identical to the first.
//
// ERRORS
// ------
// UnknownVariable, TypeMismatch and DivisionByZero halt the machine in
// Failed and surface verbatim as *RuntimeError with the offending line.
// Construction refuses source the eligibility classifier rejects
// (*IneligibleError) — fail immediately rather than guess.
package stepscope

import "fmt"

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// RunState is the interpreter's lifecycle state.
type RunState int

const (
	NotStarted RunState = iota
	Running
	Completed
	Failed
)

func (s RunState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Interpreter executes one restricted-subset program for one session.
// It owns all per-run mutable state (variable table, frame stack, trace
// builder); nothing is process-wide, so independent sessions are fully
// isolated.
type Interpreter struct {
	src  string
	prog *Program

	maxSteps int

	state   RunState
	stack   []*frame
	vars    map[string]Value
	ev      evaluator
	sc      *Scope
	builder *traceBuilder
	trace   *ExecutionTrace
	failure error
}

// NewInterpreter parses source and prepares a run. It refuses source the
// eligibility classifier rejects (*IneligibleError) and returns the
// parser's *LexError/*ParseError for source inside the eligible family
// that still fails to parse.
func NewInterpreter(src string) (*Interpreter, error) {
	if ok, construct := ClassifySource(src); !ok {
		return nil, &IneligibleError{Construct: construct}
	}
	prog, err := ParseProgram(src)
	if err != nil {
		return nil, err
	}
	it := &Interpreter{src: src, prog: prog, maxSteps: DefaultMaxSteps}
	it.initRun()
	return it, nil
}

// DefaultMaxSteps bounds a single run. The restricted grammar admits
// unbounded loops, so a runaway program halts with StepLimitExceeded
// instead of hanging the session.
const DefaultMaxSteps = 100000

// SetMaxSteps overrides the step bound for this interpreter (n <= 0
// restores the default).
func (it *Interpreter) SetMaxSteps(n int) {
	if n <= 0 {
		n = DefaultMaxSteps
	}
	it.maxSteps = n
}

// State returns the current lifecycle state.
func (it *Interpreter) State() RunState { return it.state }

// Source returns the program text the interpreter was built from.
func (it *Interpreter) Source() string { return it.src }

// Step advances execution by exactly one observable event.
//
// Returns:
//   - (step, nil)  — one event was produced; the machine is Running.
//   - (nil, nil)   — the program ran to completion (state Completed).
//   - (nil, err)   — a *RuntimeError halted the machine (state Failed).
//
// Calling Step after Completed keeps returning (nil, nil); after Failed
// it keeps returning the original error.
func (it *Interpreter) Step() (*ExecutionStep, error) {
	switch it.state {
	case Completed:
		return nil, nil
	case Failed:
		return nil, it.failure
	case NotStarted:
		it.state = Running
		if it.prog.HasMain {
			return it.emit(StepFunctionEnter, it.prog.MainLine, Payload{Name: "main"}, ""), nil
		}
	}

	for {
		if len(it.stack) == 0 {
			it.finish()
			return nil, nil
		}
		if len(it.builder.steps) >= it.maxSteps {
			return nil, it.fail(&RuntimeError{
				Code: StepLimitExceeded,
				Line: it.top().line,
				Col:  1,
				Msg:  fmt.Sprintf("exceeded %d steps; aborting a likely non-terminating program", it.maxSteps),
			})
		}
		f := it.top()

		if f.announce != nil {
			st := it.emit(f.announce.kind, f.announce.line, f.announce.payload, "")
			f.announce = nil
			return st, nil
		}

		if f.cursor < len(f.body) {
			stmt := f.body[f.cursor]
			f.cursor++
			step, err := it.execStmt(stmt)
			if err != nil {
				return nil, it.fail(err)
			}
			if step != nil {
				return step, nil
			}
			continue
		}

		// Cursor exhausted: resolve the frame.
		switch f.kind {
		case frameBlock:
			it.popFrame()
		case frameFor:
			if !f.postDone {
				f.postDone = true
				if f.post != nil {
					step, err := it.execStmt(f.post)
					if err != nil {
						return nil, it.fail(err)
					}
					if step != nil {
						return step, nil
					}
				}
				continue
			}
			entered, step, err := it.recheckLoop(f, StepForLoop)
			if err != nil {
				return nil, it.fail(err)
			}
			if entered {
				f.postDone = false
				return step, nil
			}
		case frameWhile:
			entered, step, err := it.recheckLoop(f, StepWhileLoop)
			if err != nil {
				return nil, it.fail(err)
			}
			if entered {
				return step, nil
			}
		case frameDoWhile:
			entered, step, err := it.recheckLoop(f, StepDoWhileLoop)
			if err != nil {
				return nil, it.fail(err)
			}
			if entered {
				return step, nil
			}
		}
	}
}

// ContinueToEnd loops Step until the machine reaches Completed or
// Failed, returning the sealed trace (which contains every step produced
// before a failure) and the failure, if any.
func (it *Interpreter) ContinueToEnd() (*ExecutionTrace, error) {
	for it.state == NotStarted || it.state == Running {
		if _, err := it.Step(); err != nil {
			break
		}
	}
	return it.trace, it.failure
}

// Reset returns the machine to NotStarted, discarding all frame-stack,
// variable, and trace state while retaining the parsed program tree.
func (it *Interpreter) Reset() {
	it.initRun()
}

// Trace returns the sealed trace once the machine is Completed or
// Failed, nil before that. A failed run's trace contains every step
// produced before the failure.
func (it *Interpreter) Trace() *ExecutionTrace {
	return it.trace
}

// StepsSoFar returns the steps produced so far, sealed or not. The
// returned slice is live; callers must not mutate it.
func (it *Interpreter) StepsSoFar() []ExecutionStep {
	return it.builder.steps
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

type frameKind int

const (
	frameBlock frameKind = iota
	frameFor
	frameWhile
	frameDoWhile
)

// pendingStep is a step announced by frame entry (the else_branch marker)
// and emitted by the next Step call before the body runs.
type pendingStep struct {
	kind    StepKind
	line    int
	payload Payload
}

// frame is one open block/loop/conditional being executed.
type frame struct {
	kind     frameKind
	body     []Stmt
	cursor   int
	line     int    // the construct's source line (loop steps key to it)
	cond     Expr   // loop condition; nil means always true
	condText string
	post     Stmt // for-loop increment
	postDone bool // increment already ran since the body last exhausted
	announce *pendingStep
	shadowed map[string]Value // outer bindings shadowed by this frame
}

func (it *Interpreter) initRun() {
	it.state = NotStarted
	it.vars = map[string]Value{}
	it.ev = evaluator{vars: it.vars}
	it.sc = NewScope()
	it.builder = newTraceBuilder()
	it.trace = nil
	it.failure = nil
	root := &frame{kind: frameBlock, body: it.prog.Stmts}
	it.stack = []*frame{root}
}

func (it *Interpreter) top() *frame { return it.stack[len(it.stack)-1] }

func (it *Interpreter) pushFrame(f *frame) {
	it.sc.Push()
	it.stack = append(it.stack, f)
}

func (it *Interpreter) popFrame() {
	f := it.top()
	it.stack = it.stack[:len(it.stack)-1]
	for name := range it.sc.Pop() {
		delete(it.vars, name)
	}
	for name, v := range f.shadowed {
		it.vars[name] = v
	}
}

func (it *Interpreter) finish() {
	it.state = Completed
	it.trace = it.builder.seal(0)
}

func (it *Interpreter) fail(err error) error {
	it.state = Failed
	it.failure = err
	it.trace = it.builder.seal(0)
	return err
}

// emit snapshots the variable table and appends one step.
func (it *Interpreter) emit(kind StepKind, line int, p Payload, outputDelta string) *ExecutionStep {
	return it.builder.add(kind, line, p, snapshotVars(it.vars), outputDelta)
}

// recheckLoop re-evaluates a loop frame's condition. On true it rewinds
// the cursor and emits the loop's entry step; on false it pops the frame.
func (it *Interpreter) recheckLoop(f *frame, kind StepKind) (bool, *ExecutionStep, error) {
	ok := true
	if f.cond != nil {
		var err error
		ok, err = it.ev.evalCond(f.cond)
		if err != nil {
			return false, nil, err
		}
	}
	if !ok {
		it.popFrame()
		return false, nil, nil
	}
	f.cursor = 0
	st := it.emit(kind, f.line, Payload{Condition: f.condText, Taken: true}, "")
	return true, st, nil
}

// execStmt executes one statement. It returns the emitted step, or nil
// for statements that only open frames (bare blocks, loop headers with
// no initializer) — the driver loop then continues until a step appears.
func (it *Interpreter) execStmt(stmt Stmt) (*ExecutionStep, error) {
	switch s := stmt.(type) {
	case *DeclStmt:
		return it.execDecl(s)
	case *AssignStmt:
		return it.execAssign(s)
	case *IncDecStmt:
		return it.execIncDec(s)
	case *OutputStmt:
		return it.execOutput(s)
	case *BlockStmt:
		it.pushFrame(&frame{kind: frameBlock, body: s.Body, line: s.Line})
		return nil, nil
	case *IfStmt:
		return it.execIf(s)
	case *WhileStmt:
		return it.execWhile(s)
	case *DoWhileStmt:
		f := &frame{kind: frameDoWhile, body: s.Body, line: s.Line, cond: s.Cond, condText: s.Cond.String()}
		it.pushFrame(f)
		return it.emit(StepDoWhileLoop, s.Line, Payload{Condition: f.condText, Taken: true}, ""), nil
	case *ForStmt:
		return it.execFor(s)
	case *ReturnStmt:
		// Terminates the run: unwind every frame.
		for len(it.stack) > 0 {
			it.popFrame()
		}
		return nil, nil
	}
	return nil, &RuntimeError{Code: TypeMismatch, Line: stmt.stmtLine(), Col: 1, Msg: "unsupported statement"}
}

func (it *Interpreter) execDecl(s *DeclStmt) (*ExecutionStep, error) {
	v := Int(0)
	if s.Init != nil {
		var err error
		v, err = it.ev.eval(s.Init)
		if err != nil {
			return nil, err
		}
	}
	f := it.top()
	if old, exists := it.vars[s.Name]; exists {
		if f.shadowed == nil {
			f.shadowed = map[string]Value{}
		}
		if _, already := f.shadowed[s.Name]; !already {
			f.shadowed[s.Name] = old
		}
	}
	it.sc.Declare(s.Name, s.VarType, s.Line)
	it.vars[s.Name] = v
	p := Payload{Name: s.Name, VarType: s.VarType, Value: v}
	return it.emit(StepVariableDeclaration, s.Line, p, ""), nil
}

func (it *Interpreter) execAssign(s *AssignStmt) (*ExecutionStep, error) {
	rhs, err := it.ev.eval(s.Value)
	if err != nil {
		return nil, err
	}
	nv := rhs
	if s.Op != "=" {
		cur, ok := it.vars[s.Name]
		if !ok {
			return nil, it.ev.rtErr(UnknownVariable, s.Line, "undefined variable: %s", s.Name)
		}
		baseOp := s.Op[:1] // "+=" applies "+", "/=" applies "/" with floor semantics
		nv, err = it.ev.arith(&BinaryExpr{Line: s.Line, Op: baseOp}, cur, rhs)
		if err != nil {
			return nil, err
		}
	} else if _, ok := it.vars[s.Name]; !ok {
		return nil, it.ev.rtErr(UnknownVariable, s.Line, "undefined variable: %s", s.Name)
	}
	it.vars[s.Name] = nv
	p := Payload{Name: s.Name, VarType: nv.TypeName(), Value: nv}
	return it.emit(StepVariableAssignment, s.Line, p, ""), nil
}

func (it *Interpreter) execIncDec(s *IncDecStmt) (*ExecutionStep, error) {
	cur, ok := it.vars[s.Name]
	if !ok {
		return nil, it.ev.rtErr(UnknownVariable, s.Line, "undefined variable: %s", s.Name)
	}
	n, isInt := cur.AsInt()
	if !isInt {
		return nil, it.ev.rtErr(TypeMismatch, s.Line, "cannot apply %s to %s %s", s.Op, cur.TypeName(), s.Name)
	}
	delta := int64(1)
	if s.Op == "--" {
		delta = -1
	}
	nv := Int(n + delta)
	it.vars[s.Name] = nv
	p := Payload{Name: s.Name, VarType: nv.TypeName(), Value: nv}
	return it.emit(StepVariableAssignment, s.Line, p, ""), nil
}

func (it *Interpreter) execOutput(s *OutputStmt) (*ExecutionStep, error) {
	var delta string
	for _, part := range s.Parts {
		v, err := it.ev.eval(part)
		if err != nil {
			return nil, err
		}
		delta += v.String()
	}
	return it.emit(StepOutputOperation, s.Line, Payload{Text: delta}, delta), nil
}

func (it *Interpreter) execIf(s *IfStmt) (*ExecutionStep, error) {
	condText := s.Cond.String()
	taken, err := it.ev.evalCond(s.Cond)
	if err != nil {
		return nil, err
	}
	st := it.emit(StepIfCondition, s.Line, Payload{Condition: condText, Taken: taken}, "")
	if taken {
		it.pushFrame(&frame{kind: frameBlock, body: s.Then, line: s.Line})
		return st, nil
	}
	if len(s.Else) > 0 {
		f := &frame{kind: frameBlock, body: s.Else, line: s.ElseLine}
		if !s.ElseIsChain {
			// A plain else announces itself as one else_branch step
			// before its body runs; an else-if chain instead emits the
			// nested if_condition on the next step.
			f.announce = &pendingStep{kind: StepElseBranch, line: s.ElseLine, payload: Payload{Condition: condText}}
		}
		it.pushFrame(f)
	}
	return st, nil
}

func (it *Interpreter) execWhile(s *WhileStmt) (*ExecutionStep, error) {
	condText := s.Cond.String()
	taken, err := it.ev.evalCond(s.Cond)
	if err != nil {
		return nil, err
	}
	if !taken {
		return nil, nil
	}
	it.pushFrame(&frame{kind: frameWhile, body: s.Body, line: s.Line, cond: s.Cond, condText: condText})
	return it.emit(StepWhileLoop, s.Line, Payload{Condition: condText, Taken: true}, ""), nil
}

// execFor pushes the loop frame in "check" position (cursor exhausted,
// increment marked done) and runs the initializer inside the loop scope,
// so the first condition check happens on the next drive of the loop
// without running the increment.
func (it *Interpreter) execFor(s *ForStmt) (*ExecutionStep, error) {
	f := &frame{
		kind:     frameFor,
		body:     s.Body,
		cursor:   len(s.Body),
		line:     s.Line,
		cond:     s.Cond,
		post:     s.Post,
		postDone: true,
	}
	if s.Cond != nil {
		f.condText = s.Cond.String()
	}
	it.pushFrame(f)
	if s.Init != nil {
		return it.execStmt(s.Init)
	}
	return nil, nil
}
