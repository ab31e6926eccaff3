// probelog.go — folds a probe log back into an ExecutionTrace.
//
// The log is whatever an instrumented program wrote to stderr: probe
// lines in the wire format
//
//	SSCOPE:<line>:<type>:<jsonPayload>
//
// interleaved with the program's own incidental output. Probe lines
// become steps; everything else is accumulated as raw output. The parser
// is forgiving by contract: a truncated or malformed probe line is
// skipped, never fatal, because a crashed or killed program still
// deserves the best trace its partial log supports.
package stepscope

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// ParseProbeLog folds a probe log into a sealed trace. It never fails:
// malformed lines are dropped and counted, and an empty or garbage log
// yields an empty (but valid) trace.
func ParseProbeLog(text string) *ExecutionTrace {
	return ParseProbeLogWithDuration(text, 0)
}

// ParseProbeLogWithDuration is ParseProbeLog with a measured wall-clock
// duration for the run, apportioned evenly across steps in the summary.
func ParseProbeLogWithDuration(text string, elapsed time.Duration) *ExecutionTrace {
	p := &probeParser{
		builder: newTraceBuilder(),
		vars:    map[string]Value{},
	}
	for _, line := range strings.Split(text, "\n") {
		p.feedLine(line)
	}
	return p.builder.seal(elapsed)
}

// DecodeProbeLine parses a single wire line. It returns a ProbeDecodeError
// when the line is not a well-formed probe; callers streaming a live log
// use it to decide probe-vs-output per line.
func DecodeProbeLine(lineNo int, raw string) (*ProbeRecord, error) {
	parts := strings.SplitN(raw, ":", 4)
	if len(parts) != 4 || parts[0] != probePrefix {
		return nil, &ProbeDecodeError{LineNo: lineNo, Raw: raw, Msg: "not a probe line"}
	}
	srcLine, err := strconv.Atoi(parts[1])
	if err != nil || srcLine < 1 {
		return nil, &ProbeDecodeError{LineNo: lineNo, Raw: raw, Msg: "bad source line " + strconv.Quote(parts[1])}
	}
	kind, ok := wireKinds[parts[2]]
	if !ok {
		return nil, &ProbeDecodeError{LineNo: lineNo, Raw: raw, Msg: "unknown probe type " + strconv.Quote(parts[2])}
	}
	var body wireBody
	if err := json.Unmarshal([]byte(parts[3]), &body); err != nil {
		return nil, &ProbeDecodeError{LineNo: lineNo, Raw: raw, Msg: "bad payload: " + err.Error()}
	}
	return &ProbeRecord{Line: srcLine, Kind: kind, Body: body}, nil
}

// ProbeRecord is one decoded wire line before trace folding.
type ProbeRecord struct {
	Line int
	Kind StepKind
	Body wireBody
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

// wireKinds maps the compact on-wire type tags to step kinds.
var wireKinds = map[string]StepKind{
	"declare":    StepVariableDeclaration,
	"assign":     StepVariableAssignment,
	"trace_var":  StepTraceVar,
	"if":         StepIfCondition,
	"else":       StepElseBranch,
	"for":        StepForLoop,
	"while":      StepWhileLoop,
	"do_while":   StepDoWhileLoop,
	"func_enter": StepFunctionEnter,
	"call":       StepFunctionCall,
	"input":      StepInputOperation,
	"output":     StepOutputOperation,
}

// wireBody is the JSON payload schema. Value arrives as arbitrary JSON
// (the probe helpers stringify conservatively) and is coerced after.
type wireBody struct {
	Name      string          `json:"name"`
	VarType   string          `json:"varType"`
	Value     json.RawMessage `json:"value"`
	Condition string          `json:"condition"`
	Result    bool            `json:"result"`
	Args      []string        `json:"args"`
	Text      string          `json:"text"`
}

type probeParser struct {
	builder *traceBuilder
	vars    map[string]Value
	lineNo  int
	dropped int
	rawSeen bool
}

func (p *probeParser) feedLine(raw string) {
	p.lineNo++
	if !strings.HasPrefix(raw, probePrefix+":") {
		// Terminators go between raw lines, never after the last one,
		// so the accumulated output stays byte-faithful to the stream.
		if p.rawSeen {
			p.builder.appendRaw("\n" + raw)
		} else {
			p.builder.appendRaw(raw)
		}
		p.rawSeen = true
		return
	}
	rec, err := DecodeProbeLine(p.lineNo, raw)
	if err != nil {
		p.dropped++
		return
	}
	p.fold(rec)
}

// fold applies one probe record: update the variable table for mutation
// kinds, then append the step with a fresh snapshot.
func (p *probeParser) fold(rec *ProbeRecord) {
	pay := Payload{
		Name:      rec.Body.Name,
		VarType:   rec.Body.VarType,
		Condition: rec.Body.Condition,
		Taken:     rec.Body.Result,
		Args:      rec.Body.Args,
		Text:      rec.Body.Text,
	}
	if len(rec.Body.Value) > 0 {
		pay.Value = coerceWireValue(rec.Body.Value)
	}

	var delta string
	switch rec.Kind {
	case StepVariableDeclaration, StepVariableAssignment, StepTraceVar:
		if pay.Name != "" && pay.Value.IsValid() {
			p.vars[pay.Name] = pay.Value
		}
	case StepOutputOperation:
		delta = pay.Text
	}

	p.builder.add(rec.Kind, rec.Line, pay, snapshotVars(p.vars), delta)
}

// coerceWireValue maps a JSON fragment onto the tagged Value domain.
// Probe helpers stringify everything, so a JSON string holding a number
// or boolean is unwrapped to its natural tag.
func coerceWireValue(raw json.RawMessage) Value {
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return Bool(b)
	}
	var i int64
	if json.Unmarshal(raw, &i) == nil {
		return Int(i)
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return Float(f)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(n)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f)
		}
		if s == "true" || s == "false" {
			return Bool(s == "true")
		}
		return Text(s)
	}
	return Text(string(raw))
}
