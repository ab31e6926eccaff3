// probelog_test.go
package stepscope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ProbeLog_Basic_Fold(t *testing.T) {
	log := `SSCOPE:1:func_enter:{"name":"main"}
SSCOPE:2:declare:{"name":"a","varType":"int","value":"5"}
SSCOPE:3:if:{"condition":"a > 3","result":true}
SSCOPE:4:assign:{"name":"a","value":"2"}
SSCOPE:5:output:{"text":"done\n"}
`
	trace := ParseProbeLog(log)
	require.Len(t, trace.Steps, 5)

	assert.Equal(t, StepFunctionEnter, trace.Steps[0].Kind)
	assert.Equal(t, "main", trace.Steps[0].Payload.Name)
	assert.Equal(t, []string{"main"}, trace.CallStack)

	decl := trace.Steps[1]
	assert.Equal(t, StepVariableDeclaration, decl.Kind)
	assert.Equal(t, 2, decl.Line)
	assert.Equal(t, "int", decl.Payload.VarType)
	assert.True(t, decl.Payload.Value.Equal(Int(5)))

	cond := trace.Steps[2]
	assert.Equal(t, StepIfCondition, cond.Kind)
	assert.Equal(t, "a > 3", cond.Payload.Condition)
	assert.True(t, cond.Payload.Taken)
	// The branch step carries the pre-branch snapshot.
	assert.True(t, cond.Variables["a"].Equal(Int(5)))

	assert.True(t, trace.Steps[3].Variables["a"].Equal(Int(2)))
	assert.Equal(t, "done\n", trace.Final.Output)
}

func Test_ProbeLog_Malformed_Lines_Are_Skipped(t *testing.T) {
	log := `SSCOPE:1:declare:{"name":"a","value":"1"}
SSCOPE:not-a-line:declare:{"name":"x"}
SSCOPE:2:declare:{"name":"b","value"
SSCOPE:3:unknown_type:{"name":"c"}
SSCOPE:4:assign:{"name":"a","value":"9"}
`
	trace := ParseProbeLog(log)
	require.Len(t, trace.Steps, 2)
	assert.Equal(t, 1, trace.Steps[0].Line)
	assert.Equal(t, 4, trace.Steps[1].Line)
	assert.True(t, trace.Final.Variables["a"].Equal(Int(9)))
}

func Test_ProbeLog_Truncated_Tail_Keeps_Prefix(t *testing.T) {
	// A killed program leaves a half-written last line; everything before
	// it still folds.
	log := `SSCOPE:1:declare:{"name":"i","value":"0"}
SSCOPE:2:while:{"condition":"i < 10","result":true}
SSCOPE:3:assign:{"name":"i","va`
	trace := ParseProbeLog(log)
	require.Len(t, trace.Steps, 2)
	assert.True(t, trace.Final.Variables["i"].Equal(Int(0)))
}

func Test_ProbeLog_NonProbe_Lines_Become_Output(t *testing.T) {
	log := `hello from the program
SSCOPE:1:declare:{"name":"x","value":"1"}
partial result: 42
`
	trace := ParseProbeLog(log)
	require.Len(t, trace.Steps, 1)
	assert.Equal(t, "hello from the program\npartial result: 42\n", trace.Final.Output)
}

func Test_ProbeLog_Output_Keeps_Final_Line_Terminator_Faithful(t *testing.T) {
	probe := `SSCOPE:1:declare:{"name":"x","value":"1"}`

	withNL := "first\n" + probe + "\nlast\n"
	assert.Equal(t, "first\nlast\n", ParseProbeLog(withNL).Final.Output)

	withoutNL := "first\n" + probe + "\nlast"
	assert.Equal(t, "first\nlast", ParseProbeLog(withoutNL).Final.Output)

	// A blank program line is itself output, not padding.
	assert.Equal(t, "a\n\nb", ParseProbeLog("a\n\nb").Final.Output)
}

func Test_ProbeLog_Payload_With_Colons_And_Braces(t *testing.T) {
	// Only the first three colons delimit; the JSON payload may contain
	// any number of its own.
	log := `SSCOPE:7:output:{"text":"ratio 3:2 {ok}"}`
	trace := ParseProbeLog(log)
	require.Len(t, trace.Steps, 1)
	assert.Equal(t, "ratio 3:2 {ok}", trace.Steps[0].Payload.Text)
}

func Test_ProbeLog_Value_Coercion(t *testing.T) {
	log := `SSCOPE:1:declare:{"name":"i","value":"42"}
SSCOPE:2:declare:{"name":"f","value":"2.5"}
SSCOPE:3:declare:{"name":"b","value":"true"}
SSCOPE:4:declare:{"name":"s","value":"hello"}
SSCOPE:5:declare:{"name":"n","value":7}
`
	trace := ParseProbeLog(log)
	require.Len(t, trace.Steps, 5)
	final := trace.Final.Variables
	assert.True(t, final["i"].Equal(Int(42)))
	assert.True(t, final["f"].Equal(Float(2.5)))
	assert.True(t, final["b"].Equal(Bool(true)))
	assert.True(t, final["s"].Equal(Text("hello")))
	assert.True(t, final["n"].Equal(Int(7)))
}

func Test_ProbeLog_CallStack_Is_Monotonic(t *testing.T) {
	log := `SSCOPE:1:func_enter:{"name":"main"}
SSCOPE:3:call:{"name":"helper","args":["1","2"]}
SSCOPE:10:func_enter:{"name":"helper"}
SSCOPE:12:output:{"text":"x"}
SSCOPE:4:assign:{"name":"r","value":"3"}
`
	trace := ParseProbeLog(log)
	// Returning from helper never shrinks the stack: it records every
	// activation in entry order.
	assert.Equal(t, []string{"main", "helper"}, trace.CallStack)
	assert.Equal(t, []string{"main", "helper"}, trace.Final.CallStack)

	call := trace.Steps[1]
	assert.Equal(t, StepFunctionCall, call.Kind)
	assert.Equal(t, []string{"1", "2"}, call.Payload.Args)
}

func Test_ProbeLog_Empty_And_Garbage_Logs_Yield_Valid_Empty_Trace(t *testing.T) {
	for _, log := range []string{"", "\n\n", "no probes here at all"} {
		trace := ParseProbeLog(log)
		require.NotNil(t, trace)
		assert.Equal(t, 0, trace.Summary.TotalSteps)
		assert.Empty(t, trace.Steps)
		assert.NotNil(t, trace.Final.Variables)
	}
}

func Test_ProbeLog_Duration_Is_Apportioned(t *testing.T) {
	log := `SSCOPE:1:declare:{"name":"a","value":"1"}
SSCOPE:2:assign:{"name":"a","value":"2"}
`
	trace := ParseProbeLogWithDuration(log, 10*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, trace.Summary.Elapsed)
	assert.Equal(t, 5*time.Millisecond, trace.Summary.PerStep)
}

func Test_DecodeProbeLine_Errors(t *testing.T) {
	cases := []struct {
		raw string
		sub string
	}{
		{"plain output", "not a probe line"},
		{"SSCOPE:zero:declare:{}", "bad source line"},
		{"SSCOPE:0:declare:{}", "bad source line"},
		{"SSCOPE:1:mystery:{}", "unknown probe type"},
		{`SSCOPE:1:declare:{"name"`, "bad payload"},
	}
	for _, c := range cases {
		_, err := DecodeProbeLine(1, c.raw)
		require.Error(t, err, c.raw)
		var pd *ProbeDecodeError
		require.ErrorAs(t, err, &pd, c.raw)
		assert.Contains(t, pd.Msg, c.sub)
	}
}

func Test_ProbeLog_TraceVar_Updates_Snapshot(t *testing.T) {
	log := `SSCOPE:1:declare:{"name":"a","value":"1"}
SSCOPE:5:trace_var:{"name":"a","value":"3"}
`
	trace := ParseProbeLog(log)
	require.Len(t, trace.Steps, 2)
	assert.Equal(t, StepTraceVar, trace.Steps[1].Kind)
	assert.True(t, trace.Final.Variables["a"].Equal(Int(3)))
}
