// properties_test.go
package stepscope

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Floor division must satisfy the Euclidean-style identity and keep the
// remainder's sign aligned with the divisor for every operand pair.
func Test_FloorDivMod_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("a == floorDiv(a,b)*b + floorMod(a,b)", prop.ForAll(
		func(a, b int64) bool {
			if b == 0 {
				return true
			}
			return a == floorDiv(a, b)*b+floorMod(a, b)
		},
		gen.Int64Range(-1000000, 1000000),
		gen.Int64Range(-1000, 1000),
	))

	properties.Property("floorMod sign follows the divisor", prop.ForAll(
		func(a, b int64) bool {
			if b == 0 {
				return true
			}
			r := floorMod(a, b)
			if r == 0 {
				return true
			}
			return (r > 0) == (b > 0)
		},
		gen.Int64Range(-1000000, 1000000),
		gen.Int64Range(-1000, 1000),
	))

	properties.TestingRun(t)
}

func Test_Value_Equal_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("Equal is reflexive and symmetric across Int/Float", prop.ForAll(
		func(n int64) bool {
			i, f := Int(n), Float(float64(n))
			return i.Equal(i) && i.Equal(f) && f.Equal(i)
		},
		gen.Int64Range(-1_000_000, 1_000_000),
	))

	properties.Property("String round-trips through coercion-free rendering", prop.ForAll(
		func(n int64) bool {
			return Int(n).String() == fmt.Sprintf("%d", n)
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// A killed program leaves an arbitrary byte prefix of its log; folding
// that prefix must never panic and must yield a step sequence that is a
// prefix of the full log's.
func Test_ProbeLog_Prefix_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("every byte prefix folds to a step-prefix trace", prop.ForAll(
		func(vals []int64) bool {
			var log string
			for i, v := range vals {
				log += fmt.Sprintf("SSCOPE:%d:assign:{\"name\":\"a\",\"value\":\"%d\"}\n", i+1, v)
			}
			full := ParseProbeLog(log).Steps
			if len(full) != len(vals) {
				return false
			}
			for cut := 1; cut <= len(log); cut++ {
				part := ParseProbeLog(log[:cut]).Steps
				if len(part) > len(full) {
					return false
				}
				if len(part) == 0 {
					continue
				}
				if !reflect.DeepEqual(part, full[:len(part)]) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-99, 99)),
	))

	properties.TestingRun(t)
}

// Every generated straight-line program must replay identically after a
// Reset, and its step numbering must stay dense and 1-based.
func Test_Interpreter_Replay_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("reset + replay is byte-for-byte identical", prop.ForAll(
		func(init int64, deltas []int64) bool {
			src := fmt.Sprintf("int a = %d;\n", init)
			for _, d := range deltas {
				src += fmt.Sprintf("a += %d;\n", d)
			}
			it, err := NewInterpreter(src)
			if err != nil {
				return false
			}
			first, err := it.ContinueToEnd()
			if err != nil {
				return false
			}
			it.Reset()
			second, err := it.ContinueToEnd()
			if err != nil {
				return false
			}
			if !reflect.DeepEqual(first, second) {
				return false
			}
			for i, st := range first.Steps {
				if st.StepNumber != i+1 {
					return false
				}
			}
			want := init
			for _, d := range deltas {
				want += d
			}
			final, ok := first.Final.Variables["a"]
			return ok && final.Equal(Int(want))
		},
		gen.Int64Range(-1000, 1000),
		gen.SliceOf(gen.Int64Range(-100, 100)),
	))

	properties.TestingRun(t)
}
