// value_test.go
package stepscope

import "testing"

func Test_Value_ZeroValue_IsInvalid(t *testing.T) {
	var v Value
	if v.IsValid() {
		t.Fatalf("zero Value must be invalid, got %#v", v)
	}
	for _, v := range []Value{Int(0), Float(0), Text(""), Bool(false)} {
		if !v.IsValid() {
			t.Fatalf("constructed value must be valid, got %#v", v)
		}
	}
}

func Test_Value_String_Canonical(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Int(0), "0"},
		{Int(-42), "-42"},
		{Float(2.5), "2.5"},
		{Float(1), "1"},
		{Text("hi"), "hi"},
		{Bool(true), "true"},
		{Bool(false), "false"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Fatalf("String(%#v): want %q, got %q", c.v, c.want, got)
		}
	}
}

func Test_Value_TypeName(t *testing.T) {
	if Int(1).TypeName() != "int" || Float(1).TypeName() != "double" ||
		Text("").TypeName() != "string" || Bool(true).TypeName() != "bool" {
		t.Fatal("TypeName mapping changed")
	}
}

func Test_Value_Equal_CrossTag_Numeric(t *testing.T) {
	if !Int(3).Equal(Float(3)) {
		t.Fatal("Int(3) and Float(3) must compare equal")
	}
	if Int(3).Equal(Float(3.5)) {
		t.Fatal("Int(3) and Float(3.5) must not compare equal")
	}
	if Int(1).Equal(Bool(true)) {
		t.Fatal("Int(1) and Bool(true) must not compare equal")
	}
	if !Text("a").Equal(Text("a")) {
		t.Fatal("identical texts must compare equal")
	}
}

func Test_Value_Truthy(t *testing.T) {
	for _, c := range []struct {
		v    Value
		want bool
	}{
		{Bool(true), true},
		{Bool(false), false},
		{Int(7), true},
		{Int(0), false},
	} {
		got, err := c.v.Truthy()
		if err != nil || got != c.want {
			t.Fatalf("Truthy(%#v): want %v, got %v err %v", c.v, c.want, got, err)
		}
	}
	if _, err := Text("x").Truthy(); err == nil {
		t.Fatal("text in condition position must error")
	}
}

func Test_FloorDiv_FloorMod(t *testing.T) {
	cases := []struct {
		a, b, q, r int64
	}{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -4, -1},
		{-7, -2, 3, -1},
		{6, 3, 2, 0},
		{-6, 3, -2, 0},
	}
	for _, c := range cases {
		if q := floorDiv(c.a, c.b); q != c.q {
			t.Fatalf("floorDiv(%d,%d): want %d, got %d", c.a, c.b, c.q, q)
		}
		if r := floorMod(c.a, c.b); r != c.r {
			t.Fatalf("floorMod(%d,%d): want %d, got %d", c.a, c.b, c.r, r)
		}
	}
}

func Test_SnapshotVars_IsIndependentCopy(t *testing.T) {
	src := map[string]Value{"a": Int(1)}
	snap := snapshotVars(src)
	src["a"] = Int(2)
	src["b"] = Int(3)
	if !snap["a"].Equal(Int(1)) || len(snap) != 1 {
		t.Fatalf("snapshot mutated through the source map: %#v", snap)
	}
}
