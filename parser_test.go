// parser_test.go
package stepscope

import (
	"strings"
	"testing"
)

func parse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := ParseProgram(src)
	if err != nil {
		t.Fatalf("ParseProgram error: %v\nsource:\n%s", err, src)
	}
	return prog
}

func wantParseError(t *testing.T, src, substr string) *ParseError {
	t.Helper()
	_, err := ParseProgram(src)
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("want *ParseError containing %q, got %v", substr, err)
	}
	if !strings.Contains(pe.Msg, substr) {
		t.Fatalf("want message containing %q, got %q", substr, pe.Msg)
	}
	return pe
}

func Test_Parser_Main_Wrapper_Is_Unwrapped(t *testing.T) {
	prog := parse(t, `#include <iostream>
using namespace std;
int main() {
    int a = 5;
    return 0;
}
`)
	if !prog.HasMain {
		t.Fatal("want HasMain")
	}
	if prog.MainLine != 3 {
		t.Fatalf("want MainLine 3, got %d", prog.MainLine)
	}
	if len(prog.Stmts) != 2 {
		t.Fatalf("want 2 body statements, got %d", len(prog.Stmts))
	}
	decl, ok := prog.Stmts[0].(*DeclStmt)
	if !ok || decl.Name != "a" || decl.VarType != "int" || decl.Line != 4 {
		t.Fatalf("want DeclStmt a on line 4, got %#v", prog.Stmts[0])
	}
}

func Test_Parser_Bare_Statement_Sequence(t *testing.T) {
	prog := parse(t, `int a = 1;
a += 2;
a++;
`)
	if prog.HasMain {
		t.Fatal("bare sequence must not set HasMain")
	}
	if len(prog.Stmts) != 3 {
		t.Fatalf("want 3 statements, got %d", len(prog.Stmts))
	}
	asg := prog.Stmts[1].(*AssignStmt)
	if asg.Op != "+=" || asg.Name != "a" {
		t.Fatalf("want 'a +=', got %#v", asg)
	}
	inc := prog.Stmts[2].(*IncDecStmt)
	if inc.Op != "++" {
		t.Fatalf("want postfix ++ statement, got %#v", inc)
	}
}

func Test_Parser_LongLong_Type_Text(t *testing.T) {
	prog := parse(t, `long long big = 1;`)
	decl := prog.Stmts[0].(*DeclStmt)
	if decl.VarType != "long long" {
		t.Fatalf("want type 'long long', got %q", decl.VarType)
	}
}

func Test_Parser_MultiVariable_Declaration_Rejected(t *testing.T) {
	wantParseError(t, `int a = 1, b = 2;`, "multi-variable")
}

func Test_Parser_For_Header_Canonical(t *testing.T) {
	prog := parse(t, `for (int i = 0; i < 10; i++) {
    i += 0;
}
`)
	f := prog.Stmts[0].(*ForStmt)
	if f.Init == nil || f.Cond == nil || f.Post == nil {
		t.Fatalf("want all three header parts, got %#v", f)
	}
	if f.Cond.String() != "i < 10" {
		t.Fatalf("want condition 'i < 10', got %q", f.Cond.String())
	}
	if _, ok := f.Post.(*IncDecStmt); !ok {
		t.Fatalf("want IncDecStmt increment, got %#v", f.Post)
	}
	if len(f.Body) != 1 {
		t.Fatalf("want 1 body statement, got %d", len(f.Body))
	}
}

func Test_Parser_For_Empty_Header_Parts(t *testing.T) {
	prog := parse(t, `for (;;) { x = 1; }`)
	f := prog.Stmts[0].(*ForStmt)
	if f.Init != nil || f.Cond != nil || f.Post != nil {
		t.Fatalf("want empty header parts, got %#v", f)
	}
}

func Test_Parser_While_And_DoWhile(t *testing.T) {
	prog := parse(t, `while (a > 0) a--;
do { b++; } while (b < 3);
`)
	w := prog.Stmts[0].(*WhileStmt)
	if w.Cond.String() != "a > 0" || len(w.Body) != 1 {
		t.Fatalf("unexpected while: %#v", w)
	}
	d := prog.Stmts[1].(*DoWhileStmt)
	if d.Cond.String() != "b < 3" || len(d.Body) != 1 {
		t.Fatalf("unexpected do-while: %#v", d)
	}
}

func Test_Parser_If_Else_Chain_Shape(t *testing.T) {
	prog := parse(t, `if (a == 1) {
    x = 1;
} else if (a == 2) {
    x = 2;
} else {
    x = 3;
}
`)
	top := prog.Stmts[0].(*IfStmt)
	if !top.ElseIsChain || len(top.Else) != 1 {
		t.Fatalf("want else-if chain, got %#v", top)
	}
	nested := top.Else[0].(*IfStmt)
	if nested.ElseIsChain || len(nested.Else) != 1 {
		t.Fatalf("want plain else on the nested if, got %#v", nested)
	}
	if nested.Cond.String() != "a == 2" {
		t.Fatalf("want nested condition 'a == 2', got %q", nested.Cond.String())
	}
}

func Test_Parser_Output_Statement_Parts(t *testing.T) {
	prog := parse(t, `cout << "x=" << x << endl;`)
	out := prog.Stmts[0].(*OutputStmt)
	if len(out.Parts) != 3 {
		t.Fatalf("want 3 parts, got %d", len(out.Parts))
	}
	last := out.Parts[2].(*StrLit)
	if !last.Endl || last.Value != "\n" {
		t.Fatalf("want endl part, got %#v", last)
	}
}

func Test_Parser_Expression_Precedence_Rendering(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`x = a + b * c;`, "a + b * c"},
		{`x = (a + b) * c;`, "(a + b) * c"},
		{`x = a < b && c < d;`, "a < b && c < d"},
		{`x = -a + b;`, "-a + b"},
	}
	for _, c := range cases {
		prog := parse(t, c.src)
		got := prog.Stmts[0].(*AssignStmt).Value.String()
		if got != c.want {
			t.Fatalf("%s: want rendering %q, got %q", c.src, c.want, got)
		}
	}
}

func Test_Parser_Error_Positions_Are_1Based(t *testing.T) {
	_, err := ParseProgram("int a = 1;\nint = 2;\n")
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if pe.Line != 2 {
		t.Fatalf("want error on line 2, got %d", pe.Line)
	}
}

func Test_Parser_Caret_Snippet_Rendering(t *testing.T) {
	src := "int a = 1;\nint = 2;\n"
	_, err := ParseProgram(src)
	wrapped := WrapErrorWithSource(err, src)
	msg := wrapped.Error()
	if !strings.Contains(msg, "PARSE ERROR") || !strings.Contains(msg, "^") {
		t.Fatalf("want caret snippet, got:\n%s", msg)
	}
	if !strings.Contains(msg, "   2 | int = 2;") {
		t.Fatalf("want numbered source line in snippet, got:\n%s", msg)
	}
}
