// ast.go — the lightweight tree for the restricted C subset.
//
// The grammar is fixed and small, so the nodes form a closed set of
// struct variants instead of a generic tree. Every node carries the
// 1-based source line of the token that started it; trace steps are
// keyed to those lines.
//
// Expr nodes render themselves back to canonical text via String(); that
// text is what appears in step payloads ("a > b", "i <= 3"). Rendering is
// deterministic so replayed traces compare byte-for-byte.
package stepscope

import (
	"strconv"
	"strings"
)

// Program is a parsed restricted-subset program. When the source wrapped
// its statements in `int main() { ... }`, HasMain is set and MainLine
// records the definition line; the interpreter then emits a
// function_enter step before the first statement.
type Program struct {
	Stmts    []Stmt
	HasMain  bool
	MainLine int
}

// Stmt is one executable statement.
type Stmt interface {
	stmtLine() int
}

// DeclStmt is `TYPE name = expr;` (or `TYPE name;`, defaulting to 0).
type DeclStmt struct {
	Line    int
	VarType string
	Name    string
	Init    Expr // nil means zero-initialized
}

// AssignStmt is `name OP expr;` where OP is one of = += -= *= /= %=.
type AssignStmt struct {
	Line  int
	Name  string
	Op    string
	Value Expr
}

// IncDecStmt is a bare `i++;`, `++i;`, `i--;` or `--i;` statement.
type IncDecStmt struct {
	Line int
	Name string
	Op   string // "++" or "--"
}

// OutputStmt is a `cout << a << " " << endl;` chain.
type OutputStmt struct {
	Line  int
	Parts []Expr
}

// BlockStmt is a bare `{ ... }` block.
type BlockStmt struct {
	Line int
	Body []Stmt
}

// IfStmt is an if/else-if/else chain. An `else if` is parsed as an Else
// slice holding a single IfStmt with ElseIsChain set on the parent, so
// the chain emits one if_condition step per condition and an else_branch
// step only for a plain trailing else.
type IfStmt struct {
	Line        int
	Cond        Expr
	Then        []Stmt
	Else        []Stmt
	ElseLine    int
	ElseIsChain bool
}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	Line int
	Cond Expr
	Body []Stmt
}

// DoWhileStmt is `do body while (cond);`.
type DoWhileStmt struct {
	Line int
	Cond Expr
	Body []Stmt
}

// ForStmt is the canonical `for (TYPE? name = start; cond; incr) body`.
type ForStmt struct {
	Line int
	Init Stmt // *DeclStmt or *AssignStmt; nil allowed
	Cond Expr // nil means always true
	Post Stmt // *AssignStmt or *IncDecStmt; nil allowed
	Body []Stmt
}

// ReturnStmt terminates execution (`return 0;` in main). The value is
// parsed but has no observable effect on the trace.
type ReturnStmt struct {
	Line  int
	Value Expr
}

func (s *DeclStmt) stmtLine() int    { return s.Line }
func (s *AssignStmt) stmtLine() int  { return s.Line }
func (s *IncDecStmt) stmtLine() int  { return s.Line }
func (s *OutputStmt) stmtLine() int  { return s.Line }
func (s *BlockStmt) stmtLine() int   { return s.Line }
func (s *IfStmt) stmtLine() int      { return s.Line }
func (s *WhileStmt) stmtLine() int   { return s.Line }
func (s *DoWhileStmt) stmtLine() int { return s.Line }
func (s *ForStmt) stmtLine() int     { return s.Line }
func (s *ReturnStmt) stmtLine() int  { return s.Line }

// Expr is one expression node.
type Expr interface {
	exprLine() int
	String() string
}

// Ident references a variable.
type Ident struct {
	Line int
	Name string
}

// IntLit is an integer literal.
type IntLit struct {
	Line  int
	Value int64
}

// StrLit is a string (or single-character) literal. Endl marks the
// `endl` keyword, which evaluates to "\n" but renders as `endl`.
type StrLit struct {
	Line  int
	Value string
	Endl  bool
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Line  int
	Value bool
}

// UnaryExpr covers prefix `-x`, `!x`, `++x`, `--x` and postfix
// `x++`, `x--` (Postfix set). Increment/decrement operands are always
// identifiers; the parser enforces that.
type UnaryExpr struct {
	Line    int
	Op      string
	X       Expr
	Postfix bool
}

// BinaryExpr covers arithmetic, relational and logical operators.
type BinaryExpr struct {
	Line int
	Op   string
	LHS  Expr
	RHS  Expr
}

func (e *Ident) exprLine() int      { return e.Line }
func (e *IntLit) exprLine() int     { return e.Line }
func (e *StrLit) exprLine() int     { return e.Line }
func (e *BoolLit) exprLine() int    { return e.Line }
func (e *UnaryExpr) exprLine() int  { return e.Line }
func (e *BinaryExpr) exprLine() int { return e.Line }

func (e *Ident) String() string  { return e.Name }
func (e *IntLit) String() string { return strconv.FormatInt(e.Value, 10) }

func (e *StrLit) String() string {
	if e.Endl {
		return "endl"
	}
	return strconv.Quote(e.Value)
}

func (e *BoolLit) String() string { return strconv.FormatBool(e.Value) }

func (e *UnaryExpr) String() string {
	if e.Postfix {
		return e.X.String() + e.Op
	}
	return e.Op + e.X.String()
}

func (e *BinaryExpr) String() string {
	var b strings.Builder
	b.WriteString(operandText(e.LHS, e.Op))
	b.WriteByte(' ')
	b.WriteString(e.Op)
	b.WriteByte(' ')
	b.WriteString(operandText(e.RHS, e.Op))
	return b.String()
}

// operandText parenthesizes a nested binary operand of different
// precedence so the rendered condition is unambiguous.
func operandText(x Expr, parentOp string) string {
	if sub, ok := x.(*BinaryExpr); ok && opPrecedence(sub.Op) < opPrecedence(parentOp) {
		return "(" + sub.String() + ")"
	}
	return x.String()
}

func opPrecedence(op string) int {
	switch op {
	case "||":
		return 1
	case "&&":
		return 2
	case "==", "!=":
		return 3
	case "<", "<=", ">", ">=":
		return 4
	case "+", "-":
		return 5
	case "*", "/", "%":
		return 6
	}
	return 7
}
