// eval.go — expression evaluation against the live variable table.
//
// Conditions and right-hand sides support identifiers, integer literals,
// the six relational operators, logical and/or/not, integer arithmetic
// with floor division, and pre/post increment/decrement with the usual
// value semantics (prefix yields the new value, postfix the old one,
// both store the new one).
//
// Failure is loud by design: an unknown identifier is UnknownVariable and
// a non-numeric operand is TypeMismatch, both surfaced as *RuntimeError
// that halts the interpreter. Silently defaulting unknowns to zero would
// corrupt the trace with wrong values, which is worse than stopping.
package stepscope

import "fmt"

// evaluator resolves identifiers in, and writes increments back to, one
// run's variable table. It is owned by a single interpreter run; nothing
// here is shared between sessions.
type evaluator struct {
	vars map[string]Value
}

func (ev *evaluator) rtErr(code RuntimeCode, line int, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Line: line, Col: 1, Msg: fmt.Sprintf(format, args...)}
}

func (ev *evaluator) eval(x Expr) (Value, error) {
	switch e := x.(type) {
	case *IntLit:
		return Int(e.Value), nil
	case *StrLit:
		return Text(e.Value), nil
	case *BoolLit:
		return Bool(e.Value), nil
	case *Ident:
		v, ok := ev.vars[e.Name]
		if !ok {
			return Value{}, ev.rtErr(UnknownVariable, e.Line, "undefined variable: %s", e.Name)
		}
		return v, nil
	case *UnaryExpr:
		return ev.evalUnary(e)
	case *BinaryExpr:
		return ev.evalBinary(e)
	default:
		return Value{}, ev.rtErr(TypeMismatch, x.exprLine(), "unsupported expression")
	}
}

// evalCond evaluates x in a condition position.
func (ev *evaluator) evalCond(x Expr) (bool, error) {
	v, err := ev.eval(x)
	if err != nil {
		return false, err
	}
	b, terr := v.Truthy()
	if terr != nil {
		return false, ev.rtErr(TypeMismatch, x.exprLine(), "%v", terr)
	}
	return b, nil
}

func (ev *evaluator) evalUnary(e *UnaryExpr) (Value, error) {
	switch e.Op {
	case "-":
		v, err := ev.eval(e.X)
		if err != nil {
			return Value{}, err
		}
		switch v.Tag {
		case VTInt:
			return Int(-v.Data.(int64)), nil
		case VTFloat:
			return Float(-v.Data.(float64)), nil
		}
		return Value{}, ev.rtErr(TypeMismatch, e.Line, "cannot negate %s", v.TypeName())
	case "!":
		b, err := ev.evalCond(e.X)
		if err != nil {
			return Value{}, err
		}
		return Bool(!b), nil
	case "++", "--":
		return ev.evalIncDec(e)
	}
	return Value{}, ev.rtErr(TypeMismatch, e.Line, "unsupported unary operator %q", e.Op)
}

// evalIncDec implements ++x / x++ / --x / x-- with correct pre/post value
// semantics. The operand is always an identifier (the parser enforces it).
func (ev *evaluator) evalIncDec(e *UnaryExpr) (Value, error) {
	id := e.X.(*Ident)
	old, ok := ev.vars[id.Name]
	if !ok {
		return Value{}, ev.rtErr(UnknownVariable, id.Line, "undefined variable: %s", id.Name)
	}
	n, isInt := old.AsInt()
	if !isInt {
		return Value{}, ev.rtErr(TypeMismatch, id.Line, "cannot apply %s to %s %s", e.Op, old.TypeName(), id.Name)
	}
	delta := int64(1)
	if e.Op == "--" {
		delta = -1
	}
	updated := Int(n + delta)
	ev.vars[id.Name] = updated
	if e.Postfix {
		return old, nil
	}
	return updated, nil
}

func (ev *evaluator) evalBinary(e *BinaryExpr) (Value, error) {
	// Short-circuit logicals evaluate the right side lazily.
	switch e.Op {
	case "&&":
		l, err := ev.evalCond(e.LHS)
		if err != nil {
			return Value{}, err
		}
		if !l {
			return Bool(false), nil
		}
		r, err := ev.evalCond(e.RHS)
		if err != nil {
			return Value{}, err
		}
		return Bool(r), nil
	case "||":
		l, err := ev.evalCond(e.LHS)
		if err != nil {
			return Value{}, err
		}
		if l {
			return Bool(true), nil
		}
		r, err := ev.evalCond(e.RHS)
		if err != nil {
			return Value{}, err
		}
		return Bool(r), nil
	}

	l, err := ev.eval(e.LHS)
	if err != nil {
		return Value{}, err
	}
	r, err := ev.eval(e.RHS)
	if err != nil {
		return Value{}, err
	}

	switch e.Op {
	case "==", "!=":
		eq := l.Equal(r)
		if e.Op == "!=" {
			eq = !eq
		}
		return Bool(eq), nil
	case "<", "<=", ">", ">=":
		ln, lok := l.numeric()
		rn, rok := r.numeric()
		if !lok || !rok {
			return Value{}, ev.rtErr(TypeMismatch, e.Line, "cannot compare %s and %s", l.TypeName(), r.TypeName())
		}
		var res bool
		switch e.Op {
		case "<":
			res = ln < rn
		case "<=":
			res = ln <= rn
		case ">":
			res = ln > rn
		case ">=":
			res = ln >= rn
		}
		return Bool(res), nil
	case "+", "-", "*", "/", "%":
		return ev.arith(e, l, r)
	}
	return Value{}, ev.rtErr(TypeMismatch, e.Line, "unsupported operator %q", e.Op)
}

func (ev *evaluator) arith(e *BinaryExpr, l, r Value) (Value, error) {
	li, lInt := l.AsInt()
	ri, rInt := r.AsInt()
	if lInt && rInt {
		switch e.Op {
		case "+":
			return Int(li + ri), nil
		case "-":
			return Int(li - ri), nil
		case "*":
			return Int(li * ri), nil
		case "/":
			if ri == 0 {
				return Value{}, ev.rtErr(DivisionByZero, e.Line, "division by zero")
			}
			// Floor semantics: -7 / 2 == -4, not -3.
			return Int(floorDiv(li, ri)), nil
		case "%":
			if ri == 0 {
				return Value{}, ev.rtErr(DivisionByZero, e.Line, "modulo by zero")
			}
			return Int(floorMod(li, ri)), nil
		}
	}
	ln, lok := l.numeric()
	rn, rok := r.numeric()
	if !lok || !rok {
		return Value{}, ev.rtErr(TypeMismatch, e.Line, "non-numeric operand for %q (%s, %s)", e.Op, l.TypeName(), r.TypeName())
	}
	switch e.Op {
	case "+":
		return Float(ln + rn), nil
	case "-":
		return Float(ln - rn), nil
	case "*":
		return Float(ln * rn), nil
	case "/":
		if rn == 0 {
			return Value{}, ev.rtErr(DivisionByZero, e.Line, "division by zero")
		}
		return Float(ln / rn), nil
	case "%":
		return Value{}, ev.rtErr(TypeMismatch, e.Line, "modulo requires integer operands")
	}
	return Value{}, ev.rtErr(TypeMismatch, e.Line, "unsupported operator %q", e.Op)
}
