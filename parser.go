// parser.go — recursive-descent statement parser + precedence-climbing
// expression parser for the restricted C subset.
//
// OVERVIEW
// --------
// The grammar deliberately accepts only the conservative subset the
// eligibility classifier admits: integer declarations with initializers,
// compound assignments, the three loop forms with canonical headers,
// if/else chains, and single-expression `cout` output statements. The
// parser consumes the token stream from lexer.go and builds the typed
// tree in ast.go; every node records the 1-based line of its first token.
//
// Accepted top-level shapes:
//   - a bare statement sequence, or
//   - `int main() { ... }` wrapping one (the wrapper is unwrapped and
//     flagged on Program so the interpreter emits a function_enter step).
//
// Preprocessor lines never reach the parser (the lexer eats them) and
// `using namespace std;` style lines are skipped here. Everything else
// outside the grammar is a *ParseError with the offending token's
// position — callers render it with the caret snippet in errors.go.
//
// Expression precedence (lowest to highest):
//
//	||  <  &&  <  == !=  <  < <= > >=  <  + -  <  * / %  <  unary
//
// Increment/decrement (prefix and postfix) only apply to identifiers.
package stepscope

import "fmt"

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// ParseProgram lexes and parses source into a Program. Errors are
// *LexError or *ParseError; wrap with WrapErrorWithSource for display.
func ParseProgram(src string) (*Program, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseProgram()
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if t.Type != EOF {
		p.pos++
	}
	return t
}

func (p *parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errf("expected %s", what)
}

func (p *parser) errf(format string, args ...any) error {
	t := p.peek()
	return &ParseError{Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{}
	for !p.check(EOF) {
		// `using namespace std;` and friends: skip to the semicolon.
		if p.check(ID) && p.peek().Lexeme == "using" {
			for !p.check(SEMI) && !p.check(EOF) {
				p.advance()
			}
			p.match(SEMI)
			continue
		}
		// `int main() { ... }` wrapper.
		if typeKeyword(p.peek().Type) && p.peekAt(1).Type == ID &&
			p.peekAt(1).Lexeme == "main" && p.peekAt(2).Type == LPAREN {
			if prog.HasMain {
				return nil, p.errf("multiple main definitions")
			}
			mainTok := p.advance() // type keyword
			p.advance()           // "main"
			p.advance()           // "("
			if _, err := p.expect(RPAREN, "')' after main()"); err != nil {
				return nil, err
			}
			if _, err := p.expect(LBRACE, "'{' to open main"); err != nil {
				return nil, err
			}
			body, err := p.parseBlockBody()
			if err != nil {
				return nil, err
			}
			prog.HasMain = true
			prog.MainLine = mainTok.Line
			prog.Stmts = append(prog.Stmts, body...)
			continue
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, st)
	}
	return prog, nil
}

// parseBlockBody parses statements until the matching '}'.
func (p *parser) parseBlockBody() ([]Stmt, error) {
	var body []Stmt
	for !p.check(RBRACE) {
		if p.check(EOF) {
			return nil, p.errf("unexpected end of input, expected '}'")
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, st)
	}
	p.advance() // '}'
	return body, nil
}

// parseBody parses a loop/conditional body: either a braced block or a
// single statement.
func (p *parser) parseBody() ([]Stmt, error) {
	if p.match(LBRACE) {
		return p.parseBlockBody()
	}
	st, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return []Stmt{st}, nil
}

func (p *parser) parseStmt() (Stmt, error) {
	switch t := p.peek(); {
	case typeKeyword(t.Type):
		return p.parseDecl(true)
	case t.Type == KW_FOR:
		return p.parseFor()
	case t.Type == KW_WHILE:
		return p.parseWhile()
	case t.Type == KW_DO:
		return p.parseDoWhile()
	case t.Type == KW_IF:
		return p.parseIf()
	case t.Type == KW_COUT:
		return p.parseOutput()
	case t.Type == KW_RETURN:
		return p.parseReturn()
	case t.Type == LBRACE:
		p.advance()
		body, err := p.parseBlockBody()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Line: t.Line, Body: body}, nil
	case t.Type == INC || t.Type == DEC:
		return p.parsePrefixIncDec(true)
	case t.Type == ID:
		return p.parseAssign(true)
	default:
		return nil, p.errf("unexpected token %q at statement start", t.Lexeme)
	}
}

// parseDecl parses `TYPE name = expr;`. Multi-variable declarations on
// one statement are outside the grammar; the eligibility classifier
// routes them away and the parser reports them descriptively rather than
// mis-parsing (see DESIGN.md).
func (p *parser) parseDecl(wantSemi bool) (Stmt, error) {
	typeTok := p.advance()
	typeText := typeTok.Lexeme
	for typeKeyword(p.peek().Type) { // "long long"
		typeText += " " + p.advance().Lexeme
	}
	nameTok, err := p.expect(ID, "variable name after type")
	if err != nil {
		return nil, err
	}
	var init Expr
	if p.match(ASSIGN) {
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if p.check(COMMA) {
		return nil, p.errf("multi-variable declarations are not supported; declare each variable in its own statement")
	}
	if wantSemi {
		if _, err := p.expect(SEMI, "';' after declaration"); err != nil {
			return nil, err
		}
	}
	return &DeclStmt{Line: typeTok.Line, VarType: typeText, Name: nameTok.Lexeme, Init: init}, nil
}

// parseAssign parses `name OP expr;` or the postfix `name++;` forms.
func (p *parser) parseAssign(wantSemi bool) (Stmt, error) {
	nameTok := p.advance()
	t := p.peek()
	if t.Type == INC || t.Type == DEC {
		p.advance()
		if wantSemi {
			if _, err := p.expect(SEMI, "';' after expression"); err != nil {
				return nil, err
			}
		}
		return &IncDecStmt{Line: nameTok.Line, Name: nameTok.Lexeme, Op: incDecOpText(t.Type)}, nil
	}
	op, ok := assignOpText(t.Type)
	if !ok {
		return nil, p.errf("expected assignment operator after %q", nameTok.Lexeme)
	}
	p.advance()
	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if wantSemi {
		if _, err := p.expect(SEMI, "';' after assignment"); err != nil {
			return nil, err
		}
	}
	return &AssignStmt{Line: nameTok.Line, Name: nameTok.Lexeme, Op: op, Value: v}, nil
}

func (p *parser) parsePrefixIncDec(wantSemi bool) (Stmt, error) {
	opTok := p.advance()
	nameTok, err := p.expect(ID, "identifier after increment/decrement")
	if err != nil {
		return nil, err
	}
	if wantSemi {
		if _, err := p.expect(SEMI, "';' after expression"); err != nil {
			return nil, err
		}
	}
	return &IncDecStmt{Line: opTok.Line, Name: nameTok.Lexeme, Op: incDecOpText(opTok.Type)}, nil
}

func (p *parser) parseFor() (Stmt, error) {
	forTok := p.advance()
	if _, err := p.expect(LPAREN, "'(' after for"); err != nil {
		return nil, err
	}
	var init Stmt
	var err error
	if !p.check(SEMI) {
		if typeKeyword(p.peek().Type) {
			init, err = p.parseDecl(false)
		} else if p.check(ID) {
			init, err = p.parseAssign(false)
		} else {
			err = p.errf("expected declaration or assignment in for initializer")
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMI, "';' after for initializer"); err != nil {
		return nil, err
	}
	var cond Expr
	if !p.check(SEMI) {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMI, "';' after for condition"); err != nil {
		return nil, err
	}
	var post Stmt
	if !p.check(RPAREN) {
		if p.check(INC) || p.check(DEC) {
			post, err = p.parsePrefixIncDec(false)
		} else if p.check(ID) {
			post, err = p.parseAssign(false)
		} else {
			err = p.errf("expected increment in for header")
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RPAREN, "')' to close for header"); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Line: forTok.Line, Init: init, Cond: cond, Post: post, Body: body}, nil
}

func (p *parser) parseWhile() (Stmt, error) {
	tok := p.advance()
	if _, err := p.expect(LPAREN, "'(' after while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "')' after while condition"); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Line: tok.Line, Cond: cond, Body: body}, nil
}

func (p *parser) parseDoWhile() (Stmt, error) {
	tok := p.advance()
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KW_WHILE, "'while' after do block"); err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, "'(' after while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "')' after do-while condition"); err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMI, "';' after do-while"); err != nil {
		return nil, err
	}
	return &DoWhileStmt{Line: tok.Line, Cond: cond, Body: body}, nil
}

func (p *parser) parseIf() (Stmt, error) {
	tok := p.advance()
	if _, err := p.expect(LPAREN, "'(' after if"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "')' after if condition"); err != nil {
		return nil, err
	}
	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	st := &IfStmt{Line: tok.Line, Cond: cond, Then: then}
	if p.check(KW_ELSE) {
		elseTok := p.advance()
		st.ElseLine = elseTok.Line
		if p.check(KW_IF) {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			st.Else = []Stmt{nested}
			st.ElseIsChain = true
		} else {
			st.Else, err = p.parseBody()
			if err != nil {
				return nil, err
			}
		}
	}
	return st, nil
}

// parseOutput parses `cout << part << part ... ;`.
func (p *parser) parseOutput() (Stmt, error) {
	tok := p.advance()
	st := &OutputStmt{Line: tok.Line}
	for {
		if _, err := p.expect(SHIFT_LEFT, "'<<' in output statement"); err != nil {
			return nil, err
		}
		part, err := p.parseOutputPart()
		if err != nil {
			return nil, err
		}
		st.Parts = append(st.Parts, part)
		if !p.check(SHIFT_LEFT) {
			break
		}
	}
	if _, err := p.expect(SEMI, "';' after output statement"); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *parser) parseOutputPart() (Expr, error) {
	if p.check(KW_ENDL) {
		t := p.advance()
		return &StrLit{Line: t.Line, Value: "\n", Endl: true}, nil
	}
	return p.parseExpr()
}

func (p *parser) parseReturn() (Stmt, error) {
	tok := p.advance()
	st := &ReturnStmt{Line: tok.Line}
	if !p.check(SEMI) {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		st.Value = v
	}
	if _, err := p.expect(SEMI, "';' after return"); err != nil {
		return nil, err
	}
	return st, nil
}

// --- expressions -----------------------------------------------------------

func (p *parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (Expr, error) {
	return p.parseBinary(p.parseAnd, map[TokenType]string{OR_OR: "||"})
}

func (p *parser) parseAnd() (Expr, error) {
	return p.parseBinary(p.parseEquality, map[TokenType]string{AND_AND: "&&"})
}

func (p *parser) parseEquality() (Expr, error) {
	return p.parseBinary(p.parseRelational, map[TokenType]string{EQ: "==", NEQ: "!="})
}

func (p *parser) parseRelational() (Expr, error) {
	return p.parseBinary(p.parseAdditive, map[TokenType]string{
		LESS: "<", LESS_EQ: "<=", GREATER: ">", GREATER_EQ: ">=",
	})
}

func (p *parser) parseAdditive() (Expr, error) {
	return p.parseBinary(p.parseMultiplicative, map[TokenType]string{PLUS: "+", MINUS: "-"})
}

func (p *parser) parseMultiplicative() (Expr, error) {
	return p.parseBinary(p.parseUnary, map[TokenType]string{STAR: "*", SLASH: "/", PERCENT: "%"})
}

func (p *parser) parseBinary(next func() (Expr, error), ops map[TokenType]string) (Expr, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek().Type]
		if !ok {
			return lhs, nil
		}
		opTok := p.advance()
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpr{Line: opTok.Line, Op: op, LHS: lhs, RHS: rhs}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	switch t := p.peek(); t.Type {
	case MINUS:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Line: t.Line, Op: "-", X: x}, nil
	case BANG:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Line: t.Line, Op: "!", X: x}, nil
	case INC, DEC:
		p.advance()
		nameTok, err := p.expect(ID, "identifier after prefix increment/decrement")
		if err != nil {
			return nil, err
		}
		x := &Ident{Line: nameTok.Line, Name: nameTok.Lexeme}
		return &UnaryExpr{Line: t.Line, Op: incDecOpText(t.Type), X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if id, ok := x.(*Ident); ok && (p.check(INC) || p.check(DEC)) {
		opTok := p.advance()
		return &UnaryExpr{Line: id.Line, Op: incDecOpText(opTok.Type), X: id, Postfix: true}, nil
	}
	return x, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	switch t := p.peek(); t.Type {
	case INTEGER:
		p.advance()
		return &IntLit{Line: t.Line, Value: t.Literal.(int64)}, nil
	case STRING:
		p.advance()
		return &StrLit{Line: t.Line, Value: t.Literal.(string)}, nil
	case KW_TRUE, KW_FALSE:
		p.advance()
		return &BoolLit{Line: t.Line, Value: t.Literal.(bool)}, nil
	case ID:
		p.advance()
		return &Ident{Line: t.Line, Name: t.Lexeme}, nil
	case LPAREN:
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "')' to close expression"); err != nil {
			return nil, err
		}
		return x, nil
	default:
		return nil, p.errf("unexpected token %q in expression", t.Lexeme)
	}
}

// --- operator text ---------------------------------------------------------

func assignOpText(tt TokenType) (string, bool) {
	switch tt {
	case ASSIGN:
		return "=", true
	case PLUS_ASSIGN:
		return "+=", true
	case MINUS_ASSIGN:
		return "-=", true
	case STAR_ASSIGN:
		return "*=", true
	case SLASH_ASSIGN:
		return "/=", true
	case PERCENT_ASSIGN:
		return "%=", true
	}
	return "", false
}

func incDecOpText(tt TokenType) string {
	if tt == INC {
		return "++"
	}
	return "--"
}
