// scope.go — nested name→declaration-site bindings for one traversal.
//
// A Scope is a stack of identifier tables maintained while walking a
// program: push on entering a block or function body, pop on leaving.
// Resolution walks innermost-first, exactly like the interpreter's
// environment chain in the language this tracer observes. Scopes are used
// only during instrumentation and interpretation; they are never
// persisted into a trace.
//
// The tracer is best-effort, not a type checker: resolving a name that
// was never declared is not an error here. The instrumenter treats such
// assignments as implicit declarations in the current scope
// (DeclareImplicit) rather than failing instrumentation.
package stepscope

// Decl is the declaration metadata recorded for one identifier.
type Decl struct {
	Name     string
	VarType  string // declared type text; empty for implicit declarations
	Line     int    // 1-based line of the declaration site
	Depth    int    // scope depth at declaration (0 = outermost)
	Implicit bool   // true when synthesized from an unresolved assignment
}

// Scope is a stack of mappings from identifier to declaration metadata.
// The zero value is unusable; call NewScope.
type Scope struct {
	frames []map[string]Decl
}

// NewScope returns a scope tracker with one open (outermost) frame.
func NewScope() *Scope {
	return &Scope{frames: []map[string]Decl{{}}}
}

// Push opens a nested frame (entering a block or function body).
func (s *Scope) Push() {
	s.frames = append(s.frames, map[string]Decl{})
}

// Pop discards the innermost frame and every binding declared in it.
// Popping the outermost frame is a no-op; callers pairing Push/Pop during
// a traversal never hit that case.
func (s *Scope) Pop() map[string]Decl {
	if len(s.frames) <= 1 {
		return nil
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

// Depth returns the current nesting depth (0 = outermost frame only).
func (s *Scope) Depth() int { return len(s.frames) - 1 }

// Declare binds name in the innermost frame, shadowing outer bindings.
func (s *Scope) Declare(name, varType string, line int) Decl {
	d := Decl{Name: name, VarType: varType, Line: line, Depth: s.Depth()}
	s.frames[len(s.frames)-1][name] = d
	return d
}

// DeclareImplicit records an unresolved assignment target as a
// declaration in the current scope. Best-effort tracing must not fail on
// names it has never seen.
func (s *Scope) DeclareImplicit(name string, line int) Decl {
	d := Decl{Name: name, Line: line, Depth: s.Depth(), Implicit: true}
	s.frames[len(s.frames)-1][name] = d
	return d
}

// Resolve walks the frames innermost-first and returns the nearest
// binding for name.
func (s *Scope) Resolve(name string) (Decl, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if d, ok := s.frames[i][name]; ok {
			return d, true
		}
	}
	return Decl{}, false
}
