// instrument.go — source instrumenter for the compile-and-run trace path.
//
// Instrument takes a C/C++ translation unit and returns an equivalent
// one with trace probes injected after every declaration, assignment,
// and increment/decrement it can attribute to a statement. Each probe
// writes one line to stderr in the wire format
//
//	SSCOPE:<line>:<type>:<jsonPayload>
//
// which ParseProbeLog later folds back into an ExecutionTrace. The
// instrumenter is deliberately regex-and-scope based rather than a full
// parser: it must survive arbitrary compilable programs, including ones
// the restricted interpreter rejects, and a probe it cannot place is
// simply not placed.
package stepscope

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// probePrefix is the stderr marker the emitted helper writes and the
// probe-log parser splits on.
const probePrefix = "SSCOPE"

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// Instrument returns source with trace probes injected. The result is a
// compilable translation unit; all probe output goes to stderr so the
// program's own stdout is unchanged.
func Instrument(source string) (string, error) {
	ins := &instrumenter{
		scope: NewScope(),
		lines: splitLogicalLines(source),
	}
	ins.scan()
	return ins.render(source)
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

// logicalLine is one or more physical source lines joined so that no
// string literal is left open across the unit we scan. start is the
// 1-based physical line the unit begins on; probes are keyed to it but
// spliced after end, so a statement joined across lines is never split
// by its own probe.
type logicalLine struct {
	start int
	end   int
	text  string
}

// edit is a probe insertion: after physical line `after`, insert `code`.
type edit struct {
	after int
	code  string
}

type instrumenter struct {
	scope *Scope
	lines []logicalLine
	edits []edit
}

var (
	declLineRe   = regexp.MustCompile(`\b(int|long long|long|short|bool|char|float|double)\s+([A-Za-z_]\w*)\s*(=[^;]*)?;`)
	assignLineRe = regexp.MustCompile(`(^|[^=!<>+\-*/%&|^])\b([A-Za-z_]\w*)\s*([-+*/%]?=)[^=]`)
	incDecRe     = regexp.MustCompile(`\b([A-Za-z_]\w*)\s*(\+\+|--)|(\+\+|--)\s*([A-Za-z_]\w*)`)
	forHeaderRe  = regexp.MustCompile(`\bfor\s*\(`)
)

// scan walks the logical lines tracking brace depth with the shared
// Scope so redeclarations shadow correctly, and records a probe edit
// for every declaration or mutation it can attribute.
func (ins *instrumenter) scan() {
	for _, ll := range ins.lines {
		text := stripLiterals(ll.text)

		for i := 0; i < strings.Count(text, "{"); i++ {
			ins.scope.Push()
		}

		// A multi-variable declaration cannot be keyed to one probe per
		// name; the statement is left untraced rather than mis-traced.
		if _, multi := checkMultiDecl(text); !multi {
			ins.scanStatement(ll, text)
		}

		for i := 0; i < strings.Count(text, "}"); i++ {
			ins.scope.Pop()
		}
	}
}

func (ins *instrumenter) scanStatement(ll logicalLine, text string) {
	inFor := forHeaderRe.MatchString(text)

	declaredHere := map[string]bool{}
	for _, m := range declLineRe.FindAllStringSubmatch(text, -1) {
		typ, name := m[1], m[2]
		ins.scope.Declare(name, typ, ll.start)
		declaredHere[name] = true
		if !inFor {
			ins.addProbe(ll, "declare", name, typ)
		}
	}
	for _, m := range assignLineRe.FindAllStringSubmatch(text, -1) {
		name := m[2]
		// A declaration's initializer is already covered by its
		// declare probe.
		if isKeywordName(name) || inFor || declaredHere[name] {
			continue
		}
		if _, ok := ins.scope.Resolve(name); !ok {
			ins.scope.DeclareImplicit(name, ll.start)
		}
		ins.addProbe(ll, "assign", name, "")
	}
	if !inFor {
		for _, m := range incDecRe.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if name == "" {
				name = m[4]
			}
			if name == "" || isKeywordName(name) {
				continue
			}
			if _, ok := ins.scope.Resolve(name); !ok {
				continue
			}
			ins.addProbe(ll, "assign", name, "")
		}
	}
}

// addProbe keys the probe id to the statement's first physical line but
// splices the call after its last one.
func (ins *instrumenter) addProbe(ll logicalLine, typ, name, varType string) {
	var code string
	switch typ {
	case "declare":
		code = fmt.Sprintf(`__sscope_log(%d, "declare", __sscope_json("name", "%s", "varType", "%s", "value", __sscope_repr(%s)));`,
			ll.start, name, varType, name)
	case "assign":
		code = fmt.Sprintf(`__sscope_log(%d, "assign", __sscope_json("name", "%s", "value", __sscope_repr(%s)));`,
			ll.start, name, name)
	}
	ins.edits = append(ins.edits, edit{after: ll.end, code: code})
}

// render applies the recorded edits to the original source in reverse
// line order, then splices the helper prelude after the last
// preprocessor directive.
func (ins *instrumenter) render(source string) (string, error) {
	phys := strings.Split(source, "\n")

	sort.SliceStable(ins.edits, func(i, j int) bool {
		return ins.edits[i].after > ins.edits[j].after
	})
	for _, e := range ins.edits {
		if e.after < 1 || e.after > len(phys) {
			continue
		}
		phys = append(phys[:e.after], append([]string{e.code}, phys[e.after:]...)...)
	}

	preludeAt := 0
	for i, ln := range phys {
		if strings.HasPrefix(strings.TrimSpace(ln), "#") {
			preludeAt = i + 1
		}
	}
	out := make([]string, 0, len(phys)+16)
	out = append(out, phys[:preludeAt]...)
	out = append(out, probePrelude)
	out = append(out, phys[preludeAt:]...)
	return strings.Join(out, "\n"), nil
}

// probePrelude is the C++ helper block every instrumented unit carries.
// It is self-contained and writes only to stderr.
const probePrelude = `#include <cstdio>
#include <sstream>
#include <string>
template <typename T> static std::string __sscope_repr(const T& v) {
    std::ostringstream os; os << v; return os.str();
}
static std::string __sscope_quote(const std::string& v) {
    std::string out = "\"";
    for (std::string::size_type i = 0; i < v.size(); ++i) {
        switch (v[i]) {
        case '"': out += "\\\""; break;
        case '\\': out += "\\\\"; break;
        case '\n': out += "\\n"; break;
        case '\r': out += "\\r"; break;
        case '\t': out += "\\t"; break;
        default: out += v[i]; break;
        }
    }
    return out + "\"";
}
static std::string __sscope_repr(const std::string& v) { return __sscope_quote(v); }
static std::string __sscope_repr(const char* v) { return __sscope_quote(std::string(v)); }
static std::string __sscope_repr(bool v) { return v ? "true" : "false"; }
static std::string __sscope_json() { return ""; }
template <typename V, typename... Rest>
static std::string __sscope_json(const std::string& k, const V& v, Rest... rest) {
    std::ostringstream os;
    os << "\"" << k << "\":" << __sscope_repr(v);
    std::string tail = __sscope_json(rest...);
    if (!tail.empty()) os << "," << tail;
    return os.str();
}
static void __sscope_log(int line, const char* type, const std::string& body) {
    std::fprintf(stderr, "SSCOPE:%d:%s:{%s}\n", line, type, body.c_str());
}`

func isKeywordName(name string) bool {
	switch name {
	case "if", "else", "for", "while", "do", "return", "int", "long",
		"short", "char", "bool", "float", "double", "void", "cout",
		"cin", "endl", "true", "false", "break", "continue":
		return true
	}
	return false
}

// splitLogicalLines joins physical lines whose string literals run past
// the newline (an odd count of unescaped quotes) so a scan unit never
// sees a dangling literal. Each unit remembers its first physical line.
func splitLogicalLines(source string) []logicalLine {
	phys := strings.Split(source, "\n")
	var out []logicalLine
	i := 0
	for i < len(phys) {
		start := i + 1
		text := phys[i]
		for oddQuotes(text) && i+1 < len(phys) {
			i++
			text += "\n" + phys[i]
		}
		out = append(out, logicalLine{start: start, end: i + 1, text: text})
		i++
	}
	return out
}

func oddQuotes(s string) bool {
	n := 0
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			n++
		}
	}
	return n%2 == 1
}
