// eligibility.go — the static gate in front of the restricted interpreter.
//
// IsEligible is a pure predicate over raw source text deciding whether
// the restricted-subset interpreter may legally run it; ineligible
// programs must be routed to the instrument-and-compile path instead.
// The checks are necessarily syntactic and heuristic, not a parser gate:
// false negatives are tolerated (the interpreter then fails fast with a
// descriptive error rather than mis-executing), but no check may reject
// a genuinely simple, eligible program.
//
// Comment bodies and string/char literal contents are blanked before
// screening so that, say, a string containing the word "class" cannot
// disqualify a program.
package stepscope

import (
	"regexp"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// IsEligible reports whether the restricted interpreter may run source.
func IsEligible(src string) bool {
	ok, _ := ClassifySource(src)
	return ok
}

// ClassifySource is IsEligible with a reason: on rejection it names the
// first offending construct found.
func ClassifySource(src string) (bool, string) {
	text := stripLiterals(src)

	for _, c := range rejectChecks {
		if c.re.MatchString(text) {
			return false, c.construct
		}
	}
	if construct, bad := checkIncludes(text); bad {
		return false, construct
	}
	if construct, bad := checkFunctions(text); bad {
		return false, construct
	}
	if construct, bad := checkMultiDecl(text); bad {
		return false, construct
	}
	return true, ""
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

type rejectCheck struct {
	re        *regexp.Regexp
	construct string
}

var rejectChecks = []rejectCheck{
	{regexp.MustCompile(`#\s*define\s+\w+\s*\(`), "function-like preprocessor macro"},
	{regexp.MustCompile(`\btemplate\s*<`), "template"},
	{regexp.MustCompile(`\b(class|struct|union)\b`), "class/struct/union declaration"},
	{regexp.MustCompile(`\b(constexpr|decltype|typename|concept|requires)\b`), "compile-time construct (constexpr/decltype/typename/concept/requires)"},
	{regexp.MustCompile(`->`), "pointer/member access (->)"},
	{regexp.MustCompile(`::`), "scope resolution (::)"},
	{regexp.MustCompile(`\b(vector|map|set|unordered_map|unordered_set|multiset|multimap|list|deque|stack|queue|priority_queue|pair|tuple|string|sort|reverse|lower_bound|upper_bound|push_back|emplace_back)\b`), "STL container or algorithm identifier"},
	{regexp.MustCompile(`\d+\.\d+`), "floating-point literal"},
	{regexp.MustCompile(`\[[^\]\n]*\]\s*\[`), "2-D array declaration"},
	{regexp.MustCompile(`\b(int|long|short|char|bool|float|double)\s*\*`), "pointer declaration"},
	{regexp.MustCompile(`[A-Za-z_]\w*\s*\.\s*[A-Za-z_]`), "member access (.)"},
	{regexp.MustCompile(`\bcin\b`), "input stream (cin)"},
}

// allowedIncludes are the standard headers a simple eligible program may
// pull in. Anything else (user headers, bits/stdc++.h, STL headers)
// routes the program to the compiler path.
var allowedIncludes = map[string]bool{
	"iostream": true,
	"cstdio":   true,
	"cstdlib":  true,
	"cmath":    true,
	"ctime":    true,
	"climits":  true,
	"stdio.h":  true,
	"stdlib.h": true,
	"math.h":   true,
}

var includeRe = regexp.MustCompile(`#\s*include\s*(<([^>\n]*)>|")`)

func checkIncludes(text string) (string, bool) {
	for _, m := range includeRe.FindAllStringSubmatch(text, -1) {
		if m[1] == `"` {
			return "user include", true
		}
		header := strings.TrimSpace(m[2])
		if !allowedIncludes[header] {
			return "non-standard include <" + header + ">", true
		}
	}
	return "", false
}

var funcDefRe = regexp.MustCompile(`\b(void|int|long|short|char|bool|float|double)\s+([A-Za-z_]\w*)\s*\(`)

// checkFunctions rejects user-defined functions: the restricted grammar
// only understands a statement sequence, optionally wrapped in main.
func checkFunctions(text string) (string, bool) {
	for _, m := range funcDefRe.FindAllStringSubmatch(text, -1) {
		if m[2] != "main" {
			return "user-defined function " + m[2], true
		}
	}
	return "", false
}

var declStartRe = regexp.MustCompile(`\b(int|long|short|char|bool|float|double)\s+[A-Za-z_]\w*\s*[=;,\[]`)

// checkMultiDecl rejects multi-variable declarations on one statement
// (`int a = 1, b = 2;`). The instrumenter cannot key probes for them and
// the interpreter grammar excludes them, so they are routed away rather
// than silently mis-traced.
func checkMultiDecl(text string) (string, bool) {
	for _, loc := range declStartRe.FindAllStringIndex(text, -1) {
		depth := 0
		for i := loc[0]; i < len(text); i++ {
			switch text[i] {
			case '(', '[':
				depth++
			case ')', ']':
				depth--
			case ';':
				i = len(text) // statement end
			case ',':
				if depth == 0 {
					return "multi-variable declaration", true
				}
			}
			if i == len(text) {
				break
			}
		}
	}
	return "", false
}

// stripLiterals blanks comment bodies and string/char literal contents
// while preserving line structure and the delimiters themselves.
func stripLiterals(src string) string {
	out := []byte(src)
	i := 0
	for i < len(out) {
		switch out[i] {
		case '/':
			if i+1 < len(out) && out[i+1] == '/' {
				for i < len(out) && out[i] != '\n' {
					out[i] = ' '
					i++
				}
				continue
			}
			if i+1 < len(out) && out[i+1] == '*' {
				out[i], out[i+1] = ' ', ' '
				i += 2
				for i+1 < len(out) && !(out[i] == '*' && out[i+1] == '/') {
					if out[i] != '\n' {
						out[i] = ' '
					}
					i++
				}
				if i+1 < len(out) {
					out[i], out[i+1] = ' ', ' '
					i += 2
				}
				continue
			}
			i++
		case '"', '\'':
			quote := out[i]
			i++
			for i < len(out) && out[i] != quote && out[i] != '\n' {
				if out[i] == '\\' && i+1 < len(out) {
					out[i] = ' '
					i++
				}
				out[i] = ' '
				i++
			}
			if i < len(out) && out[i] == quote {
				i++
			}
		default:
			i++
		}
	}
	return string(out)
}
