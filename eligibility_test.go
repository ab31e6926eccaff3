// eligibility_test.go
package stepscope

import (
	"strings"
	"testing"
)

func wantEligible(t *testing.T, src string) {
	t.Helper()
	ok, construct := ClassifySource(src)
	if !ok {
		t.Fatalf("want eligible, rejected for %q\nsource:\n%s", construct, src)
	}
}

func wantIneligible(t *testing.T, src, constructSubstr string) {
	t.Helper()
	ok, construct := ClassifySource(src)
	if ok {
		t.Fatalf("want ineligible (%s), got eligible\nsource:\n%s", constructSubstr, src)
	}
	if !strings.Contains(construct, constructSubstr) {
		t.Fatalf("want construct containing %q, got %q", constructSubstr, construct)
	}
}

func Test_Eligibility_Accepts_Simple_Programs(t *testing.T) {
	srcs := []string{
		`#include <iostream>
using namespace std;
int main() {
    int a = 5;
    int b = 3;
    cout << a + b << endl;
    return 0;
}
`,
		`int a = 0;
for (int i = 1; i <= 3; i++) {
    a += i;
}
`,
		`int i = 0;
do {
    i++;
} while (i < 2);
`,
		// A string mentioning a rejected word is not the construct itself.
		`cout << "this class of programs" << endl;`,
		// A comment is blanked before screening too.
		`// vector would be rejected outside a comment
int a = 1;
`,
	}
	for _, src := range srcs {
		wantEligible(t, src)
	}
}

func Test_Eligibility_Rejects_By_Construct(t *testing.T) {
	cases := []struct {
		src       string
		construct string
	}{
		{`#define SQR(x) ((x)*(x))`, "macro"},
		{`template <typename T> T id(T x) { return x; }`, "template"},
		{`struct Point { int x; };`, "class/struct/union"},
		{`class Foo {};`, "class/struct/union"},
		{`constexpr int n = 3;`, "compile-time"},
		{`p->next = 0;`, "->"},
		{`std::cout << 1;`, "::"},
		{`vector numbers;`, "STL"},
		{`double pi = 3.14;`, "floating-point"},
		{`int grid[2][3];`, "2-D array"},
		{`int *p = 0;`, "pointer"},
		{`obj.field = 1;`, "member access"},
		{`cin >> x;`, "cin"},
		{`#include "mylib.h"`, "user include"},
		{`#include <bits/stdc++.h>`, "non-standard include"},
		{`int add(int a) { return a; }`, "user-defined function add"},
		{`int a = 1, b = 2;`, "multi-variable declaration"},
	}
	for _, c := range cases {
		wantIneligible(t, c.src, c.construct)
	}
}

func Test_Eligibility_MultiDecl_Ignores_Commas_In_Calls(t *testing.T) {
	// No calls exist in the restricted grammar, but the comma scan must
	// still not fire inside parenthesized groups.
	wantEligible(t, `int x = (1 + 2);
for (int i = 0; i < 3; i++) {
    x += i;
}
`)
	wantIneligible(t, `for (int i = 0, j = 1; i < 3; i++) { }`, "multi-variable")
}

func Test_Eligibility_Allowed_Standard_Includes(t *testing.T) {
	wantEligible(t, `#include <iostream>
#include <cstdio>
#include <cmath>
int a = 1;
`)
}

func Test_IsEligible_Matches_ClassifySource(t *testing.T) {
	if !IsEligible(`int a = 1;`) {
		t.Fatal("IsEligible must accept a trivial program")
	}
	if IsEligible(`class C {};`) {
		t.Fatal("IsEligible must reject a class definition")
	}
}
