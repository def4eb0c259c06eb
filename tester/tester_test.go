package tester

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nihei9/ll1/grammar"
	ast "github.com/nihei9/ll1/spec"
	gspec "github.com/nihei9/ll1/spec/grammar"
	tspec "github.com/nihei9/ll1/spec/test"
)

const grammarSrc = `
S
S -> A a B
A -> b A | ε
B -> c B | ε
`

func compileGrammar(t *testing.T, src string) *gspec.CompiledGrammar {
	t.Helper()

	root, err := ast.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := grammar.GrammarBuilder{
		AST: root,
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cg, _, err := grammar.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	return cg
}

func TestTester_Run(t *testing.T) {
	tests := []struct {
		testSrc string
		error   bool
	}{
		{
			testSrc: `
Test
---
b a c
---
accept
`,
		},
		{
			testSrc: `
Test
---
a
---
accept
`,
		},
		{
			testSrc: `
Test
---
b a c c
b
---
reject
unexpected-token
`,
		},
		{
			testSrc: `
Test
---
b c
---
accept
unexpected-token
`,
		},
		{
			testSrc: `
Test
---
c
---
accept
no-rule
`,
		},
		{
			testSrc: `
Test
---
b c
---
accept
`,
			error: true,
		},
		{
			testSrc: `
Test
---
b a c
---
reject
`,
			error: true,
		},
		{
			testSrc: `
Test
---
b c
---
accept
no-rule
`,
			error: true,
		},
		{
			testSrc: `
Test
---
b a c
---
accept
unexpected-token
`,
			error: true,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			cg := compileGrammar(t, grammarSrc)
			c, err := tspec.ParseTestCase(strings.NewReader(tt.testSrc))
			if err != nil {
				t.Fatal(err)
			}
			tester := &Tester{
				Grammar: cg,
				Cases: []*TestCaseWithMetadata{
					{
						TestCase: c,
					},
				},
			}
			rs := tester.Run()
			if tt.error {
				errOccurred := false
				for _, r := range rs {
					if r.Error != nil {
						errOccurred = true
					}
				}
				if !errOccurred {
					t.Fatal("this test must fail, but it passed")
				}
			} else {
				for _, r := range rs {
					if r.Error != nil {
						t.Fatalf("unexpected error occurred: %v", r)
					}
				}
			}
		})
	}
}

func TestListTestCases(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"accept.txt": `sentence
---
b a c
---
accept
`,
		filepath.Join("sub", "reject.txt"): `trailing input
---
b a c d
---
reject
unexpected-token
`,
		filepath.Join("sub", "broken.txt"): `broken
---
b a c
`,
	}
	for name, src := range files {
		path := filepath.Join(dir, name)
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(path, []byte(src), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := ListTestCases(dir)
	if len(cases) != 3 {
		t.Fatalf("unexpected test cases: %v", len(cases))
	}
	broken := 0
	for _, c := range cases {
		if c.Error != nil {
			broken++
			if filepath.Base(c.FilePath) != "broken.txt" {
				t.Fatalf("unexpected error: %v: %v", c.FilePath, c.Error)
			}
		}
	}
	if broken != 1 {
		t.Fatalf("a broken test case must be reported: %v", broken)
	}

	tester := &Tester{
		Grammar: compileGrammar(t, grammarSrc),
		Cases:   cases,
	}
	for _, r := range tester.Run() {
		failed := r.Error != nil
		if failed != (filepath.Base(r.TestCasePath) == "broken.txt") {
			t.Fatalf("unexpected result: %v", r)
		}
	}

	missing := ListTestCases(filepath.Join(dir, "missing"))
	if len(missing) != 1 || missing[0].Error == nil {
		t.Fatal("a missing path must be reported")
	}
}

func TestSummarize(t *testing.T) {
	rs := []*TestResult{
		{TestCasePath: "a"},
		{TestCasePath: "b", Error: fmt.Errorf("output mismatch")},
		{TestCasePath: "c"},
	}
	s := Summarize(rs)
	if s.Passed != 2 || s.Failed != 1 {
		t.Fatalf("unexpected summary: %v", s)
	}
	if s.String() != "2 passed, 1 failed" {
		t.Fatalf("unexpected text: %v", s)
	}
}
