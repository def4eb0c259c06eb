package tester

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/ll1/driver"
	gspec "github.com/nihei9/ll1/spec/grammar"
	tspec "github.com/nihei9/ll1/spec/test"
)

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*tspec.ResultDiff
	SyntaxErrors []*driver.SyntaxError
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if len(r.Diffs) == 0 {
			return msg
		}
		var diffLines []string
		for _, diff := range r.Diffs {
			diffLines = append(diffLines, diff.Message)
		}
		for _, synErr := range r.SyntaxErrors {
			diffLines = append(diffLines, fmt.Sprintf("%v%v: %v", indent1, synErr.Kind, synErr))
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent2, strings.Join(diffLines, "\n"+indent2))
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *tspec.TestCase
	FilePath string
	Error    error
}

// ListTestCases reads the test case at testPath. When testPath is a directory, it reads every
// file under the directory recursively.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCase(testCasePath string) (*tspec.TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tspec.ParseTestCase(f)
}

type Tester struct {
	Grammar *gspec.CompiledGrammar
	Cases   []*TestCaseWithMetadata
}

// Run parses the input of every test case and compares the verdict and the diagnostics with
// the expected ones. All cases share one parsing table.
func (t *Tester) Run() []*TestResult {
	gram := driver.NewGrammar(t.Grammar)
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, runTest(t.Grammar, gram, c))
	}
	return rs
}

func runTest(g *gspec.CompiledGrammar, gram driver.Grammar, c *TestCaseWithMetadata) *TestResult {
	if c.Error != nil {
		return failure(c, c.Error)
	}

	toks, err := driver.NewTokenStream(g, bytes.NewReader(c.TestCase.Source))
	if err != nil {
		return failure(c, err)
	}
	p, err := driver.NewParser(toks, gram)
	if err != nil {
		return failure(c, err)
	}
	if err := p.Parse(); err != nil {
		return failure(c, err)
	}

	diffs := tspec.DiffResult(c.TestCase.Output, genResult(p))
	if len(diffs) == 0 {
		return &TestResult{
			TestCasePath: c.FilePath,
		}
	}
	r := failure(c, fmt.Errorf("output mismatch"))
	r.Diffs = diffs
	r.SyntaxErrors = p.SyntaxErrors()
	return r
}

func failure(c *TestCaseWithMetadata, err error) *TestResult {
	return &TestResult{
		TestCasePath: c.FilePath,
		Error:        err,
	}
}

func genResult(p *driver.Parser) *tspec.Result {
	var diags []string
	for _, synErr := range p.SyntaxErrors() {
		diags = append(diags, string(synErr.Kind))
	}
	return &tspec.Result{
		Verdict:     string(p.Verdict()),
		Diagnostics: diags,
	}
}

// Summary counts the outcomes of a test run.
type Summary struct {
	Passed int
	Failed int
}

func Summarize(rs []*TestResult) *Summary {
	s := &Summary{}
	for _, r := range rs {
		if r.Error != nil {
			s.Failed++
			continue
		}
		s.Passed++
	}
	return s
}

func (s *Summary) String() string {
	return fmt.Sprintf("%v passed, %v failed", s.Passed, s.Failed)
}
