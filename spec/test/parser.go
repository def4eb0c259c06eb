package test

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	VerdictAccept = "accept"
	VerdictReject = "reject"

	DiagnosticUnexpectedToken = "unexpected-token"
	DiagnosticNoRule          = "no-rule"
	DiagnosticRecoveryFailed  = "recovery-failed"
)

// Result is the outcome of a parse: a verdict and the kinds of the syntax errors in the order
// the parser reported them.
type Result struct {
	Verdict     string
	Diagnostics []string
}

func (r *Result) Format() []byte {
	var b bytes.Buffer
	b.WriteString(r.Verdict)
	for _, d := range r.Diagnostics {
		b.WriteString("\n")
		b.WriteString(d)
	}
	return b.Bytes()
}

type ResultDiff struct {
	// Offset is the index of the diagnostic that differs, or -1 when the verdicts differ.
	Offset  int
	Message string
}

func DiffResult(expected, actual *Result) []*ResultDiff {
	var diffs []*ResultDiff
	if expected.Verdict != actual.Verdict {
		diffs = append(diffs, &ResultDiff{
			Offset:  -1,
			Message: fmt.Sprintf("unexpected verdict: expected '%v' but got '%v'", expected.Verdict, actual.Verdict),
		})
	}
	n := len(expected.Diagnostics)
	if len(actual.Diagnostics) > n {
		n = len(actual.Diagnostics)
	}
	for i := 0; i < n; i++ {
		switch {
		case i >= len(actual.Diagnostics):
			diffs = append(diffs, &ResultDiff{
				Offset:  i,
				Message: fmt.Sprintf("missing diagnostic: expected '%v'", expected.Diagnostics[i]),
			})
		case i >= len(expected.Diagnostics):
			diffs = append(diffs, &ResultDiff{
				Offset:  i,
				Message: fmt.Sprintf("unexpected diagnostic: got '%v'", actual.Diagnostics[i]),
			})
		case expected.Diagnostics[i] != actual.Diagnostics[i]:
			diffs = append(diffs, &ResultDiff{
				Offset:  i,
				Message: fmt.Sprintf("unexpected diagnostic: expected '%v' but got '%v'", expected.Diagnostics[i], actual.Diagnostics[i]),
			})
		}
	}
	return diffs
}

type TestCase struct {
	Description string
	Source      []byte
	Output      *Result
}

// ParseTestCase reads a test case consisting of a description, an input, and an expected
// result separated by `---` lines. The result part holds a verdict on its first line and one
// diagnostic kind per following line.
func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just three parts: %v parts found", len(parts))
	}

	res, err := parseResult(parts[2].buf, parts[0].lineCount+parts[1].lineCount+2)
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: string(parts[0].buf),
		Source:      parts[1].buf,
		Output:      res,
	}, nil
}

var reComment = regexp.MustCompile(`#.*$`)

func parseResult(src []byte, lineOffset int) (*Result, error) {
	res := &Result{}
	s := bufio.NewScanner(bytes.NewReader(src))
	row := lineOffset
	for s.Scan() {
		row++
		line := strings.TrimSpace(reComment.ReplaceAllString(s.Text(), ""))
		if line == "" {
			continue
		}
		if res.Verdict == "" {
			switch line {
			case VerdictAccept, VerdictReject:
			default:
				return nil, fmt.Errorf("%v: unknown verdict: %v", row, line)
			}
			res.Verdict = line
			continue
		}
		switch line {
		case DiagnosticUnexpectedToken, DiagnosticNoRule, DiagnosticRecoveryFailed:
		default:
			return nil, fmt.Errorf("%v: unknown diagnostic kind: %v", row, line)
		}
		res.Diagnostics = append(res.Diagnostics, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if res.Verdict == "" {
		return nil, fmt.Errorf("a test case must have a verdict")
	}
	return res, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// Return an empty slice because (*bytes.Buffer).Bytes() returns nil if we have never written data.
		return []byte{}, 0, nil
	}
	buf.Write(line)
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		buf.WriteString("\n")
		buf.Write(line)
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}
