package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/ll1/grammar"
	"github.com/nihei9/ll1/tester"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	start *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path>|<compiled grammar path> <test file path>|<test directory path>",
		Short:   "Check the verdicts and the diagnostics of test inputs",
		Example: `  ll1 test grammar.ll1 testdata`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	testFlags.start = cmd.Flags().StringP("start", "s", "", "start symbol of the grammar")
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	cgram, err := loadCompiledGrammar(args[0], *testFlags.start)
	if err != nil {
		var gErrs grammar.GrammarErrors
		if errors.As(err, &gErrs) {
			return fmt.Errorf("The grammar %v cannot be tested: %w", args[0], err)
		}
		return err
	}

	cases := tester.ListTestCases(args[1])
	broken := 0
	for _, c := range cases {
		if c.Error == nil {
			continue
		}
		fmt.Fprintf(os.Stderr, "Cannot read %v: %v\n", c.FilePath, c.Error)
		broken++
	}
	if broken > 0 {
		return fmt.Errorf("%v test cases are unreadable", broken)
	}

	t := &tester.Tester{
		Grammar: cgram,
		Cases:   cases,
	}
	rs := t.Run()
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
	}

	s := tester.Summarize(rs)
	if s.Failed > 0 {
		pterm.Error.Println(s)
		return errors.New("Test failed")
	}
	pterm.Success.Println(s)
	return nil
}
