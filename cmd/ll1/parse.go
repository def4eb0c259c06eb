package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nihei9/ll1/driver"
	gspec "github.com/nihei9/ll1/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var parseFlags = struct {
	source *string
	start  *string
	tokens *bool
	cst    *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse <grammar file path>",
		Short: "Parse a text stream",
		Long: `parse reads an input and reports syntax errors and the verdict.
The grammar is either a grammar document or a compiled grammar (*.json).
When stdin is a terminal and no source is given, parse reads one input per line.`,
		Example: `  echo 'b a c' | ll1 parse grammar.ll1
  ll1 parse grammar.json --source input.txt --cst`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.start = cmd.Flags().String("start", "", "start symbol of a grammar document")
	parseFlags.tokens = cmd.Flags().Bool("tokens", false, "treat the input as white-space-separated terminal names")
	parseFlags.cst = cmd.Flags().Bool("cst", false, "print a concrete syntax tree")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cgram, err := loadCompiledGrammar(args[0], *parseFlags.start)
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}
	gram := driver.NewGrammar(cgram)

	if *parseFlags.source == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		return runREPL(cgram, gram)
	}

	src := io.Reader(os.Stdin)
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}
	input, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	p, err := parseInput(cgram, gram, string(input))
	if err != nil {
		return err
	}

	for _, synErr := range p.SyntaxErrors() {
		fmt.Fprintf(os.Stderr, "%v\n", formatSyntaxError(synErr))
	}
	fmt.Fprintf(os.Stdout, "%v\n", p.Verdict())
	if *parseFlags.cst {
		driver.PrintTree(os.Stdout, p.CST())
	}

	return nil
}

func parseInput(cgram *gspec.CompiledGrammar, gram driver.Grammar, input string) (*driver.Parser, error) {
	var toks driver.TokenStream
	if *parseFlags.tokens {
		toks = driver.NewSymbolTokenStream(cgram, strings.Fields(input))
	} else {
		var err error
		toks, err = driver.NewTokenStream(cgram, strings.NewReader(input))
		if err != nil {
			return nil, err
		}
	}

	var opts []driver.ParserOption
	if *parseFlags.cst {
		opts = append(opts, driver.MakeCST())
	}
	p, err := driver.NewParser(toks, gram, opts...)
	if err != nil {
		return nil, err
	}
	err = p.Parse()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func formatSyntaxError(synErr *driver.SyntaxError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: %v: %v", synErr.Row, synErr.Col, synErr.Kind, synErr.Message)
	if synErr.Recovery != "" {
		fmt.Fprintf(&b, "; %v", synErr.Recovery)
		if synErr.Skipped > 0 {
			fmt.Fprintf(&b, " (%v tokens skipped)", synErr.Skipped)
		}
	}
	return b.String()
}

// runREPL parses every line read from the terminal. All inputs share one parsing table.
func runREPL(cgram *gspec.CompiledGrammar, gram driver.Grammar) error {
	repl, err := readline.New("ll1> ")
	if err != nil {
		return err
	}
	defer repl.Close()

	pterm.Info.Println("Enter an input per line. Quit with <ctrl>D.")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}

		p, err := parseInput(cgram, gram, line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		for _, synErr := range p.SyntaxErrors() {
			pterm.Error.Println(formatSyntaxError(synErr))
		}
		switch {
		case p.Valid():
			pterm.Success.Println(p.Verdict())
		case p.Accepted():
			pterm.Warning.Println(fmt.Sprintf("%v with %v errors", p.Verdict(), len(p.SyntaxErrors())))
		default:
			pterm.Error.Println(p.Verdict())
		}
		if *parseFlags.cst {
			pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(leveledTree(p.CST(), pterm.LeveledList{}, 0))).Render()
		}
	}
	return nil
}

func leveledTree(node *driver.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	if node == nil {
		return ll
	}
	text := node.KindName
	switch {
	case node.Error:
		text = "!" + text
	case node.Text != "":
		text = fmt.Sprintf("%v %q", text, node.Text)
	}
	ll = append(ll, pterm.LeveledListItem{
		Level: level,
		Text:  text,
	})
	for _, c := range node.Children {
		ll = leveledTree(c, ll, level+1)
	}
	return ll
}
