package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	verr "github.com/nihei9/ll1/error"
	"github.com/nihei9/ll1/grammar"
	"github.com/nihei9/ll1/spec"
	gspec "github.com/nihei9/ll1/spec/grammar"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var compileFlags = struct {
	start  *string
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a grammar into an LL(1) parsing table",
		Example: `  ll1 compile grammar.ll1 -o grammar.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.start = cmd.Flags().StringP("start", "s", "", "start symbol (default the declared one or the LHS of the first rule)")
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var tmpDirPath string
	defer func() {
		if tmpDirPath == "" {
			return
		}
		os.RemoveAll(tmpDirPath)
	}()

	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}

	if grmPath == "" {
		var err error
		tmpDirPath, err = os.MkdirTemp("", "ll1-compile-*")
		if err != nil {
			return err
		}

		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}

		grmPath = filepath.Join(tmpDirPath, "stdin.ll1")
		err = os.WriteFile(grmPath, src, 0600)
		if err != nil {
			return err
		}
	}

	sourceName := grmPath
	if len(args) == 0 {
		sourceName = "stdin"
	}
	gram, err := readGrammar(grmPath, sourceName, *compileFlags.start)
	if err != nil {
		return err
	}

	cgram, report, err := grammar.Compile(gram, grammar.EnableReporting())
	if err != nil {
		var gErrs grammar.GrammarErrors
		if errors.As(err, &gErrs) && report != nil {
			_, reportPath, pathErr := makeOutputFilePaths(gram.Name(), *compileFlags.output)
			if pathErr == nil {
				if wErr := writeJSONFile(reportPath, report); wErr != nil {
					return fmt.Errorf("Cannot write a report: %w", wErr)
				}
			}
			for _, v := range report.Violations {
				fmt.Fprintf(os.Stderr, "%v\n", v)
			}
		}
		return err
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}

	return nil
}

// readGrammar reads a grammar document and finalizes it. A non-empty start overrides the start
// symbol the document declares.
func readGrammar(path string, sourceName string, start string) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	ast, err := spec.Parse(f)
	if err != nil {
		var specErr *verr.SpecError
		if errors.As(err, &specErr) {
			specErr.FilePath = path
			specErr.SourceName = sourceName
		}
		return nil, err
	}

	b := grammar.GrammarBuilder{
		AST:   ast,
		Name:  grammarName(sourceName),
		Start: start,
	}
	return b.Build()
}

func grammarName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// writeCompiledGrammarAndReport writes a compiled grammar and a report to a files located at a specified path.
// This function selects one of the following output methods depending on how the path is specified.
//
//  1. When the path is a directory path, this function writes the compiled grammar and the report to
//     <path>/<grammar-name>.json and <path>/<grammar-name>-report.json files, respectively.
//  2. When the path is a file path or a non-exitent path, this function asumes that the path represents a file
//     path for the compiled grammar. Then it also writes the report in the same directory as the compiled grammar.
//  3. When the path is an empty string, this function writes the compiled grammar to the stdout and writes
//     the report to a file named <current-directory>/<grammar-name>-report.json.
func writeCompiledGrammarAndReport(cgram *gspec.CompiledGrammar, report *gspec.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	if cgramPath != "" {
		err = writeJSONFile(cgramPath, cgram)
	} else {
		err = writeJSON(os.Stdout, cgram)
	}
	if err != nil {
		return err
	}

	return writeJSONFile(reportPath, report)
}

func writeJSONFile(path string, v interface{}) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeJSON(f, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v\n", string(b))
	return nil
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}

func readCompiledGrammar(path string) (*gspec.CompiledGrammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cgram := &gspec.CompiledGrammar{}
	err = json.Unmarshal(data, cgram)
	if err != nil {
		return nil, err
	}
	if cgram.Syntactic == nil || cgram.Syntactic.Class != "ll1" {
		return nil, fmt.Errorf("%v is not a compiled LL(1) grammar", path)
	}
	return cgram, nil
}

// loadCompiledGrammar reads a compiled grammar when path has the .json extension. Otherwise it
// compiles the grammar document at path.
func loadCompiledGrammar(path string, start string) (*gspec.CompiledGrammar, error) {
	if filepath.Ext(path) == ".json" {
		return readCompiledGrammar(path)
	}
	gram, err := readGrammar(path, path, start)
	if err != nil {
		return nil, err
	}
	cgram, _, err := grammar.Compile(gram)
	if err != nil {
		return nil, err
	}
	return cgram, nil
}
