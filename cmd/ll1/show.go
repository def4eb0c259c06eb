package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/ll1/grammar"
	gspec "github.com/nihei9/ll1/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var showFlags = struct {
	start *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "show <grammar file path>|<report file path>",
		Short: "Print FIRST, FOLLOW, and the parsing table of a grammar",
		Example: `  ll1 show grammar.ll1
  ll1 show grammar-report.json`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
	showFlags.start = cmd.Flags().StringP("start", "s", "", "start symbol of a grammar document")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := loadReport(args[0], *showFlags.start)
	if err != nil {
		return err
	}

	writeReport(report)

	return nil
}

// loadReport reads a report when path has the .json extension. Otherwise it analyzes the
// grammar document at path; a grammar that is not LL(1) still has a report.
func loadReport(path string, start string) (*gspec.Report, error) {
	if filepath.Ext(path) == ".json" {
		return readReport(path)
	}

	gram, err := readGrammar(path, path, start)
	if err != nil {
		return nil, err
	}
	_, report, err := grammar.Compile(gram, grammar.EnableReporting())
	if err != nil {
		var gErrs grammar.GrammarErrors
		if !errors.As(err, &gErrs) || report == nil {
			return nil, err
		}
	}
	return report, nil
}

func readReport(path string) (*gspec.Report, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}

	report := &gspec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

type reportNames struct {
	terms    map[int]string
	nonTerms map[int]string
}

func newReportNames(report *gspec.Report) *reportNames {
	n := &reportNames{
		terms:    map[int]string{},
		nonTerms: map[int]string{},
	}
	for _, t := range report.Terminals {
		n.terms[t.Number] = t.Name
	}
	for _, nt := range report.NonTerminals {
		n.nonTerms[nt.Number] = nt.Name
	}
	return n
}

func (n *reportNames) terminals(nums []int, empty string) string {
	var names []string
	for _, num := range nums {
		names = append(names, n.terms[num])
	}
	if empty != "" {
		names = append(names, empty)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func writeReport(report *gspec.Report) {
	names := newReportNames(report)

	if report.Name != "" {
		pterm.DefaultSection.Println(fmt.Sprintf("Grammar %v (start: %v)", report.Name, names.nonTerms[report.Start]))
	}

	pterm.DefaultSection.Println("Productions")
	{
		data := pterm.TableData{{"#", "production"}}
		for _, p := range report.Productions {
			data = append(data, []string{fmt.Sprint(p.Number), p.Text})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	pterm.DefaultSection.Println("FIRST and FOLLOW")
	{
		follow := map[int]*gspec.FollowEntry{}
		for _, e := range report.Follow {
			follow[e.NonTerminal] = e
		}
		data := pterm.TableData{{"non-terminal", "FIRST", "FOLLOW"}}
		for _, fst := range report.First {
			var empty string
			if fst.Empty {
				empty = "ε"
			}
			var flwText string
			if flw, ok := follow[fst.NonTerminal]; ok {
				var eof string
				if flw.EOF {
					eof = "$"
				}
				flwText = names.terminals(flw.Terminals, eof)
			}
			data = append(data, []string{names.nonTerms[fst.NonTerminal], names.terminals(fst.Terminals, empty), flwText})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	pterm.DefaultSection.Println("Parsing table")
	{
		conflicts := map[[2]int][]int{}
		for _, c := range report.Conflicts {
			key := [2]int{c.NonTerminal, c.Terminal}
			conflicts[key] = append(conflicts[key], c.Productions[1:]...)
		}

		header := []string{""}
		for _, t := range report.Terminals {
			header = append(header, t.Name)
		}
		data := pterm.TableData{header}
		for _, row := range report.Table {
			cells := map[int]int{}
			for _, c := range row.Cells {
				cells[c.Terminal] = c.Production
			}
			line := []string{names.nonTerms[row.NonTerminal]}
			for _, t := range report.Terminals {
				prod, ok := cells[t.Number]
				if !ok {
					line = append(line, "")
					continue
				}
				text := fmt.Sprint(prod)
				for _, p := range conflicts[[2]int{row.NonTerminal, t.Number}] {
					text += fmt.Sprintf("/%v", p)
				}
				line = append(line, text)
			}
			data = append(data, line)
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	if report.IsLL1() {
		pterm.Success.Println("The grammar is LL(1).")
		return
	}
	pterm.Error.Println(fmt.Sprintf("The grammar is not LL(1): %v conflicts", len(report.Conflicts)))
	for _, c := range report.Conflicts {
		pterm.Error.Println(fmt.Sprintf("[%v, %v]: %v", names.nonTerms[c.NonTerminal], names.terms[c.Terminal], strings.Join(productionTexts(report, c.Productions), " | ")))
	}
	for _, v := range report.Violations {
		pterm.Warning.Println(v)
	}
}

func productionTexts(report *gspec.Report, nums []int) []string {
	texts := make([]string, len(nums))
	for i, num := range nums {
		texts[i] = fmt.Sprint(num)
		for _, p := range report.Productions {
			if p.Number == num {
				texts[i] = p.Text
				break
			}
		}
	}
	return texts
}
