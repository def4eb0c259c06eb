package grammar

import (
	"fmt"

	"github.com/nihei9/ll1/grammar/symbol"
	spec "github.com/nihei9/ll1/spec/grammar"
)

// ParsingTable maps a pair of a non-terminal and a lookahead to the production to expand.
type ParsingTable struct {
	// expansion[nonTerminalNum*terminalCount+terminalNum] is a production number.
	expansion []productionNum

	// defaultExpansion[nonTerminalNum] is the first nullable alternative of a
	// non-terminal. A parser applies it when the table has no entry for the lookahead.
	defaultExpansion []productionNum

	terminalCount    int
	nonTerminalCount int
	prods            *productionSet
}

func (t *ParsingTable) readExpansion(nonTerm symbol.Symbol, la symbol.Symbol) productionNum {
	if !nonTerm.IsNonTerminal() || !la.IsInput() {
		return productionNumNil
	}
	row := nonTerm.Num().Int()
	col := la.Num().Int()
	if row >= t.nonTerminalCount || col >= t.terminalCount {
		return productionNumNil
	}
	return t.expansion[row*t.terminalCount+col]
}

func (t *ParsingTable) writeExpansion(nonTerm symbol.Symbol, la symbol.Symbol, prod productionNum) {
	t.expansion[nonTerm.Num().Int()*t.terminalCount+la.Num().Int()] = prod
}

// Lookup returns the production to expand when nonTerm is on the top of the stack and la
// is the lookahead. la is a terminal or the EOF symbol.
func (t *ParsingTable) Lookup(nonTerm symbol.Symbol, la symbol.Symbol) (*Production, bool) {
	num := t.readExpansion(nonTerm, la)
	if num == productionNumNil {
		return nil, false
	}
	return t.prods.findByNum(num.Int())
}

// DefaultExpansion returns the first nullable alternative of nonTerm.
func (t *ParsingTable) DefaultExpansion(nonTerm symbol.Symbol) (*Production, bool) {
	if !nonTerm.IsNonTerminal() || nonTerm.Num().Int() >= len(t.defaultExpansion) {
		return nil, false
	}
	num := t.defaultExpansion[nonTerm.Num()]
	if num == productionNumNil {
		return nil, false
	}
	return t.prods.findByNum(num.Int())
}

type conflict struct {
	nonTerminal symbol.Symbol
	lookahead   symbol.Symbol

	// existing is the production already in the cell, and incoming is the one that tried
	// to overwrite it.
	existing productionNum
	incoming productionNum
}

type llTableBuilder struct {
	prods  *productionSet
	symTab *symbol.SymbolTableReader
	first  *FirstSet
	follow *FollowSet

	tab       *ParsingTable
	conflicts []*conflict
}

// build fills the table. A cell keeps the first production written to it, and every
// later write of another production is recorded as a conflict. When any conflict exists,
// build returns GrammarErrors instead of the table.
func (b *llTableBuilder) build() (*ParsingTable, error) {
	termCount := b.symTab.TerminalCount()
	nonTermCount := b.symTab.NonTerminalCount()
	b.tab = &ParsingTable{
		expansion:        make([]productionNum, termCount*nonTermCount),
		defaultExpansion: make([]productionNum, nonTermCount),
		terminalCount:    termCount,
		nonTerminalCount: nonTermCount,
		prods:            b.prods,
	}
	b.conflicts = nil

	for _, prod := range b.prods.getAllProductions() {
		fst, err := b.first.Find(prod, 0)
		if err != nil {
			return nil, err
		}
		for _, sym := range fst.Symbols() {
			b.write(prod, sym)
		}
		if !fst.Empty() {
			continue
		}

		if b.tab.defaultExpansion[prod.lhs.Num()] == productionNumNil {
			b.tab.defaultExpansion[prod.lhs.Num()] = prod.num
		}

		flw, err := b.follow.Find(prod.lhs)
		if err != nil {
			return nil, err
		}
		for _, sym := range flw.Symbols() {
			b.write(prod, sym)
		}
		if flw.EOF() {
			b.write(prod, symbol.SymbolEOF)
		}
	}

	if len(b.conflicts) > 0 {
		var errs GrammarErrors
		for _, c := range b.conflicts {
			errs = append(errs, b.conflictError(c))
		}
		return nil, errs
	}

	return b.tab, nil
}

func (b *llTableBuilder) write(prod *Production, la symbol.Symbol) {
	existing := b.tab.readExpansion(prod.lhs, la)
	switch existing {
	case productionNumNil:
		b.tab.writeExpansion(prod.lhs, la, prod.num)
		tracer().Debugf("table[%v, %v] = %v", b.text(prod.lhs), b.text(la), prod.num)
	case prod.num:
	default:
		b.conflicts = append(b.conflicts, &conflict{
			nonTerminal: prod.lhs,
			lookahead:   la,
			existing:    existing,
			incoming:    prod.num,
		})
		tracer().Debugf("conflict at table[%v, %v]: %v and %v", b.text(prod.lhs), b.text(la), existing, prod.num)
	}
}

func (b *llTableBuilder) text(sym symbol.Symbol) string {
	text, ok := b.symTab.ToText(sym)
	if !ok {
		return sym.String()
	}
	return text
}

func (b *llTableBuilder) productionText(num productionNum) string {
	prod, ok := b.prods.findByNum(num.Int())
	if !ok {
		return fmt.Sprintf("production %v", num)
	}
	g := &Grammar{
		symbolTable:   b.symTab.SymbolTable,
		productionSet: b.prods,
	}
	return g.ProductionText(prod)
}

func (b *llTableBuilder) conflictError(c *conflict) *GrammarError {
	return &GrammarError{
		Cause:       ErrNotLL1,
		NonTerminal: b.text(c.nonTerminal),
		Symbol:      b.text(c.lookahead),
		Productions: []string{
			b.productionText(c.existing),
			b.productionText(c.incoming),
		},
	}
}

func (b *llTableBuilder) genReport(gram *Grammar, violations []*violation) (*spec.Report, error) {
	var terms []*spec.Terminal
	{
		terms = append(terms, &spec.Terminal{
			Number: symbol.SymbolEOF.Num().Int(),
			Name:   symbol.SymbolNameEOF,
		})
		for _, sym := range gram.Terminals() {
			terms = append(terms, &spec.Terminal{
				Number: sym.Num().Int(),
				Name:   b.text(sym),
			})
		}
	}

	var nonTerms []*spec.NonTerminal
	for _, sym := range gram.NonTerminals() {
		nonTerms = append(nonTerms, &spec.NonTerminal{
			Number: sym.Num().Int(),
			Name:   b.text(sym),
		})
	}

	var prods []*spec.Production
	for _, p := range b.prods.getAllProductions() {
		rhs := make([]int, len(p.rhs))
		for i, sym := range p.rhs {
			if sym.IsTerminal() {
				rhs[i] = sym.Num().Int()
			} else if sym.IsNonTerminal() {
				rhs[i] = sym.Num().Int() * -1
			}
		}
		prods = append(prods, &spec.Production{
			Number: p.num.Int(),
			LHS:    p.lhs.Num().Int(),
			RHS:    rhs,
			Text:   gram.ProductionText(p),
		})
	}

	var first []*spec.FirstEntry
	var follow []*spec.FollowEntry
	var rows []*spec.Row
	for _, nonTerm := range gram.NonTerminals() {
		fst := b.first.FindBySymbol(nonTerm)
		if fst == nil {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", nonTerm)
		}
		first = append(first, &spec.FirstEntry{
			NonTerminal: nonTerm.Num().Int(),
			Terminals:   symbolNums(fst.Symbols()),
			Empty:       fst.Empty(),
		})

		flw, err := b.follow.Find(nonTerm)
		if err != nil {
			return nil, err
		}
		follow = append(follow, &spec.FollowEntry{
			NonTerminal: nonTerm.Num().Int(),
			Terminals:   symbolNums(flw.Symbols()),
			EOF:         flw.EOF(),
		})

		row := &spec.Row{
			NonTerminal: nonTerm.Num().Int(),
		}
		cols := append([]symbol.Symbol{symbol.SymbolEOF}, gram.Terminals()...)
		for _, la := range cols {
			prod, ok := b.tab.Lookup(nonTerm, la)
			if !ok {
				continue
			}
			row.Cells = append(row.Cells, &spec.Cell{
				Terminal:   la.Num().Int(),
				Production: prod.num.Int(),
			})
		}
		rows = append(rows, row)
	}

	var conflicts []*spec.Conflict
	for _, c := range b.conflicts {
		conflicts = append(conflicts, &spec.Conflict{
			NonTerminal: c.nonTerminal.Num().Int(),
			Terminal:    c.lookahead.Num().Int(),
			Productions: []int{c.existing.Int(), c.incoming.Int()},
		})
	}

	var vs []string
	for _, v := range violations {
		vs = append(vs, v.format(gram))
	}

	return &spec.Report{
		Name:         gram.name,
		Start:        gram.start.Num().Int(),
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		First:        first,
		Follow:       follow,
		Table:        rows,
		Conflicts:    conflicts,
		Violations:   vs,
	}, nil
}

func symbolNums(syms []symbol.Symbol) []int {
	nums := make([]int, len(syms))
	for i, sym := range syms {
		nums[i] = sym.Num().Int()
	}
	return nums
}
