package grammar

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/ll1/grammar/symbol"
	ast "github.com/nihei9/ll1/spec"
	spec "github.com/nihei9/ll1/spec/grammar"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
)

type rhsElementKind string

const (
	rhsElementKindNonTerminal = rhsElementKind("non-terminal")
	rhsElementKindTerminal    = rhsElementKind("terminal")
	rhsElementKindEpsilon     = rhsElementKind("epsilon")
)

// RHSElement is a symbol name already classified as a terminal, a non-terminal, or ε.
type RHSElement struct {
	kind rhsElementKind
	name string
}

// T returns a terminal element.
func T(name string) RHSElement {
	return RHSElement{
		kind: rhsElementKindTerminal,
		name: name,
	}
}

// N returns a non-terminal element.
func N(name string) RHSElement {
	return RHSElement{
		kind: rhsElementKindNonTerminal,
		name: name,
	}
}

// E is the ε element. It must be the only element of an alternative.
var E = RHSElement{
	kind: rhsElementKindEpsilon,
	name: symbol.SymbolNameEpsilon,
}

func (e RHSElement) String() string {
	return e.name
}

type Grammar struct {
	name          string
	start         symbol.Symbol
	symbolTable   *symbol.SymbolTable
	productionSet *productionSet
}

func (g *Grammar) Name() string {
	return g.name
}

func (g *Grammar) Start() symbol.Symbol {
	return g.start
}

// Productions returns all productions in the order they were added.
func (g *Grammar) Productions() []*Production {
	prods := g.productionSet.getAllProductions()
	ps := make([]*Production, len(prods))
	copy(ps, prods)
	return ps
}

// ProductionsOf returns the alternatives of a non-terminal in the order they were added.
func (g *Grammar) ProductionsOf(nonTerm symbol.Symbol) []*Production {
	prods, _ := g.productionSet.findByLHS(nonTerm)
	ps := make([]*Production, len(prods))
	copy(ps, prods)
	return ps
}

// NonTerminals returns the non-terminals in insertion order.
func (g *Grammar) NonTerminals() []symbol.Symbol {
	return g.symbolTable.Reader().NonTerminalSymbols()
}

// Terminals returns the user-defined terminals in insertion order. The EOF symbol isn't
// included.
func (g *Grammar) Terminals() []symbol.Symbol {
	return g.symbolTable.Reader().TerminalSymbols()
}

func (g *Grammar) Text(sym symbol.Symbol) string {
	text, ok := g.symbolTable.Reader().ToText(sym)
	if !ok {
		return sym.String()
	}
	return text
}

// ProductionText formats a production as `A → α`.
func (g *Grammar) ProductionText(prod *Production) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", g.Text(prod.lhs))
	for _, sym := range prod.rhs {
		fmt.Fprintf(&b, " %v", g.Text(sym))
	}
	return b.String()
}

type GrammarBuilder struct {
	// AST is the input of Build.
	AST *ast.RootNode

	// Name is the name of the grammar.
	Name string

	// Start overrides the start symbol declared in AST.
	Start string

	symTab    *symbol.SymbolTable
	prods     *productionSet
	dups      []*Production
	errs      GrammarErrors
	finalized bool
}

func (b *GrammarBuilder) init() {
	if b.symTab != nil {
		return
	}
	b.symTab = symbol.NewSymbolTable()
	b.prods = newProductionSet()
}

func isReservedName(name string) bool {
	return name == symbol.SymbolNameEOF || name == symbol.SymbolNameEpsilon
}

// AddProduction adds an alternative of lhs. An empty alternative is written as the single
// element E. Errors that the production alone reveals are returned immediately; they are
// also reported again by Finalize.
func (b *GrammarBuilder) AddProduction(lhs string, rhs ...RHSElement) error {
	b.init()
	if b.finalized {
		return fmt.Errorf("a finalized grammar cannot be modified; production: %v", formatRHSElements(lhs, rhs))
	}

	if gErr := b.checkProduction(lhs, rhs); gErr != nil {
		b.errs = append(b.errs, gErr)
		return gErr
	}

	w := b.symTab.Writer()
	lhsSym, err := w.RegisterNonTerminalSymbol(lhs)
	if err != nil {
		return err
	}
	rhsSyms := make([]symbol.Symbol, len(rhs))
	for i, elem := range rhs {
		var sym symbol.Symbol
		var err error
		switch elem.kind {
		case rhsElementKindNonTerminal:
			sym, err = w.RegisterNonTerminalSymbol(elem.name)
		case rhsElementKindTerminal:
			sym, err = w.RegisterTerminalSymbol(elem.name)
		case rhsElementKindEpsilon:
			sym = symbol.SymbolEpsilon
		}
		if err != nil {
			return err
		}
		rhsSyms[i] = sym
	}

	prod, err := newProduction(lhsSym, rhsSyms)
	if err != nil {
		return err
	}
	if !b.prods.append(prod) {
		b.dups = append(b.dups, prod)
		return nil
	}

	tracer().Debugf("production %v: %v", prod.num, b.productionText(prod))

	return nil
}

func (b *GrammarBuilder) checkProduction(lhs string, rhs []RHSElement) *GrammarError {
	if lhs == "" {
		return &GrammarError{
			Cause:  ErrUndefinedSymbol,
			Symbol: `""`,
		}
	}
	if isReservedName(lhs) {
		return &GrammarError{
			Cause:       ErrReservedSymbol,
			NonTerminal: lhs,
			Symbol:      lhs,
		}
	}
	if len(rhs) == 0 {
		return &GrammarError{
			Cause:       ErrEmptyAlternative,
			NonTerminal: lhs,
		}
	}

	names := []string{lhs}
	kinds := map[string]rhsElementKind{
		lhs: rhsElementKindNonTerminal,
	}
	for _, elem := range rhs {
		if elem.kind == rhsElementKindEpsilon {
			if len(rhs) > 1 {
				return &GrammarError{
					Cause:       ErrMisplacedEpsilon,
					NonTerminal: lhs,
					Productions: []string{formatRHSElements(lhs, rhs)},
				}
			}
			continue
		}
		if elem.name == "" {
			return &GrammarError{
				Cause:       ErrUndefinedSymbol,
				NonTerminal: lhs,
				Symbol:      `""`,
			}
		}
		if isReservedName(elem.name) {
			return &GrammarError{
				Cause:       ErrReservedSymbol,
				NonTerminal: lhs,
				Symbol:      elem.name,
				Productions: []string{formatRHSElements(lhs, rhs)},
			}
		}
		if k, ok := kinds[elem.name]; ok && k != elem.kind {
			return &GrammarError{
				Cause:       ErrNameConflict,
				NonTerminal: lhs,
				Symbol:      elem.name,
				Productions: []string{formatRHSElements(lhs, rhs)},
			}
		}
		if _, ok := kinds[elem.name]; !ok {
			names = append(names, elem.name)
		}
		kinds[elem.name] = elem.kind
	}

	r := b.symTab.Reader()
	for _, name := range names {
		kind := kinds[name]
		sym, ok := r.ToSymbol(name)
		if !ok {
			continue
		}
		if (kind == rhsElementKindNonTerminal && !sym.IsNonTerminal()) || (kind == rhsElementKindTerminal && !sym.IsTerminal()) {
			return &GrammarError{
				Cause:       ErrNameConflict,
				NonTerminal: lhs,
				Symbol:      name,
				Productions: []string{formatRHSElements(lhs, rhs)},
			}
		}
	}

	return nil
}

func formatRHSElements(lhs string, rhs []RHSElement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", lhs)
	for _, elem := range rhs {
		fmt.Fprintf(&b, " %v", elem)
	}
	return b.String()
}

func (b *GrammarBuilder) productionText(prod *Production) string {
	g := &Grammar{
		symbolTable:   b.symTab,
		productionSet: b.prods,
	}
	return g.ProductionText(prod)
}

// Finalize validates the productions added so far and returns an immutable grammar whose
// start symbol is start. Every error found is returned together as GrammarErrors.
func (b *GrammarBuilder) Finalize(start string) (*Grammar, error) {
	b.init()

	errs := make(GrammarErrors, len(b.errs))
	copy(errs, b.errs)

	prods := b.prods.getAllProductions()
	if len(prods) == 0 {
		errs = append(errs, &GrammarError{
			Cause: ErrNoProduction,
		})
		return nil, errs
	}

	r := b.symTab.Reader()

	startSym, ok := r.ToSymbol(start)
	if !ok || !startSym.IsNonTerminal() {
		errs = append(errs, &GrammarError{
			Cause:  ErrUnknownStart,
			Symbol: start,
		})
	} else if _, ok := b.prods.findByLHS(startSym); !ok {
		errs = append(errs, &GrammarError{
			Cause:  ErrUnknownStart,
			Symbol: start,
		})
	}

	reported := map[symbol.Symbol]struct{}{}
	for _, prod := range prods {
		for _, sym := range prod.rhs {
			if !sym.IsNonTerminal() {
				continue
			}
			if _, ok := b.prods.findByLHS(sym); ok {
				continue
			}
			if _, ok := reported[sym]; ok {
				continue
			}
			reported[sym] = struct{}{}

			text, _ := r.ToText(sym)
			errs = append(errs, &GrammarError{
				Cause:       ErrUndefinedSymbol,
				NonTerminal: text,
				Symbol:      text,
				Productions: []string{b.productionText(prod)},
			})
		}
	}

	for _, prod := range b.dups {
		text, _ := r.ToText(prod.lhs)
		errs = append(errs, &GrammarError{
			Cause:       ErrDuplicateDefinition,
			NonTerminal: text,
			Productions: []string{b.productionText(prod)},
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}

	tracer().Debugf("grammar %v: %v productions, %v non-terminals, %v terminals; start: %v",
		b.Name, len(prods), len(r.NonTerminalSymbols()), len(r.TerminalSymbols()), start)

	b.finalized = true

	return &Grammar{
		name:          b.Name,
		start:         startSym,
		symbolTable:   b.symTab,
		productionSet: b.prods,
	}, nil
}

// Build loads the productions from AST and finalizes them. The start symbol is Start when
// it is set, else the one AST declares, else the LHS of the first rule.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	if b.AST == nil {
		return nil, fmt.Errorf("a grammar builder needs an AST")
	}

	for _, prod := range b.AST.Productions {
		for _, alt := range prod.RHS {
			rhs := make([]RHSElement, len(alt.Elements))
			for i, elem := range alt.Elements {
				switch elem.Kind {
				case ast.ElementKindNonTerminal:
					rhs[i] = N(elem.ID)
				case ast.ElementKindTerminal:
					rhs[i] = T(elem.ID)
				case ast.ElementKindEpsilon:
					rhs[i] = E
				default:
					return nil, fmt.Errorf("an element has an unknown kind; kind: %v, position: %v:%v", elem.Kind, elem.Pos.Row, elem.Pos.Col)
				}
			}

			// The error is kept in the builder and returned by Finalize.
			b.AddProduction(prod.LHS, rhs...)
		}
	}

	start := b.Start
	if start == "" {
		start = b.AST.Start
	}
	if start == "" && len(b.AST.Productions) > 0 {
		start = b.AST.Productions[0].LHS
	}

	return b.Finalize(start)
}

type compileConfig struct {
	isReportingEnabled bool
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

const (
	lexKindNameWhiteSpace = mlspec.LexKindName("ws")
	lexPatternWhiteSpace  = mlspec.LexPattern(`[\u{0009}\u{000A}\u{000D}\u{0020}]+`)
)

func terminalLexKindName(sym symbol.Symbol) mlspec.LexKindName {
	return mlspec.LexKindName(fmt.Sprintf("t_%v", sym.Num()))
}

// Compile analyzes a grammar and generates its parsing table. When the grammar isn't
// LL(1), Compile returns GrammarErrors holding every table conflict together with the
// report, if reporting is enabled.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{}
	for _, opt := range opts {
		opt(config)
	}

	firstSet, err := genFirstSet(gram.productionSet)
	if err != nil {
		return nil, nil, err
	}

	followSet, err := genFollowSet(gram.productionSet, firstSet, gram.start, gram.NonTerminals())
	if err != nil {
		return nil, nil, err
	}

	b := &llTableBuilder{
		prods:  gram.productionSet,
		symTab: gram.symbolTable.Reader(),
		first:  firstSet,
		follow: followSet,
	}
	tab, buildErr := b.build()
	if buildErr != nil {
		if _, ok := buildErr.(GrammarErrors); !ok {
			return nil, nil, buildErr
		}
	}

	var report *spec.Report
	if config.isReportingEnabled {
		violations, err := validateLL1(gram, firstSet, followSet)
		if err != nil {
			return nil, nil, err
		}
		report, err = b.genReport(gram, violations)
		if err != nil {
			return nil, nil, err
		}
	}
	if buildErr != nil {
		return nil, report, buildErr
	}

	lexSpec, err := genLexSpec(gram)
	if err != nil {
		return nil, nil, err
	}

	r := gram.symbolTable.Reader()

	expansion := make([]int, len(tab.expansion))
	for i, e := range tab.expansion {
		expansion[i] = e.Int()
	}
	defaultExpansion := make([]int, len(tab.defaultExpansion))
	for i, e := range tab.defaultExpansion {
		defaultExpansion[i] = e.Int()
	}

	follow := make([]int, tab.nonTerminalCount*tab.terminalCount)
	for _, nonTerm := range gram.NonTerminals() {
		e, err := followSet.Find(nonTerm)
		if err != nil {
			return nil, nil, err
		}
		row := nonTerm.Num().Int() * tab.terminalCount
		if e.EOF() {
			follow[row+symbol.SymbolEOF.Num().Int()] = 1
		}
		for _, sym := range e.Symbols() {
			follow[row+sym.Num().Int()] = 1
		}
	}

	prods := gram.productionSet.getAllProductions()
	lhsSyms := make([]int, len(prods)+1)
	alts := make([][]int, len(prods)+1)
	for _, p := range prods {
		lhsSyms[p.num] = int(p.lhs)
		alt := make([]int, len(p.rhs))
		for i, sym := range p.rhs {
			alt[i] = int(sym)
		}
		alts[p.num] = alt
	}

	return &spec.CompiledGrammar{
		Name:    gram.name,
		Lexical: lexSpec,
		Syntactic: &spec.SyntacticSpec{
			Class:            "ll1",
			Terminals:        r.TerminalTexts(),
			TerminalCount:    tab.terminalCount,
			NonTerminals:     r.NonTerminalTexts(),
			NonTerminalCount: tab.nonTerminalCount,
			StartSymbol:      int(gram.start),
			EOFSymbol:        int(symbol.SymbolEOF),
			EpsilonSymbol:    int(symbol.SymbolEpsilon),
			Expansion:        expansion,
			DefaultExpansion: defaultExpansion,
			Follow:           follow,
			LHSSymbols:       lhsSyms,
			Alternatives:     alts,
		},
	}, report, nil
}

// genLexSpec generates a lexical specification recognizing each terminal by its literal
// text. White spaces between terminals are skipped.
func genLexSpec(gram *Grammar) (*spec.LexicalSpec, error) {
	r := gram.symbolTable.Reader()

	entries := []*mlspec.LexEntry{}
	kind2Sym := map[mlspec.LexKindName]symbol.Symbol{}
	for _, sym := range r.TerminalSymbols() {
		text, _ := r.ToText(sym)
		kind := terminalLexKindName(sym)
		entries = append(entries, &mlspec.LexEntry{
			Kind:    kind,
			Pattern: mlspec.LexPattern(mlspec.EscapePattern(text)),
		})
		kind2Sym[kind] = sym
	}
	entries = append(entries, &mlspec.LexEntry{
		Kind:    lexKindNameWhiteSpace,
		Pattern: lexPatternWhiteSpace,
	})

	lexSpec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    lexSpecName(gram.name),
		Entries: entries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0])
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr)
			}
			return nil, errors.New(b.String())
		}
		return nil, err
	}

	kind2Term := make([]int, len(lexSpec.KindNames))
	skip := make([]int, len(lexSpec.KindNames))
	for i, k := range lexSpec.KindNames {
		if k == mlspec.LexKindNameNil {
			kind2Term[i] = symbol.SymbolNil.Num().Int()
			continue
		}
		if k == lexKindNameWhiteSpace {
			skip[i] = 1
			continue
		}

		sym, ok := kind2Sym[k]
		if !ok {
			return nil, fmt.Errorf("a lexical kind doesn't correspond to any terminal; kind: %v", k)
		}
		kind2Term[i] = sym.Num().Int()
	}

	return &spec.LexicalSpec{
		Lexer: "maleeni",
		Maleeni: &spec.Maleeni{
			Spec:           lexSpec,
			KindToTerminal: kind2Term,
			Skip:           skip,
		},
	}, nil
}

const lexSpecNameDefault = "ll1_grammar"

// lexSpecName turns a grammar name into a lexical specification name, which must match
// `^[a-z](_?[0-9a-z]+)*$`.
func lexSpecName(gramName string) string {
	var elems []string
	var b strings.Builder
	for _, r := range strings.ToLower(gramName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			elems = append(elems, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		elems = append(elems, b.String())
	}
	if len(elems) == 0 {
		return lexSpecNameDefault
	}
	name := strings.Join(elems, "_")
	if name[0] < 'a' || name[0] > 'z' {
		name = "ll1_" + name
	}
	return name
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	if cErr.Fragment {
		fmt.Fprintf(w, "fragment ")
	}
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}
