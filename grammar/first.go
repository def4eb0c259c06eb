package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/ll1/grammar/symbol"
)

// FirstEntry is a FIRST set. Terminals are held in symbols, and empty is true when ε
// belongs to the set.
type FirstEntry struct {
	symbols map[symbol.Symbol]struct{}
	empty   bool
}

func newFirstEntry() *FirstEntry {
	return &FirstEntry{
		symbols: map[symbol.Symbol]struct{}{},
		empty:   false,
	}
}

func (e *FirstEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *FirstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *FirstEntry) mergeExceptEmpty(target *FirstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for sym := range target.symbols {
		added := e.add(sym)
		if added {
			changed = true
		}
	}
	return changed
}

// Symbols returns the terminals of the set in registration order.
func (e *FirstEntry) Symbols() []symbol.Symbol {
	return sortedSymbols(e.symbols)
}

// Empty reports whether ε belongs to the set.
func (e *FirstEntry) Empty() bool {
	return e.empty
}

// Contains reports whether sym belongs to the set. sym may be a terminal or ε.
func (e *FirstEntry) Contains(sym symbol.Symbol) bool {
	if sym.IsEpsilon() {
		return e.empty
	}
	_, ok := e.symbols[sym]
	return ok
}

func sortedSymbols(set map[symbol.Symbol]struct{}) []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(set))
	for sym := range set {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// FirstSet holds FIRST of every non-terminal having productions.
type FirstSet struct {
	set map[symbol.Symbol]*FirstEntry
}

func newFirstSet(prods *productionSet) *FirstSet {
	fst := &FirstSet{
		set: map[symbol.Symbol]*FirstEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := fst.set[prod.lhs]; ok {
			continue
		}
		fst.set[prod.lhs] = newFirstEntry()
	}

	return fst
}

// Find returns FIRST of the suffix of the RHS of prod starting at head. When head is
// past the end of the RHS, the suffix is empty, and the result holds only ε.
func (fst *FirstSet) Find(prod *Production, head int) (*FirstEntry, error) {
	entry := newFirstEntry()
	if prod.IsEmpty() || len(prod.rhs) <= head {
		entry.addEmpty()
		return entry, nil
	}
	for _, sym := range prod.rhs[head:] {
		if sym.IsTerminal() {
			entry.add(sym)
			return entry, nil
		}

		e := fst.FindBySymbol(sym)
		if e == nil {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		for s := range e.symbols {
			entry.add(s)
		}
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

// FindBySymbol returns FIRST of a single symbol. FIRST of a terminal is the terminal
// itself, and FIRST of ε holds only ε. The entry of a non-terminal is shared, so callers
// must not modify it.
func (fst *FirstSet) FindBySymbol(sym symbol.Symbol) *FirstEntry {
	switch sym.Kind() {
	case symbol.KindTerminal:
		e := newFirstEntry()
		e.add(sym)
		return e
	case symbol.KindEpsilon:
		e := newFirstEntry()
		e.addEmpty()
		return e
	case symbol.KindNonTerminal:
		return fst.set[sym]
	}
	return nil
}

type firstComContext struct {
	first *FirstSet
}

func newFirstComContext(prods *productionSet) *firstComContext {
	return &firstComContext{
		first: newFirstSet(prods),
	}
}

// genFirstSet computes FIRST as a fixed point. Each pass revisits every production, and
// the computation stops after a pass that changes nothing.
func genFirstSet(prods *productionSet) (*FirstSet, error) {
	cc := newFirstComContext(prods)
	pass := 0
	for {
		pass++
		more := false
		for _, prod := range prods.getAllProductions() {
			e := cc.first.FindBySymbol(prod.lhs)
			changed, err := genProdFirstEntry(cc, e, prod)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			break
		}
	}
	tracer().Debugf("FIRST reached a fixed point after %v passes", pass)
	return cc.first, nil
}

func genProdFirstEntry(cc *firstComContext, acc *FirstEntry, prod *Production) (bool, error) {
	if prod.IsEmpty() {
		return acc.addEmpty(), nil
	}

	changed := false
	for _, sym := range prod.rhs {
		if sym.IsTerminal() {
			if acc.add(sym) {
				changed = true
			}
			return changed, nil
		}

		e := cc.first.FindBySymbol(sym)
		if e == nil {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed, nil
		}
	}
	if acc.addEmpty() {
		changed = true
	}
	return changed, nil
}
