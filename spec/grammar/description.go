package grammar

type Terminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type Production struct {
	Number int `json:"number"`
	LHS    int `json:"lhs"`

	// RHS holds terminal numbers as positive values and non-terminal numbers as negative
	// values. An epsilon production holds a single 0.
	RHS  []int  `json:"rhs"`
	Text string `json:"text"`
}

// FirstEntry is FIRST of a non-terminal. Empty is true when the non-terminal derives ε.
type FirstEntry struct {
	NonTerminal int   `json:"non_terminal"`
	Terminals   []int `json:"terminals"`
	Empty       bool  `json:"empty"`
}

// FollowEntry is FOLLOW of a non-terminal. EOF is true when the end of input may follow.
type FollowEntry struct {
	NonTerminal int   `json:"non_terminal"`
	Terminals   []int `json:"terminals"`
	EOF         bool  `json:"eof"`
}

type Cell struct {
	Terminal   int `json:"terminal"`
	Production int `json:"production"`
}

type Row struct {
	NonTerminal int     `json:"non_terminal"`
	Cells       []*Cell `json:"cells"`
}

type Conflict struct {
	NonTerminal int   `json:"non_terminal"`
	Terminal    int   `json:"terminal"`
	Productions []int `json:"productions"`
}

type Report struct {
	Name         string         `json:"name"`
	Start        int            `json:"start"`
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	First        []*FirstEntry  `json:"first"`
	Follow       []*FollowEntry `json:"follow"`
	Table        []*Row         `json:"table"`
	Conflicts    []*Conflict    `json:"conflicts"`

	// Violations lists the pairwise LL(1) condition violations found from FIRST and
	// FOLLOW alone. It is empty exactly when Conflicts is empty.
	Violations []string `json:"violations"`
}

// IsLL1 reports whether the grammar the report describes has no table conflicts.
func (r *Report) IsLL1() bool {
	return len(r.Conflicts) == 0
}
