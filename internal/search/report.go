package search

// Attempt is one store query made while resolving.
type Attempt struct {
	Strategy Strategy `json:"strategy"`
	Rule     Rule     `json:"rule"`
	Variant  string   `json:"variant"`
	Rows     int      `json:"rows"`
}

// Report is the outcome of a resolve call.
//
// Method is the strategy whose rows were returned ([StrategyNone] when nothing matched).
// VariantsTried and Attempts are only filled in verbose mode.
type Report struct {
	Query         string    `json:"query"`
	Results       []Result  `json:"results"`
	Method        Strategy  `json:"search_method"`
	VariantsTried []string  `json:"variants_tried,omitempty"`
	ResultCount   int       `json:"result_count"`
	Narrowed      bool      `json:"narrowed,omitempty"`
	Attempts      []Attempt `json:"attempts,omitempty"`
}

// trace records attempts when verbose.
type trace struct {
	verbose  bool
	attempts []Attempt
	tried    []string
	seen     map[string]struct{}
}

func newTrace(verbose bool) *trace {
	return &trace{verbose: verbose, seen: make(map[string]struct{})}
}

func (t *trace) record(s Strategy, v Variant, rows int) {
	if !t.verbose {
		return
	}
	t.attempts = append(t.attempts, Attempt{Strategy: s, Rule: v.Rule, Variant: v.Term, Rows: rows})
	if _, ok := t.seen[v.Term]; !ok {
		t.seen[v.Term] = struct{}{}
		t.tried = append(t.tried, v.Term)
	}
}
