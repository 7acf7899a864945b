package search

import "strings"

// Rule names the normalization step that produced a [Variant].
type Rule string

const (
	RuleRaw      Rule = "raw"
	RuleDecoded  Rule = "decoded"
	RuleFolded   Rule = "folded"
	RuleStripped Rule = "stripped"
)

// Variant is one spelling of a query to try against the store.
type Variant struct {
	Rule Rule
	Term string
}

// Variants expands query into the ordered spellings to try: raw, percent-decoded, folded, punctuation-stripped.
//
// Empty terms are dropped and a term equal (ignoring case) to an earlier one is skipped, since every store predicate
// is case-insensitive. fold defaults to [Fold].
func Variants(query string, fold Normalizer) []Variant {
	if fold == nil {
		fold = Fold
	}

	raw := strings.TrimSpace(query)
	if raw == "" {
		return nil
	}

	decoded := strings.TrimSpace(Decode(raw))
	folded := strings.TrimSpace(fold(decoded))
	stripped := StripPunctuation(folded)

	candidates := [...]Variant{
		{Rule: RuleRaw, Term: raw},
		{Rule: RuleDecoded, Term: decoded},
		{Rule: RuleFolded, Term: folded},
		{Rule: RuleStripped, Term: stripped},
	}

	variants := make([]Variant, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if c.Term == "" {
			continue
		}
		key := strings.ToLower(c.Term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		variants = append(variants, c)
	}

	return variants
}

// Terms returns the terms of vs in order.
func Terms(vs []Variant) []string {
	terms := make([]string, len(vs))
	for i, v := range vs {
		terms[i] = v.Term
	}
	return terms
}
