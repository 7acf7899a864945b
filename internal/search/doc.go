// Package search resolves free-text band name queries against a band store.
//
// # Variants
//
// A query is expanded into a short ordered list of spellings ([Variants]): the raw input, its percent-decoded form,
// a diacritic-folded form ("Månegarm" -> "manegarm") and a punctuation-stripped form ("be'lakor" -> "belakor").
// Variants that collapse to the same case-insensitive term are tried once.
//
// # Strategy tiers
//
// The [Resolver] escalates through match strategies in a fixed, length dependent order:
//
//	short query (<= Options.ShortQueryLength runes): exact -> prefix
//	longer query: contains, narrowed to exact -> prefix when it returns more than Options.MaxContainsResults rows
//	nothing found: fuzzy, when enabled and the store implements [SimilarityStore]
//
// Within a tier each variant is queried in order and the tier stops at the first variant that returns rows.
// The fuzzy tier is the exception: it queries every variant and merges what they return.
// Attempts are strictly sequential. A store error aborts the call and is never retried.
//
// # Results
//
// Rows are merged by band ID in first-seen order and projected into [Result] records.
// [Resolver.Resolve] with verbose set also returns every attempt made, which is what the debug endpoints and the tests inspect.
package search
