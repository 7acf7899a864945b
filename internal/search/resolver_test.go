package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/desertthunder/bandfeed/internal/models"
	"github.com/desertthunder/bandfeed/internal/shared"
	th "github.com/desertthunder/bandfeed/internal/testing"
)

// fixtureBands is ordered the way the sqlite store orders rows: by lowercased name.
func fixtureBands() []models.Band {
	return []models.Band{
		{ID: "1", Name: "Amon", Country: "Sweden", Genres: []string{"death metal"}},
		{ID: "2", Name: "Amon Amarth", Country: "Sweden", Genres: []string{"melodic death metal", "viking metal"}, Followers: models.Followers(900)},
		{ID: "3", Name: "Amoncito", Country: "Mexico"},
		{ID: "4", Name: "Be'lakor", Country: "Australia", Genres: []string{"melodic death metal"}},
		{ID: "5", Name: "Emp", Country: "Germany"},
		{ID: "6", Name: "Emperor", Country: "Norway", Genres: []string{"black metal"}},
		{ID: "7", Name: "Månegarm", Country: "Sweden", Genres: []string{"viking metal", "folk metal"}},
	}
}

func newFixtureStore(bands []models.Band) *th.FakeBandStore {
	return &th.FakeBandStore{Bands: bands, Normalize: Canonical}
}

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("unicode equivalence", func(t *testing.T) {
		for _, query := range []string{"manegarm", "månegarm", "MÅNEGARM"} {
			store := newFixtureStore(fixtureBands())
			results, err := NewResolver(store, DefaultOptions(), nil).Search(ctx, query)
			if err != nil {
				t.Fatalf("Search(%q) failed: %v", query, err)
			}
			if got := ids(results); !reflect.DeepEqual(got, []string{"7"}) {
				t.Errorf("Search(%q) = %v, want [7]", query, got)
			}
		}
	})

	t.Run("punctuation equivalence", func(t *testing.T) {
		for _, query := range []string{"belakor", "be'lakor", "be%27lakor", "Be’lakor"} {
			store := newFixtureStore(fixtureBands())
			results, err := NewResolver(store, DefaultOptions(), nil).Search(ctx, query)
			if err != nil {
				t.Fatalf("Search(%q) failed: %v", query, err)
			}
			if got := ids(results); !reflect.DeepEqual(got, []string{"4"}) {
				t.Errorf("Search(%q) = %v, want [4]", query, got)
			}
		}
	})

	t.Run("encoded query reports the decoded variant", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "be%27lakor")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}

		if report.Method != StrategyContains {
			t.Errorf("expected contains, got %s", report.Method)
		}
		want := []string{"be%27lakor", "be'lakor"}
		if !reflect.DeepEqual(report.VariantsTried, want) {
			t.Errorf("VariantsTried = %v, want %v", report.VariantsTried, want)
		}
		if report.ResultCount != 1 {
			t.Errorf("expected 1 result, got %d", report.ResultCount)
		}
	})

	t.Run("short query tries exact first", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "emp")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}

		if got := store.Methods(); !reflect.DeepEqual(got, []string{"Equals"}) {
			t.Errorf("expected only an exact lookup, got %v", got)
		}
		if got := ids(report.Results); !reflect.DeepEqual(got, []string{"5"}) {
			t.Errorf("expected [5], got %v", got)
		}
		if report.Method != StrategyExact {
			t.Errorf("expected exact, got %s", report.Method)
		}
		wantAttempts := []Attempt{{Strategy: StrategyExact, Rule: RuleRaw, Variant: "emp", Rows: 1}}
		if !reflect.DeepEqual(report.Attempts, wantAttempts) {
			t.Errorf("Attempts = %+v, want %+v", report.Attempts, wantAttempts)
		}
	})

	t.Run("short query falls back to prefix", func(t *testing.T) {
		bands := fixtureBands()
		withoutEmp := append(append([]models.Band{}, bands[:4]...), bands[5:]...)
		store := newFixtureStore(withoutEmp)

		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "emp")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}

		if got := store.Methods(); !reflect.DeepEqual(got, []string{"Equals", "StartsWith"}) {
			t.Errorf("expected exact then prefix, got %v", got)
		}
		if report.Method != StrategyPrefix {
			t.Errorf("expected prefix, got %s", report.Method)
		}
		if got := ids(report.Results); !reflect.DeepEqual(got, []string{"6"}) {
			t.Errorf("expected [6], got %v", got)
		}
	})

	t.Run("scenario amon", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "amon")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}

		if got := ids(report.Results); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
			t.Errorf("expected [1 2 3], got %v", got)
		}
		if report.Method != StrategyContains {
			t.Errorf("expected contains, got %s", report.Method)
		}
		if got := store.Methods(); !reflect.DeepEqual(got, []string{"Contains"}) {
			t.Errorf("expected a single contains lookup, got %v", got)
		}
	})

	t.Run("too many contains rows narrow to exact", func(t *testing.T) {
		bands := []models.Band{{ID: "wolf", Name: "Wolf"}}
		for i := 1; i <= 35; i++ {
			bands = append(bands, models.Band{ID: fmt.Sprintf("w%02d", i), Name: fmt.Sprintf("Wolf %02d", i)})
		}
		store := newFixtureStore(bands)

		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "wolf")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}

		if got := store.Methods(); !reflect.DeepEqual(got, []string{"Contains", "Equals"}) {
			t.Errorf("expected contains then exact, got %v", got)
		}
		if calls := store.Calls(); calls[0].Limit != DefaultMaxContainsResults+1 {
			t.Errorf("contains should fetch one row past the bound, got limit %d", calls[0].Limit)
		}
		if got := ids(report.Results); !reflect.DeepEqual(got, []string{"wolf"}) {
			t.Errorf("expected [wolf], got %v", got)
		}
		if report.Method != StrategyExact || !report.Narrowed {
			t.Errorf("expected narrowed exact match, got %s narrowed=%v", report.Method, report.Narrowed)
		}
	})

	t.Run("too many contains rows narrow to prefix when exact is empty", func(t *testing.T) {
		var bands []models.Band
		for i := 1; i <= 35; i++ {
			bands = append(bands, models.Band{ID: fmt.Sprintf("b%02d", i), Name: fmt.Sprintf("Black Wolf %02d", i)})
		}
		bands = append(bands, models.Band{ID: "wh", Name: "Wolfheart"}, models.Band{ID: "wm", Name: "Wolfmother"})
		store := newFixtureStore(bands)

		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "wolf")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}

		if got := store.Methods(); !reflect.DeepEqual(got, []string{"Contains", "Equals", "StartsWith"}) {
			t.Errorf("expected contains, exact, prefix, got %v", got)
		}
		if got := ids(report.Results); !reflect.DeepEqual(got, []string{"wh", "wm"}) {
			t.Errorf("expected only the prefix rows [wh wm], got %v", got)
		}
		if report.Method != StrategyPrefix || !report.Narrowed {
			t.Errorf("expected narrowed prefix match, got %s narrowed=%v", report.Method, report.Narrowed)
		}

		want := []Attempt{
			{Strategy: StrategyContains, Rule: RuleRaw, Variant: "wolf", Rows: DefaultMaxContainsResults + 1},
			{Strategy: StrategyExact, Rule: RuleRaw, Variant: "wolf", Rows: 0},
			{Strategy: StrategyPrefix, Rule: RuleRaw, Variant: "wolf", Rows: 2},
		}
		if !reflect.DeepEqual(report.Attempts, want) {
			t.Errorf("attempts = %+v, want %+v", report.Attempts, want)
		}
	})

	t.Run("too many contains rows without narrower match are capped", func(t *testing.T) {
		var bands []models.Band
		for i := 1; i <= 35; i++ {
			bands = append(bands, models.Band{ID: fmt.Sprintf("b%02d", i), Name: fmt.Sprintf("Black Wolf %02d", i)})
		}
		store := newFixtureStore(bands)

		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "wolf")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}

		if got := store.Methods(); !reflect.DeepEqual(got, []string{"Contains", "Equals", "StartsWith"}) {
			t.Errorf("expected contains, exact, prefix, got %v", got)
		}
		if report.ResultCount != DefaultMaxContainsResults {
			t.Errorf("expected %d results, got %d", DefaultMaxContainsResults, report.ResultCount)
		}
		if report.Method != StrategyContains || report.Narrowed {
			t.Errorf("expected un-narrowed contains, got %s narrowed=%v", report.Method, report.Narrowed)
		}
	})

	t.Run("threshold is overridable", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		opts := DefaultOptions()
		opts.MaxContainsResults = 2

		report, err := NewResolver(store, opts, nil).Debug(ctx, "amon")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}
		if got := ids(report.Results); !reflect.DeepEqual(got, []string{"1"}) {
			t.Errorf("expected narrowing to [1], got %v", got)
		}
		if report.Method != StrategyExact {
			t.Errorf("expected exact, got %s", report.Method)
		}
	})

	t.Run("fuzzy fallback", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "amon amarht")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}

		if got := ids(report.Results); !reflect.DeepEqual(got, []string{"2"}) {
			t.Errorf("expected [2], got %v", got)
		}
		if report.Method != StrategyFuzzy {
			t.Errorf("expected fuzzy, got %s", report.Method)
		}
		if got := store.Methods(); !reflect.DeepEqual(got, []string{"Contains", "Similar"}) {
			t.Errorf("expected contains then similar, got %v", got)
		}
	})

	t.Run("fuzzy disabled", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		opts := DefaultOptions()
		opts.Fuzzy = false

		report, err := NewResolver(store, opts, nil).Debug(ctx, "amon amarht")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}
		if report.ResultCount != 0 || report.Method != StrategyNone {
			t.Errorf("expected no results, got %d via %s", report.ResultCount, report.Method)
		}
	})

	t.Run("fuzzy merges variants without duplicates", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "Månegärn")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}

		if got := ids(report.Results); !reflect.DeepEqual(got, []string{"7"}) {
			t.Errorf("expected [7], got %v", got)
		}
		fuzzyAttempts := 0
		for _, a := range report.Attempts {
			if a.Strategy == StrategyFuzzy {
				fuzzyAttempts++
			}
		}
		if fuzzyAttempts < 2 {
			t.Errorf("expected the fuzzy tier to try every variant, got %d attempts", fuzzyAttempts)
		}
	})

	t.Run("dedup invariant", func(t *testing.T) {
		bands := fixtureBands()
		bands = append(bands[:2], append([]models.Band{bands[1]}, bands[2:]...)...)
		store := newFixtureStore(bands)

		results, err := NewResolver(store, DefaultOptions(), nil).Search(ctx, "amon")
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if got := ids(results); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
			t.Errorf("expected [1 2 3], got %v", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		resolver := NewResolver(store, DefaultOptions(), nil)

		first, err := resolver.Debug(ctx, "amon")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}
		second, err := resolver.Debug(ctx, "amon")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("expected identical reports, got %+v and %+v", first, second)
		}
	})

	t.Run("limit", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		opts := DefaultOptions()
		opts.Limit = 2

		results, err := NewResolver(store, opts, nil).Search(ctx, "amon")
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if got := ids(results); !reflect.DeepEqual(got, []string{"1", "2"}) {
			t.Errorf("expected [1 2], got %v", got)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		report, err := NewResolver(store, DefaultOptions(), nil).Debug(ctx, "  \t ")
		if err != nil {
			t.Fatalf("Debug failed: %v", err)
		}
		if report.ResultCount != 0 || len(report.Results) != 0 {
			t.Errorf("expected an empty result set, got %d", report.ResultCount)
		}
		if report.Results == nil {
			t.Error("expected a non-nil empty slice")
		}
		if len(store.Calls()) != 0 {
			t.Errorf("expected no store calls, got %v", store.Methods())
		}
	})

	t.Run("store errors propagate without retries", func(t *testing.T) {
		boom := errors.New("disk on fire")
		store := newFixtureStore(fixtureBands())
		store.Err = boom

		_, err := NewResolver(store, DefaultOptions(), nil).Search(ctx, "amon")
		if !errors.Is(err, shared.ErrStore) || !errors.Is(err, boom) {
			t.Fatalf("expected wrapped store error, got %v", err)
		}
		if n := len(store.Calls()); n != 1 {
			t.Errorf("expected a single attempt, got %d", n)
		}
	})

	t.Run("error in a later tier propagates", func(t *testing.T) {
		boom := errors.New("similarity index missing")
		store := newFixtureStore(fixtureBands())
		store.Err = boom
		store.FailOn = "Similar"

		if _, err := NewResolver(store, DefaultOptions(), nil).Search(ctx, "zzzzzz"); !errors.Is(err, boom) {
			t.Fatalf("expected fuzzy error, got %v", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewResolver(store, DefaultOptions(), nil).Search(canceled, "amon")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(store.Calls()) != 0 {
			t.Errorf("expected no store calls, got %v", store.Methods())
		}
	})

	t.Run("non verbose reports skip attempts", func(t *testing.T) {
		store := newFixtureStore(fixtureBands())
		report, err := NewResolver(store, DefaultOptions(), nil).Resolve(ctx, "amon", false)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if report.Attempts != nil || report.VariantsTried != nil {
			t.Errorf("expected no trace, got %+v", report)
		}
		if report.Method != StrategyContains || report.ResultCount != 3 {
			t.Errorf("unexpected report %+v", report)
		}
	})
}

func TestNewResolverDefaults(t *testing.T) {
	r := NewResolver(newFixtureStore(nil), Options{}, nil)
	opts := r.Options()

	if opts.ShortQueryLength != DefaultShortQueryLength {
		t.Errorf("expected short query length %d, got %d", DefaultShortQueryLength, opts.ShortQueryLength)
	}
	if opts.MaxContainsResults != DefaultMaxContainsResults {
		t.Errorf("expected max contains results %d, got %d", DefaultMaxContainsResults, opts.MaxContainsResults)
	}
	if opts.Normalizer == nil {
		t.Error("expected a default normalizer")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := shared.DefaultConfig().Search
	cfg.Normalizer = "unicode"

	opts := OptionsFromConfig(cfg)
	if opts.MaxContainsResults != cfg.MaxContainsResults || opts.Limit != cfg.Limit || opts.Fuzzy != cfg.Fuzzy {
		t.Errorf("options do not mirror config: %+v", opts)
	}
	if got := opts.Normalizer("Månegarm"); got != "månegarm" {
		t.Errorf("expected unicode normalizer, got %q", got)
	}
}

func TestDistanceThreshold(t *testing.T) {
	tests := []struct{ n, want int }{{0, 1}, {4, 1}, {10, 2}, {15, 3}, {40, 3}}
	for _, tt := range tests {
		if got := DistanceThreshold(tt.n); got != tt.want {
			t.Errorf("DistanceThreshold(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
