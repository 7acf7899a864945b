// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/bandfeed/internal/models"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Call is one predicate invocation recorded by [FakeBandStore].
type Call struct {
	Method string
	Term   string
	Limit  int
}

// FakeBandStore is an in-memory test double for the resolver's store.
//
// Rows are returned in slice order. Normalize derives the normalized name when a band has none.
type FakeBandStore struct {
	Bands       []models.Band
	Normalize   func(string) string
	MaxDistance int    // fuzzy threshold, defaults to 2
	Err         error  // returned by every predicate when set
	FailOn      string // only this predicate fails with Err when set

	mu    sync.Mutex
	calls []Call
}

func (s *FakeBandStore) Equals(ctx context.Context, term string, limit int) ([]models.Band, error) {
	return s.match("Equals", term, limit, func(candidate, term string) bool { return candidate == term })
}

func (s *FakeBandStore) StartsWith(ctx context.Context, term string, limit int) ([]models.Band, error) {
	return s.match("StartsWith", term, limit, strings.HasPrefix)
}

func (s *FakeBandStore) Contains(ctx context.Context, term string, limit int) ([]models.Band, error) {
	return s.match("Contains", term, limit, strings.Contains)
}

func (s *FakeBandStore) Similar(ctx context.Context, term string, limit int) ([]models.Band, error) {
	threshold := s.MaxDistance
	if threshold <= 0 {
		threshold = 2
	}
	return s.match("Similar", term, limit, func(candidate, term string) bool {
		return fuzzy.LevenshteinDistance(term, candidate) <= threshold
	})
}

// Calls returns a copy of the recorded calls.
func (s *FakeBandStore) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Methods returns the recorded predicate names in call order.
func (s *FakeBandStore) Methods() []string {
	calls := s.Calls()
	methods := make([]string, len(calls))
	for i, c := range calls {
		methods[i] = c.Method
	}
	return methods
}

func (s *FakeBandStore) match(method, term string, limit int, pred func(candidate, term string) bool) ([]models.Band, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Term: term, Limit: limit})
	s.mu.Unlock()

	if s.Err != nil && (s.FailOn == "" || s.FailOn == method) {
		return nil, s.Err
	}

	term = strings.ToLower(term)
	var rows []models.Band
	for _, b := range s.Bands {
		normalized := b.NormalizedName
		if normalized == "" && s.Normalize != nil {
			normalized = s.Normalize(b.Name)
		}
		if pred(strings.ToLower(b.Name), term) || (normalized != "" && pred(normalized, term)) {
			rows = append(rows, b)
			if limit > 0 && len(rows) == limit {
				break
			}
		}
	}
	return rows, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
