package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/bandfeed/internal/models"
	"github.com/desertthunder/bandfeed/internal/search"
	"github.com/desertthunder/bandfeed/internal/shared"
	th "github.com/desertthunder/bandfeed/internal/testing"
)

func sampleReport() *search.Report {
	results := search.Dedupe([]models.Band{
		{ID: "b1", Name: "Månegarm", Country: "Sweden", Genres: []string{"viking metal", "folk metal"}, Followers: models.Followers(1200)},
		{ID: "b2", Name: "Be'lakor", Country: "Australia", Genres: []string{"melodic death metal"}},
	})
	return &search.Report{
		Query:         "manegarm",
		Results:       results,
		Method:        search.StrategyContains,
		VariantsTried: []string{"manegarm"},
		ResultCount:   len(results),
		Attempts: []search.Attempt{
			{Strategy: search.StrategyContains, Rule: search.RuleRaw, Variant: "manegarm", Rows: 2},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleReport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Name,Country,Genres,Followers,Label\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "b1,Månegarm,Sweden,viking metal;folk metal,1200,Månegarm (Sweden) · viking metal, folk metal") &&
			!strings.Contains(output, `b1,Månegarm,Sweden,viking metal;folk metal,1200,"Månegarm (Sweden) · viking metal, folk metal"`) {
			t.Errorf("CSV missing first row, got: %s", output)
		}
		if !strings.Contains(output, "b2,Be'lakor,Australia,melodic death metal,0,") {
			t.Errorf("CSV should default missing followers to 0, got: %s", output)
		}
		if lines := strings.Count(output, "\n"); lines != 3 {
			t.Errorf("expected 3 lines, got %d", lines)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleReport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			`# Results for "manegarm"`,
			"**Method**: contains",
			"**Results**: 2",
			"**Variants**: `manegarm`",
			"1. **Månegarm** (Sweden) · viking metal, folk metal · 1200 followers",
			"2. **Be'lakor** (Australia) · melodic death metal · 0 followers",
			"| 1 | contains | raw | `manegarm` | 2 |",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown empty", func(t *testing.T) {
		data, err := ExportToMarkdown(&search.Report{Query: "zzz", Method: search.StrategyNone})
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, "_No bands matched._") {
			t.Errorf("expected empty marker, got:\n%s", output)
		}
		if strings.Contains(output, "## Attempts") {
			t.Errorf("attempts table should be omitted, got:\n%s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleReport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"Query: manegarm\n",
			"Method: contains\n",
			"Results: 2\n\n",
			"1. Månegarm (Sweden) · viking metal, folk metal\n",
			"2. Be'lakor (Australia) · melodic death metal\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleReport())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded["search_method"] != "contains" {
			t.Errorf("expected search_method contains, got %v", decoded["search_method"])
		}
		if decoded["result_count"] != float64(2) {
			t.Errorf("expected result_count 2, got %v", decoded["result_count"])
		}
	})

	t.Run("ExportBatchToCSV", func(t *testing.T) {
		empty := &search.Report{Query: "zzz", Method: search.StrategyNone, Results: []search.Result{}}
		data, err := ExportBatchToCSV([]*search.Report{sampleReport(), nil, empty})
		if err != nil {
			t.Fatalf("ExportBatchToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Query,Method,Results,TopID,TopLabel\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "manegarm,contains,2,b1,") {
			t.Errorf("missing first report row, got: %s", output)
		}
		if !strings.Contains(output, "zzz,none,0,,\n") {
			t.Errorf("missing empty report row, got: %s", output)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"CSV", FormatCSV},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{" json ", FormatJSON},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.md")

		written, err := WriteExport(sampleReport(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "# Results for") {
			t.Errorf("unexpected content: %s", content)
		}
	})

	t.Run("default path", func(t *testing.T) {
		t.Chdir(t.TempDir())

		report := sampleReport()
		report.Query = "Be%27lakor!"
		written, err := WriteExport(report, FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "results_belakor.csv" {
			t.Errorf("expected results_belakor.csv, got %s", written)
		}
		th.AssertFileExists(t, written)
	})

	t.Run("unwritable path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.txt")
		if _, err := WriteExport(sampleReport(), FormatText, path); err == nil {
			t.Error("expected error for missing directory")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := WriteExport(sampleReport(), Format("xml"), filepath.Join(t.TempDir(), "x")); !errors.Is(err, shared.ErrUnsupportedFile) {
			t.Errorf("expected ErrUnsupportedFile, got %v", err)
		}
	})
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Månegarm", "manegarm"},
		{"amon amarth", "amon_amarth"},
		{"Be%27lakor", "belakor"},
		{"   ", "empty"},
		{"Sunn O)))", "sunn_o"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
