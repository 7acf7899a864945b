// package formatter renders resolver reports as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/bandfeed/internal/search"
	"github.com/desertthunder/bandfeed/internal/shared"
)

// Format is an export format name.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat maps a flag value onto a [Format]. Empty defaults to text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (expected json, csv, md or txt)", shared.ErrUnsupportedFile, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ExportToCSV converts a report's results to CSV with columns: ID, Name, Country, Genres, Followers, Label
func ExportToCSV(report *search.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Country", "Genres", "Followers", "Label"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range report.Results {
		record := []string{
			r.ID,
			r.DisplayName,
			r.Country,
			strings.Join(r.GenreTags, ";"),
			strconv.Itoa(r.Followers),
			r.Label,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a report to Markdown. Attempts are rendered as a table when present.
func ExportToMarkdown(report *search.Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Results for %q\n\n", report.Query))
	buf.WriteString(fmt.Sprintf("**Method**: %s\n", report.Method))
	buf.WriteString(fmt.Sprintf("**Results**: %d\n", report.ResultCount))
	if len(report.VariantsTried) > 0 {
		quoted := make([]string, len(report.VariantsTried))
		for i, v := range report.VariantsTried {
			quoted[i] = "`" + v + "`"
		}
		buf.WriteString(fmt.Sprintf("**Variants**: %s\n", strings.Join(quoted, ", ")))
	}
	buf.WriteString("\n## Bands\n\n")

	if len(report.Results) == 0 {
		buf.WriteString("_No bands matched._\n")
	}
	for i, r := range report.Results {
		buf.WriteString(fmt.Sprintf("%d. **%s**", i+1, r.DisplayName))
		if r.Country != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", r.Country))
		}
		if r.GenreLabel != "" {
			buf.WriteString(fmt.Sprintf(" · %s", r.GenreLabel))
		}
		buf.WriteString(fmt.Sprintf(" · %d followers\n", r.Followers))
	}

	if len(report.Attempts) > 0 {
		buf.WriteString("\n## Attempts\n\n")
		buf.WriteString("| # | Strategy | Rule | Variant | Rows |\n")
		buf.WriteString("|---|----------|------|---------|------|\n")
		for i, a := range report.Attempts {
			buf.WriteString(fmt.Sprintf("| %d | %s | %s | `%s` | %d |\n", i+1, a.Strategy, a.Rule, a.Variant, a.Rows))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a report to plain text, one label per line
func ExportToText(report *search.Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Query: %s\n", report.Query))
	buf.WriteString(fmt.Sprintf("Method: %s\n", report.Method))
	if len(report.VariantsTried) > 0 {
		buf.WriteString(fmt.Sprintf("Variants: %s\n", strings.Join(report.VariantsTried, " | ")))
	}
	buf.WriteString(fmt.Sprintf("Results: %d\n\n", report.ResultCount))

	for i, r := range report.Results {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Label))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a report to indented JSON
func ExportToJSON(report *search.Report) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// Export renders report in the given format.
func Export(report *search.Report, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(report)
	case FormatMarkdown:
		return ExportToMarkdown(report)
	case FormatText:
		return ExportToText(report)
	case FormatJSON:
		return ExportToJSON(report)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedFile, f)
	}
}

// ExportBatchToCSV summarizes many reports, one row per query with the top match.
func ExportBatchToCSV(reports []*search.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Query", "Method", "Results", "TopID", "TopLabel"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, report := range reports {
		if report == nil {
			continue
		}
		var topID, topLabel string
		if len(report.Results) > 0 {
			topID, topLabel = report.Results[0].ID, report.Results[0].Label
		}
		record := []string{report.Query, report.Method.String(), strconv.Itoa(report.ResultCount), topID, topLabel}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteExport renders report and writes it to path.
//
// Defaults to results_{slug}.{ext} in the working directory, where slug is the query's canonical form.
func WriteExport(report *search.Report, f Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("results_%s.%s", Slug(report.Query), f.Extension())
	}

	data, err := Export(report, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// Slug turns a query into a file-name-safe string.
func Slug(query string) string {
	slug := strings.ReplaceAll(search.Canonical(query), " ", "_")
	if slug == "" {
		return "empty"
	}
	return slug
}
