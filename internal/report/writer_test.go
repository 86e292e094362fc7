package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/imgcrawl/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.CrawlReport {
	report := model.NewCrawlReport("https://example.com/", 2)
	report.Results.Append(
		model.ImageRecord{ImageURL: "https://example.com/a.png", SourceURL: "https://example.com/", Depth: 0},
		model.ImageRecord{ImageURL: "https://example.com/b.png", SourceURL: "https://example.com/x", Depth: 1},
		model.ImageRecord{ImageURL: "https://cdn.example.com/c.jpg", SourceURL: "https://example.com/x", Depth: 1},
	)
	report.RecordPage()
	report.RecordPage()
	report.RecordFailure(model.CrawlFailure{
		URL:        "https://example.com/missing",
		Depth:      1,
		Kind:       model.FailureTransport,
		StatusCode: 404,
		Message:    "Not Found",
	})
	report.Finish()
	return report
}

// TestJSONWriter tests the result document writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes results document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc struct {
			Results []struct {
				ImageURL  string `json:"imageUrl"`
				SourceURL string `json:"sourceUrl"`
				Depth     int    `json:"depth"`
			} `json:"results"`
		}
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(doc.Results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(doc.Results))
		}
		if doc.Results[1].ImageURL != "https://example.com/b.png" ||
			doc.Results[1].SourceURL != "https://example.com/x" ||
			doc.Results[1].Depth != 1 {
			t.Errorf("unexpected second record %+v", doc.Results[1])
		}
	})

	t.Run("has only the results key", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(raw) != 1 {
			t.Errorf("expected a single top-level key, got %d", len(raw))
		}
		if _, ok := raw["results"]; !ok {
			t.Error("expected results key")
		}
	})

	t.Run("empty results is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := model.NewCrawlReport("https://example.com/", 0)
		if _, err := NewJSONWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := strings.TrimSpace(buf.String()); got != `{"results":[]}` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("pretty print uses two spaces", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"results\": [") {
			t.Errorf("expected two-space indentation, got:\n%s", buf.String())
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("expected trailing newline")
		}
	})
}

// TestCSVWriter tests CSV output.
func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and rows", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
		}
		if lines[0] != "imageUrl,sourceUrl,depth" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lines[1] != "https://example.com/a.png,https://example.com/,0" {
			t.Errorf("unexpected first row %q", lines[1])
		}
	})

	t.Run("empty report writes header only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := model.NewCrawlReport("https://example.com/", 0)
		if _, err := NewCSVWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := strings.TrimSpace(buf.String()); got != "imageUrl,sourceUrl,depth" {
			t.Errorf("got %q", got)
		}
	})
}

// TestMarkdownWriter tests Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport()
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# imgcrawl Report",
			report.RunID,
			"## By Depth",
			"mermaid",
			"## Failed Pages",
			"https://example.com/missing",
			"404",
			"## Images",
			"https://cdn.example.com/c.jpg",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("omits failures section when there are none", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := model.NewCrawlReport("https://example.com/", 1)
		report.Finish()
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "## Failed Pages") {
			t.Error("did not expect failures section")
		}
		if !strings.Contains(output, "No images found.") {
			t.Error("expected empty images notice")
		}
	})
}

// TestSummaryWriter tests the terminal summary.
func TestSummaryWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewSummaryWriter(&buf).Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}

	output := buf.String()
	if !strings.Contains(output, "3 images from 2 pages, 1 failed") {
		t.Errorf("unexpected summary line:\n%s", output)
	}
	if !strings.Contains(output, "Depth") || !strings.Contains(output, "Source Pages") {
		t.Errorf("expected table header:\n%s", output)
	}
}

// TestNewWriter tests format selection.
func TestNewWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  string
		wantErr bool
	}{
		{format: FormatJSON},
		{format: FormatCSV},
		{format: FormatMarkdown},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			_, err := NewWriter(tt.format, &bytes.Buffer{})
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestWriteFile tests writing the result file to disk.
func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories with restricted mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "out", "results.json")
		if err := WriteFile(path, FormatJSON, createTestReport()); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("mode = %o, want 600", perm)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !strings.Contains(string(data), "\"results\"") {
			t.Errorf("unexpected content:\n%s", data)
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.json")
		if err := os.WriteFile(path, []byte(strings.Repeat("x", 4096)), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		report := model.NewCrawlReport("https://example.com/", 0)
		if err := WriteFile(path, FormatJSON, report); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if strings.Contains(string(data), "x") {
			t.Error("expected previous content to be truncated")
		}
	})

	t.Run("unknown format fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.xml")
		err := WriteFile(path, "xml", createTestReport())
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})

	t.Run("unwritable path fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, nil, 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		if err := WriteFile(filepath.Join(blocker, "results.json"), FormatJSON, createTestReport()); err == nil {
			t.Error("expected error writing beneath a regular file")
		}
	})
}
