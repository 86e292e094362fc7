package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/imgcrawl/internal/model"
)

// Writer defines the interface for report output.
// Implementations write a finished crawl in one format.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.CrawlReport) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// NewWriter returns the file-format writer for format ("json", "csv" or
// "markdown"). JSON output is indented with two spaces.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatCSV:
		return NewCSVWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes report to path in the given format, creating parent
// directories as needed. The file is created with mode 0600 and replaced if
// it exists.
func WriteFile(path, format string, report *model.CrawlReport) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w, err := NewWriter(format, file)
	if err != nil {
		_ = file.Close()
		return err
	}

	if _, err := w.Write(report); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s report: %w", format, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
