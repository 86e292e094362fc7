package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/imgcrawl/internal/model"
)

// JSONWriter outputs the result document in JSON format:
//
//	{ "results": [ { "imageUrl": ..., "sourceUrl": ..., "depth": ... } ] }
//
// Only image records are written; failures and run metadata go to the
// history database and the other formats.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// ResultsDocument is the top-level JSON object of the result file.
type ResultsDocument struct {
	// Results lists every image record in collection order.
	// It is an empty array, never null, when nothing was found.
	Results []model.ImageRecord `json:"results"`
}

// NewResultsDocument snapshots the records of report.
func NewResultsDocument(report *model.CrawlReport) *ResultsDocument {
	records := report.Results.Records()
	if records == nil {
		records = []model.ImageRecord{}
	}
	return &ResultsDocument{Results: records}
}

// Write outputs the report's results in JSON format.
func (w *JSONWriter) Write(report *model.CrawlReport) (int, error) {
	return w.writeJSON(NewResultsDocument(report))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
