package report

import (
	"bytes"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/nao1215/imgcrawl/internal/model"
)

// CSVWriter outputs image records as CSV with the header
// imageUrl,sourceUrl,depth.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report's results as CSV. An empty result set still
// produces the header line.
func (w *CSVWriter) Write(report *model.CrawlReport) (int, error) {
	records := report.Results.Records()

	var buf bytes.Buffer
	if err := gocsv.Marshal(&records, &buf); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
