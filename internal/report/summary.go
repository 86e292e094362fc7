package report

import (
	"fmt"
	"io"
	"time"

	"github.com/rodaine/table"

	"github.com/nao1215/imgcrawl/internal/model"
)

// SummaryWriter prints a short human-readable run summary followed by a
// per-depth table. It is meant for the terminal, next to the result file.
type SummaryWriter struct {
	baseWriter
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer) *SummaryWriter {
	return &SummaryWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary.
func (w *SummaryWriter) Write(report *model.CrawlReport) (int, error) {
	cw := &countingWriter{w: w.output}

	fmt.Fprintf(cw, "Crawled %s (max depth %d)\n", report.SeedURL, report.MaxDepth)
	fmt.Fprintf(cw, "  %d images from %d pages, %d failed, in %s\n\n",
		report.Results.Len(),
		report.PagesFetched(),
		len(report.Failures()),
		report.Elapsed().Round(time.Millisecond),
	)

	tbl := table.New("Depth", "Source Pages", "Images", "Failures").WithWriter(cw)
	for _, s := range report.SummarizeByDepth() {
		tbl.AddRow(s.Depth, s.Pages, s.Images, s.Failures)
	}
	tbl.Print()

	return cw.n, cw.err
}

// countingWriter counts bytes and keeps the first write error.
type countingWriter struct {
	w   io.Writer
	n   int
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += n
	c.err = err
	return n, err
}
