package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/imgcrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing: a run header,
// per-depth counts, failed pages and the full image table.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	records := report.Results.Records()
	failures := report.Failures()

	w.writeHeader(md, report, len(records), len(failures))
	w.writeDepthSummary(md, report)
	w.writeFailures(md, failures)
	w.writeImages(md, records)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table and an alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport, images, failures int) {
	md.H1("imgcrawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Seed URL", "`" + report.SeedURL + "`"},
			{"Max Depth", strconv.Itoa(report.MaxDepth)},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed().Round(time.Millisecond).String()},
			{"Pages Crawled", strconv.Itoa(report.PagesFetched())},
			{"Images Found", strconv.Itoa(images)},
			{"Failed Pages", strconv.Itoa(failures)},
		},
	})
	md.PlainText("")

	switch {
	case failures > 0:
		md.Warningf("%d page(s) could not be fetched or parsed and were skipped.", failures)
	case images == 0:
		md.Note("No images were found within the depth limit.")
	default:
		md.Tip("All reachable pages were crawled successfully.")
	}
	md.PlainText("")
}

// writeDepthSummary writes per-depth counts and, when there are images,
// a mermaid pie chart of their distribution.
func (w *MarkdownWriter) writeDepthSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("By Depth")
	md.PlainText("")

	summaries := report.SummarizeByDepth()
	if len(summaries) == 0 {
		md.PlainText("Nothing was collected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summaries))
	var totalImages int
	for i, s := range summaries {
		rows[i] = []string{
			strconv.Itoa(s.Depth),
			strconv.Itoa(s.Pages),
			strconv.Itoa(s.Images),
			strconv.Itoa(s.Failures),
		}
		totalImages += s.Images
	}

	md.Table(markdown.TableSet{
		Header: []string{"Depth", "Source Pages", "Images", "Failures"},
		Rows:   rows,
	})
	md.PlainText("")

	if totalImages > 0 {
		w.writePieChart(md, summaries)
	}
}

// writePieChart writes a mermaid pie chart of images per depth.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summaries []model.DepthSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Images by Depth"),
		piechart.WithShowData(true),
	)

	for _, s := range summaries {
		if s.Images > 0 {
			chart.LabelAndIntValue("Depth "+strconv.Itoa(s.Depth), uint64(s.Images))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFailures writes the failed pages table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, failures []model.CrawlFailure) {
	if len(failures) == 0 {
		return
	}

	md.H2("Failed Pages")
	md.PlainText("")

	rows := make([][]string, len(failures))
	for i, f := range failures {
		status := "-"
		if f.StatusCode != 0 {
			status = strconv.Itoa(f.StatusCode)
		}
		rows[i] = []string{
			f.URL,
			strconv.Itoa(f.Depth),
			string(f.Kind),
			status,
			truncateString(f.Message, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Depth", "Kind", "Status", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeImages writes every image record in collection order.
func (w *MarkdownWriter) writeImages(md *markdown.Markdown, records []model.ImageRecord) {
	md.H2("Images")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No images found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.ImageURL, r.SourceURL, strconv.Itoa(r.Depth)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Image", "Source Page", "Depth"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [imgcrawl](https://github.com/nao1215/imgcrawl)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
