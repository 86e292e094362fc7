// Package pipeline executes a crawl run as a sequence of steps.
//
// A run passes through the crawl step, which produces the report, and then
// through the output steps: the result file, the optional terminal summary
// and the history database. Each stage is a Step that receives the Run and
// may read or fill it.
//
// The pipeline stops at the first failing step unless WithContinueOnError
// is set. A cancelled crawl therefore writes nothing. Steps decide for
// themselves what counts as a failure: the result file is required, the
// history database is best effort.
package pipeline
