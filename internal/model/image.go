package model

import "sync"

// ImageRecord is a single image discovered during a crawl.
// Records are immutable once created. The same image URL may appear in
// several records when more than one page references it.
type ImageRecord struct {
	// ImageURL is the absolute URL of the image.
	ImageURL string `json:"imageUrl" csv:"imageUrl"`

	// SourceURL is the absolute URL of the page the image was found on.
	SourceURL string `json:"sourceUrl" csv:"sourceUrl"`

	// Depth is the number of link hops from the seed page to SourceURL.
	// The seed page is depth 0.
	Depth int `json:"depth" csv:"depth"`
}

// ResultCollection is the append-only sequence of ImageRecords produced by a run.
// It is safe for concurrent use.
type ResultCollection struct {
	mu      sync.Mutex
	records []ImageRecord
}

// NewResultCollection creates an empty ResultCollection.
func NewResultCollection() *ResultCollection {
	return &ResultCollection{
		records: make([]ImageRecord, 0),
	}
}

// Append adds records to the end of the collection.
func (rc *ResultCollection) Append(records ...ImageRecord) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.records = append(rc.records, records...)
}

// Len returns the number of records collected so far.
func (rc *ResultCollection) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.records)
}

// Records returns a copy of the collected records in insertion order.
// Modifying the returned slice does not affect the collection.
func (rc *ResultCollection) Records() []ImageRecord {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]ImageRecord, len(rc.records))
	copy(out, rc.records)
	return out
}
