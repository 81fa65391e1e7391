package domain

import "time"

// PublicationLink identifies one publication detail page found during discovery.
// Links are unique within a batch and keep first-seen order.
type PublicationLink string

// ExtractedItem holds the raw fields pulled from a single publication page.
// Every field is independently optional; an empty string means the field was
// absent from the page.
type ExtractedItem struct {
	Title            string
	ShortDescription string
	Overview         string
	ArticleBody      string

	// Filename portion of the cover-image src / primary PDF href, used to
	// correlate against the object-store inventory.
	RawImageRef string
	RawPDFRef   string
}

// Empty reports whether extraction found nothing at all on the page.
func (i ExtractedItem) Empty() bool {
	return i.Title == "" &&
		i.ShortDescription == "" &&
		i.Overview == "" &&
		i.ArticleBody == "" &&
		i.RawImageRef == "" &&
		i.RawPDFRef == ""
}

// PublicationRecord is the row shape written to the warehouse. Empty strings
// map to NULL columns.
type PublicationRecord struct {
	Title        string
	BriefSummary string
	ImageURI     string
	PDFURI       string
}

// AssetCategory partitions stored assets in the object store.
type AssetCategory string

const (
	CategoryImages AssetCategory = "images"
	CategoryPDFs   AssetCategory = "pdfs"
)

// InventorySnapshot is the point-in-time listing of object-store keys per
// category. It is read-only for the duration of a batch and safe to share
// across extraction workers.
type InventorySnapshot struct {
	keys map[AssetCategory][]string
}

// NewInventorySnapshot copies the listed keys into an immutable snapshot.
func NewInventorySnapshot(keys map[AssetCategory][]string) InventorySnapshot {
	copied := make(map[AssetCategory][]string, len(keys))
	for category, list := range keys {
		copied[category] = append([]string(nil), list...)
	}
	return InventorySnapshot{keys: copied}
}

// Keys returns the stored keys for a category in listing order.
func (s InventorySnapshot) Keys(category AssetCategory) []string {
	return s.keys[category]
}

// OutcomeKind is the terminal state of one item within a batch.
type OutcomeKind string

const (
	OutcomePersisted OutcomeKind = "persisted"
	OutcomeSkipped   OutcomeKind = "skipped"
)

// ItemOutcome records how a single link finished. Reason is set only for
// skipped items.
type ItemOutcome struct {
	Link   PublicationLink
	Kind   OutcomeKind
	Reason string
}

// BatchSummary is the user-visible result of one full pipeline run.
type BatchSummary struct {
	Discovered  int
	Persisted   int
	Skipped     int
	SkipReasons map[string]int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Record notes one item outcome in the summary counters.
func (b *BatchSummary) Record(outcome ItemOutcome) {
	switch outcome.Kind {
	case OutcomePersisted:
		b.Persisted++
	case OutcomeSkipped:
		b.Skipped++
		if b.SkipReasons == nil {
			b.SkipReasons = map[string]int{}
		}
		b.SkipReasons[outcome.Reason]++
	}
}
