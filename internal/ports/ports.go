package ports

import (
	"context"
	"time"

	"PublicationIngest/internal/domain"
)

// PageNavigator abstracts one stateful page-rendering session (a single
// browser tab). Implementations are not safe for concurrent use; run one
// session per worker.
type PageNavigator interface {
	Navigate(ctx context.Context, url string) error

	// WaitForPresence blocks until at least one element matches selector or
	// the timeout elapses, in which case it returns ErrElementNotFound.
	WaitForPresence(ctx context.Context, selector string, timeout time.Duration) error

	// WaitForClickable blocks until the element is present and interactable.
	// Timeout yields ErrElementNotFound.
	WaitForClickable(ctx context.Context, selector string, timeout time.Duration) error

	Click(ctx context.Context, selector string) error
	ScrollToBottom(ctx context.Context) error

	// ReadAttributes collects attr from every element matching selector.
	// URL-valued attributes (href, src) are resolved to absolute URLs.
	ReadAttributes(ctx context.Context, selector, attr string) ([]string, error)

	// HTML returns the full rendered document.
	HTML(ctx context.Context) (string, error)

	Close() error
}

// NavigatorFactory opens fresh navigator sessions, one per pass or worker.
type NavigatorFactory interface {
	NewSession(ctx context.Context) (PageNavigator, error)
}

// ObjectStore holds binary assets under content-addressed keys.
type ObjectStore interface {
	// Put writes body under key with overwrite semantics and returns the
	// canonical URI of the stored object.
	Put(ctx context.Context, key string, body []byte) (string, error)

	// List returns every stored key under prefix in listing order.
	List(ctx context.Context, prefix string) ([]string, error)

	// URL maps a stored key to its canonical URI without a round trip.
	URL(key string) string
}

// Warehouse persists assembled publication records, one row per call.
type Warehouse interface {
	Insert(ctx context.Context, record domain.PublicationRecord) error
}

// AssetFetcher downloads asset bytes from their origin with a bounded timeout.
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Notifier publishes batch summaries to an operator channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}

// Scheduler controls when batches execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
