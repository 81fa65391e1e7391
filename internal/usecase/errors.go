package usecase

import "errors"

// ErrDiscoveryUnavailable is the only batch-fatal condition: the landing
// page itself could not be reached.
var ErrDiscoveryUnavailable = errors.New("landing page unavailable")

// Skip reasons recorded in the batch summary.
const (
	reasonExtractionFailed = "extraction failed"
	reasonNoContent        = "no content extracted"
	reasonPersistFailed    = "persist failed"
)
