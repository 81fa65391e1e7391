package ports

import "errors"

var (
	// ErrElementNotFound indicates a selector matched nothing before its
	// wait timeout. Callers treat the field or control as absent.
	ErrElementNotFound = errors.New("element not found")

	// ErrFetchFailed indicates an asset download returned a transport error
	// or non-2xx status. The asset is skipped, never the whole item.
	ErrFetchFailed = errors.New("asset fetch failed")
)
