package correlate

import (
	"strings"

	"PublicationIngest/internal/domain"
)

// Resolve maps a raw asset reference to the stored key it corresponds to, or
// "" when the reference is empty or nothing matches. PDFs require an exact
// filename-tail match because their names are stable; image keys may carry a
// hash or prefix absent from the page-rendered filename, so a substring match
// is used instead. First match in inventory order wins.
//
// Resolve is a pure function and safe to call concurrently.
func Resolve(ref string, inventory domain.InventorySnapshot, category domain.AssetCategory) string {
	if ref == "" {
		return ""
	}

	keys := inventory.Keys(category)
	if category == domain.CategoryPDFs {
		return exactMatch(ref, keys)
	}
	return substringMatch(ref, keys)
}

func exactMatch(ref string, keys []string) string {
	for _, key := range keys {
		tail := key
		if i := strings.LastIndex(key, "/"); i >= 0 {
			tail = key[i+1:]
		}
		if tail == ref {
			return key
		}
	}
	return ""
}

func substringMatch(ref string, keys []string) string {
	for _, key := range keys {
		if strings.Contains(key, ref) {
			return key
		}
	}
	return ""
}
