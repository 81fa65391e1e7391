package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PublicationIngest/internal/domain"
	"PublicationIngest/internal/ports"
)

// Listing-page selectors.
const (
	selItemLink    = `a[href*="/research/foundation"]`
	selNextControl = `li[aria-label="Next"]`
)

// Discoverer walks the paginated listing and collects every distinct
// publication link in first-seen order. The absence of a clickable "next"
// control is the sole termination condition.
type Discoverer struct {
	presenceTimeout  time.Duration
	clickableTimeout time.Duration
	logger           *slog.Logger
}

// New wires a discoverer with its wait budgets.
func New(presenceTimeout, clickableTimeout time.Duration, logger *slog.Logger) *Discoverer {
	if presenceTimeout <= 0 {
		presenceTimeout = 15 * time.Second
	}
	if clickableTimeout <= 0 {
		clickableTimeout = 10 * time.Second
	}
	return &Discoverer{
		presenceTimeout:  presenceTimeout,
		clickableTimeout: clickableTimeout,
		logger:           logger,
	}
}

// Discover runs pagination from the landing page and returns deduplicated
// links. Only an unreachable landing page is an error; a page without item
// links falls through to the pagination check.
func (d *Discoverer) Discover(ctx context.Context, nav ports.PageNavigator, landingURL string) ([]domain.PublicationLink, error) {
	if err := nav.Navigate(ctx, landingURL); err != nil {
		return nil, fmt.Errorf("open landing page %s: %w", landingURL, err)
	}

	seen := map[string]struct{}{}
	var links []domain.PublicationLink

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return links, err
		}

		if err := nav.WaitForPresence(ctx, selItemLink, d.presenceTimeout); err != nil {
			d.debug("no item links on page", "page", page)
		} else {
			hrefs, err := nav.ReadAttributes(ctx, selItemLink, "href")
			if err != nil {
				d.debug("read item links failed", "page", page, "error", err)
			}
			for _, href := range hrefs {
				if href == "" {
					continue
				}
				if _, ok := seen[href]; ok {
					continue
				}
				seen[href] = struct{}{}
				links = append(links, domain.PublicationLink(href))
			}
		}

		// Some paginators lazy-render the control until the page bottom
		// is reached.
		if err := nav.ScrollToBottom(ctx); err != nil {
			d.debug("scroll to bottom failed", "page", page, "error", err)
		}

		if err := nav.WaitForClickable(ctx, selNextControl, d.clickableTimeout); err != nil {
			d.debug("pagination ended", "pages", page, "links", len(links))
			break
		}
		if err := nav.Click(ctx, selNextControl); err != nil {
			d.debug("click next failed, ending pagination", "page", page, "error", err)
			break
		}
	}

	return links, nil
}

func (d *Discoverer) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
