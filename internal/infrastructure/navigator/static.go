package navigator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PublicationIngest/internal/ports"
)

// StaticFactory serves listings that render without JavaScript: pages are
// fetched over plain HTTP and queried with goquery. Clicking a control
// follows the href found on or under it.
type StaticFactory struct {
	client *http.Client
}

var _ ports.NavigatorFactory = (*StaticFactory)(nil)

// NewStaticFactory wires an HTTP client; a 20s-timeout default is applied
// when client is nil.
func NewStaticFactory(client *http.Client) *StaticFactory {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &StaticFactory{client: client}
}

// NewSession returns a navigator with no page loaded.
func (f *StaticFactory) NewSession(_ context.Context) (ports.PageNavigator, error) {
	return &staticSession{client: f.client}, nil
}

type staticSession struct {
	client *http.Client
	doc    *goquery.Document
	base   *url.URL
}

var _ ports.PageNavigator = (*staticSession)(nil)

func (s *staticSession) Navigate(ctx context.Context, pageURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "PublicationIngest/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("invalid page url %s: %w", pageURL, err)
	}

	s.doc = doc
	s.base = base
	return nil
}

// WaitForPresence is immediate on a static document.
func (s *staticSession) WaitForPresence(_ context.Context, selector string, _ time.Duration) error {
	if s.doc == nil || s.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("presence of %s: %w", selector, ports.ErrElementNotFound)
	}
	return nil
}

// WaitForClickable requires the control to carry or contain a link target.
func (s *staticSession) WaitForClickable(_ context.Context, selector string, _ time.Duration) error {
	if s.clickTarget(selector) == "" {
		return fmt.Errorf("clickable %s: %w", selector, ports.ErrElementNotFound)
	}
	return nil
}

// Click follows the control's href.
func (s *staticSession) Click(ctx context.Context, selector string) error {
	target := s.clickTarget(selector)
	if target == "" {
		return fmt.Errorf("click %s: %w", selector, ports.ErrElementNotFound)
	}
	return s.Navigate(ctx, target)
}

func (s *staticSession) clickTarget(selector string) string {
	if s.doc == nil {
		return ""
	}

	control := s.doc.Find(selector).First()
	href, ok := control.Attr("href")
	if !ok {
		href, ok = control.Find("a").First().Attr("href")
	}
	if !ok || href == "" {
		return ""
	}
	return s.resolve(href)
}

func (s *staticSession) ScrollToBottom(_ context.Context) error {
	return nil
}

func (s *staticSession) ReadAttributes(_ context.Context, selector, attr string) ([]string, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("read %s[%s]: %w", selector, attr, ports.ErrElementNotFound)
	}

	var values []string
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		value, ok := sel.Attr(attr)
		if !ok {
			values = append(values, "")
			return
		}
		if attr == "href" || attr == "src" {
			value = s.resolve(value)
		}
		values = append(values, value)
	})
	return values, nil
}

func (s *staticSession) HTML(_ context.Context) (string, error) {
	if s.doc == nil {
		return "", fmt.Errorf("no page loaded")
	}
	return s.doc.Html()
}

func (s *staticSession) Close() error {
	s.doc = nil
	s.base = nil
	return nil
}

func (s *staticSession) resolve(href string) string {
	if s.base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return s.base.ResolveReference(ref).String()
}
