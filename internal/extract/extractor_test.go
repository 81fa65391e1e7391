package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const samplePage = `
<html><body>
  <h1 class="spotlight-hero__title spotlight-max-width-item">Risk Premia Handbook</h1>
  <p class="article-description">A short description.</p>
  <span class="overview__content">Lead overview.</span>
  <article class="grid__item--article-body">
    <div><p>First body paragraph.</p></div>
    <div>Standalone block.</div>
  </article>
  <div class="article__paragraph">
    <p>Alpha.</p>
    <p>  </p>
    <p>Beta.</p>
  </div>
  <section class="book__cover-image"><img src="/img/abc123-cover.png?version=2"></section>
  <a class="content-asset--primary" href="/assets/risk-premia.pdf">Download</a>
</body></html>`

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestItemFromDocument(t *testing.T) {
	t.Parallel()

	item := ItemFromDocument(docFrom(t, samplePage))

	if item.Title != "Risk Premia Handbook" {
		t.Fatalf("unexpected title: %q", item.Title)
	}
	if item.ShortDescription != "A short description." {
		t.Fatalf("unexpected short description: %q", item.ShortDescription)
	}
	if item.Overview != "Lead overview. First body paragraph. Standalone block." {
		t.Fatalf("unexpected overview: %q", item.Overview)
	}
	if item.ArticleBody != "Alpha.\nBeta." {
		t.Fatalf("unexpected article body: %q", item.ArticleBody)
	}
	if item.RawImageRef != "abc123-cover.png" {
		t.Fatalf("unexpected image ref: %q", item.RawImageRef)
	}
	if item.RawPDFRef != "risk-premia.pdf" {
		t.Fatalf("unexpected pdf ref: %q", item.RawPDFRef)
	}
}

func TestFieldsAreIndependent(t *testing.T) {
	t.Parallel()

	// No title element; the remaining fields still extract.
	html := `
	<html><body>
	  <span class="overview__content">Only overview.</span>
	  <div class="article__paragraph"><p>Body text.</p></div>
	</body></html>`

	item := ItemFromDocument(docFrom(t, html))

	if item.Title != "" {
		t.Fatalf("expected absent title, got %q", item.Title)
	}
	if item.Overview != "Only overview." {
		t.Fatalf("unexpected overview: %q", item.Overview)
	}
	if item.ArticleBody != "Body text." {
		t.Fatalf("unexpected article body: %q", item.ArticleBody)
	}
}

func TestOverviewSkipsBlocksWithNestedParagraphs(t *testing.T) {
	t.Parallel()

	html := `
	<html><body>
	  <article class="grid__item--article-body">
	    <div><p>Captured once.</p></div>
	  </article>
	</body></html>`

	item := ItemFromDocument(docFrom(t, html))
	if item.Overview != "Captured once." {
		t.Fatalf("expected paragraph captured exactly once, got %q", item.Overview)
	}
}

func TestPDFRefIgnoresNonPDFLinks(t *testing.T) {
	t.Parallel()

	html := `
	<html><body>
	  <a class="content-asset--primary" href="/assets/companion-site.html">Visit</a>
	</body></html>`

	item := ItemFromDocument(docFrom(t, html))
	if item.RawPDFRef != "" {
		t.Fatalf("expected no pdf ref for html link, got %q", item.RawPDFRef)
	}
}

func TestFilenameTail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"https://cdn.example.org/img/cover.png?v=3", "cover.png"},
		{"/assets/report.pdf", "report.pdf"},
		{"plain.pdf", "plain.pdf"},
		{"https://cdn.example.org/a/b/c.png#frag", "c.png"},
	}
	for _, tc := range cases {
		if got := FilenameTail(tc.raw); got != tc.want {
			t.Fatalf("FilenameTail(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

// htmlNavigator serves a fixed document over the navigator port.
type htmlNavigator struct {
	html string
}

func (n *htmlNavigator) Navigate(_ context.Context, _ string) error { return nil }
func (n *htmlNavigator) WaitForPresence(_ context.Context, _ string, _ time.Duration) error {
	return nil
}
func (n *htmlNavigator) WaitForClickable(_ context.Context, _ string, _ time.Duration) error {
	return nil
}
func (n *htmlNavigator) Click(_ context.Context, _ string) error       { return nil }
func (n *htmlNavigator) ScrollToBottom(_ context.Context) error        { return nil }
func (n *htmlNavigator) HTML(_ context.Context) (string, error)        { return n.html, nil }
func (n *htmlNavigator) Close() error                                  { return nil }
func (n *htmlNavigator) ReadAttributes(_ context.Context, selector, attr string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(n.html))
	if err != nil {
		return nil, err
	}
	var values []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		value, _ := sel.Attr(attr)
		values = append(values, value)
	})
	return values, nil
}

func TestExtractThroughNavigator(t *testing.T) {
	t.Parallel()

	e := New(time.Second, nil)
	item, err := e.Extract(context.Background(), &htmlNavigator{html: samplePage}, "https://example.org/research/foundation/x")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if item.Title != "Risk Premia Handbook" {
		t.Fatalf("unexpected title: %q", item.Title)
	}
}

func TestAssetSources(t *testing.T) {
	t.Parallel()

	e := New(time.Second, nil)
	pdfURL, imageURL, err := e.AssetSources(context.Background(), &htmlNavigator{html: samplePage}, "https://example.org/research/foundation/x")
	if err != nil {
		t.Fatalf("AssetSources error: %v", err)
	}
	if pdfURL != "/assets/risk-premia.pdf" {
		t.Fatalf("unexpected pdf url: %q", pdfURL)
	}
	if imageURL != "/img/abc123-cover.png?version=2" {
		t.Fatalf("unexpected image url: %q", imageURL)
	}
}
