package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PublicationIngest/internal/domain"
	"PublicationIngest/internal/ports"
)

// Publication detail-page selectors.
const (
	selTitle            = "h1.spotlight-hero__title.spotlight-max-width-item"
	selShortDescription = "p.article-description"
	selOverviewContent  = "span.overview__content"
	selArticleBodyPara  = "article.grid__item--article-body div p"
	selArticleBodyBlock = "article.grid__item--article-body div"
	selArticleParagraph = "div.article__paragraph p"
	selPDFLink          = "a.content-asset--primary"
	selCoverImage       = "section.book__cover-image img"
)

// Extractor visits one publication page and pulls metadata fields and raw
// asset references. Missing fields never fail the extraction; only a failed
// page visit does.
type Extractor struct {
	bodyTimeout time.Duration
	logger      *slog.Logger
}

// New wires an extractor with the wait budget for page content.
func New(bodyTimeout time.Duration, logger *slog.Logger) *Extractor {
	if bodyTimeout <= 0 {
		bodyTimeout = 20 * time.Second
	}
	return &Extractor{bodyTimeout: bodyTimeout, logger: logger}
}

// Extract navigates to the link and reads every field independently from the
// rendered document. Absent selectors leave their field empty.
func (e *Extractor) Extract(ctx context.Context, nav ports.PageNavigator, link domain.PublicationLink) (domain.ExtractedItem, error) {
	if err := nav.Navigate(ctx, string(link)); err != nil {
		return domain.ExtractedItem{}, fmt.Errorf("navigate %s: %w", link, err)
	}

	if err := nav.WaitForPresence(ctx, selArticleParagraph, e.bodyTimeout); err != nil {
		// Pages without an article body are still worth extracting.
		e.debug("article body not present", "link", string(link))
	}

	html, err := nav.HTML(ctx)
	if err != nil {
		return domain.ExtractedItem{}, fmt.Errorf("read document %s: %w", link, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.ExtractedItem{}, fmt.Errorf("parse document %s: %w", link, err)
	}

	return ItemFromDocument(doc), nil
}

// ItemFromDocument extracts every field from an already-parsed document.
func ItemFromDocument(doc *goquery.Document) domain.ExtractedItem {
	item := domain.ExtractedItem{
		Title:            textOf(doc, selTitle),
		ShortDescription: textOf(doc, selShortDescription),
		Overview:         extractOverview(doc),
		ArticleBody:      extractArticleBody(doc),
	}

	if src, ok := doc.Find(selCoverImage).First().Attr("src"); ok {
		item.RawImageRef = FilenameTail(src)
	}
	if href, ok := doc.Find(selPDFLink).First().Attr("href"); ok && LooksLikePDF(href) {
		item.RawPDFRef = FilenameTail(href)
	}

	return item
}

// AssetSources reads only the origin URLs of the page's PDF and cover image,
// for the asset-ingestion pass. Either may be empty when the page carries no
// such asset.
func (e *Extractor) AssetSources(ctx context.Context, nav ports.PageNavigator, link domain.PublicationLink) (pdfURL, imageURL string, err error) {
	if err := nav.Navigate(ctx, string(link)); err != nil {
		return "", "", fmt.Errorf("navigate %s: %w", link, err)
	}

	if err := nav.WaitForPresence(ctx, selPDFLink, e.bodyTimeout); err != nil && !errors.Is(err, ports.ErrElementNotFound) {
		return "", "", fmt.Errorf("wait for assets %s: %w", link, err)
	}

	if hrefs, err := nav.ReadAttributes(ctx, selPDFLink, "href"); err == nil && len(hrefs) > 0 && LooksLikePDF(hrefs[0]) {
		pdfURL = hrefs[0]
	}
	if srcs, err := nav.ReadAttributes(ctx, selCoverImage, "src"); err == nil && len(srcs) > 0 {
		imageURL = srcs[0]
	}

	return pdfURL, imageURL, nil
}

// FilenameTail returns the path tail of a URL with query and fragment
// stripped, the form asset references take in the object store.
func FilenameTail(raw string) string {
	tail := raw
	if i := strings.LastIndex(tail, "/"); i >= 0 {
		tail = tail[i+1:]
	}
	if i := strings.IndexAny(tail, "?#"); i >= 0 {
		tail = tail[:i]
	}
	return tail
}

// LooksLikePDF reports whether a link target names a PDF resource.
func LooksLikePDF(href string) bool {
	return strings.HasSuffix(strings.ToLower(FilenameTail(href)), ".pdf")
}

func textOf(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// extractOverview joins the dedicated overview element, every body paragraph,
// and every direct body block that holds no nested paragraph (those would
// duplicate text already captured).
func extractOverview(doc *goquery.Document) string {
	var parts []string

	if text := textOf(doc, selOverviewContent); text != "" {
		parts = append(parts, text)
	}

	doc.Find(selArticleBodyPara).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	doc.Find(selArticleBodyBlock).Each(func(_ int, sel *goquery.Selection) {
		if sel.Find("p").Length() > 0 {
			return
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return strings.Join(parts, " ")
}

func extractArticleBody(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find(selArticleParagraph).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n")
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
