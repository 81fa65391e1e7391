package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"PublicationIngest/internal/correlate"
	"PublicationIngest/internal/discovery"
	"PublicationIngest/internal/domain"
	"PublicationIngest/internal/extract"
	"PublicationIngest/internal/ingest"
	"PublicationIngest/internal/ports"
)

// batchState tracks pipeline progress; transitions are strictly forward.
type batchState string

const (
	stateDiscovering batchState = "DISCOVERING"
	stateIngesting   batchState = "INGESTING_ASSETS"
	stateExtracting  batchState = "EXTRACTING_AND_PERSISTING"
	stateDone        batchState = "DONE"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Navigators ports.NavigatorFactory
	Store      ports.ObjectStore
	Warehouse  ports.Warehouse
	Notifier   ports.Notifier
	Discoverer *discovery.Discoverer
	Extractor  *extract.Extractor
	Ingestor   *ingest.AssetIngestor
	Logger     *slog.Logger

	Workers      int
	RetryLimit   int
	ImagesPrefix string
	PDFsPrefix   string
}

// Pipeline implements the publication-ingestion workflow: discover links,
// ingest assets, then extract, correlate, and persist each item. A single
// item's failure never aborts the batch.
type Pipeline struct {
	navigators ports.NavigatorFactory
	store      ports.ObjectStore
	warehouse  ports.Warehouse
	notifier   ports.Notifier
	discoverer *discovery.Discoverer
	extractor  *extract.Extractor
	ingestor   *ingest.AssetIngestor
	logger     *slog.Logger

	workers      int
	retryLimit   int
	imagesPrefix string
	pdfsPrefix   string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	retryLimit := deps.RetryLimit
	if retryLimit < 0 {
		retryLimit = 0
	}

	return &Pipeline{
		navigators:   deps.Navigators,
		store:        deps.Store,
		warehouse:    deps.Warehouse,
		notifier:     deps.Notifier,
		discoverer:   deps.Discoverer,
		extractor:    deps.Extractor,
		ingestor:     deps.Ingestor,
		logger:       deps.Logger,
		workers:      workers,
		retryLimit:   retryLimit,
		imagesPrefix: deps.ImagesPrefix,
		pdfsPrefix:   deps.PDFsPrefix,
	}
}

// RunBatch executes one full batch from the landing URL. It returns a summary
// even when individual items fail; only an unreachable landing page is fatal.
func (p *Pipeline) RunBatch(ctx context.Context, landingURL string) (domain.BatchSummary, error) {
	summary := domain.BatchSummary{StartedAt: time.Now()}

	p.transition(stateDiscovering)
	links, err := p.discoverLinks(ctx, landingURL)
	if err != nil {
		return summary, fmt.Errorf("%w: %v", ErrDiscoveryUnavailable, err)
	}
	summary.Discovered = len(links)
	p.info("discovery complete", "links", len(links))

	p.transition(stateIngesting)
	p.ingestAssets(ctx, links)

	inventory, err := p.snapshotInventory(ctx)
	if err != nil {
		// Correlation degrades to null URIs; extraction still proceeds.
		p.warn("inventory snapshot failed", "error", err)
	}

	p.transition(stateExtracting)
	outcomes := p.extractAndPersist(ctx, links, inventory)
	for _, outcome := range outcomes {
		summary.Record(outcome)
	}

	p.transition(stateDone)
	summary.FinishedAt = time.Now()
	p.info("batch complete",
		"discovered", summary.Discovered,
		"persisted", summary.Persisted,
		"skipped", summary.Skipped)

	p.notify(ctx, summary)
	return summary, nil
}

// discoverLinks runs the discovery pass in its own scoped navigator session.
func (p *Pipeline) discoverLinks(ctx context.Context, landingURL string) ([]domain.PublicationLink, error) {
	session, err := p.navigators.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open navigator session: %w", err)
	}
	defer session.Close()

	return p.discoverer.Discover(ctx, session, landingURL)
}

// ingestAssets guarantees every link's assets exist in the object store before
// the inventory snapshot. Failures are logged and skipped per asset.
func (p *Pipeline) ingestAssets(ctx context.Context, links []domain.PublicationLink) {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)

	for _, link := range links {
		link := link
		group.Go(func() error {
			p.ingestLinkAssets(gctx, link)
			return nil
		})
	}

	_ = group.Wait()
}

func (p *Pipeline) ingestLinkAssets(ctx context.Context, link domain.PublicationLink) {
	if ctx.Err() != nil {
		return
	}

	session, err := p.navigators.NewSession(ctx)
	if err != nil {
		p.warn("asset pass: session unavailable", "link", string(link), "error", err)
		return
	}
	defer session.Close()

	pdfURL, imageURL, err := p.extractor.AssetSources(ctx, session, link)
	if err != nil {
		p.warn("asset pass: page visit failed", "link", string(link), "error", err)
		return
	}

	if pdfURL != "" {
		key := p.pdfsPrefix + extract.FilenameTail(pdfURL)
		if err := p.ingestor.EnsureStored(ctx, pdfURL, key); err != nil {
			p.warn("pdf ingestion failed", "link", string(link), "error", err)
		}
	}
	if imageURL != "" {
		key := p.imagesPrefix + extract.FilenameTail(imageURL)
		if err := p.ingestor.EnsureStored(ctx, imageURL, key); err != nil {
			p.warn("image ingestion failed", "link", string(link), "error", err)
		}
	}
}

// snapshotInventory lists stored keys once per batch, after the ingestion
// pass and strictly before any correlation.
func (p *Pipeline) snapshotInventory(ctx context.Context) (domain.InventorySnapshot, error) {
	images, err := p.store.List(ctx, p.imagesPrefix)
	if err != nil {
		return domain.InventorySnapshot{}, fmt.Errorf("list images: %w", err)
	}
	pdfs, err := p.store.List(ctx, p.pdfsPrefix)
	if err != nil {
		return domain.InventorySnapshot{}, fmt.Errorf("list pdfs: %w", err)
	}

	return domain.NewInventorySnapshot(map[domain.AssetCategory][]string{
		domain.CategoryImages: images,
		domain.CategoryPDFs:   pdfs,
	}), nil
}

func (p *Pipeline) extractAndPersist(ctx context.Context, links []domain.PublicationLink, inventory domain.InventorySnapshot) []domain.ItemOutcome {
	outcomes := make([]domain.ItemOutcome, len(links))
	var mu sync.Mutex

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)

	for i, link := range links {
		i, link := i, link
		group.Go(func() error {
			outcome := p.processItem(gctx, link, inventory)
			mu.Lock()
			outcomes[i] = outcome
			mu.Unlock()
			return nil
		})
	}

	_ = group.Wait()
	return outcomes
}

// processItem drives one link to its terminal outcome.
func (p *Pipeline) processItem(ctx context.Context, link domain.PublicationLink, inventory domain.InventorySnapshot) domain.ItemOutcome {
	item, err := p.extractWithRetry(ctx, link)
	if err != nil {
		p.warn("extraction failed", "link", string(link), "error", err)
		return domain.ItemOutcome{Link: link, Kind: domain.OutcomeSkipped, Reason: reasonExtractionFailed}
	}

	if item.Empty() {
		p.warn("page yielded no fields", "link", string(link))
		return domain.ItemOutcome{Link: link, Kind: domain.OutcomeSkipped, Reason: reasonNoContent}
	}

	record := domain.PublicationRecord{
		Title:        item.Title,
		BriefSummary: composeBriefSummary(item),
	}
	if key := correlate.Resolve(item.RawImageRef, inventory, domain.CategoryImages); key != "" {
		record.ImageURI = p.store.URL(key)
	}
	if key := correlate.Resolve(item.RawPDFRef, inventory, domain.CategoryPDFs); key != "" {
		record.PDFURI = p.store.URL(key)
	}

	if err := p.warehouse.Insert(ctx, record); err != nil {
		p.warn("persist failed", "link", string(link), "error", err)
		return domain.ItemOutcome{Link: link, Kind: domain.OutcomeSkipped, Reason: reasonPersistFailed}
	}

	p.info("record persisted", "link", string(link), "title", record.Title)
	return domain.ItemOutcome{Link: link, Kind: domain.OutcomePersisted}
}

// extractWithRetry retries transient page-visit failures with exponential
// backoff; each attempt runs in a fresh scoped session.
func (p *Pipeline) extractWithRetry(ctx context.Context, link domain.PublicationLink) (domain.ExtractedItem, error) {
	var item domain.ExtractedItem

	attempt := func() error {
		session, err := p.navigators.NewSession(ctx)
		if err != nil {
			return err
		}
		defer session.Close()

		item, err = p.extractor.Extract(ctx, session, link)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.retryLimit)),
		ctx,
	)
	if err := backoff.Retry(attempt, policy); err != nil {
		return domain.ExtractedItem{}, err
	}
	return item, nil
}

// composeBriefSummary joins the present fields with their labels in fixed
// order, skipping absent ones entirely.
func composeBriefSummary(item domain.ExtractedItem) string {
	var parts []string
	if item.ShortDescription != "" {
		parts = append(parts, "Short Description: "+item.ShortDescription)
	}
	if item.Overview != "" {
		parts = append(parts, "Overview: "+item.Overview)
	}
	if item.ArticleBody != "" {
		parts = append(parts, "Article Paragraph: "+item.ArticleBody)
	}
	return strings.Join(parts, "\n")
}

func (p *Pipeline) notify(ctx context.Context, summary domain.BatchSummary) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishSummary(ctx, formatSummary(summary)); err != nil {
		p.warn("summary notification failed", "error", err)
	}
}

func formatSummary(summary domain.BatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Publication ingestion finished in %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second))
	fmt.Fprintf(&b, "Discovered: %d\nPersisted: %d\nSkipped: %d\n", summary.Discovered, summary.Persisted, summary.Skipped)

	reasons := make([]string, 0, len(summary.SkipReasons))
	for reason := range summary.SkipReasons {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(&b, "- %s: %d\n", reason, summary.SkipReasons[reason])
	}
	return b.String()
}

func (p *Pipeline) transition(state batchState) {
	p.info("pipeline state", "state", string(state))
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
