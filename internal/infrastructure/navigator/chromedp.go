package navigator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"PublicationIngest/internal/ports"
)

// ChromedpFactory opens headless-browser sessions for scripted listings.
// Each session owns its own browser process so workers never share a tab.
type ChromedpFactory struct {
	headless bool
	errlog   *log.Logger
}

var _ ports.NavigatorFactory = (*ChromedpFactory)(nil)

// NewChromedpFactory configures the browser allocator. errlog receives
// chromedp's internal error output.
func NewChromedpFactory(headless bool, errlog *log.Logger) *ChromedpFactory {
	return &ChromedpFactory{headless: headless, errlog: errlog}
}

// NewSession starts a fresh browser and returns a navigator bound to it.
func (f *ChromedpFactory) NewSession(ctx context.Context) (ports.PageNavigator, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	var browserOpts []chromedp.ContextOption
	if f.errlog != nil {
		browserOpts = append(browserOpts, chromedp.WithErrorf(f.errlog.Printf))
	}
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, browserOpts...)

	// Launch the browser eagerly so allocation errors surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &chromedpSession{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}, nil
}

type chromedpSession struct {
	ctx    context.Context
	cancel context.CancelFunc
}

var _ ports.PageNavigator = (*chromedpSession)(nil)

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromedpSession) WaitForPresence(ctx context.Context, selector string, timeout time.Duration) error {
	return s.wait(ctx, selector, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (s *chromedpSession) WaitForClickable(ctx context.Context, selector string, timeout time.Duration) error {
	return s.wait(ctx, selector, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
	)
}

func (s *chromedpSession) wait(ctx context.Context, selector string, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(tctx, actions...); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, ports.ErrElementNotFound)
	}
	return nil
}

func (s *chromedpSession) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(s.ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (s *chromedpSession) ScrollToBottom(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.ctx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

func (s *chromedpSession) ReadAttributes(ctx context.Context, selector, attr string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Property access first so href/src resolve to absolute URLs, the way
	// the DOM exposes them.
	js := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(el => el[%q] || el.getAttribute(%q) || "")`,
		selector, attr, attr)

	var values []string
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(js, &values)); err != nil {
		return nil, fmt.Errorf("read %s[%s]: %w", selector, attr, err)
	}
	return values, nil
}

func (s *chromedpSession) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return html, nil
}

func (s *chromedpSession) Close() error {
	s.cancel()
	return nil
}
