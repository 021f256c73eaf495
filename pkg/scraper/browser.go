package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// Browser is the chromedp-backed PageSession. One browser session is
// reused across intents and torn down unconditionally via Close.
type Browser struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	timeout     time.Duration
}

// BrowserConfig holds browser session settings
type BrowserConfig struct {
	Headless  bool
	UserAgent string
	Timeout   time.Duration
}

// NewBrowser launches a Chrome instance and opens a tab
func NewBrowser(cfg BrowserConfig) (*Browser, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if bin := findChromeBinary(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// start the browser process eagerly so launch failures surface here
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Browser{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc, timeout: cfg.Timeout}, nil
}

// Close tears the browser down; safe to call once at the end of a run
func (b *Browser) Close() {
	b.cancelTab()
	b.cancelAlloc()
}

// Navigate loads the given URL and waits for the document to settle
func (b *Browser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
	)
}

// PageState returns the document title and a bounded slice of visible text
func (b *Browser) PageState(ctx context.Context) (title, body string, err error) {
	err = b.run(ctx,
		chromedp.Title(&title),
		chromedp.Evaluate(`document.body ? document.body.innerText.slice(0, 20000) : ''`, &body),
	)
	if err != nil {
		return "", "", fmt.Errorf("page state: %w", err)
	}
	return title, body, nil
}

// DismissConsent clicks the consent interstitial's reject control if the
// banner is present
func (b *Browser) DismissConsent(ctx context.Context) bool {
	var clicked bool
	err := b.run(ctx, chromedp.Evaluate(`
		(function() {
			var btn = document.querySelector('#onetrust-reject-all-handler');
			if (!btn) { return false; }
			btn.click();
			return true;
		})()
	`, &clicked))
	return err == nil && clicked
}

// ScrollToBottom scrolls the window to the document end
func (b *Browser) ScrollToBottom(ctx context.Context) error {
	return b.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

// ClickControl searches light and shadow trees for the control described
// by the heuristic and activates it. Activation is invoked twice (direct
// click, then a dispatched event) to tolerate overlay interception.
func (b *Browser) ClickControl(ctx context.Context, h ControlHeuristic) (bool, error) {
	hostSel, err := json.Marshal(h.HostSelector)
	if err != nil {
		return false, fmt.Errorf("marshal host selector: %w", err)
	}
	texts, err := json.Marshal(h.MatchTexts)
	if err != nil {
		return false, fmt.Errorf("marshal match texts: %w", err)
	}
	excludes, err := json.Marshal(h.ExcludeWithin)
	if err != nil {
		return false, fmt.Errorf("marshal exclusions: %w", err)
	}
	fallback, err := json.Marshal(h.FallbackSelector)
	if err != nil {
		return false, fmt.Errorf("marshal fallback selector: %w", err)
	}

	script := fmt.Sprintf(`
		(function() {
			var hostSel = %s, texts = %s, excludes = %s, fallbackSel = %s;

			function excluded(el) {
				for (var i = 0; i < excludes.length; i++) {
					if (el.closest && el.closest(excludes[i])) { return true; }
				}
				return false;
			}
			function matches(el) {
				var txt = (el.innerText || el.textContent || '').toLowerCase();
				if (!txt) { return false; }
				for (var i = 0; i < texts.length; i++) {
					if (txt.indexOf(texts[i]) !== -1) { return true; }
				}
				return false;
			}
			function activate(el) {
				el.scrollIntoView(true);
				try { el.click(); } catch (e) { /* overlay interception */ }
				el.dispatchEvent(new MouseEvent('click', {bubbles: true, cancelable: true, view: window}));
				return true;
			}

			var hosts = document.querySelectorAll(hostSel);
			for (var i = 0; i < hosts.length; i++) {
				var host = hosts[i];
				if (excluded(host)) { continue; }
				if (matches(host)) { return activate(host); }
				if (host.shadowRoot) {
					var inner = host.shadowRoot.querySelector('button');
					if (inner && matches(inner)) { return activate(inner); }
				}
			}

			if (fallbackSel) {
				var fb = document.querySelector(fallbackSel);
				if (fb && !excluded(fb)) { return activate(fb); }
			}
			return false;
		})()
	`, hostSel, texts, excludes, fallback)

	var found bool
	if err := b.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return false, fmt.Errorf("click control: %w", err)
	}
	return found, nil
}

// ExtractCards queries all item cards. Each field falls back independently
// so one malformed card never aborts the rest: title to the link's title
// attribute, price to "0".
func (b *Browser) ExtractCards(ctx context.Context) ([]Card, error) {
	var cards []Card
	err := b.run(ctx, chromedp.Evaluate(`
		(function() {
			var results = [];
			var items = document.querySelectorAll("a[class*='item-card_ItemCard']");
			for (var i = 0; i < items.length; i++) {
				var item = items[i];
				var url = item.href || '';
				if (!url) { continue; }

				var title = '';
				var titleEl = item.querySelector("h3[class*='item-card_ItemCard__title']");
				if (titleEl && titleEl.innerText) {
					title = titleEl.innerText.trim();
				} else {
					title = (item.getAttribute('title') || '').trim();
				}

				var price = '';
				var priceEl = item.querySelector("strong[class*='item-card_ItemCard__price']");
				if (priceEl && priceEl.innerText) {
					price = priceEl.innerText.trim();
				}

				results.push({title: title, price: price || '0', url: url});
			}
			return results;
		})()
	`, &cards))
	if err != nil {
		return nil, fmt.Errorf("extract cards: %w", err)
	}
	return cards, nil
}

// Capture grabs the page markup and a full screenshot
func (b *Browser) Capture(ctx context.Context) (html, screenshot []byte, err error) {
	var markup string
	var shot []byte
	err = b.run(ctx,
		chromedp.OuterHTML("html", &markup),
		chromedp.FullScreenshot(&shot, 80),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("capture page: %w", err)
	}
	return []byte(markup), shot, nil
}

// run executes chromedp actions on the session tab, bounded by the
// session timeout and the caller's context
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(tctx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// findChromeBinary locates a Chrome/Chromium binary
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
