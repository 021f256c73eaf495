package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/wallascope/wallascope/pkg/domain"
)

// Options configure the acquisition engine
type Options struct {
	Scrolls          int
	LoadMoreAttempts int
	Heuristic        ControlHeuristic
	BlockMarkers     BlockMarkers
	JitterMin        time.Duration
	JitterMax        time.Duration
}

// BlockMarkers are the known block signatures checked against the loaded
// page's title and visible text
type BlockMarkers struct {
	Title []string
	Body  []string
}

// DefaultBlockMarkers returns the signatures the marketplace's anti-bot
// layer is known to emit
func DefaultBlockMarkers() BlockMarkers {
	return BlockMarkers{
		Title: []string{"access denied", "error", "attention required"},
		Body:  []string{"request blocked", "has been blocked", "pardon our interruption"},
	}
}

// Delay is the injectable inter-scroll delay policy; production uses
// randomized jitter, tests run with zero delay
type Delay func(min, max time.Duration)

// JitterDelay sleeps a random duration within [min, max]
func JitterDelay(min, max time.Duration) {
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min))) //nolint:gosec // jitter needs no crypto randomness
	}
	time.Sleep(d)
}

// Engine drives a page session through the per-intent harvesting state
// machine: navigate, block-check, consent dismissal, load-more reveal,
// scroll expansion and card extraction
type Engine struct {
	sess  PageSession
	opts  Options
	diag  *DiagWriter
	delay Delay
	now   func() time.Time
}

// NewEngine creates an engine over the given session. A nil diag writer
// disables artifact capture; a nil delay falls back to jitter.
func NewEngine(sess PageSession, opts Options, diag *DiagWriter, delay Delay) *Engine {
	if opts.Scrolls == 0 {
		opts.Scrolls = 25
	}
	if opts.LoadMoreAttempts == 0 {
		opts.LoadMoreAttempts = 10
	}
	if opts.Heuristic.HostSelector == "" {
		opts.Heuristic = DefaultControlHeuristic()
	}
	if len(opts.BlockMarkers.Title) == 0 && len(opts.BlockMarkers.Body) == 0 {
		opts.BlockMarkers = DefaultBlockMarkers()
	}
	if delay == nil {
		delay = JitterDelay
	}
	return &Engine{sess: sess, opts: opts, diag: diag, delay: delay, now: time.Now}
}

// Harvest produces the complete, de-duplicated set of listing records
// visible on the intent's search results page. Failures propagate to the
// caller's retry policy; they are not retried here.
func (e *Engine) Harvest(ctx context.Context, intent domain.SearchIntent) ([]domain.ListingRecord, error) {
	url := BuildSearchURL(intent)
	lgr.Printf("[INFO] navigating to %s", url)
	if err := e.sess.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	if err := e.blockCheck(ctx); err != nil {
		e.diag.Capture(ctx, e.sess, "blocked")
		return nil, err
	}

	if e.sess.DismissConsent(ctx) {
		lgr.Printf("[INFO] consent banner dismissed")
	} else {
		lgr.Printf("[DEBUG] no consent banner found")
	}

	if err := e.reveal(ctx); err != nil {
		return nil, err
	}

	if err := e.expand(ctx); err != nil {
		return nil, err
	}

	return e.extract(ctx, intent)
}

// reveal hunts for the load-more control: scroll to the bottom, search,
// click, up to the attempt budget
func (e *Engine) reveal(ctx context.Context) error {
	for attempt := 1; attempt <= e.opts.LoadMoreAttempts; attempt++ {
		if err := e.sess.ScrollToBottom(ctx); err != nil {
			return fmt.Errorf("scroll before control search: %w", err)
		}
		e.delay(e.opts.JitterMin/2, e.opts.JitterMin)

		found, err := e.sess.ClickControl(ctx, e.opts.Heuristic)
		if err != nil {
			lgr.Printf("[WARN] control search failed on attempt %d: %v", attempt, err)
			continue
		}
		if found {
			lgr.Printf("[INFO] load-more control activated on attempt %d", attempt)
			return nil
		}
	}

	lgr.Printf("[ERROR] load-more control not found after %d attempts", e.opts.LoadMoreAttempts)
	e.diag.Capture(ctx, e.sess, "control-not-found")
	return ErrControlNotFound
}

// expand performs the configured scroll-to-bottom passes with jitter,
// re-checking block signatures after every scroll
func (e *Engine) expand(ctx context.Context) error {
	for n := 1; n <= e.opts.Scrolls; n++ {
		if err := e.sess.ScrollToBottom(ctx); err != nil {
			return fmt.Errorf("scroll %d: %w", n, err)
		}
		e.delay(e.opts.JitterMin, e.opts.JitterMax)

		if err := e.blockCheck(ctx); err != nil {
			lgr.Printf("[ERROR] block detected during expansion at scroll %d", n)
			e.diag.Capture(ctx, e.sess, "blocked")
			return err
		}
		lgr.Printf("[DEBUG] scroll %d/%d", n, e.opts.Scrolls)
	}
	return nil
}

// extract pulls all item cards and converts them to listing records,
// de-duplicated by id. A single malformed card never aborts the rest.
func (e *Engine) extract(ctx context.Context, intent domain.SearchIntent) ([]domain.ListingRecord, error) {
	cards, err := e.sess.ExtractCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract cards: %w", err)
	}

	if len(cards) == 0 {
		e.diag.Capture(ctx, e.sess, "empty-result")
		return nil, ErrEmptyResult
	}

	seen := make(map[string]bool, len(cards))
	records := make([]domain.ListingRecord, 0, len(cards))
	for _, card := range cards {
		if card.URL == "" {
			continue
		}
		id := domain.IDFromURL(card.URL)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		title := strings.TrimSpace(card.Title)
		if title == "" {
			title = domain.NoTitle
		}
		price := strings.TrimSpace(card.Price)
		if price == "" {
			price = "0"
		}

		records = append(records, domain.ListingRecord{
			ID:           id,
			ScrapedAt:    e.now(),
			Title:        title,
			PriceRaw:     price,
			URL:          card.URL,
			Municipality: intent.Filters.Municipality,
			SearchTerm:   intent.Name,
		})
	}

	lgr.Printf("[INFO] extracted %d records (%d cards) for %q", len(records), len(cards), intent.Name)
	return records, nil
}

// blockCheck inspects the page title and visible text for known block
// signatures
func (e *Engine) blockCheck(ctx context.Context) error {
	title, body, err := e.sess.PageState(ctx)
	if err != nil {
		return fmt.Errorf("read page state: %w", err)
	}

	title = strings.ToLower(title)
	for _, marker := range e.opts.BlockMarkers.Title {
		if strings.Contains(title, marker) {
			return fmt.Errorf("title signature %q: %w", marker, ErrBlocked)
		}
	}

	body = strings.ToLower(body)
	for _, marker := range e.opts.BlockMarkers.Body {
		if strings.Contains(body, marker) {
			return fmt.Errorf("body signature %q: %w", marker, ErrBlocked)
		}
	}
	return nil
}
