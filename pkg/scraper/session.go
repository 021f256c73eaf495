package scraper

import "context"

// Card is one raw item card pulled from the results page. Fields already
// carry their fallback values: a missing title sub-element falls back to
// the card's title attribute or the sentinel, a missing price to "0".
type Card struct {
	Title string `json:"title"`
	Price string `json:"price"`
	URL   string `json:"url"`
}

// ControlHeuristic describes how to locate the load-more control. It is
// configuration data, not traversal logic: the session scans HostSelector
// candidates across light and shadow trees for MatchTexts, skipping
// anything inside ExcludeWithin containers, and falls back to
// FallbackSelector when the scan misses.
type ControlHeuristic struct {
	HostSelector     string
	MatchTexts       []string
	ExcludeWithin    []string
	FallbackSelector string
}

// DefaultControlHeuristic matches the marketplace's load-more button,
// including the web-component variant that renders it behind a shadow
// boundary, while staying clear of navigation and upload controls.
func DefaultControlHeuristic() ControlHeuristic {
	return ControlHeuristic{
		HostSelector:     "walla-button, button, a[role='button']",
		MatchTexts:       []string{"cargar más", "cargar mas", "ver más", "load"},
		ExcludeWithin:    []string{"nav", "header", "[class*='upload']", "[class*='Upload']"},
		FallbackSelector: "#btn-load-more",
	}
}

// PageSession is the capability surface the acquisition engine drives.
// The chromedp implementation is the production session; tests substitute
// a fake.
type PageSession interface {
	// Navigate loads the given URL
	Navigate(ctx context.Context, url string) error

	// PageState returns the current document title and visible body text,
	// used for block-signature checks
	PageState(ctx context.Context) (title, body string, err error)

	// DismissConsent tries to close a cookie/consent interstitial;
	// absence is not an error
	DismissConsent(ctx context.Context) bool

	// ScrollToBottom scrolls the window to the document end
	ScrollToBottom(ctx context.Context) error

	// ClickControl searches for the control described by the heuristic and
	// activates it, reporting whether it was found
	ClickControl(ctx context.Context, h ControlHeuristic) (bool, error)

	// ExtractCards queries all item cards and returns their raw fields
	ExtractCards(ctx context.Context) ([]Card, error)

	// Capture grabs the full page markup and a screenshot for diagnostics
	Capture(ctx context.Context) (html, screenshot []byte, err error)
}
