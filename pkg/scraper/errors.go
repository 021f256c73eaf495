package scraper

import "errors"

// acquisition failure taxonomy. All three propagate to the per-intent
// caller; none is retried inside the engine itself.
var (
	// ErrBlocked means anti-bot detection tripped on the loaded page
	ErrBlocked = errors.New("request blocked by anti-bot detection")

	// ErrControlNotFound means the load-more control was never located
	// within the attempt budget
	ErrControlNotFound = errors.New("load-more control not found")

	// ErrEmptyResult means zero item cards were extracted after full
	// expansion
	ErrEmptyResult = errors.New("no items found in page")
)
