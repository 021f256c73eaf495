package domain

import (
	"strings"
	"time"
)

// ListingRecord represents one harvested marketplace item
type ListingRecord struct {
	ID           string
	ScrapedAt    time.Time
	Title        string
	PriceRaw     string
	URL          string
	Municipality string
	SearchTerm   string

	Decision *ClassificationDecision
	Spec     *ListingSpec
}

// ClassificationDecision is the outcome of one classification stage,
// always attached to the record it decided
type ClassificationDecision struct {
	Included bool
	Reason   string
}

// ListingSpec holds the structured specification guessed by the
// enrichment collaborator, nil fields where extraction failed
type ListingSpec struct {
	Generation *string `json:"gen"`
	Model      *string `json:"mod"`
	Storage    *string `json:"memoria"`
	Battery    *string `json:"bateria"`
}

// NoTitle is the sentinel used when a card exposes no title element
const NoTitle = "No Title"

// IDFromURL derives the stable item identifier from the listing's canonical
// URL: the trailing fragment of the last path segment. Marketplace item URLs
// end with "<slug>-<numeric id>", so the fragment after the last hyphen is
// the identifier; slugs without hyphens yield the whole segment.
func IDFromURL(rawURL string) string {
	u := rawURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		u = u[i+1:]
	}
	if i := strings.LastIndex(u, "-"); i >= 0 {
		u = u[i+1:]
	}
	return u
}
