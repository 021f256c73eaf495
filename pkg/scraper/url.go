package scraper

import (
	"fmt"
	"strings"

	"github.com/wallascope/wallascope/pkg/domain"
)

// search coordinates are pinned to the Madrid metro area; the distance
// filter does the actual geographic narrowing
const (
	searchBase = "https://es.wallapop.com/app/search?filters_source=quick_filters"
	longitude  = "-3.69196"
	latitude   = "40.41956"
)

// BuildSearchURL constructs the deterministic query URL for an intent.
// Distance values under 100 are taken as kilometers and scaled to meters;
// multi-valued conditions are joined with an encoded comma, with the
// legacy single-condition field as fallback.
func BuildSearchURL(intent domain.SearchIntent) string {
	keywords := strings.ReplaceAll(strings.TrimSpace(intent.Name), " ", "%20")

	dist := intent.Filters.Distance
	if dist == 0 {
		dist = 10000
	}
	if dist < 100 {
		dist *= 1000
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s&keywords=%s&longitude=%s&latitude=%s&distance=%d",
		searchBase, keywords, longitude, latitude, dist)

	if len(intent.Filters.Conditions) > 0 {
		sb.WriteString("&condition=")
		sb.WriteString(strings.Join(intent.Filters.Conditions, "%2C"))
	} else if c := intent.Filters.Condition; c != "" && !strings.EqualFold(c, "all") {
		sb.WriteString("&condition=")
		sb.WriteString(c)
	}

	return sb.String()
}
