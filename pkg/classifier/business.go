package classifier

import (
	"strings"

	"github.com/wallascope/wallascope/pkg/domain"
)

// business filter reasons
const (
	ReasonGlobalBlacklist = "global blacklist"
	ReasonNotWhitelisted  = "not whitelisted"
)

// BusinessFilter applies a single global blacklist and an optional global
// whitelist over the included partition, independent of per-intent config.
// Matching is plain substring containment, case-insensitive. The blacklist
// is evaluated first; the first failing rule determines the reason.
type BusinessFilter struct {
	blacklist []string
	whitelist []string
}

// NewBusinessFilter builds a filter from term lists
func NewBusinessFilter(blacklist, whitelist []string) *BusinessFilter {
	return &BusinessFilter{blacklist: lowerAll(blacklist), whitelist: lowerAll(whitelist)}
}

// NewBusinessFilterFromFiles builds a filter from one-term-per-line files.
// Missing files yield empty lists; an empty whitelist never excludes.
func NewBusinessFilterFromFiles(blacklistPath, whitelistPath string) *BusinessFilter {
	return &BusinessFilter{
		blacklist: loadListFile(blacklistPath),
		whitelist: loadListFile(whitelistPath),
	}
}

// Check decides a single title
func (f *BusinessFilter) Check(title string) domain.ClassificationDecision {
	lowered := strings.ToLower(title)

	for _, term := range f.blacklist {
		if strings.Contains(lowered, term) {
			return domain.ClassificationDecision{Included: false, Reason: ReasonGlobalBlacklist}
		}
	}

	if len(f.whitelist) > 0 {
		match := false
		for _, term := range f.whitelist {
			if strings.Contains(lowered, term) {
				match = true
				break
			}
		}
		if !match {
			return domain.ClassificationDecision{Included: false, Reason: ReasonNotWhitelisted}
		}
	}

	return domain.ClassificationDecision{Included: true, Reason: ReasonOK}
}

// Partition applies the filter to a batch, splitting it into included and
// excluded records with decisions attached, preserving input order
func (f *BusinessFilter) Partition(records []domain.ListingRecord) (included, excluded []domain.ListingRecord) {
	for _, rec := range records {
		decision := f.Check(rec.Title)
		rec.Decision = &decision
		if decision.Included {
			included = append(included, rec)
			continue
		}
		excluded = append(excluded, rec)
	}
	return included, excluded
}

func lowerAll(terms []string) []string {
	res := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			res = append(res, term)
		}
	}
	return res
}
