package classifier

import (
	"errors"
	"strings"

	"github.com/wallascope/wallascope/pkg/domain"
)

// ErrConfigNotFound indicates a record referencing a search term absent
// from configuration. Defensive: should not occur when the intent that
// produced the record is the one applying the filter.
var ErrConfigNotFound = errors.New("intent config not found")

// decision reasons, attached to every excluded record for auditability
const (
	ReasonOK             = "OK"
	ReasonNoTitle        = "no title"
	ReasonConfigNotFound = "config not found"
	ReasonFirstWord      = "first word excluded"
	ReasonBlacklisted    = "blacklisted word"
	ReasonMissingNumber  = "missing number"
	ReasonPriceTooLow    = "price too low"
)

// intentRules is the precomputed rule set for one intent
type intentRules struct {
	intent    domain.SearchIntent
	firstWord wordSet
	anywhere  wordSet
	primary   string // first token of the intent name
	qualifier string // optional second token, commonly a model number
}

// Engine decides inclusion or exclusion of listing records against their
// originating search intents. Decisions are a pure function of
// (title, search term, price, intent config); the Engine holds no
// mutable state after construction.
type Engine struct {
	rules map[string]intentRules // keyed by lowercase intent name
}

// NewEngine builds an Engine for the given intents, loading word lists once
func NewEngine(intents []domain.SearchIntent) *Engine {
	rules := make(map[string]intentRules, len(intents))
	for _, intent := range intents {
		first, any := intentWordLists(intent.BlacklistDir, intent.FirstWordExclusions, intent.AnywhereExclusions)

		nameTokens := Tokenize(intent.Name)
		r := intentRules{intent: intent, firstWord: first, anywhere: any}
		if len(nameTokens) > 0 {
			r.primary = nameTokens[0]
		}
		if len(nameTokens) > 1 {
			r.qualifier = nameTokens[1]
		}
		rules[strings.ToLower(intent.Name)] = r
	}
	return &Engine{rules: rules}
}

// Classify decides inclusion for a single record. The decision order is
// fixed: title sanity, intent lookup, first-word exclusion, then for titles
// not opening with the primary keyword the anywhere-exclusions and the
// qualifier requirement, and finally the price floor.
func (e *Engine) Classify(rec domain.ListingRecord) domain.ClassificationDecision {
	title := strings.TrimSpace(rec.Title)
	if title == "" || strings.EqualFold(title, domain.NoTitle) {
		return domain.ClassificationDecision{Included: false, Reason: ReasonNoTitle}
	}

	r, ok := e.rules[strings.ToLower(rec.SearchTerm)]
	if !ok {
		return domain.ClassificationDecision{Included: false, Reason: ReasonConfigNotFound}
	}

	tokens := Tokenize(title)
	if len(tokens) == 0 {
		return domain.ClassificationDecision{Included: false, Reason: ReasonNoTitle}
	}
	firstToken := tokens[0]

	if r.firstWord.has(firstToken) {
		return domain.ClassificationDecision{Included: false, Reason: ReasonFirstWord}
	}

	// a title opening with the exact primary keyword is treated as
	// trustworthy: both the anywhere-exclusions and the qualifier
	// requirement are skipped for it
	if firstToken != r.primary {
		for _, tok := range tokens {
			if r.anywhere.has(tok) {
				return domain.ClassificationDecision{Included: false, Reason: ReasonBlacklisted}
			}
		}
		if r.qualifier != "" && !containsToken(tokens, r.qualifier) {
			return domain.ClassificationDecision{Included: false, Reason: ReasonMissingNumber}
		}
	}

	price, err := ParsePrice(rec.PriceRaw)
	if err == nil && price < r.intent.Filters.PriceFloor {
		return domain.ClassificationDecision{Included: false, Reason: ReasonPriceTooLow}
	}

	return domain.ClassificationDecision{Included: true, Reason: ReasonOK}
}

// Partition classifies a batch and splits it into included and excluded
// records, each carrying its decision. Order within each partition follows
// the input order; no record is ever dropped.
func (e *Engine) Partition(records []domain.ListingRecord) (included, excluded []domain.ListingRecord) {
	for _, rec := range records {
		decision := e.Classify(rec)
		rec.Decision = &decision
		if decision.Included {
			included = append(included, rec)
			continue
		}
		excluded = append(excluded, rec)
	}
	return included, excluded
}

func containsToken(tokens []string, want string) bool {
	for _, tok := range tokens {
		if tok == want {
			return true
		}
	}
	return false
}
