package domain

// SearchIntent is one configured search: a keyword query plus structured
// filters. Loaded once per run from configuration, immutable afterwards.
type SearchIntent struct {
	Name         string
	Filters      IntentFilters
	BlacklistDir string

	// inline word lists, used when BlacklistDir is not set
	FirstWordExclusions []string
	AnywhereExclusions  []string
}

// IntentFilters holds the structured search filters
type IntentFilters struct {
	PriceFloor   float64
	Distance     int // kilometers when < 100, meters otherwise
	Municipality string
	Conditions   []string // multi-valued condition set, e.g. "new", "good"
	Condition    string   // legacy single-condition fallback
}

// Stage identifies one step of the pipeline
type Stage string

// pipeline stages in execution order
const (
	StageHarvest  Stage = "harvest"
	StageClassify Stage = "classify"
	StageBusiness Stage = "business"
	StageEnrich   Stage = "enrich"
	StageFinalize Stage = "finalize"
)
