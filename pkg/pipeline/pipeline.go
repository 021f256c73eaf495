package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/wallascope/wallascope/pkg/classifier"
	"github.com/wallascope/wallascope/pkg/domain"
)

//go:generate moq -out mocks/harvester.go -pkg mocks -skip-ensure -fmt goimports . Harvester
//go:generate moq -out mocks/enricher.go -pkg mocks -skip-ensure -fmt goimports . Enricher
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier
//go:generate moq -out mocks/warehouse.go -pkg mocks -skip-ensure -fmt goimports . WarehouseSyncer

// Harvester acquires raw listing records for one search intent
type Harvester interface {
	Harvest(ctx context.Context, intent domain.SearchIntent) ([]domain.ListingRecord, error)
}

// Enricher fills structured specs on a batch of records
type Enricher interface {
	EnrichBatch(ctx context.Context, records []domain.ListingRecord) []domain.ListingRecord
}

// Notifier delivers best-effort run updates
type Notifier interface {
	Send(ctx context.Context, text string)
	Sendf(ctx context.Context, format string, args ...any)
}

// WarehouseSyncer mirrors classified partitions to the analytics store
type WarehouseSyncer interface {
	Sync(ctx context.Context, included, excluded []domain.ListingRecord) error
}

// TrackerStore is the cross-run listing ledger
type TrackerStore interface {
	RecordSeen(ctx context.Context, ids []string) error
	MarkStage(ctx context.Context, ids []string, stage domain.Stage, passed bool) error
	MarkEnriched(ctx context.Context, ids []string) error
}

// ListingStore keeps per-run stage snapshots
type ListingStore interface {
	StartRun(ctx context.Context) (int64, error)
	FinishRun(ctx context.Context, runID int64, status string) error
	SaveStage(ctx context.Context, runID int64, stage domain.Stage, records []domain.ListingRecord) error
	GetStage(ctx context.Context, runID int64, stage domain.Stage, includedOnly bool) ([]domain.ListingRecord, error)
}

// intent failure policies
const (
	OnFailureSkip     = "skip"
	OnFailureFailFast = "fail_fast"
)

// Config holds pipeline behavior settings
type Config struct {
	OnIntentFailure string // skip or fail_fast
	IntentRetries   int
	IntentBackoff   time.Duration
	StageRetries    int
	StageBackoff    time.Duration
	DataDir         string
}

// Params groups all pipeline collaborators
type Params struct {
	Harvester  Harvester
	Classifier *classifier.Engine
	Business   *classifier.BusinessFilter
	Enricher   Enricher        // optional, enrichment skipped when nil
	Warehouse  WarehouseSyncer // optional, sync skipped when nil
	Notifier   Notifier
	Tracker    TrackerStore
	Listings   ListingStore
	Intents    []domain.SearchIntent
	Config     Config
}

// Pipeline runs the acquisition and classification stages in order. Each
// stage reads its predecessor's snapshot for the current run id, so a
// stage failure never leaves a later stage consuming stale data.
type Pipeline struct {
	Params
	now func() time.Time
}

// Result summarizes a completed run
type Result struct {
	RunID      int64
	Harvested  int
	Classified int
	Business   int
	Final      int
	ExportPath string
}

// New creates a pipeline from its collaborators
func New(p Params) *Pipeline {
	if p.Config.OnIntentFailure == "" {
		p.Config.OnIntentFailure = OnFailureSkip
	}
	if p.Config.IntentRetries <= 0 {
		p.Config.IntentRetries = 1
	}
	if p.Config.StageRetries <= 0 {
		p.Config.StageRetries = 3
	}
	return &Pipeline{Params: p, now: time.Now}
}

// Run executes all stages for a single run
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID, err := p.Listings.StartRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	lgr.Printf("[INFO] run %d started, %d search intents", runID, len(p.Intents))

	res := &Result{RunID: runID}
	stages := []struct {
		name domain.Stage
		fn   func(ctx context.Context, runID int64, res *Result) error
	}{
		{domain.StageHarvest, p.harvest},
		{domain.StageClassify, p.classify},
		{domain.StageBusiness, p.business},
		{domain.StageEnrich, p.enrich},
		{domain.StageFinalize, p.finalize},
	}

	for _, stage := range stages {
		if err := p.runStage(ctx, stage.name, runID, res, stage.fn); err != nil {
			p.Notifier.Sendf(ctx, "run %d failed at stage %s: %v", runID, stage.name, err)
			if ferr := p.Listings.FinishRun(ctx, runID, "failed"); ferr != nil {
				lgr.Printf("[WARN] failed to mark run %d failed: %v", runID, ferr)
			}
			return res, fmt.Errorf("stage %s: %w", stage.name, err)
		}
	}

	if err := p.Listings.FinishRun(ctx, runID, "completed"); err != nil {
		return res, fmt.Errorf("finish run: %w", err)
	}
	p.Notifier.Sendf(ctx, "run %d completed: %d harvested, %d final", runID, res.Harvested, res.Final)
	lgr.Printf("[INFO] run %d completed: harvested=%d classified=%d business=%d final=%d",
		runID, res.Harvested, res.Classified, res.Business, res.Final)
	return res, nil
}

// runStage retries a stage a bounded number of times before giving up
func (p *Pipeline) runStage(ctx context.Context, name domain.Stage, runID int64, res *Result,
	fn func(ctx context.Context, runID int64, res *Result) error) error {

	lgr.Printf("[INFO] run %d stage %s started", runID, name)
	attempt := 0
	retrier := repeater.NewBackoff(p.Config.StageRetries, p.Config.StageBackoff)
	err := retrier.Do(ctx, func() error {
		attempt++
		if err := fn(ctx, runID, res); err != nil {
			lgr.Printf("[WARN] run %d stage %s attempt %d failed: %v", runID, name, attempt, err)
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed after %d attempts: %w", attempt, err)
	}
	lgr.Printf("[INFO] run %d stage %s done", runID, name)
	return nil
}

// harvest collects records for every intent, deduplicates across intents
// and snapshots the combined result. A failing intent is retried, then
// either skipped or fails the run depending on policy.
func (p *Pipeline) harvest(ctx context.Context, runID int64, res *Result) error {
	var all []domain.ListingRecord
	seen := make(map[string]bool)

	for _, intent := range p.Intents {
		records, err := p.harvestIntent(ctx, intent)
		if err != nil {
			if p.Config.OnIntentFailure == OnFailureFailFast {
				return fmt.Errorf("intent %q: %w", intent.Name, err)
			}
			lgr.Printf("[WARN] intent %q failed, skipping: %v", intent.Name, err)
			p.Notifier.Sendf(ctx, "search %q failed, skipped: %v", intent.Name, err)
			continue
		}
		for _, rec := range records {
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			all = append(all, rec)
		}
	}

	if err := p.Listings.SaveStage(ctx, runID, domain.StageHarvest, all); err != nil {
		return err
	}
	if err := p.Tracker.RecordSeen(ctx, ids(all)); err != nil {
		return err
	}
	res.Harvested = len(all)
	return nil
}

func (p *Pipeline) harvestIntent(ctx context.Context, intent domain.SearchIntent) ([]domain.ListingRecord, error) {
	var records []domain.ListingRecord
	retrier := repeater.NewBackoff(p.Config.IntentRetries, p.Config.IntentBackoff)
	err := retrier.Do(ctx, func() error {
		var herr error
		records, herr = p.Harvester.Harvest(ctx, intent)
		return herr
	})
	return records, err
}

func (p *Pipeline) classify(ctx context.Context, runID int64, res *Result) error {
	records, err := p.Listings.GetStage(ctx, runID, domain.StageHarvest, false)
	if err != nil {
		return err
	}

	included, excluded := p.Classifier.Partition(records)
	if err := p.Listings.SaveStage(ctx, runID, domain.StageClassify, append(included, excluded...)); err != nil {
		return err
	}
	if err := p.Tracker.MarkStage(ctx, ids(included), domain.StageClassify, true); err != nil {
		return err
	}
	if err := p.Tracker.MarkStage(ctx, ids(excluded), domain.StageClassify, false); err != nil {
		return err
	}

	res.Classified = len(included)
	lgr.Printf("[INFO] classification kept %d of %d records", len(included), len(records))
	return nil
}

func (p *Pipeline) business(ctx context.Context, runID int64, res *Result) error {
	records, err := p.Listings.GetStage(ctx, runID, domain.StageClassify, true)
	if err != nil {
		return err
	}

	included, excluded := p.Business.Partition(records)
	if err := p.Listings.SaveStage(ctx, runID, domain.StageBusiness, append(included, excluded...)); err != nil {
		return err
	}
	if err := p.Tracker.MarkStage(ctx, ids(included), domain.StageBusiness, true); err != nil {
		return err
	}
	if err := p.Tracker.MarkStage(ctx, ids(excluded), domain.StageBusiness, false); err != nil {
		return err
	}

	// best effort, the local ledger stays authoritative
	if p.Warehouse != nil {
		if err := p.Warehouse.Sync(ctx, included, excluded); err != nil {
			lgr.Printf("[WARN] warehouse sync failed: %v", err)
		}
	}

	res.Business = len(included)
	lgr.Printf("[INFO] business filter kept %d of %d records", len(included), len(records))
	return nil
}

func (p *Pipeline) enrich(ctx context.Context, runID int64, res *Result) error {
	if p.Enricher == nil {
		lgr.Printf("[DEBUG] no enricher configured, skipping enrichment")
		return nil
	}

	records, err := p.Listings.GetStage(ctx, runID, domain.StageBusiness, true)
	if err != nil {
		return err
	}

	enriched := p.Enricher.EnrichBatch(ctx, records)
	if err := p.Listings.SaveStage(ctx, runID, domain.StageEnrich, enriched); err != nil {
		return err
	}
	return p.Tracker.MarkEnriched(ctx, ids(enriched))
}

// finalize exports the surviving records as a timestamped JSON file
func (p *Pipeline) finalize(ctx context.Context, runID int64, res *Result) error {
	source := domain.StageBusiness
	if p.Enricher != nil {
		source = domain.StageEnrich
	}

	records, err := p.Listings.GetStage(ctx, runID, source, true)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.Config.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	name := fmt.Sprintf("results_run%d_%s.json", runID, p.now().UTC().Format("20060102_150405"))
	path := filepath.Join(p.Config.DataDir, name)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	res.Final = len(records)
	res.ExportPath = path
	lgr.Printf("[INFO] exported %d records to %s", len(records), path)
	return nil
}

func ids(records []domain.ListingRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}
