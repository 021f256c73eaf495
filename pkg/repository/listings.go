package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wallascope/wallascope/pkg/domain"
)

// ListingRepository stores per-stage listing snapshots keyed by run id.
// Each stage reads its predecessor's rows for the current run and replaces
// its own, which keeps stage restarts idempotent without relying on file
// modification times.
type ListingRepository struct {
	db *sqlx.DB
}

// listingSQL is a listing snapshot row for SQL operations
type listingSQL struct {
	RunID        int64     `db:"run_id"`
	Stage        string    `db:"stage"`
	ID           string    `db:"id"`
	Seq          int       `db:"seq"`
	ScrapedAt    time.Time `db:"scraped_at"`
	Title        string    `db:"title"`
	PriceRaw     string    `db:"price_raw"`
	URL          string    `db:"url"`
	Municipality string    `db:"municipality"`
	SearchTerm   string    `db:"search_term"`
	Included     bool      `db:"included"`
	Reason       string    `db:"reason"`
	SpecJSON     string    `db:"spec_json"`
}

// NewListingRepository creates a new listing repository
func NewListingRepository(database *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: database}
}

// StartRun creates a new pipeline run and returns its identifier
func (r *ListingRepository) StartRun(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO runs (status) VALUES ('running')")
	if err != nil {
		return 0, fmt.Errorf("start run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get run id: %w", err)
	}
	return id, nil
}

// FinishRun marks a run finished with the given status
func (r *ListingRepository) FinishRun(ctx context.Context, runID int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = datetime('now'), status = ? WHERE id = ?", status, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// SaveStage replaces the stage's output for the run with the given records,
// preserving their order through the seq column
func (r *ListingRepository) SaveStage(ctx context.Context, runID int64, stage domain.Stage, records []domain.ListingRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save stage: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// idempotent restart: wipe any previous output of this stage for the run
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM listings WHERE run_id = ? AND stage = ?", runID, string(stage)); err != nil {
		return fmt.Errorf("clear stage output: %w", err)
	}

	query := `
		INSERT INTO listings (
			run_id, stage, id, seq, scraped_at, title, price_raw, url,
			municipality, search_term, included, reason, spec_json
		) VALUES (
			:run_id, :stage, :id, :seq, :scraped_at, :title, :price_raw, :url,
			:municipality, :search_term, :included, :reason, :spec_json
		)
	`
	for i, rec := range records {
		row := listingSQL{
			RunID:        runID,
			Stage:        string(stage),
			ID:           rec.ID,
			Seq:          i,
			ScrapedAt:    rec.ScrapedAt,
			Title:        rec.Title,
			PriceRaw:     rec.PriceRaw,
			URL:          rec.URL,
			Municipality: rec.Municipality,
			SearchTerm:   rec.SearchTerm,
			Included:     true,
		}
		if rec.Decision != nil {
			row.Included = rec.Decision.Included
			row.Reason = rec.Decision.Reason
		}
		if rec.Spec != nil {
			data, err := json.Marshal(rec.Spec)
			if err != nil {
				return fmt.Errorf("marshal spec for %s: %w", rec.ID, err)
			}
			row.SpecJSON = string(data)
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("save listing %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save stage: %w", err)
	}
	return nil
}

// GetStage returns a stage's output for the run in original order,
// optionally restricted to the included partition
func (r *ListingRepository) GetStage(ctx context.Context, runID int64, stage domain.Stage, includedOnly bool) ([]domain.ListingRecord, error) {
	query := "SELECT * FROM listings WHERE run_id = ? AND stage = ?"
	if includedOnly {
		query += " AND included = 1"
	}
	query += " ORDER BY seq"

	var rows []listingSQL
	if err := r.db.SelectContext(ctx, &rows, query, runID, string(stage)); err != nil {
		return nil, fmt.Errorf("get stage listings: %w", err)
	}

	records := make([]domain.ListingRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.ListingRecord{
			ID:           row.ID,
			ScrapedAt:    row.ScrapedAt,
			Title:        row.Title,
			PriceRaw:     row.PriceRaw,
			URL:          row.URL,
			Municipality: row.Municipality,
			SearchTerm:   row.SearchTerm,
			Decision:     &domain.ClassificationDecision{Included: row.Included, Reason: row.Reason},
		}
		if row.SpecJSON != "" {
			var spec domain.ListingSpec
			if err := json.Unmarshal([]byte(row.SpecJSON), &spec); err != nil {
				return nil, fmt.Errorf("unmarshal spec for %s: %w", row.ID, err)
			}
			rec.Spec = &spec
		}
		records = append(records, rec)
	}
	return records, nil
}
