package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/wallascope/wallascope/pkg/domain"
)

// TrackerRepository owns all reads and writes of the seen-items ledger.
// Other components request lookups and updates through it; the design
// assumes a single writer per run.
type TrackerRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// trackerSQL is the ledger row for SQL operations
type trackerSQL struct {
	ID             string    `db:"id"`
	FirstSeenAt    time.Time `db:"first_seen_at"`
	LastSeenAt     time.Time `db:"last_seen_at"`
	FilterInitial  bool      `db:"filter_initial"`
	FilterBusiness bool      `db:"filter_business"`
	Enriched       bool      `db:"enriched"`
}

// stage columns addressable through MarkStage; unknown stages are a no-op
var stageColumns = map[domain.Stage]string{
	domain.StageClassify: "filter_initial",
	domain.StageBusiness: "filter_business",
}

// NewTrackerRepository creates a new tracker repository
func NewTrackerRepository(database *sqlx.DB) *TrackerRepository {
	return &TrackerRepository{db: database, now: time.Now}
}

// RecordSeen upserts the given ids: new ids get a fresh entry with both
// timestamps set and all stage flags defaulted to not-passed, known ids
// only get last_seen_at refreshed. Idempotent for repeated calls.
func (r *TrackerRepository) RecordSeen(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	now := r.now().UTC()
	query := `
		INSERT INTO tracker (id, first_seen_at, last_seen_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_seen_at = excluded.last_seen_at
	`

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("begin record seen: %w", err)}
		}
		defer tx.Rollback() //nolint:errcheck // no-op after commit

		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, query, id, now, now); err != nil {
				if isLockError(err) {
					return err
				}
				return &criticalError{err: fmt.Errorf("record seen %s: %w", id, err)}
			}
		}

		if err := tx.Commit(); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("commit record seen: %w", err)}
		}
		return nil
	})
}

// MarkStage sets the named stage's pass/fail flag for each id. Stages
// without a ledger column are silently ignored, never an error.
func (r *TrackerRepository) MarkStage(ctx context.Context, ids []string, stage domain.Stage, passed bool) error {
	if len(ids) == 0 {
		return nil
	}

	col, ok := stageColumns[stage]
	if !ok {
		lgr.Printf("[DEBUG] tracker has no column for stage %q, skipping", stage)
		return nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf("UPDATE tracker SET %s = ? WHERE id IN (?)", col), passed, ids) //nolint:gosec // column from fixed map
	if err != nil {
		return fmt.Errorf("build mark stage query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("mark stage %s: %w", stage, err)
	}
	return nil
}

// MarkEnriched sets the enrichment flag for each id
func (r *TrackerRepository) MarkEnriched(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In("UPDATE tracker SET enriched = 1 WHERE id IN (?)", ids)
	if err != nil {
		return fmt.Errorf("build mark enriched query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("mark enriched: %w", err)
	}
	return nil
}

// GetEntry retrieves one ledger entry by id
func (r *TrackerRepository) GetEntry(ctx context.Context, id string) (*domain.TrackerEntry, error) {
	var row trackerSQL
	if err := r.db.GetContext(ctx, &row, "SELECT * FROM tracker WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get tracker entry: %w", err)
	}
	return &domain.TrackerEntry{
		ID:             row.ID,
		FirstSeenAt:    row.FirstSeenAt,
		LastSeenAt:     row.LastSeenAt,
		FilterInitial:  row.FilterInitial,
		FilterBusiness: row.FilterBusiness,
		Enriched:       row.Enriched,
	}, nil
}

// KnownIDs returns the subset of the given ids already present in the ledger
func (r *TrackerRepository) KnownIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	known := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return known, nil
	}

	query, args, err := sqlx.In("SELECT id FROM tracker WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build known ids query: %w", err)
	}

	var found []string
	if err := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select known ids: %w", err)
	}
	for _, id := range found {
		known[id] = true
	}
	return known, nil
}
