package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/wallascope/wallascope/pkg/domain"
)

// Config holds warehouse connection settings
type Config struct {
	DSN           string
	IncludedTable string
	ExcludedTable string
}

// Syncer mirrors classified listings into an analytics PostgreSQL
// database. The local sqlite ledger stays authoritative: a failed sync is
// reported to the caller who logs it and moves on.
type Syncer struct {
	db     *sql.DB
	config Config
}

// NewSyncer opens the warehouse connection and ensures both tables exist
func NewSyncer(cfg Config) (*Syncer, error) {
	if cfg.IncludedTable == "" {
		cfg.IncludedTable = "listings_included"
	}
	if cfg.ExcludedTable == "" {
		cfg.ExcludedTable = "listings_excluded"
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("warehouse: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("warehouse: ping: %w", err)
	}

	s := &Syncer{db: db, config: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("warehouse: migrate: %w", err)
	}
	return s, nil
}

func (s *Syncer) migrate() error {
	for _, table := range []string{s.config.IncludedTable, s.config.ExcludedTable} {
		_, err := s.db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          TEXT PRIMARY KEY,
				scraped_at  TIMESTAMPTZ NOT NULL,
				title       TEXT NOT NULL DEFAULT '',
				price_raw   TEXT NOT NULL DEFAULT '',
				url         TEXT NOT NULL DEFAULT '',
				municipality TEXT NOT NULL DEFAULT '',
				search_term TEXT NOT NULL DEFAULT '',
				reason      TEXT NOT NULL DEFAULT ''
			)
		`, table))
		if err != nil {
			return err
		}
	}
	return nil
}

// Sync upserts the partitioned records into their tables. Rows are keyed
// by listing id, so re-running a stage refreshes instead of duplicating.
func (s *Syncer) Sync(ctx context.Context, included, excluded []domain.ListingRecord) error {
	if err := s.upsert(ctx, s.config.IncludedTable, included); err != nil {
		return fmt.Errorf("warehouse: sync included: %w", err)
	}
	if err := s.upsert(ctx, s.config.ExcludedTable, excluded); err != nil {
		return fmt.Errorf("warehouse: sync excluded: %w", err)
	}
	return nil
}

func (s *Syncer) upsert(ctx context.Context, table string, records []domain.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.upsertBatch(ctx, table, records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) upsertBatch(ctx context.Context, table string, batch []domain.ListingRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*8)

	for idx, rec := range batch {
		base := idx * 8
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))

		reason := ""
		if rec.Decision != nil {
			reason = rec.Decision.Reason
		}
		valueArgs = append(valueArgs,
			rec.ID, rec.ScrapedAt, rec.Title, rec.PriceRaw, rec.URL,
			rec.Municipality, rec.SearchTerm, reason)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, scraped_at, title, price_raw, url, municipality, search_term, reason)
		VALUES %s
		ON CONFLICT (id) DO UPDATE SET
			scraped_at = EXCLUDED.scraped_at,
			title = EXCLUDED.title,
			price_raw = EXCLUDED.price_raw,
			url = EXCLUDED.url,
			municipality = EXCLUDED.municipality,
			search_term = EXCLUDED.search_term,
			reason = EXCLUDED.reason
	`, table, strings.Join(valueStrings, ","))

	if _, err := s.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("upsert batch into %s: %w", table, err)
	}
	return nil
}

// Close releases the warehouse connection
func (s *Syncer) Close() error {
	return s.db.Close()
}
