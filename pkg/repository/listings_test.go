package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallascope/wallascope/pkg/domain"
)

func testRecords() []domain.ListingRecord {
	scraped := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.ListingRecord{
		{
			ID: "100", ScrapedAt: scraped, Title: "iPhone 16 128GB", PriceRaw: "250 €",
			URL: "https://example.com/item/iphone-16-100", Municipality: "Madrid",
			SearchTerm: "iphone 16",
		},
		{
			ID: "200", ScrapedAt: scraped, Title: "Funda iPhone 16", PriceRaw: "10 €",
			URL: "https://example.com/item/funda-200", SearchTerm: "iphone 16",
			Decision: &domain.ClassificationDecision{Included: false, Reason: "first word excluded"},
		},
		{
			ID: "300", ScrapedAt: scraped, Title: "iPhone 16 Pro", PriceRaw: "400 €",
			URL: "https://example.com/item/iphone-16-pro-300", SearchTerm: "iphone 16",
			Decision: &domain.ClassificationDecision{Included: true, Reason: "OK"},
		},
	}
}

func TestListingRepository_Runs(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	runID, err := repos.Listings.StartRun(ctx)
	require.NoError(t, err)
	assert.Positive(t, runID)

	second, err := repos.Listings.StartRun(ctx)
	require.NoError(t, err)
	assert.Greater(t, second, runID)

	require.NoError(t, repos.Listings.FinishRun(ctx, runID, "success"))
}

func TestListingRepository_SaveAndGetStage(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	runID, err := repos.Listings.StartRun(ctx)
	require.NoError(t, err)

	require.NoError(t, repos.Listings.SaveStage(ctx, runID, domain.StageHarvest, testRecords()))

	all, err := repos.Listings.GetStage(ctx, runID, domain.StageHarvest, false)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// order preserved
	assert.Equal(t, "100", all[0].ID)
	assert.Equal(t, "200", all[1].ID)
	assert.Equal(t, "300", all[2].ID)

	// record without a decision persists as included
	require.NotNil(t, all[0].Decision)
	assert.True(t, all[0].Decision.Included)

	assert.Equal(t, "Madrid", all[0].Municipality)
	assert.Equal(t, "first word excluded", all[1].Decision.Reason)

	included, err := repos.Listings.GetStage(ctx, runID, domain.StageHarvest, true)
	require.NoError(t, err)
	require.Len(t, included, 2)
	assert.Equal(t, "100", included[0].ID)
	assert.Equal(t, "300", included[1].ID)
}

func TestListingRepository_SaveStage_IdempotentRestart(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	runID, err := repos.Listings.StartRun(ctx)
	require.NoError(t, err)

	records := testRecords()
	require.NoError(t, repos.Listings.SaveStage(ctx, runID, domain.StageClassify, records))

	// a restarted stage replaces its previous output instead of duplicating
	require.NoError(t, repos.Listings.SaveStage(ctx, runID, domain.StageClassify, records[:2]))

	all, err := repos.Listings.GetStage(ctx, runID, domain.StageClassify, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListingRepository_StagesIsolatedByRun(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	run1, err := repos.Listings.StartRun(ctx)
	require.NoError(t, err)
	run2, err := repos.Listings.StartRun(ctx)
	require.NoError(t, err)

	require.NoError(t, repos.Listings.SaveStage(ctx, run1, domain.StageHarvest, testRecords()))
	require.NoError(t, repos.Listings.SaveStage(ctx, run2, domain.StageHarvest, testRecords()[:1]))

	got, err := repos.Listings.GetStage(ctx, run2, domain.StageHarvest, false)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListingRepository_SpecRoundTrip(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	runID, err := repos.Listings.StartRun(ctx)
	require.NoError(t, err)

	gen, storage := "16", "128GB"
	records := testRecords()[:1]
	records[0].Spec = &domain.ListingSpec{Generation: &gen, Storage: &storage}

	require.NoError(t, repos.Listings.SaveStage(ctx, runID, domain.StageEnrich, records))

	got, err := repos.Listings.GetStage(ctx, runID, domain.StageEnrich, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Spec)
	require.NotNil(t, got[0].Spec.Generation)
	assert.Equal(t, "16", *got[0].Spec.Generation)
	assert.Nil(t, got[0].Spec.Model)
}
