package scraper

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallascope/wallascope/pkg/domain"
)

// fakeSession is a scripted PageSession for engine tests
type fakeSession struct {
	navigated []string
	navErr    error

	title string
	body  string
	// blockAfterScrolls makes the page turn blocked once this many
	// scrolls happened, simulating mid-expansion detection
	blockAfterScrolls int

	consent bool

	scrolls int

	controlFoundAt int // attempt number at which the control appears, 0 = never
	clickCalls     int

	cards    []Card
	captures int
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navErr
}

func (f *fakeSession) PageState(context.Context) (string, string, error) {
	if f.blockAfterScrolls > 0 && f.scrolls >= f.blockAfterScrolls {
		return "Attention Required", "your request has been blocked", nil
	}
	return f.title, f.body, nil
}

func (f *fakeSession) DismissConsent(context.Context) bool { return f.consent }

func (f *fakeSession) ScrollToBottom(context.Context) error {
	f.scrolls++
	return nil
}

func (f *fakeSession) ClickControl(context.Context, ControlHeuristic) (bool, error) {
	f.clickCalls++
	return f.controlFoundAt > 0 && f.clickCalls >= f.controlFoundAt, nil
}

func (f *fakeSession) ExtractCards(context.Context) ([]Card, error) { return f.cards, nil }

func (f *fakeSession) Capture(context.Context) ([]byte, []byte, error) {
	f.captures++
	return []byte("<html/>"), []byte{0x89, 'P', 'N', 'G'}, nil
}

func noDelay(time.Duration, time.Duration) {}

func testIntent() domain.SearchIntent {
	return domain.SearchIntent{
		Name:    "iphone 16",
		Filters: domain.IntentFilters{Municipality: "Madrid", Distance: 60, PriceFloor: 250},
	}
}

func testOptions() Options {
	return Options{Scrolls: 3, LoadMoreAttempts: 4}
}

func TestEngine_Harvest(t *testing.T) {
	sess := &fakeSession{
		title:          "iphone 16 - Wallapop",
		controlFoundAt: 2,
		cards: []Card{
			{Title: "iPhone 16 128GB azul", Price: "250 €", URL: "https://x.com/item/iphone-16-111"},
			{Title: "Funda iPhone", Price: "10 €", URL: "https://x.com/item/funda-222"},
		},
	}

	engine := NewEngine(sess, testOptions(), nil, noDelay)
	records, err := engine.Harvest(context.Background(), testIntent())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "111", records[0].ID)
	assert.Equal(t, "iPhone 16 128GB azul", records[0].Title)
	assert.Equal(t, "250 €", records[0].PriceRaw)
	assert.Equal(t, "Madrid", records[0].Municipality)
	assert.Equal(t, "iphone 16", records[0].SearchTerm)
	assert.False(t, records[0].ScrapedAt.IsZero())
	assert.Equal(t, "222", records[1].ID)

	// reveal scrolled until the control appeared, then expansion ran its budget
	assert.Equal(t, 2, sess.clickCalls)
	assert.Equal(t, 2+3, sess.scrolls)

	require.Len(t, sess.navigated, 1)
	assert.Contains(t, sess.navigated[0], "keywords=iphone%2016")
}

func TestEngine_Harvest_Deduplicates(t *testing.T) {
	sess := &fakeSession{
		controlFoundAt: 1,
		cards: []Card{
			{Title: "iPhone 16", Price: "250 €", URL: "https://x.com/item/iphone-16-111"},
			{Title: "iPhone 16 repeat", Price: "240 €", URL: "https://x.com/item/iphone-16-111"},
			{Title: "no url", Price: "10 €", URL: ""},
		},
	}

	engine := NewEngine(sess, testOptions(), nil, noDelay)
	records, err := engine.Harvest(context.Background(), testIntent())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "iPhone 16", records[0].Title)
}

func TestEngine_Harvest_Fallbacks(t *testing.T) {
	sess := &fakeSession{
		controlFoundAt: 1,
		cards: []Card{
			{Title: "", Price: "", URL: "https://x.com/item/mystery-999"},
		},
	}

	engine := NewEngine(sess, testOptions(), nil, noDelay)
	records, err := engine.Harvest(context.Background(), testIntent())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.NoTitle, records[0].Title)
	assert.Equal(t, "0", records[0].PriceRaw)
}

func TestEngine_Harvest_BlockedOnLoad(t *testing.T) {
	sess := &fakeSession{
		title:          "Access Denied",
		controlFoundAt: 1,
	}

	engine := NewEngine(sess, testOptions(), NewDiagWriter(t.TempDir()), noDelay)
	_, err := engine.Harvest(context.Background(), testIntent())
	require.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, 1, sess.captures)
	assert.Zero(t, sess.clickCalls) // failed before the reveal phase
}

func TestEngine_Harvest_BlockedDuringExpansion(t *testing.T) {
	sess := &fakeSession{
		controlFoundAt:    1,
		blockAfterScrolls: 2, // reveal scroll + first expansion scroll
	}

	engine := NewEngine(sess, testOptions(), nil, noDelay)
	_, err := engine.Harvest(context.Background(), testIntent())
	require.ErrorIs(t, err, ErrBlocked)
}

func TestEngine_Harvest_ControlNotFound(t *testing.T) {
	dir := t.TempDir()
	sess := &fakeSession{controlFoundAt: 0}

	engine := NewEngine(sess, testOptions(), NewDiagWriter(dir), noDelay)
	_, err := engine.Harvest(context.Background(), testIntent())
	require.ErrorIs(t, err, ErrControlNotFound)

	assert.Equal(t, 4, sess.clickCalls) // full attempt budget
	assert.Equal(t, 1, sess.captures)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // html + screenshot, exactly once
}

func TestEngine_Harvest_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	sess := &fakeSession{controlFoundAt: 1, cards: nil}

	engine := NewEngine(sess, testOptions(), NewDiagWriter(dir), noDelay)
	_, err := engine.Harvest(context.Background(), testIntent())
	require.ErrorIs(t, err, ErrEmptyResult)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEngine_Harvest_IDStableAcrossExtractions(t *testing.T) {
	sess := &fakeSession{
		controlFoundAt: 1,
		cards:          []Card{{Title: "iPhone 16", Price: "250 €", URL: "https://x.com/item/iphone-16-111"}},
	}
	engine := NewEngine(sess, testOptions(), nil, noDelay)

	first, err := engine.Harvest(context.Background(), testIntent())
	require.NoError(t, err)
	sess.clickCalls = 0
	second, err := engine.Harvest(context.Background(), testIntent())
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
}
