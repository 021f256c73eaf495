package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallascope/wallascope/pkg/domain"
)

func TestBusinessFilter_Check(t *testing.T) {
	tests := []struct {
		name      string
		blacklist []string
		whitelist []string
		title     string
		included  bool
		reason    string
	}{
		{
			name:      "blacklist term present",
			blacklist: []string{"replica"},
			title:     "iPhone 16 REPLICA perfecta",
			included:  false,
			reason:    ReasonGlobalBlacklist,
		},
		{
			name:      "blacklist wins over whitelist",
			blacklist: []string{"replica"},
			whitelist: []string{"iphone"},
			title:     "iPhone replica",
			included:  false,
			reason:    ReasonGlobalBlacklist,
		},
		{
			name:      "whitelist miss excludes",
			whitelist: []string{"iphone"},
			title:     "Samsung Galaxy S24",
			included:  false,
			reason:    ReasonNotWhitelisted,
		},
		{
			name:      "whitelist hit includes",
			whitelist: []string{"iphone"},
			title:     "iPhone 16 128GB",
			included:  true,
			reason:    ReasonOK,
		},
		{
			name:     "empty lists include everything",
			title:    "anything at all",
			included: true,
			reason:   ReasonOK,
		},
		{
			name:      "case insensitive substring",
			blacklist: []string{"Replica"},
			title:     "iphone rEpLiCa",
			included:  false,
			reason:    ReasonGlobalBlacklist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewBusinessFilter(tt.blacklist, tt.whitelist)
			decision := f.Check(tt.title)
			assert.Equal(t, tt.included, decision.Included)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

func TestBusinessFilter_FromFiles(t *testing.T) {
	dir := t.TempDir()
	blPath := filepath.Join(dir, "blacklist.txt")
	require.NoError(t, os.WriteFile(blPath, []byte("replica\n\nfalso\n"), 0o600))

	// whitelist file missing: must behave as empty, never excluding
	f := NewBusinessFilterFromFiles(blPath, filepath.Join(dir, "whitelist.txt"))

	assert.False(t, f.Check("iphone falso").Included)
	assert.True(t, f.Check("iphone 16 original").Included)
}

func TestBusinessFilter_Partition(t *testing.T) {
	f := NewBusinessFilter([]string{"replica"}, nil)

	records := []domain.ListingRecord{
		{ID: "1", Title: "iPhone 16"},
		{ID: "2", Title: "iPhone 16 replica"},
	}

	included, excluded := f.Partition(records)
	require.Len(t, included, 1)
	require.Len(t, excluded, 1)
	assert.Equal(t, "1", included[0].ID)
	require.NotNil(t, excluded[0].Decision)
	assert.Equal(t, ReasonGlobalBlacklist, excluded[0].Decision.Reason)
}
