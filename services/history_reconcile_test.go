package services

import (
	"testing"

	"customerhub-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idp(id uint) *uint { return &id }

func histories(customerID uint, rows ...string) []models.CustomerHistory {
	out := make([]models.CustomerHistory, len(rows))
	for i, h := range rows {
		out[i] = models.CustomerHistory{ID: uint(i + 1), CustomerID: customerID, History: h}
	}
	return out
}

func TestPlanHistories(t *testing.T) {
	tests := []struct {
		name     string
		existing []models.CustomerHistory
		incoming []HistoryItem
		mode     PruneMode
		updates  []models.CustomerHistory
		creates  []models.CustomerHistory
		deletes  []uint
	}{
		{
			name:     "shorter list prunes missing ids",
			existing: histories(9, "a", "b", "c"),
			incoming: []HistoryItem{{ID: idp(1), History: "a2"}, {ID: idp(2), History: "b"}},
			mode:     PruneLengthGated,
			updates: []models.CustomerHistory{
				{ID: 1, CustomerID: 9, History: "a2"},
				{ID: 2, CustomerID: 9, History: "b"},
			},
			deletes: []uint{3},
		},
		{
			name:     "same length with a new item keeps omitted ids",
			existing: histories(9, "a", "b"),
			incoming: []HistoryItem{{ID: idp(1), History: "a2"}, {History: "new"}},
			mode:     PruneLengthGated,
			updates:  []models.CustomerHistory{{ID: 1, CustomerID: 9, History: "a2"}},
			creates:  []models.CustomerHistory{{CustomerID: 9, History: "new"}},
		},
		{
			name:     "strict mode prunes regardless of length",
			existing: histories(9, "a", "b"),
			incoming: []HistoryItem{{ID: idp(1), History: "a2"}, {History: "new"}},
			mode:     PruneStrict,
			updates:  []models.CustomerHistory{{ID: 1, CustomerID: 9, History: "a2"}},
			creates:  []models.CustomerHistory{{CustomerID: 9, History: "new"}},
			deletes:  []uint{2},
		},
		{
			name:     "reordered existing ids only update",
			existing: histories(9, "a", "b"),
			incoming: []HistoryItem{{ID: idp(2), History: "b2"}, {ID: idp(1), History: "a2"}},
			mode:     PruneLengthGated,
			updates: []models.CustomerHistory{
				{ID: 2, CustomerID: 9, History: "b2"},
				{ID: 1, CustomerID: 9, History: "a2"},
			},
		},
		{
			name:     "unknown id becomes a creation",
			existing: histories(9, "a"),
			incoming: []HistoryItem{{ID: idp(1), History: "a"}, {ID: idp(404), History: "x"}},
			mode:     PruneLengthGated,
			updates:  []models.CustomerHistory{{ID: 1, CustomerID: 9, History: "a"}},
			creates:  []models.CustomerHistory{{CustomerID: 9, History: "x"}},
		},
		{
			name:     "zero id is never matched",
			existing: histories(9, "a"),
			incoming: []HistoryItem{{ID: idp(0), History: "z"}},
			mode:     PruneLengthGated,
			creates:  []models.CustomerHistory{{CustomerID: 9, History: "z"}},
		},
		{
			name:     "repeated id updates once with the last content",
			existing: histories(9, "a", "b", "c"),
			incoming: []HistoryItem{{ID: idp(1), History: "first"}, {ID: idp(1), History: "second"}},
			mode:     PruneLengthGated,
			updates:  []models.CustomerHistory{{ID: 1, CustomerID: 9, History: "second"}},
			deletes:  []uint{2, 3},
		},
		{
			name:     "empty incoming list removes everything",
			existing: histories(9, "a", "b"),
			incoming: []HistoryItem{},
			mode:     PruneLengthGated,
			deletes:  []uint{1, 2},
		},
		{
			name:     "no existing rows creates all",
			incoming: []HistoryItem{{History: "a"}, {History: "b"}},
			mode:     PruneLengthGated,
			creates: []models.CustomerHistory{
				{CustomerID: 9, History: "a"},
				{CustomerID: 9, History: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanHistories(9, tt.existing, tt.incoming, tt.mode)
			assert.Equal(t, tt.updates, plan.Updates)
			assert.Equal(t, tt.creates, plan.Creates)
			assert.Equal(t, tt.deletes, plan.Deletes)
		})
	}
}

func TestPlanHistoriesEmpty(t *testing.T) {
	assert.True(t, PlanHistories(1, nil, nil, PruneStrict).Empty())
	assert.False(t, PlanHistories(1, nil, []HistoryItem{{History: "a"}}, PruneStrict).Empty())
}

func TestParsePruneMode(t *testing.T) {
	m, err := ParsePruneMode("strict")
	require.NoError(t, err)
	assert.Equal(t, PruneStrict, m)

	m, err = ParsePruneMode("")
	require.NoError(t, err)
	assert.Equal(t, PruneLengthGated, m)

	_, err = ParsePruneMode("always")
	assert.Error(t, err)
}
