package services

import (
	"fmt"

	"customerhub-backend/models"
)

// PruneMode decides when existing histories missing from an update are deleted.
type PruneMode string

const (
	// PruneLengthGated deletes missing histories only when the incoming list
	// is shorter than the persisted one. This is the historical behaviour of
	// the API, kept as default for compatibility.
	PruneLengthGated PruneMode = "length_gated"
	// PruneStrict deletes every persisted history whose id is not sent.
	PruneStrict PruneMode = "strict"
)

func ParsePruneMode(s string) (PruneMode, error) {
	switch m := PruneMode(s); m {
	case PruneLengthGated, PruneStrict:
		return m, nil
	case "":
		return PruneLengthGated, nil
	default:
		return "", fmt.Errorf("unknown prune mode %q", s)
	}
}

// HistoryItem is one incoming history entry. A nil ID asks for a new row.
type HistoryItem struct {
	ID      *uint
	History string
}

// HistoryPlan lists the writes needed to bring a customer's histories in
// line with an incoming list.
type HistoryPlan struct {
	Updates []models.CustomerHistory
	Creates []models.CustomerHistory
	Deletes []uint
}

func (p HistoryPlan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Creates) == 0 && len(p.Deletes) == 0
}

// PlanHistories matches incoming items against the customer's existing
// histories by id. Matched rows are overwritten, everything else becomes a
// new row, and unmatched existing rows are pruned according to mode.
// Repeated ids update the same row; the last item wins.
func PlanHistories(customerID uint, existing []models.CustomerHistory, incoming []HistoryItem, mode PruneMode) HistoryPlan {
	owned := make(map[uint]bool, len(existing))
	for _, h := range existing {
		owned[h.ID] = true
	}

	var plan HistoryPlan
	updateAt := make(map[uint]int)
	sent := make(map[uint]bool, len(incoming))

	for _, item := range incoming {
		if item.ID != nil {
			sent[*item.ID] = true
		}

		if item.ID == nil || !owned[*item.ID] {
			plan.Creates = append(plan.Creates, models.CustomerHistory{
				CustomerID: customerID,
				History:    item.History,
			})
			continue
		}

		id := *item.ID
		if i, ok := updateAt[id]; ok {
			plan.Updates[i].History = item.History
			continue
		}
		updateAt[id] = len(plan.Updates)
		plan.Updates = append(plan.Updates, models.CustomerHistory{
			ID:         id,
			CustomerID: customerID,
			History:    item.History,
		})
	}

	if mode == PruneStrict || len(incoming) < len(existing) {
		for _, h := range existing {
			if !sent[h.ID] {
				plan.Deletes = append(plan.Deletes, h.ID)
			}
		}
	}

	return plan
}
