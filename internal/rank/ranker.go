// Package rank assigns dense speedrun ranks to lead queues.
package rank

import (
	"sort"
	"time"
)

// Scope selects how ranks are partitioned. Global and per-owner ranking
// are different invariants; a single pass never mixes them.
type Scope string

// Ranking scopes.
const (
	ScopeGlobal   Scope = "global"
	ScopePerOwner Scope = "owner"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeGlobal || s == ScopePerOwner
}

// Entity is one rankable lead: an opaque ID, its owner, and the sort key
// (most recently active first).
type Entity struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id,omitempty"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Assignment is the computed rank for one entity.
type Assignment struct {
	ID      string
	OwnerID string
	Rank    int
}

// Assign computes dense 1-based ranks ordered by LastActivityAt descending.
// The sort is stable: entities with equal keys keep their input order, so
// re-running on unchanged input yields identical assignments. Under
// ScopePerOwner each owner's leads are ranked 1..N independently; under
// ScopeGlobal the whole input is one partition. Empty input yields nil.
func Assign(entities []Entity, scope Scope) []Assignment {
	if len(entities) == 0 {
		return nil
	}

	if scope == ScopePerOwner {
		// Partition preserving input order, then rank each partition.
		var owners []string
		byOwner := make(map[string][]Entity)
		for _, e := range entities {
			if _, seen := byOwner[e.OwnerID]; !seen {
				owners = append(owners, e.OwnerID)
			}
			byOwner[e.OwnerID] = append(byOwner[e.OwnerID], e)
		}

		var out []Assignment
		for _, owner := range owners {
			out = append(out, rankPartition(byOwner[owner])...)
		}
		return out
	}

	return rankPartition(entities)
}

func rankPartition(entities []Entity) []Assignment {
	sorted := make([]Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastActivityAt.After(sorted[j].LastActivityAt)
	})

	out := make([]Assignment, len(sorted))
	for i, e := range sorted {
		out[i] = Assignment{ID: e.ID, OwnerID: e.OwnerID, Rank: i + 1}
	}
	return out
}
