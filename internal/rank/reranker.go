package rank

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LeadQueue is the persistence the reranker needs: read the queue, write
// ranks back. Implemented by the Postgres store.
type LeadQueue interface {
	ListQueue(ctx context.Context) ([]Entity, error)
	WriteRanks(ctx context.Context, assignments []Assignment) error
}

// Reranker runs a read-all/compute/write-back ranking pass. Concurrent
// passes over overlapping entity sets would race and break the dense-rank
// invariant; callers serialize runs per scope.
type Reranker struct {
	queue LeadQueue
	scope Scope
}

// NewReranker creates a Reranker for one scope.
func NewReranker(queue LeadQueue, scope Scope) (*Reranker, error) {
	if !scope.Valid() {
		return nil, eris.Errorf("rank: unknown scope %q", scope)
	}
	return &Reranker{queue: queue, scope: scope}, nil
}

// Run recomputes ranks and writes them back. An empty queue is a no-op.
// Returns the number of leads ranked.
func (r *Reranker) Run(ctx context.Context) (int, error) {
	entities, err := r.queue.ListQueue(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "rank: list queue")
	}
	if len(entities) == 0 {
		zap.L().Info("rank: queue empty, nothing to do", zap.String("scope", string(r.scope)))
		return 0, nil
	}

	assignments := Assign(entities, r.scope)
	if err := r.queue.WriteRanks(ctx, assignments); err != nil {
		return 0, eris.Wrap(err, "rank: write ranks")
	}

	zap.L().Info("rank: pass complete",
		zap.String("scope", string(r.scope)),
		zap.Int("leads", len(assignments)),
	)
	return len(assignments), nil
}
