package memstore

import (
	"context"
	"sync"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type Audit struct {
	mu      sync.Mutex
	Entries []entity.AuditEntry
}

var _ repository.AuditRepository = (*Audit)(nil)

func (a *Audit) Record(_ context.Context, e *entity.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, *e)
	return nil
}

func (a *Audit) ListByUser(_ context.Context, userID string, limit int) ([]entity.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []entity.AuditEntry
	for i := len(a.Entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if a.Entries[i].UserID == userID {
			out = append(out, a.Entries[i])
		}
	}
	return out, nil
}

// Actions returns the recorded actions in order.
func (a *Audit) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		out = append(out, e.Action)
	}
	return out
}
