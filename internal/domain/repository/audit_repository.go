package repository

import (
	"context"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
)

type AuditRepository interface {
	Record(ctx context.Context, e *entity.AuditEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.AuditEntry, error)
}
