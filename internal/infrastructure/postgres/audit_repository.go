package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

// AuditRepository appends authentication events to auth_audit_logs.
type AuditRepository struct {
	pool *pgxpool.Pool
}

var _ repository.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Record(ctx context.Context, e *entity.AuditEntry) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO auth_audit_logs (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING created_at
	`, e.UserID, e.Email, e.Action, e.IP, e.UserAgent, raw)

	return row.Scan(&e.CreatedAt)
}

func (r *AuditRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(user_id, ''), COALESCE(email, ''), action, COALESCE(ip, ''),
		       COALESCE(user_agent, ''), metadata, created_at
		FROM auth_audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		var raw []byte
		if err := rows.Scan(&e.UserID, &e.Email, &e.Action, &e.IP, &e.UserAgent, &raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
