package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/forum-service/internal/domain"
)

const defaultLogLimit = 50

// ModerationLogRepository stores the local moderation audit trail.
type ModerationLogRepository interface {
	Create(ctx context.Context, entry *domain.ModerationEntry) error
	ListByTarget(ctx context.Context, targetType domain.TargetType, targetID string) ([]domain.ModerationEntry, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ModerationEntry, error)
}

type moderationLogRepository struct {
	pool *pgxpool.Pool
}

// NewModerationLogRepository builds repository.
func NewModerationLogRepository(pool *pgxpool.Pool) ModerationLogRepository {
	return &moderationLogRepository{pool: pool}
}

func (r *moderationLogRepository) Create(ctx context.Context, entry *domain.ModerationEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	const query = `
        INSERT INTO moderation_log (id, actor_id, actor_role, action, target_type, target_id, details)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.ActorID,
		string(entry.ActorRole),
		string(entry.Action),
		string(entry.TargetType),
		entry.TargetID,
		details,
	).Scan(&entry.CreatedAt)
}

func (r *moderationLogRepository) ListByTarget(ctx context.Context, targetType domain.TargetType, targetID string) ([]domain.ModerationEntry, error) {
	const query = `
        SELECT id, actor_id, actor_role, action, target_type, target_id, details, created_at
        FROM moderation_log WHERE target_type=$1 AND target_id=$2 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, string(targetType), targetID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *moderationLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.ModerationEntry, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	const query = `
        SELECT id, actor_id, actor_role, action, target_type, target_id, details, created_at
        FROM moderation_log ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]domain.ModerationEntry, error) {
	defer rows.Close()

	result := make([]domain.ModerationEntry, 0)
	for rows.Next() {
		var (
			entry      domain.ModerationEntry
			role       string
			action     string
			targetType string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&role,
			&action,
			&targetType,
			&entry.TargetID,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.ActorRole = domain.Role(role)
		entry.Action = domain.ModerationAction(action)
		entry.TargetType = domain.TargetType(targetType)
		result = append(result, entry)
	}
	return result, rows.Err()
}
