package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// RetentionTarget describes one table subject to time-based purging.
// Guard is an extra SQL predicate that must hold for a row to be
// deletable (e.g. excluding rows under legal hold); rows failing the
// guard are never counted as candidates.
type RetentionTarget struct {
	Table      string
	Days       int
	TimeColumn string
	Guard      string
}

// RetentionRepository defines the interface for retention purge data access
type RetentionRepository interface {
	CountCandidates(ctx context.Context, target RetentionTarget, cutoff time.Time) (int64, error)
	DeleteCandidates(ctx context.Context, target RetentionTarget, cutoff time.Time) (int64, error)
}

type retentionRepository struct {
	db *gorm.DB
}

// NewRetentionRepository creates a new retention repository
func NewRetentionRepository(db *gorm.DB) RetentionRepository {
	return &retentionRepository{db: db}
}

func (r *retentionRepository) CountCandidates(ctx context.Context, target RetentionTarget, cutoff time.Time) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s < ?", target.Table, target.TimeColumn)
	if target.Guard != "" {
		query += " AND " + target.Guard
	}
	err := r.db.WithContext(ctx).Raw(query, cutoff).Scan(&count).Error
	return count, err
}

func (r *retentionRepository) DeleteCandidates(ctx context.Context, target RetentionTarget, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s < ?", target.Table, target.TimeColumn)
	if target.Guard != "" {
		query += " AND " + target.Guard
	}
	result := r.db.WithContext(ctx).Exec(query, cutoff)
	return result.RowsAffected, result.Error
}
