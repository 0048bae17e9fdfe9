package repository

import (
	"context"

	"github.com/fleuri/fleuri-api/internal/models"
	"gorm.io/gorm"
)

// AuditRepository defines the interface for audit log data access.
// The audit trail is append-only: there is deliberately no Update or
// Delete method on this interface.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	FindLatest(ctx context.Context) (*models.AuditLog, error)
	List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error)
	FindAllChained(ctx context.Context) ([]models.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindLatest returns the most recently written entry, or gorm.ErrRecordNotFound
// when the log is empty. ID breaks created_at ties so writers racing within
// the same timestamp still observe a stable "latest".
func (r *auditRepository) FindLatest(ctx context.Context) (*models.AuditLog, error) {
	var entry models.AuditLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *auditRepository) List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if query.Filters["action"] != "" {
		db = db.Where("action = ?", query.Filters["action"])
	}
	if query.Filters["entity"] != "" {
		db = db.Where("entity = ?", query.Filters["entity"])
	}
	if query.Filters["actor_id"] != "" {
		db = db.Where("actor_id = ?", query.Filters["actor_id"])
	}

	db.Count(&total)

	db = db.Preload("Actor").Order("created_at DESC, id DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&logs).Error
	return logs, total, err
}

// FindAllChained returns every entry in chain order (oldest first),
// for front-to-back hash verification and compliance export.
func (r *auditRepository) FindAllChained(ctx context.Context) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}
