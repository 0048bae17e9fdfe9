package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fleuri/fleuri-api/internal/config"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/pkg/logger"
)

// RetentionService purges rows past their retention window.
//
// The audit log is deliberately not a target: it is append-only for its
// whole life. Orders under legal hold and rows failing a target's guard
// are never candidates. Every run, preview or destructive, writes an
// audit entry with per-table counts before returning.
type RetentionService struct {
	repo     repository.RetentionRepository
	auditSvc *AuditService
	cfg      *config.Config
}

// NewRetentionService creates a new retention service
func NewRetentionService(repo repository.RetentionRepository, auditSvc *AuditService, cfg *config.Config) *RetentionService {
	return &RetentionService{
		repo:     repo,
		auditSvc: auditSvc,
		cfg:      cfg,
	}
}

// TableResult is the per-table outcome of a purge run
type TableResult struct {
	Table          string  `json:"table"`
	Days           int     `json:"days"`
	CandidateCount int64   `json:"candidate_count"`
	DeletedCount   int64   `json:"deleted_count"`
	Error          *string `json:"error,omitempty"`
}

// PurgeResult is the aggregate outcome of a purge run. It always holds
// one entry per configured table, in configuration order, regardless of
// partial failures.
type PurgeResult struct {
	DryRun     bool          `json:"dry_run"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Tables     []TableResult `json:"tables"`
}

// RunOptions carries caller context for a purge invocation
type RunOptions struct {
	DryRun  bool
	ActorID *uint // nil when triggered by the scheduler
	Reason  *string
}

func (s *RetentionService) targets() []repository.RetentionTarget {
	return []repository.RetentionTarget{
		{
			Table:      "notifications",
			Days:       s.cfg.NotificationRetentionDays,
			TimeColumn: "created_at",
		},
		{
			Table:      "refresh_tokens",
			Days:       s.cfg.RefreshTokenRetentionDays,
			TimeColumn: "created_at",
			Guard:      "(expires_at IS NULL OR expires_at < NOW())",
		},
		{
			Table:      "orders",
			Days:       s.cfg.OrderRetentionDays,
			TimeColumn: "created_at",
			Guard:      "status = 'delivered' AND legal_hold = FALSE",
		},
	}
}

// Run executes a retention purge over all configured tables. A dry run
// counts candidates without deleting anything. Per-table failures are
// isolated: a failing table gets its Error set and processing continues
// with the remaining tables.
func (s *RetentionService) Run(ctx context.Context, opts RunOptions) (*PurgeResult, error) {
	result := &PurgeResult{
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
	}

	for _, target := range s.targets() {
		result.Tables = append(result.Tables, s.purgeTable(ctx, target, opts.DryRun))
	}

	result.FinishedAt = time.Now().UTC()

	s.auditRun(ctx, opts, result)

	return result, nil
}

func (s *RetentionService) purgeTable(ctx context.Context, target repository.RetentionTarget, dryRun bool) TableResult {
	res := TableResult{
		Table: target.Table,
		Days:  target.Days,
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -target.Days)

	count, err := s.repo.CountCandidates(ctx, target, cutoff)
	if err != nil {
		msg := err.Error()
		res.Error = &msg
		logger.Error("retention count failed", "table", target.Table, "error", err)
		return res
	}
	res.CandidateCount = count

	if dryRun || count == 0 {
		return res
	}

	deleted, err := s.repo.DeleteCandidates(ctx, target, cutoff)
	if err != nil {
		msg := err.Error()
		res.Error = &msg
		logger.Error("retention delete failed", "table", target.Table, "error", err)
		return res
	}
	res.DeletedCount = deleted

	logger.Info("retention purge",
		"table", target.Table, "days", target.Days,
		"candidates", count, "deleted", deleted)

	return res
}

// auditRun records the purge in the audit chain. Retention touches
// legally sensitive data, so even previews leave a trail.
func (s *RetentionService) auditRun(ctx context.Context, opts RunOptions, result *PurgeResult) {
	action := models.AuditRetentionRun
	message := "retention purge executed"
	if opts.DryRun {
		action = models.AuditRetentionPreview
		message = "retention purge previewed"
	}

	tables := make([]map[string]interface{}, 0, len(result.Tables))
	for _, t := range result.Tables {
		entry := map[string]interface{}{
			"table":           t.Table,
			"days":            t.Days,
			"candidate_count": t.CandidateCount,
			"deleted_count":   t.DeletedCount,
		}
		if t.Error != nil {
			entry["error"] = *t.Error
		}
		tables = append(tables, entry)
	}

	meta := models.JSONMap{
		"dry_run": result.DryRun,
		"tables":  tables,
	}
	if opts.Reason != nil {
		meta["reason"] = *opts.Reason
	}

	var actorRole *string
	if opts.ActorID != nil {
		role := models.RoleAdmin
		actorRole = &role
	}

	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:   opts.ActorID,
		ActorRole: actorRole,
		Action:    action,
		Entity:    "Retention",
		Message:   fmt.Sprintf("%s across %d tables", message, len(result.Tables)),
		Meta:      meta,
	})
}
