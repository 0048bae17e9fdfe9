package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"gorm.io/gorm"
)

// hashTimeLayout pins timestamps to microsecond precision in UTC so a
// created_at read back from Postgres canonicalizes to the same bytes it
// was hashed with on write.
const hashTimeLayout = "2006-01-02T15:04:05.000000Z"

// AuditService writes the hash-chained admin audit trail.
//
// Every entry's hash covers the previous entry's hash, so an auditor
// re-walking the chain detects any retroactive edit from the altered row
// onward. The read-latest-then-insert sequence is intentionally not
// serialized: two concurrent writers can observe the same predecessor and
// fork the chain. Serializing every admin action through a single lock is
// a worse trade than tolerating forks in a low-volume, best-effort log;
// VerifyChain reports forks when they happen.
type AuditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// AuditEntry carries the caller-supplied fields of an audit record.
// Hash fields are computed by the service and cannot be set by callers.
type AuditEntry struct {
	ActorID   *uint
	ActorRole *string
	Action    string
	Entity    string
	EntityID  *uint
	Message   string
	Meta      models.JSONMap
}

// canonicalEntry fixes the field order of the hashed serialization.
// Struct fields marshal in declaration order and json.Marshal sorts map
// keys, so the same entry always canonicalizes to the same bytes.
type canonicalEntry struct {
	ActorID   *uint          `json:"actor_id"`
	ActorRole *string        `json:"actor_role"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  *uint          `json:"entity_id"`
	Message   string         `json:"message"`
	Meta      models.JSONMap `json:"meta"`
	CreatedAt string         `json:"created_at"`
}

// Log appends an entry to the audit chain. It never returns an error:
// the audit trail is best-effort and must not block or roll back the
// administrative action it records. Failures are logged and swallowed,
// and are not retried (a retry would race the same read-then-insert
// window the design already tolerates).
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) {
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	var prevHash *string
	latest, err := s.repo.FindLatest(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("audit write skipped: cannot read chain head",
				"action", entry.Action, "error", err)
			return
		}
		// First entry ever written: prev_hash stays nil
	} else {
		prevHash = &latest.EntryHash
	}

	canonical, err := canonicalize(entry, createdAt)
	if err != nil {
		logger.Warn("audit write skipped: cannot canonicalize entry",
			"action", entry.Action, "error", err)
		return
	}

	row := &models.AuditLog{
		ActorID:   entry.ActorID,
		ActorRole: entry.ActorRole,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Message:   entry.Message,
		Meta:      entry.Meta,
		PrevHash:  prevHash,
		EntryHash: ComputeEntryHash(prevHash, canonical),
		CreatedAt: createdAt,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		logger.Warn("audit write failed",
			"action", entry.Action, "entity", entry.Entity, "error", err)
	}
}

// ComputeEntryHash derives an entry's hash from its predecessor's hash
// and its canonical serialization. A nil predecessor contributes the
// empty string.
func ComputeEntryHash(prevHash *string, canonical []byte) string {
	prev := ""
	if prevHash != nil {
		prev = *prevHash
	}
	sum := sha256.Sum256([]byte(prev + "|" + string(canonical)))
	return hex.EncodeToString(sum[:])
}

func canonicalize(entry AuditEntry, createdAt time.Time) ([]byte, error) {
	return json.Marshal(canonicalEntry{
		ActorID:   entry.ActorID,
		ActorRole: entry.ActorRole,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Message:   entry.Message,
		Meta:      entry.Meta,
		CreatedAt: createdAt.UTC().Format(hashTimeLayout),
	})
}

// ChainVerification is the result of a front-to-back chain walk
type ChainVerification struct {
	Valid      bool      `json:"valid"`
	Entries    int       `json:"entries"`
	BrokenAtID *uint     `json:"broken_at_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	VerifiedAt time.Time `json:"verified_at"`
}

// VerifyChain recomputes every entry's hash from its stored fields and
// predecessor hash, reporting the first entry whose stored hash does not
// match (tampering) or whose prev_hash does not point at its
// chronological predecessor (fork or deletion).
func (s *AuditService) VerifyChain(ctx context.Context) (*ChainVerification, error) {
	entries, err := s.repo.FindAllChained(ctx)
	if err != nil {
		return nil, err
	}

	result := &ChainVerification{Valid: true, Entries: len(entries), VerifiedAt: time.Now().UTC()}

	var prevEntryHash *string
	for i := range entries {
		e := &entries[i]

		canonical, err := canonicalize(AuditEntry{
			ActorID:   e.ActorID,
			ActorRole: e.ActorRole,
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			Message:   e.Message,
			Meta:      e.Meta,
		}, e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to canonicalize entry %d: %w", e.ID, err)
		}

		if expected := ComputeEntryHash(e.PrevHash, canonical); expected != e.EntryHash {
			id := e.ID
			result.Valid = false
			result.BrokenAtID = &id
			result.Reason = "stored entry_hash does not match recomputation"
			return result, nil
		}

		if !sameHashPointer(e.PrevHash, prevEntryHash) {
			id := e.ID
			result.Valid = false
			result.BrokenAtID = &id
			result.Reason = "prev_hash does not reference the preceding entry"
			return result, nil
		}

		prevEntryHash = &e.EntryHash
	}

	return result, nil
}

func sameHashPointer(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, query)
}
