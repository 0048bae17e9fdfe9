package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fleuri/fleuri-api/internal/jobs"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"gorm.io/gorm"
)

// UserService handles user-related business logic
type UserService struct {
	repo         repository.UserRepository
	worker       *jobs.Worker
	emailService *EmailService
	auditSvc     *AuditService
}

func NewUserService(repo repository.UserRepository, worker *jobs.Worker, emailService *EmailService, auditSvc *AuditService) *UserService {
	return &UserService{
		repo:         repo,
		worker:       worker,
		emailService: emailService,
		auditSvc:     auditSvc,
	}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *UserService) Create(ctx context.Context, user *models.User, password string, actorID uint) error {
	user.Email = strings.ToLower(user.Email)
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashedPassword
	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}

	// Welcome email is best-effort; failure is logged inside the sender
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.emailService.SendAccountCreated(ctx, user)
	})

	s.logAudit(ctx, actorID, models.AuditUserCreated, user.ID,
		fmt.Sprintf("user created: %s (%s) - role: %s", user.FullName, user.Email, user.Role))
	return nil
}

func (s *UserService) Update(ctx context.Context, user *models.User, actorID uint) error {
	return s.repo.Update(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, id uint, actorID uint) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, actorID, models.AuditUserDeleted, id, "user soft-deleted")
	return nil
}

func (s *UserService) Restore(ctx context.Context, id uint, actorID uint) error {
	if err := s.repo.Restore(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, actorID, models.AuditUserRestored, id, "user restored")
	return nil
}

func (s *UserService) ToggleStatus(ctx context.Context, id uint, actorID uint) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == models.StatusActive {
		user.Status = models.StatusInactive
	} else {
		user.Status = models.StatusActive
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logAudit(ctx, actorID, models.AuditUserStatusToggled, user.ID,
		fmt.Sprintf("user status set to %s", user.Status))
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uint, currentPassword, newPassword string) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !VerifyPassword(currentPassword, user.EncryptedPassword) {
		return ErrInvalidPassword
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashed
	return s.repo.Update(ctx, user)
}

func (s *UserService) logAudit(ctx context.Context, actorID uint, action string, entityID uint, message string) {
	role := models.RoleAdmin
	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:   &actorID,
		ActorRole: &role,
		Action:    action,
		Entity:    "User",
		EntityID:  &entityID,
		Message:   message,
	})
}
