package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
	"github.com/javimosch/gutcheck-saas/internal/domain/repositories"
	"github.com/javimosch/gutcheck-saas/internal/validate"
)

const DefaultFreeLimit = 10

type QuotaStatus struct {
	Allowed    bool  `json:"allowed"`
	UsageCount int64 `json:"usage_count"`
	MaxUsage   int64 `json:"max_usage"`
	HasOwnKey  bool  `json:"has_own_key"`
}

// QuotaService gates and tracks the two metered capabilities. A personal
// credential bypasses metering entirely; the counters only bound consumption
// of the shared system credentials.
type QuotaService interface {
	Check(ctx context.Context, email string, capability models.Capability) (*QuotaStatus, error)
	CheckUser(user *models.User, capability models.Capability) *QuotaStatus
	Increment(ctx context.Context, userID int64, capability models.Capability) error
}

type quotaService struct {
	userRepo  repositories.UserRepository
	freeLimit int64
}

func NewQuotaService(userRepo repositories.UserRepository, freeLimit int64) QuotaService {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeLimit
	}
	return &quotaService{userRepo: userRepo, freeLimit: freeLimit}
}

func (s *quotaService) Check(ctx context.Context, email string, capability models.Capability) (*QuotaStatus, error) {
	user, err := s.userRepo.GetByEmail(ctx, validate.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return s.CheckUser(user, capability), nil
}

func (s *quotaService) CheckUser(user *models.User, capability models.Capability) *QuotaStatus {
	count := user.UsageCount(capability)
	if user.HasKey(capability) {
		return &QuotaStatus{Allowed: true, UsageCount: count, MaxUsage: s.freeLimit, HasOwnKey: true}
	}
	return &QuotaStatus{
		Allowed:    count < s.freeLimit,
		UsageCount: count,
		MaxUsage:   s.freeLimit,
	}
}

// Increment adds one to the capability's counter via a single atomic update.
// Call it only after the paid action succeeded on the system credential.
func (s *quotaService) Increment(ctx context.Context, userID int64, capability models.Capability) error {
	if err := s.userRepo.IncrementUsage(ctx, userID, capability); err != nil {
		return fmt.Errorf("failed to increment %s usage: %w", capability, err)
	}
	return nil
}
