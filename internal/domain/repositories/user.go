package repositories

import (
	"context"
	"errors"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
)

// ErrNotFound is returned by repositories when no row matches the lookup,
// including owner-scoped lookups that matched a row belonging to someone else.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateCredentials(ctx context.Context, user *models.User) error
	IncrementUsage(ctx context.Context, id int64, capability models.Capability) error
}
