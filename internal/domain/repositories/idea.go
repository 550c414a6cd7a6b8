package repositories

import (
	"context"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
)

type IdeaRepository interface {
	Create(ctx context.Context, idea *models.Idea) error
	// GetByIDAndUser filters by (id AND owner) in a single lookup so a
	// cross-owner request is indistinguishable from a missing id.
	GetByIDAndUser(ctx context.Context, id string, userID int64) (*models.Idea, error)
	ListByUser(ctx context.Context, userID int64, status models.IdeaStatus, limit int) ([]*models.Idea, error)
	// StoreEvaluation overwrites the evaluation and moves the idea to
	// analyzed, skipping archived rows.
	StoreEvaluation(ctx context.Context, id string, userID int64, eval *models.Evaluation) (*models.Idea, error)
	// UpdateNotes is owner-scoped and skips archived rows.
	UpdateNotes(ctx context.Context, id string, userID int64, notes string) (*models.Idea, error)
	Archive(ctx context.Context, id string, userID int64) (*models.Idea, error)
}
