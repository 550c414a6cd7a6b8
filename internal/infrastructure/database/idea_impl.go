package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
	"github.com/javimosch/gutcheck-saas/internal/domain/repositories"
)

type ideaRepository struct {
	db *PostgresDB
}

func NewIdeaRepository(db *PostgresDB) repositories.IdeaRepository {
	return &ideaRepository{db: db}
}

// ideaRow carries the raw evaluation JSON alongside the scannable columns.
type ideaRow struct {
	ID         string            `db:"id"`
	UserID     int64             `db:"user_id"`
	Title      string            `db:"title"`
	RawText    string            `db:"raw_text"`
	VoiceURL   string            `db:"voice_url"`
	UserNotes  string            `db:"user_notes"`
	Status     models.IdeaStatus `db:"status"`
	Evaluation []byte            `db:"evaluation"`
	CreatedAt  time.Time         `db:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at"`
}

func (row *ideaRow) toModel() (*models.Idea, error) {
	idea := &models.Idea{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		RawText:   row.RawText,
		VoiceURL:  row.VoiceURL,
		UserNotes: row.UserNotes,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Evaluation) > 0 {
		var eval models.Evaluation
		if err := json.Unmarshal(row.Evaluation, &eval); err != nil {
			return nil, fmt.Errorf("failed to decode stored evaluation: %w", err)
		}
		idea.Evaluation = &eval
	}
	return idea, nil
}

const ideaColumns = `id, user_id, title, raw_text, voice_url, user_notes, status, evaluation, created_at, updated_at`

func (r *ideaRepository) Create(ctx context.Context, idea *models.Idea) error {
	query := `INSERT INTO ideas (id, user_id, title, raw_text, voice_url, user_notes, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		idea.ID,
		idea.UserID,
		idea.Title,
		idea.RawText,
		idea.VoiceURL,
		idea.UserNotes,
		idea.Status,
	).Scan(&idea.CreatedAt, &idea.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create idea: %w", err)
	}
	return nil
}

func (r *ideaRepository) GetByIDAndUser(ctx context.Context, id string, userID int64) (*models.Idea, error) {
	var row ideaRow
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, &row, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}
	return row.toModel()
}

func (r *ideaRepository) ListByUser(ctx context.Context, userID int64, status models.IdeaStatus, limit int) ([]*models.Idea, error) {
	var rows []ideaRow
	var err error

	if status != "" {
		query := `SELECT ` + ideaColumns + ` FROM ideas
		          WHERE user_id = $1 AND status = $2
		          ORDER BY created_at DESC LIMIT $3`
		err = r.db.SelectContext(ctx, &rows, query, userID, status, limit)
	} else {
		query := `SELECT ` + ideaColumns + ` FROM ideas
		          WHERE user_id = $1
		          ORDER BY created_at DESC LIMIT $2`
		err = r.db.SelectContext(ctx, &rows, query, userID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}

	ideas := make([]*models.Idea, 0, len(rows))
	for i := range rows {
		idea, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

func (r *ideaRepository) StoreEvaluation(ctx context.Context, id string, userID int64, eval *models.Evaluation) (*models.Idea, error) {
	payload, err := json.Marshal(eval)
	if err != nil {
		return nil, fmt.Errorf("failed to encode evaluation: %w", err)
	}

	var row ideaRow
	query := `UPDATE ideas
	          SET evaluation = $3, status = $4, voice_url = '', updated_at = now()
	          WHERE id = $1 AND user_id = $2 AND status <> $5
	          RETURNING ` + ideaColumns

	err = r.db.GetContext(ctx, &row, query, id, userID, payload, models.IdeaStatusAnalyzed, models.IdeaStatusArchived)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to store evaluation: %w", err)
	}
	return row.toModel()
}

func (r *ideaRepository) UpdateNotes(ctx context.Context, id string, userID int64, notes string) (*models.Idea, error) {
	var row ideaRow
	query := `UPDATE ideas
	          SET user_notes = $3, updated_at = now()
	          WHERE id = $1 AND user_id = $2 AND status <> $4
	          RETURNING ` + ideaColumns

	err := r.db.GetContext(ctx, &row, query, id, userID, notes, models.IdeaStatusArchived)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update notes: %w", err)
	}
	return row.toModel()
}

// Archive is idempotent: archiving an already archived idea succeeds and
// leaves the row unchanged.
func (r *ideaRepository) Archive(ctx context.Context, id string, userID int64) (*models.Idea, error) {
	var row ideaRow
	query := `UPDATE ideas
	          SET status = $3, updated_at = now()
	          WHERE id = $1 AND user_id = $2
	          RETURNING ` + ideaColumns

	err := r.db.GetContext(ctx, &row, query, id, userID, models.IdeaStatusArchived)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to archive idea: %w", err)
	}
	return row.toModel()
}
