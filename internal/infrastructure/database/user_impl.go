package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
	"github.com/javimosch/gutcheck-saas/internal/domain/repositories"
)

type userRepository struct {
	db *PostgresDB
}

func NewUserRepository(db *PostgresDB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, ip, evaluation_count, transcription_count,
	              llm_key_encrypted, transcription_key_encrypted, preferred_model)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		user.Email,
		user.IP,
		user.EvaluationCount,
		user.TranscriptionCount,
		user.LLMKeyEncrypted,
		user.TranscriptionKeyEncrypted,
		user.PreferredModel,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, ip, evaluation_count, transcription_count,
	              llm_key_encrypted, transcription_key_encrypted, preferred_model,
	              created_at, updated_at
	          FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, ip, evaluation_count, transcription_count,
	              llm_key_encrypted, transcription_key_encrypted, preferred_model,
	              created_at, updated_at
	          FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateCredentials(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET llm_key_encrypted = $2, transcription_key_encrypted = $3,
	              preferred_model = $4, updated_at = now()
	          WHERE id = $1`

	result, err := r.db.ExecContext(
		ctx, query,
		user.ID,
		user.LLMKeyEncrypted,
		user.TranscriptionKeyEncrypted,
		user.PreferredModel,
	)
	if err != nil {
		return fmt.Errorf("failed to update credentials: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// IncrementUsage is the single atomic add backing quota accounting; it never
// reads the counter first, so concurrent requests cannot lose updates.
func (r *userRepository) IncrementUsage(ctx context.Context, id int64, capability models.Capability) error {
	column := "evaluation_count"
	if capability == models.CapabilityTranscription {
		column = "transcription_count"
	}

	query := fmt.Sprintf(`UPDATE users SET %s = %s + 1, updated_at = now() WHERE id = $1`, column, column)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
