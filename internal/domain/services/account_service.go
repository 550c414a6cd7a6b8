package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
	"github.com/javimosch/gutcheck-saas/internal/domain/repositories"
	"github.com/javimosch/gutcheck-saas/internal/validate"
)

// UpdateSettingsRequest uses nil to leave a field untouched and the empty
// string to explicitly clear it.
type UpdateSettingsRequest struct {
	APIKey           *string `json:"apiKey"`
	TranscriptionKey *string `json:"transcriptionKey"`
	PreferredModel   *string `json:"preferredModel"`
}

type AccountService interface {
	FindOrCreate(ctx context.Context, email, ip, byokKey string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateSettings(ctx context.Context, userID int64, req *UpdateSettingsRequest) (*models.User, error)
	// LLMKey and TranscriptionKey return the decrypted personal credential,
	// or "" when none is stored or the stored blob is unusable.
	LLMKey(user *models.User) (string, error)
	TranscriptionKey(user *models.User) (string, error)
}

type accountService struct {
	userRepo repositories.UserRepository
	vault    *CredentialVault
}

func NewAccountService(userRepo repositories.UserRepository, vault *CredentialVault) AccountService {
	return &accountService{userRepo: userRepo, vault: vault}
}

// FindOrCreate resolves the user for a normalized email, creating the record
// on first contact. Idempotent: a concurrent create losing the unique-email
// race falls back to the winner's row.
func (s *accountService) FindOrCreate(ctx context.Context, email, ip, byokKey string) (*models.User, error) {
	if !validate.IsValidEmail(email) {
		return nil, &ValidationError{Message: "valid email is required"}
	}
	sanitized := validate.SanitizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, sanitized)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = &models.User{Email: sanitized, IP: ip}
	if byokKey != "" {
		encrypted, err := s.vault.Encrypt(byokKey)
		if err != nil {
			return nil, err
		}
		user.LLMKeyEncrypted = &encrypted
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if existing, lookupErr := s.userRepo.GetByEmail(ctx, sanitized); lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *accountService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, validate.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func (s *accountService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func (s *accountService) UpdateSettings(ctx context.Context, userID int64, req *UpdateSettingsRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.APIKey != nil {
		if *req.APIKey == "" {
			user.LLMKeyEncrypted = nil
		} else {
			encrypted, err := s.vault.Encrypt(*req.APIKey)
			if err != nil {
				return nil, err
			}
			user.LLMKeyEncrypted = &encrypted
		}
	}

	if req.TranscriptionKey != nil {
		if *req.TranscriptionKey == "" {
			user.TranscriptionKeyEncrypted = nil
		} else {
			encrypted, err := s.vault.Encrypt(*req.TranscriptionKey)
			if err != nil {
				return nil, err
			}
			user.TranscriptionKeyEncrypted = &encrypted
		}
	}

	if req.PreferredModel != nil {
		if *req.PreferredModel == "" {
			user.PreferredModel = nil
		} else {
			user.PreferredModel = req.PreferredModel
		}
	}

	if err := s.userRepo.UpdateCredentials(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return user, nil
}

func (s *accountService) LLMKey(user *models.User) (string, error) {
	if user.LLMKeyEncrypted == nil || *user.LLMKeyEncrypted == "" {
		return "", nil
	}
	return s.decrypt(user, *user.LLMKeyEncrypted)
}

func (s *accountService) TranscriptionKey(user *models.User) (string, error) {
	if user.TranscriptionKeyEncrypted == nil || *user.TranscriptionKeyEncrypted == "" {
		return "", nil
	}
	return s.decrypt(user, *user.TranscriptionKeyEncrypted)
}

// decrypt degrades an unusable blob to "no credential" instead of failing the
// request; a missing master key stays a hard configuration error.
func (s *accountService) decrypt(user *models.User, blob string) (string, error) {
	key, err := s.vault.Decrypt(blob)
	if err != nil {
		var integrityErr *IntegrityError
		if errors.As(err, &integrityErr) {
			log.Printf("stored credential for user %d is unusable: %v", user.ID, err)
			return "", nil
		}
		return "", err
	}
	return key, nil
}
