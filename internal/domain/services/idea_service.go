package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
	"github.com/javimosch/gutcheck-saas/internal/domain/repositories"
	"github.com/javimosch/gutcheck-saas/internal/providers"
	"github.com/javimosch/gutcheck-saas/internal/validate"
)

const (
	transcriptionSeparator = "\n\n[Voice Recording Transcription]:\n"

	// Placeholder body for ideas whose voice content could not be turned
	// into text. Never length-validated.
	placeholderFailed = "[Voice recording provided - transcription failed]"

	ideaListLimit = 50
)

type SubmitIdeaRequest struct {
	Title     string `json:"title"`
	RawText   string `json:"rawText"`
	VoiceData string `json:"voiceData"`
	UserNotes string `json:"userNotes"`
}

// IdeaEvaluator and AudioTranscriber are the provider seams the pipeline
// depends on; production wiring uses the types in internal/providers.
type IdeaEvaluator interface {
	Evaluate(ctx context.Context, ideaText string, opts *providers.EvaluateOptions) (*models.Evaluation, error)
}

type AudioTranscriber interface {
	Configured() bool
	TranscribeDataURL(ctx context.Context, dataURL, userKey string) (*providers.TranscriptionResult, error)
}

// IdeaService is the idea evaluation pipeline: validates input, resolves
// credentials, transcribes voice, invokes the evaluator and keeps the usage
// counters honest. Each counter is incremented at most once per request and
// only when the corresponding action succeeded on the system credential.
type IdeaService interface {
	Submit(ctx context.Context, user *models.User, req *SubmitIdeaRequest) (*models.Idea, error)
	Analyze(ctx context.Context, user *models.User, ideaID string) (*models.Idea, error)
	List(ctx context.Context, user *models.User, status string) ([]*models.Idea, error)
	Get(ctx context.Context, user *models.User, ideaID string) (*models.Idea, error)
	UpdateNotes(ctx context.Context, user *models.User, ideaID, notes string) (*models.Idea, error)
	Archive(ctx context.Context, user *models.User, ideaID string) (*models.Idea, error)
}

type ideaService struct {
	ideaRepo    repositories.IdeaRepository
	accounts    AccountService
	quota       QuotaService
	evaluator   IdeaEvaluator
	transcriber AudioTranscriber
}

func NewIdeaService(
	ideaRepo repositories.IdeaRepository,
	accounts AccountService,
	quota QuotaService,
	evaluator IdeaEvaluator,
	transcriber AudioTranscriber,
) IdeaService {
	return &ideaService{
		ideaRepo:    ideaRepo,
		accounts:    accounts,
		quota:       quota,
		evaluator:   evaluator,
		transcriber: transcriber,
	}
}

func (s *ideaService) Submit(ctx context.Context, user *models.User, req *SubmitIdeaRequest) (*models.Idea, error) {
	if err := validate.Title(req.Title); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := validate.Notes(req.UserNotes); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	hasText := strings.TrimSpace(req.RawText) != ""
	hasVoice := strings.TrimSpace(req.VoiceData) != ""

	if !hasText && !hasVoice {
		return nil, &ValidationError{Message: "please provide either idea text or a voice recording"}
	}
	if hasText {
		if err := validate.IdeaText(req.RawText); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
	}

	finalText := req.RawText
	voiceURL := ""

	if hasVoice {
		body, keepVoice, err := s.transcribeSubmission(ctx, user, req.VoiceData, req.RawText, hasText)
		if err != nil {
			return nil, err
		}
		finalText = body
		if keepVoice {
			// No transcriber available: keep the payload so analysis can use
			// the provider's inline-audio mode instead.
			voiceURL = req.VoiceData
		}
	}

	if !isPlaceholder(finalText) {
		if err := validate.IdeaText(finalText); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
	}

	idea := &models.Idea{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Title:     strings.TrimSpace(req.Title),
		RawText:   finalText,
		VoiceURL:  voiceURL,
		UserNotes: req.UserNotes,
		Status:    models.IdeaStatusPending,
	}

	if err := s.ideaRepo.Create(ctx, idea); err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}
	return idea, nil
}

// transcribeSubmission resolves the transcription credential, runs at most
// one transcription attempt and returns the resolved idea body. Quota is
// consumed only for a successful run on the system credential.
func (s *ideaService) transcribeSubmission(ctx context.Context, user *models.User, voiceData, rawText string, hasText bool) (string, bool, error) {
	status := s.quota.CheckUser(user, models.CapabilityTranscription)
	if !status.Allowed {
		return "", false, &QuotaExceededError{
			Capability:  models.CapabilityTranscription,
			UsageCount:  status.UsageCount,
			MaxUsage:    status.MaxUsage,
			NeedsOwnKey: true,
		}
	}

	userKey, err := s.accounts.TranscriptionKey(user)
	if err != nil {
		return "", false, err
	}

	if userKey == "" && !s.transcriber.Configured() {
		if hasText {
			log.Printf("transcription not configured, keeping submitted text for user %d", user.ID)
			return rawText, true, nil
		}
		return "", false, &ConfigurationError{
			Message: "voice transcription is not available; add a personal transcription key or submit text",
		}
	}

	result, err := s.transcriber.TranscribeDataURL(ctx, voiceData, userKey)
	if err != nil {
		var invalidErr *providers.InvalidAudioError
		if errors.As(err, &invalidErr) {
			return "", false, &ValidationError{Message: invalidErr.Error()}
		}
		log.Printf("transcription failed for user %d: %v", user.ID, err)
		if hasText {
			return rawText, false, nil
		}
		return placeholderFailed, false, nil
	}

	// The provider call completed, so the system credential was consumed even
	// when the recording held no discernible speech.
	if userKey == "" {
		if err := s.quota.Increment(ctx, user.ID, models.CapabilityTranscription); err != nil {
			log.Printf("failed to record transcription usage for user %d: %v", user.ID, err)
		}
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		if hasText {
			return rawText, false, nil
		}
		return placeholderFailed, false, nil
	}

	if hasText {
		return rawText + transcriptionSeparator + text, false, nil
	}
	return text, false, nil
}

func (s *ideaService) Analyze(ctx context.Context, user *models.User, ideaID string) (*models.Idea, error) {
	idea, err := s.ideaRepo.GetByIDAndUser(ctx, ideaID, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "idea"}
		}
		return nil, fmt.Errorf("failed to load idea: %w", err)
	}

	if idea.Status == models.IdeaStatusArchived {
		return nil, &ValidationError{Message: "archived ideas cannot be analyzed"}
	}

	status := s.quota.CheckUser(user, models.CapabilityEvaluation)
	if !status.Allowed {
		return nil, &QuotaExceededError{
			Capability:  models.CapabilityEvaluation,
			UsageCount:  status.UsageCount,
			MaxUsage:    status.MaxUsage,
			NeedsOwnKey: true,
		}
	}

	userKey, err := s.accounts.LLMKey(user)
	if err != nil {
		return nil, err
	}

	preferredModel := ""
	if user.PreferredModel != nil {
		preferredModel = *user.PreferredModel
	}

	evaluation, err := s.evaluator.Evaluate(ctx, idea.RawText, &providers.EvaluateOptions{
		UserAPIKey:     userKey,
		PreferredModel: preferredModel,
		AudioDataURL:   idea.VoiceURL,
	})
	if err != nil {
		// The idea stays in its prior state; nothing partial is written.
		return nil, err
	}

	updated, err := s.ideaRepo.StoreEvaluation(ctx, idea.ID, user.ID, evaluation)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "idea"}
		}
		return nil, fmt.Errorf("failed to store evaluation: %w", err)
	}

	if userKey == "" {
		if err := s.quota.Increment(ctx, user.ID, models.CapabilityEvaluation); err != nil {
			log.Printf("failed to record evaluation usage for user %d: %v", user.ID, err)
		}
	}
	return updated, nil
}

func (s *ideaService) List(ctx context.Context, user *models.User, status string) ([]*models.Idea, error) {
	var ideaStatus models.IdeaStatus
	switch status {
	case "":
	case string(models.IdeaStatusPending), string(models.IdeaStatusAnalyzed), string(models.IdeaStatusArchived):
		ideaStatus = models.IdeaStatus(status)
	default:
		return nil, &ValidationError{Message: "unknown status filter"}
	}

	ideas, err := s.ideaRepo.ListByUser(ctx, user.ID, ideaStatus, ideaListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	return ideas, nil
}

func (s *ideaService) Get(ctx context.Context, user *models.User, ideaID string) (*models.Idea, error) {
	idea, err := s.ideaRepo.GetByIDAndUser(ctx, ideaID, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "idea"}
		}
		return nil, fmt.Errorf("failed to load idea: %w", err)
	}
	return idea, nil
}

func (s *ideaService) UpdateNotes(ctx context.Context, user *models.User, ideaID, notes string) (*models.Idea, error) {
	if err := validate.Notes(notes); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	idea, err := s.ideaRepo.UpdateNotes(ctx, ideaID, user.ID, notes)
	if err == nil {
		return idea, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to update notes: %w", err)
	}

	// The scoped update matched nothing: either the idea does not belong to
	// this user or it is archived. Only the owner learns which.
	existing, lookupErr := s.ideaRepo.GetByIDAndUser(ctx, ideaID, user.ID)
	if lookupErr == nil && existing.Status == models.IdeaStatusArchived {
		return nil, &ValidationError{Message: "archived ideas cannot be edited"}
	}
	return nil, &NotFoundError{Resource: "idea"}
}

func (s *ideaService) Archive(ctx context.Context, user *models.User, ideaID string) (*models.Idea, error) {
	idea, err := s.ideaRepo.Archive(ctx, ideaID, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "idea"}
		}
		return nil, fmt.Errorf("failed to archive idea: %w", err)
	}
	return idea, nil
}

func isPlaceholder(text string) bool {
	return strings.HasPrefix(text, "[Voice recording provided")
}
