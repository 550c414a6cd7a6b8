package models

import (
	"time"
)

// Capability names the two independently metered paid actions.
type Capability string

const (
	CapabilityEvaluation    Capability = "evaluation"
	CapabilityTranscription Capability = "transcription"
)

type User struct {
	ID                        int64     `json:"id" db:"id"`
	Email                     string    `json:"email" db:"email"`
	IP                        string    `json:"-" db:"ip"`
	EvaluationCount           int64     `json:"evaluation_count" db:"evaluation_count"`
	TranscriptionCount        int64     `json:"transcription_count" db:"transcription_count"`
	LLMKeyEncrypted           *string   `json:"-" db:"llm_key_encrypted"`
	TranscriptionKeyEncrypted *string   `json:"-" db:"transcription_key_encrypted"`
	PreferredModel            *string   `json:"preferred_model,omitempty" db:"preferred_model"`
	CreatedAt                 time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at" db:"updated_at"`
}

// HasKey reports whether the user stored a personal credential for the
// capability. Presence of a key switches that capability to unmetered; the
// blob is not decrypted here, so one that no longer decrypts still reads as
// "has key" until the user replaces or clears it.
func (u *User) HasKey(c Capability) bool {
	switch c {
	case CapabilityTranscription:
		return u.TranscriptionKeyEncrypted != nil && *u.TranscriptionKeyEncrypted != ""
	default:
		return u.LLMKeyEncrypted != nil && *u.LLMKeyEncrypted != ""
	}
}

func (u *User) UsageCount(c Capability) int64 {
	if c == CapabilityTranscription {
		return u.TranscriptionCount
	}
	return u.EvaluationCount
}
