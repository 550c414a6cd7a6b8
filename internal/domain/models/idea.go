package models

import (
	"encoding/json"
	"time"
)

type IdeaStatus string

const (
	IdeaStatusPending  IdeaStatus = "pending"
	IdeaStatusAnalyzed IdeaStatus = "analyzed"
	IdeaStatusArchived IdeaStatus = "archived"
)

type Recommendation string

const (
	RecommendationPursue Recommendation = "pursue"
	RecommendationMaybe  Recommendation = "maybe"
	RecommendationShelve Recommendation = "shelve"
)

// Evaluation is the structured verdict produced by the LLM for an idea.
// RawResponse keeps the provider reply verbatim for audit display; score and
// recommendation come from the model as-is (the rubric thresholds in the
// prompt are advisory, not enforced here).
type Evaluation struct {
	Problem        string          `json:"problem"`
	Audience       string          `json:"audience"`
	Competitors    []string        `json:"competitors"`
	Potential      string          `json:"potential"`
	Score          int             `json:"score"`
	Recommendation Recommendation  `json:"recommendation"`
	RawResponse    json.RawMessage `json:"raw_response,omitempty"`
}

type Idea struct {
	ID         string      `json:"id" db:"id"`
	UserID     int64       `json:"user_id" db:"user_id"`
	Title      string      `json:"title" db:"title"`
	RawText    string      `json:"raw_text" db:"raw_text"`
	VoiceURL   string      `json:"-" db:"voice_url"`
	UserNotes  string      `json:"user_notes" db:"user_notes"`
	Status     IdeaStatus  `json:"status" db:"status"`
	Evaluation *Evaluation `json:"evaluation,omitempty" db:"-"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}
