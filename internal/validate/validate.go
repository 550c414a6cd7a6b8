package validate

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

const (
	MaxTitleLength = 200
	MaxTextLength  = 5000
	MaxNotesLength = 1000
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

// SanitizeEmail normalizes an email into the canonical user identity key.
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EncodeEmail turns an email into the opaque identifier the client stores.
// This is an identifier transform only, not a credential.
func EncodeEmail(email string) string {
	return base64.StdEncoding.EncodeToString([]byte(SanitizeEmail(email)))
}

func DecodeEmail(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.New("invalid encoded email")
	}
	return string(decoded), nil
}

func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title cannot be empty")
	}
	if len(title) > MaxTitleLength {
		return errors.New("title must be less than 200 characters")
	}
	return nil
}

func IdeaText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("idea text cannot be empty")
	}
	if len(text) > MaxTextLength {
		return errors.New("idea text must be less than 5000 characters")
	}
	return nil
}

func Notes(notes string) error {
	if len(notes) > MaxNotesLength {
		return errors.New("notes must be less than 1000 characters")
	}
	return nil
}
