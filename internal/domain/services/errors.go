package services

import (
	"fmt"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
)

// ValidationError means the caller sent input with a bad shape or length and
// can recover by resubmitting corrected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError covers both unknown ids and cross-owner access; the two are
// intentionally indistinguishable to the caller.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// QuotaExceededError carries enough structure for the client to drive its
// "bring your own key" remediation flow.
type QuotaExceededError struct {
	Capability  models.Capability
	UsageCount  int64
	MaxUsage    int64
	NeedsOwnKey bool
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("free %s limit reached (%d/%d), provide your own API key to continue",
		e.Capability, e.UsageCount, e.MaxUsage)
}

// ConfigurationError is a server-side misconfiguration (missing master key or
// system provider credential); not fixable by the caller.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// IntegrityError means a stored credential blob failed authentication on
// decrypt. Callers treat it as "credential unusable", never as "no credential".
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string { return "credential blob integrity check failed: " + e.Reason }
