package providers

// ProviderError wraps an upstream LLM or transcription failure; the caller
// may retry later.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Provider + " error: " + e.Message
	}
	return e.Provider + " request failed: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MissingCredentialError means neither a user nor a system API key was
// available for the call.
type MissingCredentialError struct {
	Provider string
}

func (e *MissingCredentialError) Error() string { return e.Provider + " API key not provided" }

// InvalidAudioError means the audio payload was not a well-formed data URL.
type InvalidAudioError struct {
	Reason string
}

func (e *InvalidAudioError) Error() string { return "invalid audio payload: " + e.Reason }
