package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	whisperModel       = "whisper-large-v3"
)

type TranscriptionResult struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration,omitempty"`
	Language string  `json:"language,omitempty"`
}

// GroqClient transcribes audio through Groq's OpenAI-compatible whisper
// endpoint. It holds the system credential; callers pass a user credential
// per call to override it. At most one attempt per call, no retries.
type GroqClient struct {
	systemKey  string
	baseURL    string
	httpClient *http.Client
}

func NewGroqClient(systemKey string) *GroqClient {
	return &GroqClient{
		systemKey:  systemKey,
		baseURL:    defaultGroqBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether a system-wide transcription credential exists.
func (c *GroqClient) Configured() bool {
	return c.systemKey != ""
}

// TranscribeDataURL decodes a base64 data URL and transcribes the audio.
// userKey takes precedence over the system credential when non-empty.
func (c *GroqClient) TranscribeDataURL(ctx context.Context, dataURL, userKey string) (*TranscriptionResult, error) {
	audio, ext, err := DecodeAudioDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	return c.Transcribe(ctx, audio, "audio."+ext, userKey)
}

func (c *GroqClient) Transcribe(ctx context.Context, audio []byte, filename, userKey string) (*TranscriptionResult, error) {
	apiKey := userKey
	if apiKey == "" {
		apiKey = c.systemKey
	}
	if apiKey == "" {
		return nil, &MissingCredentialError{Provider: "Groq"}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio payload: %w", err)
	}

	writer.WriteField("model", whisperModel)
	writer.WriteField("response_format", "verbose_json")
	writer.WriteField("language", "en")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: "Groq", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: "Groq", Err: err}
	}

	var transcription struct {
		Text     string  `json:"text"`
		Duration float64 `json:"duration"`
		Language string  `json:"language"`
		Error    *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &transcription); err != nil {
		return nil, &ProviderError{Provider: "Groq", Message: "unparseable response body", Err: err}
	}

	if transcription.Error != nil {
		return nil, &ProviderError{Provider: "Groq", Message: transcription.Error.Message}
	}

	// Empty text is a valid result for audio with no discernible speech.
	return &TranscriptionResult{
		Text:     transcription.Text,
		Duration: transcription.Duration,
		Language: transcription.Language,
	}, nil
}

// DecodeAudioDataURL splits a "data:audio/...;base64,..." URL into raw bytes
// and a file extension derived from the mime type.
func DecodeAudioDataURL(dataURL string) ([]byte, string, error) {
	header, encoded, found := strings.Cut(dataURL, ",")
	if !found || encoded == "" {
		return nil, "", &InvalidAudioError{Reason: "not a data URL"}
	}

	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", &InvalidAudioError{Reason: "payload is not valid base64"}
	}

	ext := "webm"
	switch {
	case strings.Contains(header, "mp4"):
		ext = "mp4"
	case strings.Contains(header, "wav"):
		ext = "wav"
	}
	return audio, ext, nil
}
