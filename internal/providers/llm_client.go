package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// ChatMessage content is either a plain string or a list of ContentPart for
// the inline-audio mode.
type ChatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type ContentPart struct {
	Type       string      `json:"type"`
	Text       string      `json:"text,omitempty"`
	InputAudio *InputAudio `json:"input_audio,omitempty"`
}

type InputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// ChatResult carries the first choice's text plus the verbatim provider body
// for audit storage.
type ChatResult struct {
	Content string
	Raw     json.RawMessage
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint. The
// API key is supplied per call so user-owned and system credentials share one
// client.
type OpenAIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenAIClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, apiKey string, chatReq *ChatRequest) (*ChatResult, error) {
	if apiKey == "" {
		return nil, &MissingCredentialError{Provider: "OpenAI"}
	}

	jsonBody, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: "OpenAI", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: "OpenAI", Err: err}
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &ProviderError{Provider: "OpenAI", Message: "unparseable response body", Err: err}
	}

	if response.Error != nil {
		return nil, &ProviderError{Provider: "OpenAI", Message: response.Error.Message}
	}

	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return nil, &ProviderError{Provider: "OpenAI", Message: "no completion returned"}
	}

	return &ChatResult{
		Content: response.Choices[0].Message.Content,
		Raw:     json.RawMessage(body),
	}, nil
}
