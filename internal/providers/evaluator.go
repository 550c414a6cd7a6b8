package providers

import (
	"context"
	"strings"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
)

const (
	defaultModel          = "gpt-4o-mini"
	evaluationTemperature = 0.7
	evaluationMaxTokens   = 1500
)

type EvaluateOptions struct {
	// UserAPIKey, when set, replaces the system credential for this call.
	UserAPIKey string
	// PreferredModel is only honored together with UserAPIKey; the system
	// credential always runs the default model.
	PreferredModel string
	// AudioDataURL switches the request into the inline-audio mode where the
	// provider transcribes and analyzes in one call.
	AudioDataURL string
}

// Evaluator builds the evaluation prompt, invokes the chat endpoint and
// parses the reply into a validated Evaluation.
type Evaluator struct {
	client    *OpenAIClient
	systemKey string
	model     string
	prompts   *PromptTemplates
	parser    *ResponseParser
}

func NewEvaluator(client *OpenAIClient, systemKey, model string) *Evaluator {
	if model == "" {
		model = defaultModel
	}
	return &Evaluator{
		client:    client,
		systemKey: systemKey,
		model:     model,
		prompts:   NewPromptTemplates(),
		parser:    NewResponseParser(),
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, ideaText string, opts *EvaluateOptions) (*models.Evaluation, error) {
	if opts == nil {
		opts = &EvaluateOptions{}
	}

	apiKey := opts.UserAPIKey
	if apiKey == "" {
		apiKey = e.systemKey
	}
	if apiKey == "" {
		return nil, &MissingCredentialError{Provider: "OpenAI"}
	}

	model := e.model
	if opts.UserAPIKey != "" && opts.PreferredModel != "" {
		model = opts.PreferredModel
	}

	prompt := e.prompts.BuildEvaluationPrompt(ideaText)

	result, err := e.client.CreateChatCompletion(ctx, apiKey, &ChatRequest{
		Model:       model,
		Messages:    buildMessages(prompt, opts.AudioDataURL),
		Temperature: evaluationTemperature,
		MaxTokens:   evaluationMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	evaluation, err := e.parser.Parse(result.Content)
	if err != nil {
		return nil, err
	}

	evaluation.RawResponse = result.Raw
	return evaluation, nil
}

func buildMessages(prompt, audioDataURL string) []ChatMessage {
	if audioDataURL == "" || !strings.HasPrefix(audioDataURL, "data:audio/") {
		return []ChatMessage{{Role: "user", Content: prompt}}
	}

	_, encoded, found := strings.Cut(audioDataURL, ",")
	if !found {
		return []ChatMessage{{Role: "user", Content: prompt}}
	}

	return []ChatMessage{{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: transcribeInstruction},
			{Type: "input_audio", InputAudio: &InputAudio{Data: encoded, Format: "webm"}},
			{Type: "text", Text: prompt},
		},
	}}
}
