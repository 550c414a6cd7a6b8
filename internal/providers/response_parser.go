package providers

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
)

// ParseError means the model replied but not in a usable structure. The
// evaluation attempt is a hard failure; no fields are fabricated.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return "failed to parse evaluation response: " + e.Message }

var (
	// Extraction patterns tried in order; the first structural match wins.
	largestObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)
	fencedBlockRegex   = regexp.MustCompile("(?is)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	afterKeywordRegex  = regexp.MustCompile(`(?is)(?:json|response|analysis).*?(\{.*\})`)
	lastObjectRegex    = regexp.MustCompile(`(?s)(\{[^{}]*\{[^{}]*\}[^{}]*\}|\{[^{}]*\})`)

	// Repair patterns for almost-JSON replies.
	bareKeyRegex       = regexp.MustCompile(`([{,]\s*)([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
	bareValueRegex     = regexp.MustCompile(`:\s*([^",\[\]{}\n]+)([,}])`)
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
	leadingJSONRegex   = regexp.MustCompile(`(?i)^\s*json\s*`)
)

type extractFunc func(string) (string, bool)

// ResponseParser extracts a structured evaluation from an LLM's free-form
// reply, tolerating prose wrappers, code fences and minor syntax damage.
type ResponseParser struct {
	extractors []extractFunc
}

func NewResponseParser() *ResponseParser {
	return &ResponseParser{
		extractors: []extractFunc{
			extractLargestObject,
			extractFencedObject,
			extractAfterKeyword,
			extractLastObject,
		},
	}
}

func (p *ResponseParser) Parse(content string) (*models.Evaluation, error) {
	jsonStr := strings.TrimSpace(content)

	for _, extract := range p.extractors {
		if candidate, ok := extract(content); ok {
			jsonStr = candidate
			break
		}
	}

	jsonStr = cleanJSON(jsonStr)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		repaired := repairJSON(jsonStr)
		if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
			return nil, &ParseError{Message: "response contains no parseable JSON object"}
		}
	}

	if err := validateFields(parsed); err != nil {
		return nil, err
	}

	return &models.Evaluation{
		Problem:        strings.TrimSpace(stringField(parsed, "problem")),
		Audience:       strings.TrimSpace(stringField(parsed, "audience")),
		Competitors:    competitorList(parsed["competitors"]),
		Potential:      strings.TrimSpace(stringField(parsed, "potential")),
		Score:          clampScore(parsed["score"]),
		Recommendation: normalizeRecommendation(stringField(parsed, "recommendation")),
	}, nil
}

func extractLargestObject(content string) (string, bool) {
	if m := largestObjectRegex.FindString(content); m != "" {
		return m, true
	}
	return "", false
}

func extractFencedObject(content string) (string, bool) {
	if m := fencedBlockRegex.FindStringSubmatch(content); m != nil {
		return m[1], true
	}
	return "", false
}

func extractAfterKeyword(content string) (string, bool) {
	if m := afterKeywordRegex.FindStringSubmatch(content); m != nil {
		return m[1], true
	}
	return "", false
}

func extractLastObject(content string) (string, bool) {
	if m := lastObjectRegex.FindStringSubmatch(content); m != nil {
		return m[1], true
	}
	return "", false
}

// cleanJSON strips everything before the first brace and after the last one,
// along with fence markers and a leading "json" token.
func cleanJSON(s string) string {
	s = strings.ReplaceAll(s, "```", "")
	s = leadingJSONRegex.ReplaceAllString(s, "")
	if start := strings.Index(s, "{"); start >= 0 {
		s = s[start:]
	}
	if end := strings.LastIndex(s, "}"); end >= 0 {
		s = s[:end+1]
	}
	return strings.TrimSpace(s)
}

// repairJSON applies a best-effort fix pass for common LLM output defects:
// unquoted keys, unquoted scalar values and trailing commas.
func repairJSON(s string) string {
	s = bareKeyRegex.ReplaceAllString(s, `$1"$2":`)
	s = bareValueRegex.ReplaceAllStringFunc(s, func(match string) string {
		sub := bareValueRegex.FindStringSubmatch(match)
		value := strings.TrimSpace(sub[1])
		if value == "true" || value == "false" || value == "null" {
			return match
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return match
		}
		return `: "` + value + `"` + sub[2]
	})
	s = trailingCommaRegex.ReplaceAllString(s, `$1`)
	return s
}

func validateFields(parsed map[string]interface{}) error {
	if _, ok := parsed["problem"].(string); !ok {
		return &ParseError{Message: "missing or invalid field: problem"}
	}
	if _, ok := parsed["audience"].(string); !ok {
		return &ParseError{Message: "missing or invalid field: audience"}
	}
	if _, ok := parsed["potential"].(string); !ok {
		return &ParseError{Message: "missing or invalid field: potential"}
	}
	if _, ok := parsed["recommendation"].(string); !ok {
		return &ParseError{Message: "missing or invalid field: recommendation"}
	}
	switch parsed["score"].(type) {
	case float64, string:
	default:
		return &ParseError{Message: "missing or invalid field: score"}
	}
	if _, ok := parsed["competitors"]; !ok {
		return &ParseError{Message: "missing field: competitors"}
	}
	return nil
}

func stringField(parsed map[string]interface{}, key string) string {
	if s, ok := parsed[key].(string); ok {
		return s
	}
	return ""
}

func competitorList(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	competitors := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			competitors = append(competitors, strings.TrimSpace(s))
		}
	}
	return competitors
}

func clampScore(v interface{}) int {
	var score float64
	switch value := v.(type) {
	case float64:
		score = value
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		score = parsed
	default:
		return 0
	}
	return int(math.Min(100, math.Max(0, math.Round(score))))
}

// normalizeRecommendation maps synonyms onto the closed set; anything
// unrecognized defaults to the most conservative value. Punctuation around
// the word is ignored so "GO!" still counts as a pursue.
func normalizeRecommendation(rec string) models.Recommendation {
	normalized := strings.ToLower(strings.TrimSpace(rec))
	normalized = strings.Trim(normalized, `!?.,:;'"`)
	switch normalized {
	case "pursue", "go", "proceed":
		return models.RecommendationPursue
	case "maybe", "consider", "potentially":
		return models.RecommendationMaybe
	default:
		return models.RecommendationShelve
	}
}
