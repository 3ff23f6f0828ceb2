package core

import (
	"fmt"
	"strings"
)

const triagePromptFormat = `You are an email triage assistant for a financial services company.
Classify the following email as "productive" (requires action or a reply:
support requests, case updates, questions about the system) or
"unproductive" (no action needed: greetings, thanks, social messages).
Respond with a JSON object containing:
- category: "productive" or "unproductive"
- confidence: number between 0 and 1 (how confident you are)
- suggested_response: a short, polite reply in the language of the email

Email:
%s

Respond only with the JSON object and nothing else.`

// BuildTriagePrompt formats the classification prompt for an email body
func BuildTriagePrompt(content string) string {
	return fmt.Sprintf(triagePromptFormat, content)
}

// LLMResponse is the structured reply expected from a provider
type LLMResponse struct {
	Category          string  `json:"category"`
	Confidence        float64 `json:"confidence"`
	SuggestedResponse string  `json:"suggested_response"`
}

// ToResult validates and normalizes the provider reply. Providers
// answering in the email's language are tolerated for the category
// field.
func (r *LLMResponse) ToResult() (*ClassificationResult, error) {
	var category Category
	switch strings.ToLower(strings.TrimSpace(r.Category)) {
	case "productive", "produtivo", "produtiva":
		category = CategoryProductive
	case "unproductive", "improdutivo", "improdutiva":
		category = CategoryUnproductive
	default:
		return nil, fmt.Errorf("unrecognized category in LLM response: %q", r.Category)
	}

	return &ClassificationResult{
		Category:          category,
		Confidence:        clip01(r.Confidence),
		SuggestedResponse: strings.TrimSpace(r.SuggestedResponse),
		ModelUsed:         ModelExternalLLM,
	}, nil
}
