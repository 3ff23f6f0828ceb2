package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Category is the triage outcome for an email
type Category string

const (
	CategoryProductive   Category = "productive"
	CategoryUnproductive Category = "unproductive"
)

// Models that can produce a classification
const (
	ModelRules       = "rules"
	ModelLocalAI     = "local_ai"
	ModelExternalLLM = "external_llm"
)

// Known input sources
const (
	SourceTextInput = "text_input"
	SourceTxtFile   = "txt_file"
	SourcePDFFile   = "pdf_file"
	SourceSMTP      = "smtp"
)

// EmailInput is a classification request for a single email body
type EmailInput struct {
	Content  string
	Source   string
	Metadata *InputMetadata
}

// InputMetadata carries optional per-request overrides and file provenance
type InputMetadata struct {
	UseLLM         *bool
	PreferredModel string
	Filename       string
	FileSize       int64
}

// LLMDisabled reports whether the request explicitly opted out of the
// external LLM path.
func (in *EmailInput) LLMDisabled() bool {
	if in.Metadata == nil {
		return false
	}
	if in.Metadata.UseLLM != nil && !*in.Metadata.UseLLM {
		return true
	}
	return in.Metadata.PreferredModel == "local"
}

// FeatureVector holds the normalized signals derived from email text.
// The four scalar signals are all in [0,1]; the counters are auxiliary
// and feed response generation and logging only.
type FeatureVector struct {
	BusinessRelevance float64
	Urgency           float64
	ActionRequest     float64
	Sentiment         float64

	WordCount     int
	QuestionCount int
	ExclaimCount  int
	Language      string
}

// ClassificationResult is the immutable outcome of one classification
type ClassificationResult struct {
	Category          Category  `json:"category"`
	Confidence        float64   `json:"confidence"`
	SuggestedResponse string    `json:"suggested_response"`
	ModelUsed         string    `json:"model_used"`
	ProcessingTime    float64   `json:"processing_time"`
	Timestamp         time.Time `json:"timestamp"`
}

// Limits bound the accepted input text
type Limits struct {
	MinContentLength int
	MaxContentLength int
}

// ValidateInput checks an email input against the configured limits.
// It returns an error satisfying errors.Is(err, ErrInvalidInput) when
// the content must be rejected before classification.
func ValidateInput(in *EmailInput, limits Limits) error {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return ErrEmptyContent
	}
	if n := utf8.RuneCountInString(content); n < limits.MinContentLength {
		return ErrContentTooShort
	} else if limits.MaxContentLength > 0 && n > limits.MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}
