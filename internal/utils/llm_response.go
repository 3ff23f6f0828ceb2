package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeLLMJSON unmarshals an LLM text reply into v. Models sometimes wrap
// the JSON object in prose or markdown fences, so on a direct unmarshal
// failure it retries with the outermost brace-delimited slice.
func DecodeLLMJSON(text string, v interface{}) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return fmt.Errorf("no JSON object found in LLM response")
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return nil
}
