package config

import "time"

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxConcurrent int
	MaxBatchSize  int
	Debug         bool
}

// LimitsConfig represents the input validation limits
type LimitsConfig struct {
	MinContentLength      int
	MaxContentLength      int
	MaxFileSize           int64
	AllowedFileExtensions []string
}

// ClassifierConfig represents the rule-based scorer configuration
type ClassifierConfig struct {
	Threshold       float64
	BusinessWeight  float64
	UrgencyWeight   float64
	ActionWeight    float64
	SentimentWeight float64
}

// LLMConfig represents the external LLM configuration
type LLMConfig struct {
	Enabled           bool
	Provider          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// LocalModelConfig represents the local sentiment model configuration
type LocalModelConfig struct {
	Enabled bool
	Blend   bool
}

// SMTPConfig represents the SMTP ingest configuration
type SMTPConfig struct {
	Enabled           bool
	ListenAddress     string
	DownstreamAddress string
	DownstreamPort    int
	CategoryHeader    string
	ConfidenceHeader  string
	ModelHeader       string
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		readTimeout = 30 * time.Second
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		writeTimeout = 60 * time.Second
	}
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
		MaxConcurrent: c.GetInt("server.max_concurrent"),
		MaxBatchSize:  c.GetInt("server.max_batch_size"),
		Debug:         c.GetBool("server.debug"),
	}
}

// GetLimits returns the input validation limits
func (c *Config) GetLimits() LimitsConfig {
	return LimitsConfig{
		MinContentLength:      c.GetInt("limits.min_content_length"),
		MaxContentLength:      c.GetInt("limits.max_content_length"),
		MaxFileSize:           c.GetInt64("limits.max_file_size"),
		AllowedFileExtensions: c.GetStringSlice("limits.allowed_file_extensions"),
	}
}

// GetClassifier returns the rule-based scorer configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Threshold:       c.GetFloat64("classifier.threshold"),
		BusinessWeight:  c.GetFloat64("classifier.weights.business_relevance"),
		UrgencyWeight:   c.GetFloat64("classifier.weights.urgency"),
		ActionWeight:    c.GetFloat64("classifier.weights.action_request"),
		SentimentWeight: c.GetFloat64("classifier.weights.sentiment"),
	}
}

// GetLLM returns the external LLM configuration
func (c *Config) GetLLM() LLMConfig {
	timeout, err := c.GetDuration("llm.timeout")
	if err != nil {
		timeout = 8 * time.Second
	}
	return LLMConfig{
		Enabled:           c.GetBool("llm.enabled"),
		Provider:          c.GetString("llm.provider"),
		Timeout:           timeout,
		RequestsPerSecond: c.GetFloat64("llm.requests_per_second"),
		Burst:             c.GetInt("llm.burst"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetLocalModel returns the local sentiment model configuration
func (c *Config) GetLocalModel() LocalModelConfig {
	return LocalModelConfig{
		Enabled: c.GetBool("local_model.enabled"),
		Blend:   c.GetBool("local_model.blend"),
	}
}

// GetSMTP returns the SMTP ingest configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:           c.GetBool("smtp.enabled"),
		ListenAddress:     c.GetString("smtp.listen_address"),
		DownstreamAddress: c.GetString("smtp.downstream_address"),
		DownstreamPort:    c.GetInt("smtp.downstream_port"),
		CategoryHeader:    c.GetString("smtp.headers.category"),
		ConfidenceHeader:  c.GetString("smtp.headers.confidence"),
		ModelHeader:       c.GetString("smtp.headers.model"),
	}
}
