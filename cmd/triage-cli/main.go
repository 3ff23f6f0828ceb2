package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/autou/mail-triage/internal/adapters/extract"
	"github.com/autou/mail-triage/internal/adapters/localmodel"
	"github.com/autou/mail-triage/internal/config"
	"github.com/autou/mail-triage/internal/core"
	"github.com/autou/mail-triage/internal/factory"
	"github.com/autou/mail-triage/internal/logging"
	"github.com/autou/mail-triage/internal/ratelimit"
	"go.uber.org/zap"
)

var (
	// LLM provider flags
	useLLM      = flag.Bool("use-llm", false, "Classify with an external LLM before falling back to local rules")
	provider    = flag.String("provider", "openai", "LLM provider (openai, gemini, bedrock)")
	maxTokens   = flag.Int("max-tokens", 300, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.3, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to LLM")

	// Provider credentials
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-3.5-turbo", "OpenAI model name")
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")
	bedrockRegion   = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID  = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Classifier flags
	threshold  = flag.Float64("threshold", core.DefaultThreshold, "Productivity score threshold")
	localModel = flag.Bool("local-model", true, "Use the local sentiment model")

	// Input flags
	inputFile  = flag.String("file", "", "Input file, .txt or .pdf (use stdin if not specified)")
	jsonOutput = flag.Bool("json", false, "Print the result as JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	content, source, err := readInput(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to read input", zap.Error(err))
	}

	service := buildService(cfg, logger)

	input := &core.EmailInput{
		Content: content,
		Source:  source,
	}

	result, err := service.ClassifyEmail(context.Background(), input)
	if err != nil {
		logger.Fatal("Failed to classify email", zap.Error(err))
	}

	printResult(result, *jsonOutput)
}

// readInput loads the email text from the input file or stdin
func readInput(cfg *config.Config, logger *zap.Logger) (string, string, error) {
	if *inputFile == "" {
		logger.Info("Reading email from stdin")
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), core.SourceTextInput, nil
	}

	logger.Info("Reading email from file", zap.String("file", *inputFile))

	file, err := os.Open(*inputFile)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", "", err
	}

	limitsCfg := cfg.GetLimits()
	extractor := extract.New(limitsCfg.MaxFileSize, limitsCfg.AllowedFileExtensions, logger)

	content, err := extractor.Text(*inputFile, stat.Size(), file)
	if err != nil {
		return "", "", err
	}

	source := core.SourceTxtFile
	if strings.HasSuffix(strings.ToLower(*inputFile), ".pdf") {
		source = core.SourcePDFFile
	}
	return content, source, nil
}

// buildService assembles a one-shot triage service without cache or
// metrics persistence
func buildService(cfg *config.Config, logger *zap.Logger) *core.TriageService {
	classifierCfg := cfg.GetClassifier()
	scorer := core.NewScorer(core.ScorerWeights{
		BusinessRelevance: classifierCfg.BusinessWeight,
		Urgency:           classifierCfg.UrgencyWeight,
		ActionRequest:     classifierCfg.ActionWeight,
		Sentiment:         classifierCfg.SentimentWeight,
	}, classifierCfg.Threshold)

	var sentimentModel core.LocalModel
	if cfg.GetLocalModel().Enabled {
		sentimentModel = localmodel.New(logger)
	}

	var llmClient core.LLMClient
	if cfg.GetLLM().Enabled {
		client, err := factory.NewLLMFactory(cfg, logger).CreateLLMClient()
		if err != nil {
			logger.Fatal("Failed to create LLM client", zap.Error(err))
		}
		llmClient = client
	}

	llmCfg := cfg.GetLLM()
	limiter := ratelimit.New(int(llmCfg.RequestsPerSecond), llmCfg.Burst, logger)

	strategies := []core.Strategy{
		core.NewExternalLLMStrategy(llmClient, limiter, llmCfg.Timeout, logger),
		core.NewRulesStrategy(sentimentModel, cfg.GetLocalModel().Blend, scorer, core.NewResponseGenerator(), logger),
	}

	limitsCfg := cfg.GetLimits()
	limits := core.Limits{
		MinContentLength: limitsCfg.MinContentLength,
		MaxContentLength: limitsCfg.MaxContentLength,
	}

	return core.NewTriageService(
		core.NewFeatureExtractor(),
		strategies,
		core.NewMetricsAggregator(),
		nil,
		false,
		0,
		limits,
		logger,
	)
}

// printResult writes the classification outcome to stdout
func printResult(result *core.ClassificationResult, asJSON bool) {
	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Printf("Failed to marshal result: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Category: %s\n", result.Category)
	fmt.Printf("Confidence: %.4f\n", result.Confidence)
	fmt.Printf("Suggested response: %s\n", result.SuggestedResponse)
	fmt.Printf("Model used: %s\n", result.ModelUsed)
	fmt.Printf("Processing time: %.3fs\n", result.ProcessingTime)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("llm.enabled", *useLLM)
	v.Set("llm.provider", *provider)

	switch *provider {
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	}

	v.Set("classifier.threshold", *threshold)
	v.Set("local_model.enabled", *localModel)

	return config.NewFromViper(v)
}
