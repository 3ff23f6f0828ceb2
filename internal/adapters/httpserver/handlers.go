package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/autou/mail-triage/internal/adapters/extract"
	"github.com/autou/mail-triage/internal/core"
)

// Handlers holds the API handler set and its collaborators
type Handlers struct {
	service      *core.TriageService
	extractor    *extract.Extractor
	localModel   core.LocalModel
	appName      string
	version      string
	maxBatchSize int
	sem          chan struct{}
	startTime    time.Time
	logger       *zap.Logger
}

// NewHandlers creates the handler set. maxConcurrent bounds in-flight
// classifications across batch items.
func NewHandlers(
	service *core.TriageService,
	extractor *extract.Extractor,
	localModel core.LocalModel,
	appName string,
	version string,
	maxBatchSize int,
	maxConcurrent int,
	logger *zap.Logger,
) *Handlers {
	if maxBatchSize <= 0 {
		maxBatchSize = 50
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Handlers{
		service:      service,
		extractor:    extractor,
		localModel:   localModel,
		appName:      appName,
		version:      version,
		maxBatchSize: maxBatchSize,
		sem:          make(chan struct{}, maxConcurrent),
		startTime:    time.Now(),
		logger:       logger,
	}
}

type metadataRequest struct {
	UseLLM         *bool  `json:"use_openai"`
	PreferredModel string `json:"preferred_model"`
}

type classifyRequest struct {
	Content  string           `json:"content"`
	Source   string           `json:"source"`
	Metadata *metadataRequest `json:"metadata"`
}

func (r *classifyRequest) toInput() *core.EmailInput {
	source := r.Source
	if source == "" {
		source = core.SourceTextInput
	}

	input := &core.EmailInput{
		Content: r.Content,
		Source:  source,
	}
	if r.Metadata != nil {
		input.Metadata = &core.InputMetadata{
			UseLLM:         r.Metadata.UseLLM,
			PreferredModel: r.Metadata.PreferredModel,
		}
	}
	return input
}

// Classify handles POST /classify
func (h *Handlers) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.service.ClassifyEmail(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClassifyFile handles POST /classify/file: a multipart upload with a
// "file" part and an optional "metadata" part holding a JSON string.
func (h *Handlers) ClassifyFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file part is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer file.Close()

	content, err := h.extractor.Text(fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		h.writeError(c, err)
		return
	}

	input := &core.EmailInput{
		Content: content,
		Source:  sourceForFilename(fileHeader.Filename),
		Metadata: &core.InputMetadata{
			Filename: fileHeader.Filename,
			FileSize: fileHeader.Size,
		},
	}

	if metaStr := c.PostForm("metadata"); metaStr != "" {
		var meta metadataRequest
		if err := json.Unmarshal([]byte(metaStr), &meta); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metadata JSON"})
			return
		}
		input.Metadata.UseLLM = meta.UseLLM
		input.Metadata.PreferredModel = meta.PreferredModel
	}

	result, err := h.service.ClassifyEmail(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

const uploadPreviewLength = 200

type uploadResponse struct {
	Filename          string `json:"filename"`
	FileSize          int64  `json:"file_size"`
	ContentPreview    string `json:"content_preview"`
	ExtractionSuccess bool   `json:"extraction_success"`
	ErrorMessage      string `json:"error_message,omitempty"`
}

// Upload handles POST /upload: validate and extract text from a file
// without classifying it. Type and size violations are request errors;
// a file that passes validation but yields no text reports the failure
// in the response body.
func (h *Handlers) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file part is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer file.Close()

	resp := uploadResponse{
		Filename: fileHeader.Filename,
		FileSize: fileHeader.Size,
	}

	content, err := h.extractor.Text(fileHeader.Filename, fileHeader.Size, file)
	switch {
	case errors.Is(err, core.ErrUnreadableFile):
		resp.ErrorMessage = err.Error()
		c.JSON(http.StatusOK, resp)
		return
	case err != nil:
		h.writeError(c, err)
		return
	}

	if strings.TrimSpace(content) == "" {
		resp.ErrorMessage = "no readable content found in file"
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.ExtractionSuccess = true
	resp.ContentPreview = previewText(content, uploadPreviewLength)
	c.JSON(http.StatusOK, resp)
}

func previewText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

type batchRequest struct {
	Emails []classifyRequest `json:"emails"`
}

type batchItemResult struct {
	Index  int                        `json:"index"`
	Result *core.ClassificationResult `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

// ClassifyBatch handles POST /classify/batch. Items are classified
// concurrently under the shared semaphore; one bad item does not fail
// the batch.
func (h *Handlers) ClassifyBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if len(req.Emails) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "emails list is empty"})
		return
	}
	if len(req.Emails) > h.maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch size exceeds limit"})
		return
	}

	results := make([]batchItemResult, len(req.Emails))
	var wg sync.WaitGroup

	for i := range req.Emails {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			h.sem <- struct{}{}
			defer func() { <-h.sem }()

			result, err := h.service.ClassifyEmail(c.Request.Context(), req.Emails[i].toInput())
			if err != nil {
				results[i] = batchItemResult{Index: i, Error: err.Error()}
				return
			}
			results[i] = batchItemResult{Index: i, Result: result}
		}(i)
	}
	wg.Wait()

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"version":         h.version,
		"ai_model_loaded": h.localModel != nil && h.localModel.Available(),
		"uptime":          time.Since(h.startTime).Seconds(),
	})
}

// Metrics handles GET /metrics
func (h *Handlers) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Metrics())
}

// ResetMetrics handles POST /metrics/reset
func (h *Handlers) ResetMetrics(c *gin.Context) {
	h.service.ResetMetrics()
	c.JSON(http.StatusOK, gin.H{"status": "metrics reset"})
}

// Status handles GET /status
func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":             h.appName,
		"version":         h.version,
		"ai_model_loaded": h.localModel != nil && h.localModel.Available(),
		"uptime":          time.Since(h.startTime).Seconds(),
		"metrics":         h.service.Metrics(),
	})
}

// writeError maps service errors to HTTP status codes. Validation
// failures are the caller's fault; everything else is reported as an
// opaque internal error.
func (h *Handlers) writeError(c *gin.Context, err error) {
	if errors.Is(err, core.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Error("Classification failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func sourceForFilename(filename string) string {
	if strings.ToLower(filepath.Ext(filename)) == ".pdf" {
		return core.SourcePDFFile
	}
	return core.SourceTxtFile
}
