package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/autou/mail-triage/internal/adapters/extract"
	"github.com/autou/mail-triage/internal/core"
)

const urgentBusinessMail = "Preciso urgentemente dos relatórios de vendas para a reunião de amanhã. O sistema não está funcionando."

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	scorer := core.NewScorer(core.DefaultWeights(), core.DefaultThreshold)
	strategies := []core.Strategy{
		core.NewRulesStrategy(nil, false, scorer, core.NewResponseGenerator(), logger),
	}
	service := core.NewTriageService(
		core.NewFeatureExtractor(),
		strategies,
		core.NewMetricsAggregator(),
		nil,
		false,
		0,
		core.Limits{MinContentLength: 10, MaxContentLength: 50000},
		logger,
	)

	extractor := extract.New(1024, []string{".txt", ".pdf"}, logger)
	handlers := NewHandlers(service, extractor, nil, "mail-triage", "test", 3, 2, logger)

	router := gin.New()
	router.POST("/classify", handlers.Classify)
	router.POST("/classify/file", handlers.ClassifyFile)
	router.POST("/classify/batch", handlers.ClassifyBatch)
	router.POST("/upload", handlers.Upload)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", handlers.Metrics)
	router.POST("/metrics/reset", handlers.ResetMetrics)
	router.GET("/status", handlers.Status)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClassifyEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/classify", map[string]interface{}{"content": urgentBusinessMail})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result core.ClassificationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.Category != core.CategoryProductive {
		t.Errorf("category = %v, want productive", result.Category)
	}
	if result.SuggestedResponse == "" {
		t.Error("expected a suggested response")
	}
}

func TestClassifyEndpointRejectsShortContent(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/classify", map[string]interface{}{"content": "oi"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestClassifyEndpointRejectsMalformedJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestClassifyFileEndpoint(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "email.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(urgentBusinessMail))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/classify/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result core.ClassificationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.Category != core.CategoryProductive {
		t.Errorf("category = %v, want productive", result.Category)
	}
}

func TestClassifyFileEndpointRejectsUnsupportedType(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "email.docx")
	fw.Write([]byte("irrelevant content here"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/classify/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestClassifyFileEndpointRequiresFile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/classify/file", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func postFile(t *testing.T, router *gin.Engine, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := postFile(t, router, "/upload", "email.txt", []byte(urgentBusinessMail))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.ExtractionSuccess {
		t.Fatalf("extraction_success = false, error = %q", resp.ErrorMessage)
	}
	if resp.Filename != "email.txt" || resp.FileSize != int64(len(urgentBusinessMail)) {
		t.Errorf("unexpected file info: %+v", resp)
	}
	if !strings.HasPrefix(urgentBusinessMail, resp.ContentPreview) {
		t.Errorf("preview %q is not a prefix of the content", resp.ContentPreview)
	}
}

func TestUploadEndpointTruncatesPreview(t *testing.T) {
	router := newTestRouter(t)

	content := strings.Repeat("relatório ", 60)
	w := postFile(t, router, "/upload", "long.txt", []byte(content))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	want := string([]rune(content)[:uploadPreviewLength]) + "..."
	if resp.ContentPreview != want {
		t.Errorf("preview = %q, want %q", resp.ContentPreview, want)
	}
}

func TestUploadEndpointRejectsUnsupportedType(t *testing.T) {
	router := newTestRouter(t)

	w := postFile(t, router, "/upload", "email.docx", []byte("irrelevant content"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUploadEndpointReportsExtractionFailure(t *testing.T) {
	router := newTestRouter(t)

	// A valid extension with an unreadable body is a 200 with the
	// failure reported in the response, not a request error
	w := postFile(t, router, "/upload", "broken.pdf", []byte("this is not a pdf"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ExtractionSuccess {
		t.Error("extraction_success = true for a broken pdf")
	}
	if resp.ErrorMessage == "" {
		t.Error("expected an error message")
	}
}

func TestClassifyBatchEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/classify/batch", map[string]interface{}{
		"emails": []map[string]string{
			{"content": urgentBusinessMail},
			{"content": "Oi pessoal! A festa de ontem foi incrível! Obrigado por tudo, abraços para todos!"},
			{"content": "x"}, // too short, must fail alone
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Results []struct {
			Index  int                        `json:"index"`
			Result *core.ClassificationResult `json:"result"`
			Error  string                     `json:"error"`
		} `json:"results"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Total != 3 {
		t.Fatalf("total = %d, want 3", resp.Total)
	}
	if resp.Results[0].Result == nil || resp.Results[0].Result.Category != core.CategoryProductive {
		t.Errorf("item 0: want productive result, got %+v", resp.Results[0])
	}
	if resp.Results[1].Result == nil || resp.Results[1].Result.Category != core.CategoryUnproductive {
		t.Errorf("item 1: want unproductive result, got %+v", resp.Results[1])
	}
	if resp.Results[2].Error == "" || resp.Results[2].Result != nil {
		t.Errorf("item 2: want isolated error, got %+v", resp.Results[2])
	}
}

func TestClassifyBatchEndpointLimits(t *testing.T) {
	router := newTestRouter(t)

	// Batch size capped at 3 in the test handler set
	emails := make([]map[string]string, 4)
	for i := range emails {
		emails[i] = map[string]string{"content": urgentBusinessMail}
	}
	w := postJSON(t, router, "/classify/batch", map[string]interface{}{"emails": emails})
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversized batch: status = %d, want 400", w.Code)
	}

	w = postJSON(t, router, "/classify/batch", map[string]interface{}{"emails": []map[string]string{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty batch: status = %d, want 400", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Status        string  `json:"status"`
		Version       string  `json:"version"`
		AIModelLoaded bool    `json:"ai_model_loaded"`
		Uptime        float64 `json:"uptime"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("unexpected health payload: %+v", resp)
	}
	if resp.AIModelLoaded {
		t.Error("ai_model_loaded should be false without a local model")
	}
}

func TestMetricsEndpoints(t *testing.T) {
	router := newTestRouter(t)

	postJSON(t, router, "/classify", map[string]interface{}{"content": urgentBusinessMail})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}

	var snap core.MetricsSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal metrics: %v", err)
	}
	if snap.TotalProcessed != 1 {
		t.Errorf("total = %d, want 1", snap.TotalProcessed)
	}

	req = httptest.NewRequest(http.MethodPost, "/metrics/reset", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	json.Unmarshal(w.Body.Bytes(), &snap)
	if snap.TotalProcessed != 0 {
		t.Errorf("total after reset = %d, want 0", snap.TotalProcessed)
	}
}

func TestStatusEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	for _, key := range []string{"app", "version", "ai_model_loaded", "uptime", "metrics"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("status payload missing %q", key)
		}
	}
}

func TestMetadataOptOutPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	llm := &stubLLM{}
	scorer := core.NewScorer(core.DefaultWeights(), core.DefaultThreshold)
	strategies := []core.Strategy{
		core.NewExternalLLMStrategy(llm, nil, time.Second, logger),
		core.NewRulesStrategy(nil, false, scorer, core.NewResponseGenerator(), logger),
	}
	service := core.NewTriageService(
		core.NewFeatureExtractor(), strategies, core.NewMetricsAggregator(),
		nil, false, 0, core.Limits{MinContentLength: 10, MaxContentLength: 50000}, logger,
	)
	handlers := NewHandlers(service, nil, nil, "mail-triage", "test", 3, 2, logger)

	router := gin.New()
	router.POST("/classify", handlers.Classify)

	w := postJSON(t, router, "/classify", map[string]interface{}{
		"content":  urgentBusinessMail,
		"metadata": map[string]interface{}{"use_openai": false},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if llm.calls != 0 {
		t.Errorf("LLM called %d times despite use_openai=false", llm.calls)
	}

	var result core.ClassificationResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.ModelUsed != core.ModelRules {
		t.Errorf("model = %q, want %q", result.ModelUsed, core.ModelRules)
	}
}

type stubLLM struct {
	calls int
}

func (s *stubLLM) ClassifyEmail(_ context.Context, _ *core.EmailInput) (*core.ClassificationResult, error) {
	s.calls++
	return &core.ClassificationResult{Category: core.CategoryProductive, Confidence: 0.9}, nil
}

func (s *stubLLM) ModelName() string { return "stub" }
