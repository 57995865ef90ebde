package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayudapp/ayudapp-api/pkg/config"
)

// ExtractedCourse is one course the analyzer found in the document.
type ExtractedCourse struct {
	Initial  string `json:"initial"`
	Name     string `json:"name"`
	Semester string `json:"semester"`
	Year     int    `json:"year"`
}

// Verdict is the analyzer's answer for a document/course pair.
type Verdict struct {
	Valid            bool              `json:"valid"`
	ExtractedCourses []ExtractedCourse `json:"extracted_courses"`
}

// HTTPClient talks to the remote document-analysis service. The service
// receives the certificate file plus the claimed course code and answers
// with a verdict and the courses it extracted.
type HTTPClient struct {
	baseURL     string
	maxFileSize int64
	client      *http.Client
	logger      *zap.Logger
}

// NewHTTPClient builds a client from configuration.
func NewHTTPClient(cfg config.AnalyzerConfig, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:     cfg.URL,
		maxFileSize: cfg.MaxFileSizeBytes,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

// Analyze uploads the document and course code and returns the verdict.
func (c *HTTPClient) Analyze(ctx context.Context, filename string, document io.Reader, courseInitial string) (*Verdict, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("analyzer URL not configured")
	}

	if c.maxFileSize > 0 {
		document = io.LimitReader(document, c.maxFileSize)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, document); err != nil {
		return nil, fmt.Errorf("copy document: %w", err)
	}
	if err := writer.WriteField("course", courseInitial); err != nil {
		return nil, fmt.Errorf("write course field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, body)
	if err != nil {
		return nil, fmt.Errorf("build analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call analyzer: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("analyzer returned non-200", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("analyzer responded with status %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("decode analyzer response: %w", err)
	}

	return &verdict, nil
}
