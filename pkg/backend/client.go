// Package backend is the HTTP client for the remote AI backend. The backend
// is opaque: this package only shapes requests, decodes responses and
// normalizes errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sahayak",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI backend requests",
	}, []string{"endpoint"})

	requestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sahayak",
		Subsystem: "backend",
		Name:      "request_failures_total",
		Help:      "Number of failed AI backend requests",
	}, []string{"endpoint"})
)

// TokenStore supplies the bearer token attached to backend requests and
// clears it when the backend rejects it.
type TokenStore interface {
	Token(ctx context.Context) string
	Clear(ctx context.Context)
}

// Client talks to the remote AI backend.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenStore
	logger         zerolog.Logger
	onUnauthorized func()
}

// Option customises the client.
type Option func(*Client)

// WithUnauthorizedHook registers a callback fired after a 401 clears the
// stored token; the session gate uses it to flip to unauthenticated.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) {
		c.onUnauthorized = hook
	}
}

// New builds a backend client. The timeout is the single upper bound on
// request duration; AI responses are slow, so it is long.
func New(baseURL string, timeout time.Duration, tokens TokenStore, logger zerolog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger.With().Str("component", "backend_client").Logger(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// GenerateContent requests teaching content for a topic.
func (c *Client) GenerateContent(ctx context.Context, req ContentRequest) (string, error) {
	var resp contentResponse
	if err := c.postJSON(ctx, "/content/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// AskQuestion requests an answer to a student question.
func (c *Client) AskQuestion(ctx context.Context, req KnowledgeRequest) (string, error) {
	var resp knowledgeResponse
	if err := c.postJSON(ctx, "/knowledge/ask", req, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// GenerateLesson requests a lesson plan.
func (c *Client) GenerateLesson(ctx context.Context, req LessonRequest) (string, error) {
	var resp lessonResponse
	if err := c.postJSON(ctx, "/lessons/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.LessonPlan, nil
}

// GenerateWorksheets requests per-grade worksheets from a textbook image.
func (c *Client) GenerateWorksheets(ctx context.Context, req WorksheetRequest) (map[string]string, error) {
	var resp worksheetResponse
	if err := c.postJSON(ctx, "/worksheets/generate-with-vision", req, &resp); err != nil {
		return nil, err
	}
	return resp.Worksheets, nil
}

// GenerateImage requests a visual aid for the prompt and returns an absolute
// image URL; the backend answers with a path relative to its base.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	endpoint := "/visuals/generate-image"
	target := fmt.Sprintf("%s%s?prompt=%s", c.baseURL, endpoint, url.QueryEscape(prompt))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}

	var resp imageResponse
	if err := c.do(request, endpoint, &resp); err != nil {
		return "", err
	}

	return c.resolveURL(resp.ImageURL), nil
}

// GenerateReadingText requests a practice passage for the assessment module.
func (c *Client) GenerateReadingText(ctx context.Context, req ReadingTextRequest) (string, error) {
	var resp readingTextResponse
	if err := c.postJSON(ctx, "/assessment/generate-text", req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// AnalyzeReading submits a reading recording for scoring.
func (c *Client) AnalyzeReading(ctx context.Context, req AnalyzeRequest) (AssessmentReport, error) {
	endpoint := "/assessment/analyze"

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	name := req.AudioName
	if name == "" {
		name = "recording.webm"
	}
	part, err := writer.CreateFormFile("audio", name)
	if err != nil {
		return AssessmentReport{}, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, req.Audio); err != nil {
		return AssessmentReport{}, fmt.Errorf("copy audio into form: %w", err)
	}

	fields := map[string]string{
		"original_text": req.OriginalText,
		"language":      req.Language,
		"grade_level":   req.GradeLevel,
		"word_limit":    strconv.Itoa(req.WordLimit),
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return AssessmentReport{}, fmt.Errorf("write form field %q: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return AssessmentReport{}, fmt.Errorf("finalize multipart form: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &body)
	if err != nil {
		return AssessmentReport{}, fmt.Errorf("build analyze request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	var report AssessmentReport
	if err := c.do(request, endpoint, &report); err != nil {
		return AssessmentReport{}, err
	}

	return report, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	return c.do(request, endpoint, out)
}

func (c *Client) do(request *http.Request, endpoint string, out any) error {
	if c.tokens != nil {
		if token := c.tokens.Token(request.Context()); token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	response, err := c.http.Do(request)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		requestFailures.WithLabelValues(endpoint).Inc()
		return fmt.Errorf("backend request %s: %w", endpoint, err)
	}
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		requestFailures.WithLabelValues(endpoint).Inc()
		return fmt.Errorf("read backend response: %w", err)
	}

	if response.StatusCode == http.StatusUnauthorized {
		requestFailures.WithLabelValues(endpoint).Inc()
		if c.tokens != nil {
			c.tokens.Clear(request.Context())
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		requestFailures.WithLabelValues(endpoint).Inc()
		message := parseErrorBody(response.StatusCode, body)
		c.logger.Warn().Int("status", response.StatusCode).Str("endpoint", endpoint).Msg("backend request rejected")
		return &APIError{Status: response.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}

	return nil
}

func (c *Client) resolveURL(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return raw
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return raw
	}
	return base.ResolveReference(parsed).String()
}
