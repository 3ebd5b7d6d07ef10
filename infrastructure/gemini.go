package infrastructure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"resume-ranker/config"
	"resume-ranker/domain"
)

// GeminiClient calls the Gemini generateContent REST endpoint. One call per
// request, no retries.
type GeminiClient struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewGeminiClient(cfg config.LLMConfig) *GeminiClient {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		apiKey:      cfg.APIKey,
		endpoint:    endpoint,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and page images and returns the reply text.
func (g *GeminiClient) Generate(ctx context.Context, req domain.LLMRequest) (string, error) {
	if g.apiKey == "" {
		return "", &domain.ConfigurationError{Setting: "GEMINI_API_KEY"}
	}

	parts := make([]geminiPart, 0, len(req.Images)+1)
	parts = append(parts, geminiPart{Text: req.Prompt})
	for _, img := range req.Images {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: img.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}

	jsonData, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      g.temperature,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	text, err := g.do(httpReq)
	LLMRequestDuration.WithLabelValues(g.model).Observe(time.Since(start).Seconds())
	if err != nil {
		LLMRequests.WithLabelValues("error").Inc()
		return "", err
	}
	LLMRequests.WithLabelValues("ok").Inc()
	return text, nil
}

func (g *GeminiClient) do(req *http.Request) (string, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &domain.TransportError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.TransportError{StatusCode: resp.StatusCode, Timeout: isTimeout(err), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResponse geminiResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", &domain.TransportError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("failed to parse API response: %w", err),
		}
	}
	if len(apiResponse.Candidates) == 0 {
		return "", &domain.TransportError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        errors.New("no candidates in response"),
		}
	}

	var text strings.Builder
	for _, part := range apiResponse.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return "", &domain.TransportError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        errors.New("no text in candidate"),
		}
	}
	return text.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
