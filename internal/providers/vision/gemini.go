package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"visualaudit/internal/domain"
)

// Options controls how the Gemini vision client is configured.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client submits fetched page assets to Gemini in a single multimodal
// generateContent call and parses the JSON audit it returns. One invocation
// per audit; no retry.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

const defaultTimeout = 90 * time.Second

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:     opts.APIKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: client,
	}, nil
}

// Analyze sends every asset as an inline binary part followed by the audit
// instruction, demanding a JSON response. The response text is treated as
// untrusted input and validated before typed values leave this package.
func (c *Client) Analyze(ctx context.Context, assets []domain.FetchedAsset, pageURL string) (*domain.AnalysisResponse, error) {
	parts := make([]geminiPart, 0, len(assets)+1)
	for _, asset := range assets {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: asset.ContentType,
			Data:     asset.Payload,
		}})
	}
	parts = append(parts, geminiPart{Text: buildInstruction(pageURL, len(assets))})

	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.4,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}

	text, err := c.invoke(ctx, payload)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty response text", domain.ErrAnalysisEngine)
	}

	return parseAnalysis(text)
}

func (c *Client) invoke(ctx context.Context, payload geminiRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrAnalysisEngine, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrAnalysisEngine, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisEngine, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%w: status %d: %s", domain.ErrAnalysisEngine, resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", domain.ErrAnalysisEngine, resp.StatusCode)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrAnalysisEngine, err)
	}
	return extractText(out), nil
}

func extractText(resp geminiResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// parseAnalysis validates the engine's text against the audit schema. Both
// images and summary are required; structural deviation is a contract
// violation, never silently defaulted.
func parseAnalysis(text string) (*domain.AnalysisResponse, error) {
	cleaned := extractJSONFragment(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: no JSON payload in response", domain.ErrAnalysisContract)
	}

	var parsed domain.AnalysisResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisContract, err)
	}
	if len(parsed.Images) == 0 {
		return nil, fmt.Errorf("%w: missing images field", domain.ErrAnalysisContract)
	}
	if parsed.Summary == nil {
		return nil, fmt.Errorf("%w: missing summary field", domain.ErrAnalysisContract)
	}
	return &parsed, nil
}

// extractJSONFragment trims markdown fences and leading/trailing prose that
// models sometimes wrap around JSON output.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func buildInstruction(pageURL string, imageCount int) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are a senior brand and visual design auditor. The %d attached images were collected from the product page %s, in the order shown. ", imageCount, pageURL)
	sb.WriteString("Audit each image and the page's overall visual identity. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"images":[{"id":string,"dominantColors":string[],"composition":string,"lighting":string,"mood":string,"aesthetic":string,"qualityScore":number,"description":string,"howToImprove":string}],"summary":{"brandConsistency":number,"creativeStyle":string,"typographyNotes":string,"layoutAnalysis":string,"marketingActionables":string[],"overallAesthetic":string,"visualRoadmap":string[],"competitors":[{"name":string,"strengths":string[],"visualTakeaway":string,"marketPosition":string}]}}`)
	fmt.Fprintf(sb, ". Return exactly %d entries in images, in the same order the images were provided. qualityScore and brandConsistency are percentages from 0 to 100. Do not include any text outside the JSON.", imageCount)
	return sb.String()
}

