package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"imagestudio/internal/config"
	"imagestudio/internal/utils"

	"github.com/sirupsen/logrus"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-1.5-flash"
	maxErrorBodyBytes    = 64 * 1024
)

// Request payload pieces ----------------------------------------------------
type (
	geminiInlineData struct {
		MimeType string `json:"mimeType,omitempty"`
		Data     string `json:"data,omitempty"`
	}
	geminiPart struct {
		Text       string            `json:"text,omitempty"`
		InlineData *geminiInlineData `json:"inlineData,omitempty"`
	}
	geminiContent struct {
		Role  string       `json:"role,omitempty"`
		Parts []geminiPart `json:"parts"`
	}
	geminiSafetySetting struct {
		Category  string `json:"category"`
		Threshold string `json:"threshold"`
	}
	geminiGenerationConfig struct {
		Temperature      float64 `json:"temperature"`
		TopP             float64 `json:"topP"`
		TopK             int     `json:"topK"`
		MaxOutputTokens  int     `json:"maxOutputTokens"`
		ResponseMimeType string  `json:"responseMimeType,omitempty"`
	}
	geminiRequest struct {
		Contents         []geminiContent        `json:"contents"`
		SafetySettings   []geminiSafetySetting  `json:"safetySettings,omitempty"`
		GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	}
)

// Response payload pieces ---------------------------------------------------
type (
	geminiCandidate struct {
		FinishReason string        `json:"finishReason,omitempty"`
		Content      geminiContent `json:"content"`
	}
	geminiResponse struct {
		Candidates     []geminiCandidate `json:"candidates"`
		PromptFeedback *struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		UsageMetadata *struct {
			TotalTokenCount int `json:"totalTokenCount"`
		} `json:"usageMetadata,omitempty"`
	}
	geminiErrorResponse struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	// geminiImagePayload is the JSON object the model is asked to answer with.
	geminiImagePayload struct {
		ImageData  string `json:"imageData"`
		MimeType   string `json:"mimeType,omitempty"`
		TokenCount int    `json:"tokenCount,omitempty"`
	}
)

var defaultSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

var defaultGenerationConfig = geminiGenerationConfig{
	Temperature:      0.7,
	TopP:             0.8,
	TopK:             40,
	MaxOutputTokens:  8192,
	ResponseMimeType: "application/json",
}

// GeminiClient calls the generateContent endpoint. It holds no credentials.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewGeminiClient(cfg config.Config) *GeminiClient {
	timeout := cfg.GeminiTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	baseURL := strings.TrimSpace(cfg.GeminiAPIURL)
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	model := strings.TrimSpace(cfg.GeminiModel)
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
	}
}

func (g *GeminiClient) Model() string {
	return g.model
}

// GenerateImage sends one generateContent request authenticated with apiKey.
func (g *GeminiClient) GenerateImage(ctx context.Context, apiKey string, req ImageRequest) (*ImageResponse, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("prompt is empty")
	}

	logger := requestLogger(ctx, g.model, req)
	logger.WithField("prompt_preview", logSnippet(req.Prompt)).Info("gemini_generate_image_start")

	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: buildGenerationPrompt(req)}}},
		},
		SafetySettings:   defaultSafetySettings,
		GenerationConfig: defaultGenerationConfig,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini marshal request: %w", err)
	}

	endpoint := resolveGeminiEndpoint(g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini create request: %w", err)
	}
	// header keeps the key out of URLs and access logs
	httpReq.Header.Set("x-goog-api-key", apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		logger.WithError(err).Error("gemini_generate_image_request_failed")
		return nil, fmt.Errorf("gemini send request: %w", err)
	}
	defer resp.Body.Close()

	logger.WithField("status", resp.StatusCode).Info("gemini_generate_image_response_status")
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseGeminiError(logger, resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini read response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logger.WithError(err).WithField("body_preview", logSnippet(string(raw))).Warn("gemini_generate_image_unmarshal_failed")
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	result, err := extractImage(parsed)
	if err != nil {
		logger.WithError(err).Warn("gemini_generate_image_no_image")
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"image_bytes": len(result.ImageData),
		"mime_type":   result.MimeType,
		"token_count": result.TokenCount,
	}).Info("gemini_generate_image_success")
	return result, nil
}

func parseGeminiError(logger *logrus.Entry, resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if readErr != nil {
		logger.WithError(readErr).Error("gemini_generate_image_error_read_failed")
		return &APIError{StatusCode: resp.StatusCode}
	}
	logger.WithFields(logrus.Fields{
		"status":       resp.StatusCode,
		"body_preview": logSnippet(string(respBody)),
	}).Warn("gemini_generate_image_response_error")

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var decoded geminiErrorResponse
	if err := json.Unmarshal(respBody, &decoded); err == nil {
		apiErr.Status = decoded.Error.Status
		apiErr.Message = decoded.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(respBody))
	}
	return apiErr
}

// extractImage prefers inline image parts and falls back to the JSON text
// payload requested in the prompt.
func extractImage(parsed geminiResponse) (*ImageResponse, error) {
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini blocked the prompt for safety reasons: %s", parsed.PromptFeedback.BlockReason)
	}

	tokenCount := 0
	if parsed.UsageMetadata != nil {
		tokenCount = parsed.UsageMetadata.TotalTokenCount
	}

	var text strings.Builder
	safetyStop := false
	for _, candidate := range parsed.Candidates {
		if candidate.FinishReason == "SAFETY" {
			safetyStop = true
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && strings.TrimSpace(part.InlineData.Data) != "" {
				mimeType := part.InlineData.MimeType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return &ImageResponse{
					ImageData:  strings.TrimSpace(part.InlineData.Data),
					MimeType:   mimeType,
					TokenCount: tokenCount,
				}, nil
			}
			text.WriteString(part.Text)
		}
	}

	body := strings.TrimSpace(text.String())
	if body == "" {
		if safetyStop {
			return nil, errors.New("gemini stopped generation for safety reasons")
		}
		return nil, ErrNoImageData
	}

	var payload geminiImagePayload
	if err := json.Unmarshal([]byte(stripCodeFence(body)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	mimeType, data := utils.SplitDataURL(strings.TrimSpace(payload.ImageData))
	if strings.TrimSpace(data) == "" {
		return nil, ErrNoImageData
	}
	if mimeType == "" {
		mimeType = payload.MimeType
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	if payload.TokenCount > 0 {
		tokenCount = payload.TokenCount
	}
	return &ImageResponse{
		ImageData:  strings.TrimSpace(data),
		MimeType:   mimeType,
		TokenCount: tokenCount,
		Text:       body,
	}, nil
}

func buildGenerationPrompt(req ImageRequest) string {
	var b strings.Builder
	b.WriteString("Generate an image with the following specifications:\n\n")
	fmt.Fprintf(&b, "**Prompt**: %s\n", req.Prompt)
	fmt.Fprintf(&b, "**Aspect Ratio**: %s\n", req.AspectRatio)
	fmt.Fprintf(&b, "**Width**: %dpx\n", req.Width)
	fmt.Fprintf(&b, "**Height**: %dpx\n", req.Height)
	fmt.Fprintf(&b, "**Quality**: %s\n", req.Quality)
	fmt.Fprintf(&b, "**Steps**: %d\n", req.Steps)
	fmt.Fprintf(&b, "**Guidance Scale**: %g\n", req.GuidanceScale)
	if req.Seed != nil {
		fmt.Fprintf(&b, "**Seed**: %d\n", *req.Seed)
	}
	if strings.TrimSpace(req.NegativePrompt) != "" {
		fmt.Fprintf(&b, "**Negative Prompt**: %s\n", req.NegativePrompt)
	}
	b.WriteString("\nPlease respond with a JSON object containing the generated image data.\n")
	b.WriteString("Include base64 image data, metadata, and generation information.\n")
	return b.String()
}

func stripCodeFence(value string) string {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// resolveGeminiEndpoint builds the request URL from a base URL or a template
// containing "%s" for the model.
func resolveGeminiEndpoint(base, model string) string {
	base = strings.TrimSpace(base)
	if strings.Contains(base, "%s") {
		return fmt.Sprintf(base, model)
	}
	base = strings.TrimRight(base, "/")
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, model)
}

var _ ImageGenerator = (*GeminiClient)(nil)
