package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"imagestudio/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient(config.Config{GeminiAPIURL: srv.URL, GeminiModel: "gemini-test"})
}

func testRequest() ImageRequest {
	seed := int64(42)
	return ImageRequest{
		Prompt:        "photorealistic, a cat, high quality, detailed, masterpiece",
		AspectRatio:   "16:9",
		Quality:       "high",
		Width:         1024,
		Height:        576,
		Steps:         30,
		GuidanceScale: 8,
		Seed:          &seed,
	}
}

func textResponse(text string) string {
	raw, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
		"usageMetadata": map[string]any{"totalTokenCount": 77},
	})
	return string(raw)
}

func TestGenerateImageSendsPerCallKey(t *testing.T) {
	var mu sync.Mutex
	seenKeys := []string{}
	var lastBody geminiRequest
	var lastPath string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seenKeys = append(seenKeys, r.Header.Get("x-goog-api-key"))
		lastPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &lastBody)
		mu.Unlock()
		_, _ = io.WriteString(w, textResponse(`{"imageData":"AAAA","tokenCount":12}`))
	})

	for _, key := range []string{"key-a", "key-b"} {
		if _, err := client.GenerateImage(context.Background(), key, testRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if strings.Join(seenKeys, ",") != "key-a,key-b" {
		t.Fatalf("expected per-call keys, got %v", seenKeys)
	}
	if lastPath != "/v1beta/models/gemini-test:generateContent" {
		t.Fatalf("unexpected path %q", lastPath)
	}
	if len(lastBody.SafetySettings) != 4 {
		t.Fatalf("expected 4 safety settings, got %d", len(lastBody.SafetySettings))
	}
	if lastBody.GenerationConfig.ResponseMimeType != "application/json" || lastBody.GenerationConfig.TopK != 40 {
		t.Fatalf("unexpected generation config %+v", lastBody.GenerationConfig)
	}
	text := lastBody.Contents[0].Parts[0].Text
	for _, want := range []string{"**Width**: 1024px", "**Height**: 576px", "**Steps**: 30", "**Seed**: 42"} {
		if !strings.Contains(text, want) {
			t.Errorf("generation prompt missing %q", want)
		}
	}
	if strings.Contains(text, "Negative Prompt") {
		t.Error("negative prompt line should be omitted when empty")
	}
}

func TestGenerateImageParsesPayloads(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		data       string
		mimeType   string
		tokenCount int
		err        error
	}{
		{
			name:       "json text",
			body:       textResponse(`{"imageData":"AAAA","tokenCount":12}`),
			data:       "AAAA",
			mimeType:   "image/png",
			tokenCount: 12,
		},
		{
			name:       "data url in json",
			body:       textResponse(`{"imageData":"data:image/webp;base64,BBBB"}`),
			data:       "BBBB",
			mimeType:   "image/webp",
			tokenCount: 77,
		},
		{
			name:       "fenced json",
			body:       textResponse("```json\n{\"imageData\":\"CCCC\"}\n```"),
			data:       "CCCC",
			mimeType:   "image/png",
			tokenCount: 77,
		},
		{
			name:     "inline image part",
			body:     `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/jpeg","data":"DDDD"}}]}}]}`,
			data:     "DDDD",
			mimeType: "image/jpeg",
		},
		{
			name: "plain text",
			body: textResponse("I cannot draw that"),
			err:  ErrMalformedResponse,
		},
		{
			name: "missing image data",
			body: textResponse(`{"metadata":{}}`),
			err:  ErrNoImageData,
		},
		{
			name: "no candidates",
			body: `{"candidates":[]}`,
			err:  ErrNoImageData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			resp, err := client.GenerateImage(context.Background(), "key", testRequest())
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.ImageData != tt.data || resp.MimeType != tt.mimeType || resp.TokenCount != tt.tokenCount {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}

func TestGenerateImageSafetyErrors(t *testing.T) {
	bodies := []string{
		`{"promptFeedback":{"blockReason":"SAFETY"}}`,
		`{"candidates":[{"finishReason":"SAFETY","content":{"parts":[]}}]}`,
	}
	for _, body := range bodies {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		_, err := client.GenerateImage(context.Background(), "key", testRequest())
		if err == nil || !strings.Contains(err.Error(), "safety") {
			t.Errorf("body %s: expected safety error, got %v", body, err)
		}
	}
}

func TestGenerateImageHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`)
	})

	_, err := client.GenerateImage(context.Background(), "bad", testRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Status != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected provider message in error, got %q", err.Error())
	}
}

func TestGenerateImageRequiresKey(t *testing.T) {
	client := NewGeminiClient(config.Config{})
	if _, err := client.GenerateImage(context.Background(), "  ", testRequest()); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if client.Model() != "gemini-1.5-flash" {
		t.Fatalf("unexpected default model %q", client.Model())
	}
}

func TestResolveGeminiEndpoint(t *testing.T) {
	tests := []struct {
		base     string
		expected string
	}{
		{base: "https://generativelanguage.googleapis.com", expected: "https://generativelanguage.googleapis.com/v1beta/models/m:generateContent"},
		{base: "https://proxy.example/", expected: "https://proxy.example/v1beta/models/m:generateContent"},
		{base: "https://proxy.example/models/%s:run", expected: "https://proxy.example/models/m:run"},
	}
	for _, tt := range tests {
		if got := resolveGeminiEndpoint(tt.base, "m"); got != tt.expected {
			t.Errorf("base %q: expected %q, got %q", tt.base, tt.expected, got)
		}
	}
}
