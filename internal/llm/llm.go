package llm

import (
	"context"
	"errors"
	"fmt"
)

// ImageRequest carries the enhanced prompt and resolved generation parameters.
type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string
	Quality        string
	Width          int
	Height         int
	Steps          int
	GuidanceScale  float64
	Seed           *int64
}

// ImageResponse is a normalised provider result. ImageData is raw base64
// without a data URL prefix.
type ImageResponse struct {
	ImageData  string
	MimeType   string
	TokenCount int
	Text       string
}

// ImageGenerator calls an external image model. The API key is supplied per
// call and never stored on the generator.
type ImageGenerator interface {
	Model() string
	GenerateImage(ctx context.Context, apiKey string, req ImageRequest) (*ImageResponse, error)
}

var (
	// ErrMalformedResponse means the provider answered with text that is not
	// the expected JSON payload.
	ErrMalformedResponse = errors.New("gemini response could not be parsed")
	// ErrNoImageData means the payload parsed but carried no image.
	ErrNoImageData = errors.New("gemini response did not include image data")
	ErrMissingAPIKey = errors.New("api key missing")
)

// APIError is an HTTP-level failure reported by the provider.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini http %d", e.StatusCode)
}
