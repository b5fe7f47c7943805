package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"measure-reading-backend/config"
)

const imageMimeType = "image/jpeg"

var ErrNoCandidates = errors.New("reading service returned no candidates")

// GeminiExtractor is an Extractor backed by the Gemini generateContent API.
type GeminiExtractor struct {
	models  *genai.Models
	model   string
	timeout time.Duration
}

// NewGeminiExtractor creates a Gemini API client authenticated with the
// configured API key. A non-empty Endpoint replaces the default base URL.
func NewGeminiExtractor(ctx context.Context, cfg config.ExtractionConfig) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiExtractor{
		models:  client.Models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Extract implements Extractor.
func (g *GeminiExtractor) Extract(ctx context.Context, image, prompt string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, imageMimeType),
		}, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generateContent on %s: %w", g.model, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoCandidates
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
