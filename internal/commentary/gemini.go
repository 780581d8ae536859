// internal/commentary/gemini.go
package commentary

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = float32(0.9)

	systemInstruction = "You are a witty, energetic game commentator for the Indian card game Raja Mantri Chor Sipahi."
)

// generateFunc performs one model call and returns the raw text.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// Gemini narrates rounds with the Gemini API.
type Gemini struct {
	apiKey string
	model  string
	logger *logrus.Logger

	once     sync.Once
	initErr  error
	generate generateFunc
}

// NewGemini returns a narrator for apiKey. An empty key is allowed and makes
// every call answer MissingKeyLine without touching the network.
func NewGemini(apiKey, model string, logger *logrus.Logger) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{apiKey: strings.TrimSpace(apiKey), model: model, logger: logger}
}

// Comment implements Commentator.
func (g *Gemini) Comment(ctx context.Context, req Request) string {
	if g.apiKey == "" {
		return MissingKeyLine
	}
	g.once.Do(func() {
		if g.generate == nil {
			g.generate, g.initErr = g.dial(ctx)
		}
	})
	if g.initErr != nil {
		g.logger.Warnf("Gemini client unavailable: %v", g.initErr)
		return ErrorLine
	}

	text, err := g.generate(ctx, Prompt(req))
	if err != nil {
		g.logger.Warnf("Gemini commentary for %s win failed: %v", req.Winner, err)
		return ErrorLine
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyLine
	}
	return text
}

func (g *Gemini) dial(ctx context.Context) (generateFunc, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(DefaultTemperature),
	}
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}, nil
}
