package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/questionportal/faq-service/internal/config"
)

const (
	geminiProvider   = "gemini"
	emptyAnswerText  = "No response from Gemini."
	answerPromptHead = "Answer the following question clearly and concisely for a knowledge base.\n\nQuestion: "
)

// GeminiAnswerGenerator drafts answers with a Gemini model. A generator built without an
// API key fails every request.
type GeminiAnswerGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

func NewGeminiAnswerGenerator(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (*GeminiAnswerGenerator, error) {
	if cfg.APIKey == "" {
		logger.Warn("AI_API_KEY is not set, question submission will fail")
		return &GeminiAnswerGenerator{logger: logger}, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.APIURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiAnswerGenerator{
		client: client,
		model:  client.GenerativeModel(cfg.Model),
		logger: logger,
	}, nil
}

func (g *GeminiAnswerGenerator) Generate(ctx context.Context, questionText string) (string, error) {
	if g.model == nil {
		return "", &UpstreamError{Provider: geminiProvider, Err: ErrGeneratorDisabled}
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(answerPromptHead+questionText))
	if err != nil {
		return "", &UpstreamError{Provider: geminiProvider, Err: err}
	}

	answer := answerText(resp)
	g.logger.DebugContext(ctx, "Answer generated", "length", len(answer))
	return answer, nil
}

func (g *GeminiAnswerGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// answerText joins the text parts of the first candidate
func answerText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return emptyAnswerText
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return emptyAnswerText
	}
	return answer
}
