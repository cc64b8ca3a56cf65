package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/ragkit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"
)

// Generator implements ai.Generator using an OpenAI-compatible chat model.
type Generator struct {
	client      llms.Model
	prompt      prompts.PromptTemplate
	temperature float64
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return newGeneratorWithModel(client, config.Temperature), nil
}

func newGeneratorWithModel(model llms.Model, temperature float64) *Generator {
	return &Generator{
		client:      model,
		prompt:      newAnswerPrompt(),
		temperature: temperature,
		logger:      slog.Default().With("component", "openai-generator"),
	}
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// NewGeneratorWithModel creates a generator backed by an existing langchaingo
// model, for example one from llms/fake.
func NewGeneratorWithModel(model llms.Model, temperature float64) ai.Generator {
	return newGeneratorWithModel(model, temperature)
}

// Generate renders the answer prompt and sends it as a single user message.
func (g *Generator) Generate(ctx context.Context, query, contextText string) (string, error) {
	prompt, err := g.prompt.Format(map[string]any{
		"context": contextText,
		"query":   query,
	})
	if err != nil {
		return "", err
	}

	g.logger.Debug("generating answer", "query", query, "context_length", len(contextText))
	response, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("failed to generate answer", "err", err)
		return "", fmt.Errorf("%w: %w", ai.ErrGenerationFailed, err)
	}

	return cleanAnswer(response), nil
}
