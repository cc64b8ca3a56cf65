package openai

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/ragkit/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

// recordingModel captures the prompt it receives.
type recordingModel struct {
	*fake.LLM
	prompt string
}

func (m *recordingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, part := range messages[len(messages)-1].Parts {
		if text, ok := part.(llms.TextContent); ok {
			m.prompt = text.Text
		}
	}
	return m.LLM.GenerateContent(ctx, messages, options...)
}

func TestGenerator_Generate(t *testing.T) {
	model := &recordingModel{LLM: fake.NewFakeLLM([]string{"  RAG is retrieval-augmented generation.\n"})}
	generator := NewGeneratorWithModel(model, 0)

	answer, err := generator.Generate(context.Background(), "What is RAG?", "RAG stands for Retrieval-Augmented Generation.")
	require.NoError(t, err)
	assert.Equal(t, "RAG is retrieval-augmented generation.", answer)

	assert.Contains(t, model.prompt, "Context:\nRAG stands for Retrieval-Augmented Generation.")
	assert.Contains(t, model.prompt, "Question: What is RAG?")
	assert.True(t, strings.HasSuffix(model.prompt, "Answer:"))
}

func TestGenerator_Error(t *testing.T) {
	generator := NewGeneratorWithModel(fake.NewFakeLLM(nil), 0)

	_, err := generator.Generate(context.Background(), "q", "c")
	assert.ErrorIs(t, err, ai.ErrGenerationFailed)
}

func TestCleanAnswer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "An answer.", "An answer."},
		{"whitespace", "\n  An answer. \n", "An answer."},
		{"label", "Answer: An answer.", "An answer."},
		{"lowercase label", "answer:An answer.", "An answer."},
		{"think block", "<think>\nlet me see\n</think>\n\nAn answer.", "An answer."},
		{"empty", "", ""},
		{"label mid-sentence kept", "The Answer: yes", "The Answer: yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanAnswer(tt.input))
		})
	}
}
