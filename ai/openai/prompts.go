package openai

import "github.com/tmc/langchaingo/prompts"

const answerPromptTemplate = `Answer the question using only the context below.
If the context does not contain the answer, say that you don't know.
Keep the answer short and do not repeat the question.

Context:
{{.context}}

Question: {{.query}}

Answer:`

// newAnswerPrompt returns the prompt used to ground answers in retrieved chunks.
func newAnswerPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(answerPromptTemplate, []string{"context", "query"})
}
