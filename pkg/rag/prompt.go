package rag

import "strings"

// FallbackAnswer is the fixed reply the model must use when the retrieved
// context does not contain the answer. Tests and clients match on it exactly.
const FallbackAnswer = "This information is not present in the uploaded file."

// promptBuilder assembles the grounded prompt. The restriction block is not
// optional: a question never reaches the model without it.
type promptBuilder struct {
	chunks   []Chunk
	question string
}

func newPromptBuilder(chunks []Chunk, question string) *promptBuilder {
	return &promptBuilder{chunks: chunks, question: question}
}

func (b *promptBuilder) SystemInstruction() string {
	var sb strings.Builder
	sb.WriteString("You are an assistant answering questions about a document the user uploaded.\n")
	sb.WriteString("Only answer based on the reference material provided. Do not use outside knowledge.\n")
	sb.WriteString("If the answer is not found in the reference material, reply exactly: ")
	sb.WriteString(FallbackAnswer)
	return sb.String()
}

func (b *promptBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString("<reference_material>\n")
	for i, c := range b.chunks {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		sb.WriteString(c.Text)
	}
	sb.WriteString("\n</reference_material>\n\n")

	sb.WriteString("<user_question>\n")
	sb.WriteString(b.question)
	sb.WriteString("\n</user_question>\n\n")

	sb.WriteString("Answer using only the reference material above:")
	return sb.String()
}
