package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerPromptCarriesContextAndHistory(t *testing.T) {
	llm := &fakeLLM{response: "Darukaa.Earth monitors biodiversity."}
	c := NewAnswerComposer(llm)

	result := &RetrievalResult{
		Collection: "docs",
		Documents: []RetrievedDocument{
			{Content: "Bioacoustic sensors record species calls.", Source: "docs", Score: 0.9},
		},
	}
	history := "=== CONVERSATION HISTORY ===\nUser: hi\n=== END HISTORY ===\n"

	answer, err := c.Answer(context.Background(), "How does monitoring work?", result, history)
	require.NoError(t, err)
	assert.Equal(t, "Darukaa.Earth monitors biodiversity.", answer)

	assert.Contains(t, llm.lastPrompt, "Bioacoustic sensors record species calls.")
	assert.Contains(t, llm.lastPrompt, "How does monitoring work?")
	assert.Contains(t, llm.lastPrompt, "=== CONVERSATION HISTORY ===")
	assert.Contains(t, llm.lastSystem, "Darukaa.Earth")
}

func TestAnswerWithNoDocuments(t *testing.T) {
	llm := &fakeLLM{response: "I don't have documents on that."}
	c := NewAnswerComposer(llm)

	_, err := c.Answer(context.Background(), "question", &RetrievalResult{Collection: "docs"}, "")
	require.NoError(t, err)
	assert.Contains(t, llm.lastPrompt, "No relevant documents found.")
}

func TestAnswerLLMErrorPropagates(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model overloaded")}
	c := NewAnswerComposer(llm)

	_, err := c.Answer(context.Background(), "question", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not generate answer")
}

func TestPitchPromptCarriesProject(t *testing.T) {
	llm := &fakeLLM{response: "Here is the pitch."}
	c := NewAnswerComposer(llm)

	project := &ProjectMatch{
		Name:        "Sundarbans Mangrove Restoration",
		Source:      ProjectSourceExisting,
		Location:    "West Bengal, India",
		FocusAreas:  []string{"mangroves"},
		Description: "Restoring mangrove cover.",
	}

	pitch, err := c.Pitch(context.Background(), "mangrove restoration grant", nil, "", project)
	require.NoError(t, err)
	assert.Equal(t, "Here is the pitch.", pitch)

	assert.Contains(t, llm.lastPrompt, "Sundarbans Mangrove Restoration")
	assert.Contains(t, llm.lastPrompt, "existing project")
	assert.Contains(t, llm.lastPrompt, "West Bengal, India")
	assert.Contains(t, llm.lastPrompt, "mangrove restoration grant")
}

func TestFormatProjectNil(t *testing.T) {
	assert.Empty(t, formatProject(nil))
}
