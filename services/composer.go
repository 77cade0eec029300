package services

import (
	"context"
	"fmt"
	"strings"
)

// AnswerComposer assembles prompts from retrieved chunks, session history,
// and (for pitches) project context, and delegates completion to the LLM.
type AnswerComposer struct {
	llm LLM
}

// NewAnswerComposer builds a composer over the given LLM.
func NewAnswerComposer(llm LLM) *AnswerComposer {
	return &AnswerComposer{llm: llm}
}

// Answer produces a grounded answer for a query. The LLM's text is returned
// verbatim; upstream failures surface to the caller with no fallback answer.
func (c *AnswerComposer) Answer(ctx context.Context, question string, result *RetrievalResult, history string) (string, error) {
	prompt := buildAnswerPrompt(FormatContext(result), question, history)
	answer, err := c.llm.Complete(ctx, answerSystemPrompt, prompt, 0.0)
	if err != nil {
		return "", fmt.Errorf("could not generate answer: %w", err)
	}
	return answer, nil
}

// Pitch produces a grant pitch centered on the matched or generated project.
func (c *AnswerComposer) Pitch(ctx context.Context, grantFocus string, result *RetrievalResult, history string, project *ProjectMatch) (string, error) {
	prompt := buildPitchPrompt(FormatContext(result), grantFocus, history, formatProject(project))
	pitch, err := c.llm.Complete(ctx, answerSystemPrompt, prompt, 0.0)
	if err != nil {
		return "", fmt.Errorf("could not generate pitch: %w", err)
	}
	return pitch, nil
}

// formatProject renders a project as a prompt block.
func formatProject(p *ProjectMatch) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Name: " + p.Name + "\n")
	sb.WriteString(fmt.Sprintf("Status: %s project\n", p.Source))
	if p.Location != "" {
		sb.WriteString("Location: " + p.Location + "\n")
	}
	if len(p.FocusAreas) > 0 {
		sb.WriteString("Focus Areas: " + strings.Join(p.FocusAreas, ", ") + "\n")
	}
	if len(p.TargetSpecies) > 0 {
		sb.WriteString("Target Species: " + strings.Join(p.TargetSpecies, ", ") + "\n")
	}
	sb.WriteString("Description: " + p.Description + "\n")
	if p.Methodology != "" {
		sb.WriteString("Methodology: " + p.Methodology + "\n")
	}
	if len(p.ExpectedOutcomes) > 0 {
		sb.WriteString("Expected Outcomes: " + strings.Join(p.ExpectedOutcomes, ", ") + "\n")
	}
	return sb.String()
}
