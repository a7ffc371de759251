package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"grantmaster/internal/logging"
)

// Editor reviews section drafts and returns actionable feedback.
type Editor struct {
	LLM LLMClient

	log *slog.Logger
}

func NewEditor(llm LLMClient) *Editor {
	return &Editor{LLM: llm, log: logging.New("editor")}
}

const editorSystemPrompt = "You are an expert AI grant editor. Your task is to provide critical and actionable feedback on a grant section draft based on provided criteria. Do not rewrite the draft; only provide feedback points or a summarized critique."

// ReviewDraft critiques a section draft. Guidelines are optional funder
// guidance the review should check the draft against.
func (e *Editor) ReviewDraft(ctx context.Context, draft, sectionName, guidelines string) (string, error) {
	if strings.TrimSpace(draft) == "" {
		return "", fmt.Errorf("review draft: empty draft")
	}
	if sectionName == "" {
		return "", fmt.Errorf("review draft: empty section name")
	}

	guidelinesContent := "No specific grant guidelines summary was provided."
	if guidelines != "" {
		guidelinesContent = fmt.Sprintf("Relevant Grant Guidelines Summary:\n---\n%s\n---", guidelines)
	}

	var b strings.Builder
	b.WriteString("Review a draft for a grant proposal section and provide actionable feedback.\n\n")
	fmt.Fprintf(&b, "Section Name: %s\n\n", sectionName)
	b.WriteString("Draft Text to Review:\n---\n")
	b.WriteString(draft)
	b.WriteString("\n---\n\n")
	b.WriteString(guidelinesContent)
	fmt.Fprintf(&b, `

Review the draft for the %q section against these criteria:
1. Clarity and conciseness: is the language clear, direct, and free of jargon where possible?
2. Coherence and flow: do the ideas follow logically, with a clear structure?
3. Grammar and spelling.
4. Persuasiveness and impact: does it effectively make its case to the funder?
5. Adherence to guidelines, if any were provided above.

Provide your feedback as specific, actionable points or a summarized
critique. Do NOT rewrite the section. Output ONLY the feedback text, with no
introductory phrases or concluding remarks.`, sectionName)

	e.log.Info("reviewing draft", "section", sectionName)
	feedback, err := e.LLM.Complete(ctx, editorSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("review section %q: %w", sectionName, err)
	}
	return strings.TrimSpace(feedback), nil
}
