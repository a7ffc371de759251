package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"grantmaster/internal/logging"
	"grantmaster/internal/store"
)

// Writer drafts grant application sections.
type Writer struct {
	LLM LLMClient

	log *slog.Logger
}

func NewWriter(llm LLMClient) *Writer {
	return &Writer{LLM: llm, log: logging.New("writer")}
}

const writerSystemPrompt = "You are an expert AI grant writer. Your task is to draft high-quality content for specific grant proposal sections based on provided context and instructions. Output only the drafted text."

// DraftSection produces the text of one named section. Instructions carry
// both the caller's guidance and any reviewer feedback from a prior pass.
func (w *Writer) DraftSection(ctx context.Context, grant *store.GrantOpportunity, profile *store.OrganizationProfile, sectionName, instructions string) (string, error) {
	if grant == nil || profile == nil {
		return "", fmt.Errorf("draft section: nil grant or profile")
	}
	if sectionName == "" {
		return "", fmt.Errorf("draft section: empty section name")
	}
	if instructions == "" {
		instructions = "None provided. Please adhere to general best practices for this section."
	}

	var b strings.Builder
	b.WriteString("Draft a section of a grant proposal.\n\n")
	b.WriteString("Grant Opportunity Details:\n---\n")
	fmt.Fprintf(&b, "Title: %s\nFunder: %s\nDeadline: %s\nDescription: %s\nEligibility: %s\nFocus Areas: %s\n",
		grant.Title, grant.Funder, grant.Deadline, grant.Description, grant.Eligibility, grant.FocusAreas)
	b.WriteString("---\n\nOrganization Profile:\n---\n")
	fmt.Fprintf(&b, "Name: %s\nMission: %s\nProjects: %s\nNeeds: %s\nTarget Demographics: %s\n",
		profile.Name, profile.Mission, profile.Projects, profile.Needs, profile.TargetDemographics)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "Section to Draft: %s\n\n", sectionName)
	fmt.Fprintf(&b, "Specific Instructions: %s\n\n", instructions)
	fmt.Fprintf(&b, `Draft the content for the %q section of this grant proposal.
- Be clear, concise, and persuasive, and address the requirements typically expected for this section.
- Keep the tone professional and appropriate for a grant application.
- Incorporate the specific instructions above carefully.
- Output ONLY the drafted text for the section, with no introductory phrases or concluding remarks.`, sectionName)

	w.log.Info("drafting section", "section", sectionName, "grant", grant.Title)
	draft, err := w.LLM.Complete(ctx, writerSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("draft section %q: %w", sectionName, err)
	}
	return strings.TrimSpace(draft), nil
}
