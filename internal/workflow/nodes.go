package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"grantmaster/internal/agents"
	"grantmaster/internal/flow"
	"grantmaster/internal/logging"
	"grantmaster/internal/store"
)

// Node identifiers shared by the two pipelines.
const (
	nodeLogin       flow.NodeID = "login"
	nodeExtract     flow.NodeID = "extract"
	nodeScore       flow.NodeID = "score"
	nodeDraft       flow.NodeID = "draft"
	nodeReview      flow.NodeID = "review"
	nodeSave        flow.NodeID = "save"
	nodeHandleError flow.NodeID = "handle_error"
)

// Researcher acquires a portal session and extracts opportunities from it.
type Researcher interface {
	Login(ctx context.Context, url, username, password string) (*agents.Session, error)
	Extract(ctx context.Context, sess *agents.Session) ([]store.GrantOpportunity, error)
}

// Assessor judges one opportunity against the organization profile.
type Assessor interface {
	Assess(ctx context.Context, grant *store.GrantOpportunity, profile *store.OrganizationProfile) (*agents.Assessment, error)
}

// Drafter produces section text.
type Drafter interface {
	DraftSection(ctx context.Context, grant *store.GrantOpportunity, profile *store.OrganizationProfile, sectionName, instructions string) (string, error)
}

// Reviewer critiques a draft and returns feedback.
type Reviewer interface {
	ReviewDraft(ctx context.Context, draft, sectionName, guidelines string) (string, error)
}

// Pipeline bundles the collaborators the node functions call. Collaborators
// signal failure with plain error returns; nodes convert those into state
// errors so routing can take the error path.
type Pipeline struct {
	Store    store.Store
	Research Researcher
	Analyst  Assessor
	Writer   Drafter
	Editor   Reviewer

	// Approver decides whether reviewer feedback approves the draft.
	Approver func(feedback string) bool
	// MaxDraftIterations caps the draft/review loop before a forced save.
	MaxDraftIterations int

	log *slog.Logger
}

func NewPipeline(st store.Store, research Researcher, analyst Assessor, writer Drafter, editor Reviewer) *Pipeline {
	return &Pipeline{
		Store:              st,
		Research:           research,
		Analyst:            analyst,
		Writer:             writer,
		Editor:             editor,
		Approver:           DefaultApprover,
		MaxDraftIterations: DefaultMaxDraftIterations,
		log:                logging.New("workflow"),
	}
}

func (p *Pipeline) login(ctx context.Context, s State) Delta {
	if s.SiteURL == "" || s.Credentials.Username == "" || s.Credentials.Password == "" {
		msg := "login failed: missing site url or credentials"
		return Delta{Err: strp(msg), Log: []string{msg}}
	}

	sess, err := p.Research.Login(ctx, s.SiteURL, s.Credentials.Username, s.Credentials.Password)
	if err != nil {
		msg := fmt.Sprintf("login failed: %v", err)
		return Delta{Err: strp(msg), Log: []string{msg}}
	}
	if sess == nil {
		msg := "login failed: no session returned"
		return Delta{Err: strp(msg), Log: []string{msg}}
	}
	return Delta{Session: sess, Log: []string{fmt.Sprintf("Logged in to %s as %s", s.SiteURL, s.Credentials.Username)}}
}

func (p *Pipeline) extract(ctx context.Context, s State) Delta {
	if s.Session == nil {
		msg := "extraction failed: no active session"
		return Delta{Err: strp(msg), Log: []string{msg}}
	}

	raw, err := p.Research.Extract(ctx, s.Session)
	if err != nil {
		msg := fmt.Sprintf("extraction failed: %v", err)
		return Delta{Err: strp(msg), Log: []string{msg}}
	}

	opps := make([]Opportunity, 0, len(raw))
	for _, g := range raw {
		opps = append(opps, Opportunity{GrantOpportunity: g})
	}
	return Delta{
		Opportunities: opps,
		Log:           []string{fmt.Sprintf("Extracted %d grant opportunities", len(opps))},
	}
}

// score runs the analyze/save/update sequence per opportunity. Item failures
// are recorded on the item and the batch continues; the node itself fails
// only on a missing profile or when every item in the batch failed.
func (p *Pipeline) score(ctx context.Context, s State) Delta {
	if s.Profile == nil {
		msg := "organization profile is missing"
		return Delta{Err: strp(msg), Log: []string{msg}}
	}
	if len(s.Opportunities) == 0 {
		return Delta{Log: []string{"No opportunities to process"}}
	}

	out := make([]Opportunity, len(s.Opportunities))
	copy(out, s.Opportunities)
	var logs []string
	processed, failed := 0, 0

	for i := range out {
		item := &out[i]

		assessment, err := p.Analyst.Assess(ctx, &item.GrantOpportunity, s.Profile)
		if err != nil {
			item.Failure = fmt.Sprintf("suitability analysis failed: %v", err)
			logs = append(logs, fmt.Sprintf("Grant %q: %s", item.Title, item.Failure))
			failed++
			continue
		}

		id, err := p.Store.SaveOpportunity(&item.GrantOpportunity)
		if err != nil || id == 0 {
			item.Failure = "database save failed"
			if err != nil {
				item.Failure = fmt.Sprintf("database save failed: %v", err)
			}
			logs = append(logs, fmt.Sprintf("Grant %q: %s", item.Title, item.Failure))
			failed++
			continue
		}
		item.ID = id

		if err := p.Store.UpdateOpportunityAnalysis(id, assessment.Rationale, assessment.Score, assessment.Status); err != nil {
			item.Failure = fmt.Sprintf("analysis update failed: %v", err)
			logs = append(logs, fmt.Sprintf("Grant %q: %s", item.Title, item.Failure))
			failed++
			continue
		}

		item.AnalysisNotes = assessment.Rationale
		item.SuitabilityScore = assessment.Score
		item.Status = assessment.Status
		logs = append(logs, fmt.Sprintf("Grant %q scored %.1f (%s), saved with id %d",
			item.Title, assessment.Score, assessment.Status, id))
		processed++
	}

	logs = append(logs, fmt.Sprintf("Batch analysis complete: %d grants successfully processed, %d grants had issues", processed, failed))
	if processed == 0 {
		msg := fmt.Sprintf("all %d grants failed processing", failed)
		return Delta{Opportunities: out, Err: strp(msg), Log: append(logs, msg)}
	}
	return Delta{Opportunities: out, Log: logs}
}

// draft generates the next version of the active section. Prerequisite
// failures do not count as an iteration; once prerequisites pass, the
// counter advances even if the collaborator call then fails.
func (p *Pipeline) draft(ctx context.Context, s State) Delta {
	switch {
	case s.ActiveGrant == nil:
		msg := "drafting failed: no active grant opportunity"
		return Delta{Err: strp(msg), Log: []string{msg}}
	case s.Profile == nil:
		msg := "drafting failed: organization profile is missing"
		return Delta{Err: strp(msg), Log: []string{msg}}
	case s.SectionName == "":
		msg := "drafting failed: no section name"
		return Delta{Err: strp(msg), Log: []string{msg}}
	}

	iteration := s.Iterations + 1

	guidance := s.Instructions
	if strings.TrimSpace(s.Feedback) != "" {
		if guidance != "" {
			guidance += "\n\n"
		}
		guidance += "Address this reviewer feedback from the previous draft:\n" + s.Feedback
	}

	text, err := p.Writer.DraftSection(ctx, s.ActiveGrant, s.Profile, s.SectionName, guidance)
	if err != nil {
		msg := fmt.Sprintf("drafting failed: %v", err)
		return Delta{Iterations: intp(iteration), Err: strp(msg), Log: []string{msg}}
	}

	return Delta{
		Iterations: intp(iteration),
		Draft:      strp(text),
		Log:        []string{fmt.Sprintf("Draft v%d generated for section %q", iteration, s.SectionName)},
	}
}

func (p *Pipeline) review(ctx context.Context, s State) Delta {
	if strings.TrimSpace(s.Draft) == "" || s.SectionName == "" {
		msg := "review failed: missing draft content or section name"
		return Delta{Err: strp(msg), Log: []string{msg}}
	}

	guidelines := ""
	if s.ActiveGrant != nil {
		guidelines = s.ActiveGrant.Description
	}
	feedback, err := p.Editor.ReviewDraft(ctx, s.Draft, s.SectionName, guidelines)
	if err != nil {
		msg := fmt.Sprintf("review failed: %v", err)
		return Delta{Err: strp(msg), Log: []string{msg}}
	}

	return Delta{
		Feedback: strp(feedback),
		Log:      []string{fmt.Sprintf("Review complete for section %q (iteration %d)", s.SectionName, s.Iterations)},
	}
}

func (p *Pipeline) save(ctx context.Context, s State) Delta {
	switch {
	case s.ActiveID == 0:
		msg := "save section failed: missing grant opportunity id"
		return Delta{Err: strp(msg), Log: []string{msg}}
	case s.SectionName == "":
		msg := "save section failed: missing section name"
		return Delta{Err: strp(msg), Log: []string{msg}}
	case strings.TrimSpace(s.Draft) == "":
		msg := "save section failed: missing or empty draft content"
		return Delta{Err: strp(msg), Log: []string{msg}}
	}

	version := s.Iterations
	if version < 1 {
		version = 1
	}

	id, err := p.Store.SaveSectionDraft(&store.SectionDraft{
		GrantID:      s.ActiveID,
		SectionName:  s.SectionName,
		DraftContent: s.Draft,
		Version:      version,
		Feedback:     s.Feedback,
	})
	if err != nil || id == 0 {
		msg := fmt.Sprintf("save section failed: database save failed for section %q (version %d)", s.SectionName, version)
		if err != nil {
			msg = fmt.Sprintf("%s: %v", msg, err)
		}
		return Delta{Err: strp(msg), Log: []string{msg}}
	}

	return Delta{Log: []string{fmt.Sprintf("Section %q (version %d) saved with id %d for grant %d",
		s.SectionName, version, id, s.ActiveID)}}
}

// handleError is the shared sink for error paths. It records the error in the
// trace log and leaves Err in place for the caller to inspect.
func (p *Pipeline) handleError(_ context.Context, s State) Delta {
	msg := s.Err
	if msg == "" {
		msg = "no specific error message recorded"
	}
	p.log.Error("pipeline error", "err", msg)
	return Delta{Log: []string{"ERROR ENCOUNTERED IN PIPELINE: " + msg}}
}
