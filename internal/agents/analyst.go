package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"grantmaster/internal/logging"
	"grantmaster/internal/store"
)

// Assessment is the analyst's verdict on one opportunity.
type Assessment struct {
	Rationale string  `json:"rationale"`
	Score     float64 `json:"suitability_score"`
	Status    string  `json:"status"`
}

// Analyst scores grant opportunities against an organization profile.
type Analyst struct {
	LLM LLMClient

	log *slog.Logger
}

func NewAnalyst(llm LLMClient) *Analyst {
	return &Analyst{LLM: llm, log: logging.New("analyst")}
}

const analystSystemPrompt = "You are an expert AI that analyzes grant suitability and returns analysis in a specific JSON format."

// Assess asks the LLM to judge how well a grant fits the organization. The
// score is clamped to 1..10; the status is one of the analyzed_* values the
// prompt suggests.
func (a *Analyst) Assess(ctx context.Context, grant *store.GrantOpportunity, profile *store.OrganizationProfile) (*Assessment, error) {
	if grant == nil {
		return nil, fmt.Errorf("assess: nil grant")
	}
	if profile == nil {
		return nil, fmt.Errorf("assess: nil profile")
	}

	var b strings.Builder
	b.WriteString("Assess the suitability of the grant opportunity below for the organization.\n\n")
	b.WriteString("Organization Profile:\n---\n")
	fmt.Fprintf(&b, "Name: %s\nMission: %s\nProjects: %s\nNeeds: %s\nTarget Demographics: %s\n",
		profile.Name, profile.Mission, profile.Projects, profile.Needs, profile.TargetDemographics)
	b.WriteString("---\n\nGrant Opportunity:\n---\n")
	fmt.Fprintf(&b, "Title: %s\nFunder: %s\nDeadline: %s\nDescription: %s\nEligibility: %s\nFocus Areas: %s\n",
		grant.Title, grant.Funder, grant.Deadline, grant.Description, grant.Eligibility, grant.FocusAreas)
	b.WriteString(`---

Analyze the alignment between the grant's focus areas, eligibility, and
description, and the organization's mission, projects, needs, and target
demographics. Then return a single JSON object with these keys:
- "rationale": (string) a brief textual rationale for the fit
- "suitability_score": (number) 1 to 10, where 1 is a very poor fit and 10 is excellent
- "status": (string) one of 'analyzed_strong_match', 'analyzed_good_match', 'analyzed_partial_match', 'analyzed_poor_match', 'analyzed_needs_further_review'

Ensure your output is ONLY the JSON object, with no introductory text.`)

	a.log.Info("assessing opportunity", "title", grant.Title)
	reply, err := a.LLM.Complete(ctx, analystSystemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("suitability analysis: %w", err)
	}

	var result Assessment
	if err := json.Unmarshal(cleanJSON([]byte(reply)), &result); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}
	if result.Rationale == "" || result.Status == "" {
		return nil, fmt.Errorf("analysis response missing rationale or status")
	}
	result.Score = clampScore(result.Score)
	return &result, nil
}
