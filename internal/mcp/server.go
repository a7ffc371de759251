// Package mcp exposes the grantmaster workflows as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"grantmaster/internal/config"
	"grantmaster/internal/store"
	"grantmaster/internal/workflow"
)

// Server wraps the MCP SDK server around the shared pipeline and store. One
// workflow runs at a time; tools are synchronous.
type Server struct {
	MCPServer *sdkmcp.Server
	Store     store.Store
	Pipeline  *workflow.Pipeline
	Portal    config.PortalConfig
}

// NewServer registers the grantmaster tool set on a fresh MCP server.
func NewServer(st store.Store, pipeline *workflow.Pipeline, portal config.PortalConfig) *Server {
	s := &Server{Store: st, Pipeline: pipeline, Portal: portal}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "grantmaster", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "save_profile",
		Description: "Save the organization profile. Replaces any previously saved profile.",
	}, s.handleSaveProfile)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_research",
		Description: "Run the research pipeline: log in to the grant portal, extract opportunities, and score each against the saved organization profile.",
	}, s.handleRunResearch)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "draft_section",
		Description: "Run the drafting pipeline for one application section: draft, review, and redraft until approval or the iteration cap, then save the final version.",
	}, s.handleDraftSection)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_opportunities",
		Description: "List stored grant opportunities, optionally filtered by status.",
	}, s.handleListOpportunities)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_latest_sections",
		Description: "Get the latest saved version of every drafted section for a grant.",
	}, s.handleGetLatestSections)
}

// --- Tool input/output types ---

type saveProfileInput struct {
	Name               string `json:"name" jsonschema:"organization name"`
	Mission            string `json:"mission" jsonschema:"mission statement"`
	Projects           string `json:"projects,omitempty" jsonschema:"current projects"`
	Needs              string `json:"needs,omitempty" jsonschema:"funding needs"`
	TargetDemographics string `json:"target_demographics,omitempty" jsonschema:"populations served"`
}

type saveProfileOutput struct {
	OK string `json:"ok"`
}

type runResearchInput struct {
	SiteURL  string `json:"site_url,omitempty" jsonschema:"grant portal URL (default: configured portal)"`
	Username string `json:"username,omitempty" jsonschema:"portal username (default: configured username)"`
}

type runResearchOutput struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Error     string   `json:"error,omitempty"`
	Log       []string `json:"log"`
}

type draftSectionInput struct {
	GrantID      int64  `json:"grant_id" jsonschema:"id of a stored grant opportunity"`
	SectionName  string `json:"section_name" jsonschema:"name of the section to draft"`
	Instructions string `json:"instructions,omitempty" jsonschema:"extra drafting guidance"`
}

type draftSectionOutput struct {
	Draft      string   `json:"draft,omitempty"`
	Feedback   string   `json:"feedback,omitempty"`
	Iterations int      `json:"iterations"`
	Error      string   `json:"error,omitempty"`
	Log        []string `json:"log"`
}

type listOpportunitiesInput struct {
	Status string `json:"status,omitempty" jsonschema:"filter by status (e.g. identified, analyzed_strong_match)"`
}

type opportunitySummary struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Funder   string  `json:"funder"`
	Deadline string  `json:"deadline,omitempty"`
	Score    float64 `json:"suitability_score,omitempty"`
	Status   string  `json:"status"`
}

type listOpportunitiesOutput struct {
	Opportunities []opportunitySummary `json:"opportunities"`
	Total         int                  `json:"total"`
}

type getLatestSectionsInput struct {
	GrantID int64 `json:"grant_id" jsonschema:"id of a stored grant opportunity"`
}

type sectionSummary struct {
	SectionName string `json:"section_name"`
	Version     int    `json:"version"`
	Content     string `json:"content"`
	Feedback    string `json:"feedback,omitempty"`
}

type getLatestSectionsOutput struct {
	Sections []sectionSummary `json:"sections"`
	Total    int              `json:"total"`
}

// --- Tool handlers ---

func (s *Server) handleSaveProfile(_ context.Context, _ *sdkmcp.CallToolRequest, input saveProfileInput) (*sdkmcp.CallToolResult, saveProfileOutput, error) {
	if input.Name == "" {
		return nil, saveProfileOutput{}, fmt.Errorf("save_profile: name is required")
	}
	err := s.Store.SaveProfile(&store.OrganizationProfile{
		Name:               input.Name,
		Mission:            input.Mission,
		Projects:           input.Projects,
		Needs:              input.Needs,
		TargetDemographics: input.TargetDemographics,
	})
	if err != nil {
		return nil, saveProfileOutput{}, fmt.Errorf("save_profile: %w", err)
	}
	return nil, saveProfileOutput{OK: "profile saved"}, nil
}

func (s *Server) handleRunResearch(ctx context.Context, _ *sdkmcp.CallToolRequest, input runResearchInput) (*sdkmcp.CallToolResult, runResearchOutput, error) {
	profile, err := s.Store.GetProfile()
	if err != nil {
		return nil, runResearchOutput{}, fmt.Errorf("run_research: load profile: %w", err)
	}
	if profile == nil {
		return nil, runResearchOutput{}, fmt.Errorf("run_research: no organization profile saved; call save_profile first")
	}

	siteURL := input.SiteURL
	if siteURL == "" {
		siteURL = s.Portal.URL
	}
	username := input.Username
	if username == "" {
		username = s.Portal.Username
	}

	final, err := s.Pipeline.RunResearch(ctx, profile, siteURL, workflow.Credentials{
		Username: username,
		Password: s.Portal.Password,
	})
	if err != nil {
		return nil, runResearchOutput{}, fmt.Errorf("run_research: %w", err)
	}

	out := runResearchOutput{Error: final.Err, Log: final.Log}
	for _, o := range final.Opportunities {
		if o.Failure == "" {
			out.Processed++
		} else {
			out.Failed++
		}
	}
	return nil, out, nil
}

func (s *Server) handleDraftSection(ctx context.Context, _ *sdkmcp.CallToolRequest, input draftSectionInput) (*sdkmcp.CallToolResult, draftSectionOutput, error) {
	if input.GrantID == 0 || input.SectionName == "" {
		return nil, draftSectionOutput{}, fmt.Errorf("draft_section: grant_id and section_name are required")
	}

	profile, err := s.Store.GetProfile()
	if err != nil {
		return nil, draftSectionOutput{}, fmt.Errorf("draft_section: load profile: %w", err)
	}
	if profile == nil {
		return nil, draftSectionOutput{}, fmt.Errorf("draft_section: no organization profile saved; call save_profile first")
	}

	grant, err := s.Store.GetOpportunity(input.GrantID)
	if err != nil {
		return nil, draftSectionOutput{}, fmt.Errorf("draft_section: load grant: %w", err)
	}
	if grant == nil {
		return nil, draftSectionOutput{}, fmt.Errorf("draft_section: grant %d not found", input.GrantID)
	}

	final, err := s.Pipeline.RunDraftSection(ctx, profile, grant, input.SectionName, input.Instructions)
	if err != nil {
		return nil, draftSectionOutput{}, fmt.Errorf("draft_section: %w", err)
	}

	return nil, draftSectionOutput{
		Draft:      final.Draft,
		Feedback:   final.Feedback,
		Iterations: final.Iterations,
		Error:      final.Err,
		Log:        final.Log,
	}, nil
}

func (s *Server) handleListOpportunities(_ context.Context, _ *sdkmcp.CallToolRequest, input listOpportunitiesInput) (*sdkmcp.CallToolResult, listOpportunitiesOutput, error) {
	opps, err := s.Store.ListOpportunities(input.Status)
	if err != nil {
		return nil, listOpportunitiesOutput{}, fmt.Errorf("list_opportunities: %w", err)
	}

	out := listOpportunitiesOutput{Total: len(opps)}
	for _, g := range opps {
		out.Opportunities = append(out.Opportunities, opportunitySummary{
			ID:       g.ID,
			Title:    g.Title,
			Funder:   g.Funder,
			Deadline: g.Deadline,
			Score:    g.SuitabilityScore,
			Status:   g.Status,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetLatestSections(_ context.Context, _ *sdkmcp.CallToolRequest, input getLatestSectionsInput) (*sdkmcp.CallToolResult, getLatestSectionsOutput, error) {
	if input.GrantID == 0 {
		return nil, getLatestSectionsOutput{}, fmt.Errorf("get_latest_sections: grant_id is required")
	}
	sections, err := s.Store.ListLatestSections(input.GrantID)
	if err != nil {
		return nil, getLatestSectionsOutput{}, fmt.Errorf("get_latest_sections: %w", err)
	}

	out := getLatestSectionsOutput{Total: len(sections)}
	for _, d := range sections {
		out.Sections = append(out.Sections, sectionSummary{
			SectionName: d.SectionName,
			Version:     d.Version,
			Content:     d.DraftContent,
			Feedback:    d.Feedback,
		})
	}
	return nil, out, nil
}
