package workflow

import (
	"context"
	"fmt"

	"grantmaster/internal/flow"
	"grantmaster/internal/store"
)

// ResearchGraph builds the research pipeline: login -> extract -> score,
// with every node routed to handle_error on failure.
func (p *Pipeline) ResearchGraph() (*flow.Graph[State, Delta], error) {
	nodes := []flow.Node[State, Delta]{
		{ID: nodeLogin, Run: p.login},
		{ID: nodeExtract, Run: p.extract},
		{ID: nodeScore, Run: p.score},
		{ID: nodeHandleError, Run: p.handleError},
	}
	routes := []flow.Route[State]{
		{From: nodeLogin, Targets: []flow.NodeID{nodeExtract, nodeHandleError}, Pick: afterLogin},
		{From: nodeExtract, Targets: []flow.NodeID{nodeScore, nodeHandleError}, Pick: afterExtract},
		{From: nodeScore, Targets: []flow.NodeID{flow.Done, nodeHandleError}, Pick: afterScore},
		{From: nodeHandleError, Targets: []flow.NodeID{flow.Done}},
	}
	return flow.New("research", nodeLogin, nodes, routes)
}

// DraftingGraph builds the drafting pipeline: draft -> review looping back to
// draft until approval or the iteration cap, then save.
func (p *Pipeline) DraftingGraph() (*flow.Graph[State, Delta], error) {
	nodes := []flow.Node[State, Delta]{
		{ID: nodeDraft, Run: p.draft},
		{ID: nodeReview, Run: p.review},
		{ID: nodeSave, Run: p.save},
		{ID: nodeHandleError, Run: p.handleError},
	}
	routes := []flow.Route[State]{
		{From: nodeDraft, Targets: []flow.NodeID{nodeReview, nodeHandleError}, Pick: afterDraft},
		{From: nodeReview, Targets: []flow.NodeID{nodeDraft, nodeSave, nodeHandleError}, Pick: p.afterReview},
		{From: nodeSave, Targets: []flow.NodeID{flow.Done, nodeHandleError}, Pick: afterSave},
		{From: nodeHandleError, Targets: []flow.NodeID{flow.Done}},
	}
	return flow.New("draft", nodeDraft, nodes, routes)
}

// NewResearchState seeds a research walk.
func NewResearchState(profile *store.OrganizationProfile, siteURL string, creds Credentials) State {
	return State{
		Profile:     profile,
		SiteURL:     siteURL,
		Credentials: creds,
	}
}

// NewDraftingState seeds a drafting walk for one grant section. The drafting
// pipeline never touches login or extraction.
func NewDraftingState(profile *store.OrganizationProfile, grant *store.GrantOpportunity, sectionName, instructions string) State {
	s := State{
		Profile:      profile,
		SectionName:  sectionName,
		Instructions: instructions,
		ActiveGrant:  grant,
	}
	if grant != nil {
		s.ActiveID = grant.ID
	}
	return s
}

// RunResearch executes the research pipeline end to end and returns the final
// state. The browser session, if one was opened, is closed before returning.
// The error return covers engine failures only; domain failures are in
// State.Err.
func (p *Pipeline) RunResearch(ctx context.Context, profile *store.OrganizationProfile, siteURL string, creds Credentials) (State, error) {
	g, err := p.ResearchGraph()
	if err != nil {
		return State{}, fmt.Errorf("build research graph: %w", err)
	}
	final, err := g.Run(ctx, NewResearchState(profile, siteURL, creds))
	if final.Session != nil {
		final.Session.Close()
		final.Session = nil
	}
	return final, err
}

// RunDraftSection executes the drafting pipeline for one section.
func (p *Pipeline) RunDraftSection(ctx context.Context, profile *store.OrganizationProfile, grant *store.GrantOpportunity, sectionName, instructions string) (State, error) {
	g, err := p.DraftingGraph()
	if err != nil {
		return State{}, fmt.Errorf("build drafting graph: %w", err)
	}
	return g.Run(ctx, NewDraftingState(profile, grant, sectionName, instructions))
}
