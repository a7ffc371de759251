package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"grantmaster/internal/agents"
	"grantmaster/internal/store"
)

type fakeResearcher struct {
	loginErr   error
	nilSession bool
	extractErr error
	grants     []store.GrantOpportunity

	loginCalls   int
	extractCalls int
}

func (f *fakeResearcher) Login(_ context.Context, _, _, _ string) (*agents.Session, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.nilSession {
		return nil, nil
	}
	return &agents.Session{}, nil
}

func (f *fakeResearcher) Extract(_ context.Context, _ *agents.Session) ([]store.GrantOpportunity, error) {
	f.extractCalls++
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.grants, nil
}

type fakeAssessor struct {
	failTitle string
	calls     int
}

func (f *fakeAssessor) Assess(_ context.Context, grant *store.GrantOpportunity, _ *store.OrganizationProfile) (*agents.Assessment, error) {
	f.calls++
	if f.failTitle != "" && grant.Title == f.failTitle {
		return nil, errors.New("model unavailable")
	}
	return &agents.Assessment{Rationale: "strong fit", Score: 8, Status: "analyzed_strong_match"}, nil
}

type fakeDrafter struct {
	err   error
	calls []string // guidance passed per call
}

func (f *fakeDrafter) DraftSection(_ context.Context, _ *store.GrantOpportunity, _ *store.OrganizationProfile, sectionName, instructions string) (string, error) {
	f.calls = append(f.calls, instructions)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s draft v%d", sectionName, len(f.calls)), nil
}

type fakeReviewer struct {
	feedbacks []string
	err       error
	calls     int
}

func (f *fakeReviewer) ReviewDraft(_ context.Context, _, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	i := f.calls - 1
	if i >= len(f.feedbacks) {
		i = len(f.feedbacks) - 1
	}
	return f.feedbacks[i], nil
}

func testPipeline() (*Pipeline, *store.MemStore, *fakeResearcher, *fakeAssessor, *fakeDrafter, *fakeReviewer) {
	st := store.NewMemStore()
	r := &fakeResearcher{}
	a := &fakeAssessor{}
	d := &fakeDrafter{}
	e := &fakeReviewer{feedbacks: []string{"Looks good"}}
	return NewPipeline(st, r, a, d, e), st, r, a, d, e
}

func wfProfile() *store.OrganizationProfile {
	return &store.OrganizationProfile{Name: "Local Action Group", Mission: "community health"}
}

func wfGrant() *store.GrantOpportunity {
	return &store.GrantOpportunity{ID: 7, Title: "Health Grant", Funder: "Wellness Fund", Description: "supports clinics"}
}

func TestApplyMergesAndAppends(t *testing.T) {
	s := State{Draft: "old", Log: []string{"a"}}
	out := s.Apply(Delta{Draft: strp("new"), Iterations: intp(2), Log: []string{"b"}})

	if out.Draft != "new" || out.Iterations != 2 {
		t.Errorf("merged state = %+v", out)
	}
	if len(out.Log) != 2 || out.Log[1] != "b" {
		t.Errorf("log = %v", out.Log)
	}
	if s.Draft != "old" || len(s.Log) != 1 {
		t.Errorf("input state mutated: %+v", s)
	}
}

func TestApplyNeverClearsError(t *testing.T) {
	s := State{Err: "boom"}
	if out := s.Apply(Delta{Err: strp("")}); out.Err != "boom" {
		t.Errorf("empty delta err cleared state err: %q", out.Err)
	}
	if out := s.Apply(Delta{Draft: strp("x")}); out.Err != "boom" {
		t.Errorf("unrelated delta cleared state err: %q", out.Err)
	}
}

func TestLoginNodeMissingCredentials(t *testing.T) {
	p, _, r, _, _, _ := testPipeline()

	d := p.login(context.Background(), State{SiteURL: "https://portal.example.com"})
	if d.Err == nil || !strings.Contains(*d.Err, "login failed") {
		t.Fatalf("expected login prerequisite error, got %+v", d)
	}
	if r.loginCalls != 0 {
		t.Error("collaborator called despite missing credentials")
	}
}

func TestLoginNodeNilSession(t *testing.T) {
	p, _, r, _, _, _ := testPipeline()
	r.nilSession = true

	s := NewResearchState(wfProfile(), "https://portal.example.com", Credentials{Username: "u", Password: "p"})
	d := p.login(context.Background(), s)
	if d.Err == nil || d.Session != nil {
		t.Errorf("expected error for nil session, got %+v", d)
	}
}

func TestScoreNodeMissingProfile(t *testing.T) {
	p, _, _, a, _, _ := testPipeline()

	s := State{Opportunities: []Opportunity{{GrantOpportunity: *wfGrant()}}}
	d := p.score(context.Background(), s)
	if d.Err == nil || *d.Err != "organization profile is missing" {
		t.Fatalf("expected missing-profile error, got %+v", d)
	}
	if a.calls != 0 {
		t.Error("assessor called despite missing profile")
	}
}

func TestScoreNodeEmptyBatchIsNoop(t *testing.T) {
	p, _, _, a, _, _ := testPipeline()

	d := p.score(context.Background(), State{Profile: wfProfile()})
	if d.Err != nil {
		t.Errorf("empty batch should succeed, got err %q", *d.Err)
	}
	if a.calls != 0 {
		t.Error("assessor called for empty batch")
	}
}

func TestScoreNodeContinuesPastItemFailure(t *testing.T) {
	p, st, _, a, _, _ := testPipeline()
	a.failTitle = "Bad Grant"

	s := State{
		Profile: wfProfile(),
		Opportunities: []Opportunity{
			{GrantOpportunity: store.GrantOpportunity{Title: "Good Grant A", Funder: "F"}},
			{GrantOpportunity: store.GrantOpportunity{Title: "Bad Grant", Funder: "F"}},
			{GrantOpportunity: store.GrantOpportunity{Title: "Good Grant B", Funder: "F"}},
		},
	}
	d := p.score(context.Background(), s)
	if d.Err != nil {
		t.Fatalf("item failure must not fail the node: %q", *d.Err)
	}

	if d.Opportunities[0].Failure != "" || d.Opportunities[2].Failure != "" {
		t.Errorf("healthy items marked failed: %+v", d.Opportunities)
	}
	if !strings.Contains(d.Opportunities[1].Failure, "suitability analysis failed") {
		t.Errorf("failing item not marked: %+v", d.Opportunities[1])
	}
	if d.Opportunities[0].ID == 0 || d.Opportunities[2].ID == 0 {
		t.Error("successful items did not get store ids")
	}

	saved, err := st.ListOpportunities("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(saved) != 2 {
		t.Errorf("store has %d opportunities, want 2", len(saved))
	}
	for _, g := range saved {
		if g.Status != "analyzed_strong_match" || g.AnalysisNotes != "strong fit" {
			t.Errorf("analysis not persisted: %+v", g)
		}
	}

	summary := d.Log[len(d.Log)-1]
	if !strings.Contains(summary, "2 grants successfully processed") || !strings.Contains(summary, "1 grants had issues") {
		t.Errorf("summary = %q", summary)
	}
}

func TestScoreNodeSaveFailureBlocksUpdate(t *testing.T) {
	p, st, _, _, _, _ := testPipeline()
	st.FailSaves = true

	s := State{
		Profile:       wfProfile(),
		Opportunities: []Opportunity{{GrantOpportunity: store.GrantOpportunity{Title: "G", Funder: "F"}}},
	}
	d := p.score(context.Background(), s)
	if d.Err != nil {
		t.Fatalf("save failure must stay per-item: %q", *d.Err)
	}
	if !strings.Contains(d.Opportunities[0].Failure, "database save failed") {
		t.Errorf("failure = %q", d.Opportunities[0].Failure)
	}
	if d.Opportunities[0].Status != "" {
		t.Error("analysis fields set despite failed save")
	}
}

func TestScoreNodeAllItemsFailedIsNodeError(t *testing.T) {
	p, st, _, a, _, _ := testPipeline()
	a.failTitle = "Bad Grant"

	s := State{
		Profile: wfProfile(),
		Opportunities: []Opportunity{
			{GrantOpportunity: store.GrantOpportunity{Title: "Bad Grant", Funder: "F"}},
			{GrantOpportunity: store.GrantOpportunity{Title: "Bad Grant", Funder: "G"}},
		},
	}
	d := p.score(context.Background(), s)
	if d.Err == nil || *d.Err != "all 2 grants failed processing" {
		t.Fatalf("expected node-level error for all-fail batch, got %+v", d.Err)
	}
	for i, o := range d.Opportunities {
		if !strings.Contains(o.Failure, "suitability analysis failed") {
			t.Errorf("item %d not marked failed: %+v", i, o)
		}
	}
	if saved, _ := st.ListOpportunities(""); len(saved) != 0 {
		t.Errorf("store has %d opportunities, want 0", len(saved))
	}
	if got := afterScore(s.Apply(d)); got != nodeHandleError {
		t.Errorf("routed to %q, want %q", got, nodeHandleError)
	}
}

func TestDraftNodePrerequisitesDoNotCountIteration(t *testing.T) {
	p, _, _, _, dr, _ := testPipeline()

	d := p.draft(context.Background(), State{Profile: wfProfile(), SectionName: "Budget"})
	if d.Err == nil || !strings.Contains(*d.Err, "no active grant") {
		t.Fatalf("expected prerequisite error, got %+v", d)
	}
	if d.Iterations != nil {
		t.Error("prerequisite failure incremented iterations")
	}
	if len(dr.calls) != 0 {
		t.Error("drafter called despite missing prerequisites")
	}
}

func TestDraftNodeCollaboratorFailureStillCounts(t *testing.T) {
	p, _, _, _, dr, _ := testPipeline()
	dr.err = errors.New("model timeout")

	s := NewDraftingState(wfProfile(), wfGrant(), "Budget", "")
	d := p.draft(context.Background(), s)
	if d.Err == nil {
		t.Fatal("expected drafting error")
	}
	if d.Iterations == nil || *d.Iterations != 1 {
		t.Errorf("failed call must still count an iteration, got %+v", d.Iterations)
	}
}

func TestDraftNodeFoldsFeedbackIntoGuidance(t *testing.T) {
	p, _, _, _, dr, _ := testPipeline()

	s := NewDraftingState(wfProfile(), wfGrant(), "Budget", "cite census data")
	s.Feedback = "Tighten the opening."
	s.Iterations = 1

	d := p.draft(context.Background(), s)
	if d.Err != nil {
		t.Fatalf("draft: %q", *d.Err)
	}
	if *d.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", *d.Iterations)
	}
	guidance := dr.calls[0]
	if !strings.Contains(guidance, "cite census data") || !strings.Contains(guidance, "Tighten the opening.") {
		t.Errorf("guidance missing instructions or feedback: %q", guidance)
	}
}

func TestSaveNodePersistsVersionFromIterations(t *testing.T) {
	p, st, _, _, _, _ := testPipeline()

	s := State{ActiveID: 7, SectionName: "Budget", Draft: "final text", Feedback: "Looks good", Iterations: 2}
	d := p.save(context.Background(), s)
	if d.Err != nil {
		t.Fatalf("save: %q", *d.Err)
	}

	got, err := st.GetLatestSectionDraft(7, "Budget")
	if err != nil || got == nil {
		t.Fatalf("get latest: %v %v", got, err)
	}
	if got.Version != 2 || got.DraftContent != "final text" || got.Feedback != "Looks good" {
		t.Errorf("persisted draft = %+v", got)
	}
}

func TestSaveNodeMissingPrerequisites(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()

	cases := []struct {
		name string
		s    State
		want string
	}{
		{"no grant id", State{SectionName: "Budget", Draft: "x"}, "missing grant opportunity id"},
		{"no section", State{ActiveID: 1, Draft: "x"}, "missing section name"},
		{"empty draft", State{ActiveID: 1, SectionName: "Budget", Draft: "  "}, "missing or empty draft content"},
	}
	for _, c := range cases {
		d := p.save(context.Background(), c.s)
		if d.Err == nil || !strings.Contains(*d.Err, c.want) {
			t.Errorf("%s: delta = %+v, want error containing %q", c.name, d, c.want)
		}
	}
}

func TestSaveNodeStoreFailure(t *testing.T) {
	p, st, _, _, _, _ := testPipeline()
	st.FailSaves = true

	d := p.save(context.Background(), State{ActiveID: 1, SectionName: "Budget", Draft: "x", Iterations: 1})
	if d.Err == nil || !strings.Contains(*d.Err, "database save failed") {
		t.Errorf("expected persistence error, got %+v", d)
	}
}

func TestHandleErrorKeepsErrAndLogs(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()

	s := State{Err: "extraction failed: portal down"}
	d := p.handleError(context.Background(), s)

	out := s.Apply(d)
	if out.Err != "extraction failed: portal down" {
		t.Errorf("error cleared: %q", out.Err)
	}
	last := out.Log[len(out.Log)-1]
	if last != "ERROR ENCOUNTERED IN PIPELINE: extraction failed: portal down" {
		t.Errorf("log entry = %q", last)
	}
}
