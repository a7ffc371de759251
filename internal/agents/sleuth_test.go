package agents

import (
	"context"
	"testing"
)

func TestParseOpportunitiesFromFencedArray(t *testing.T) {
	llm := &ScriptLLM{Replies: []string{"```json\n[" +
		`{"title":"Researched Grant Alpha","funder":"Live Funder Inc.","deadline":"2026-01-15","description":"AI ethics work","eligibility":"nonprofits","focus_areas":"AI Ethics","raw_research_data":"notes"},` +
		`{"title":"Researched Grant Beta","funder":"Web Data Funder LLC","deadline":"2026-02-20","description":"online learning","eligibility":"US institutions","focus_areas":"Data Science","raw_research_data":""}` +
		"]\n```"}}
	s := NewSleuth(llm)

	got, err := s.ParseOpportunities(context.Background(), "portal page text")
	if err != nil {
		t.Fatalf("parse opportunities: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 opportunities, got %d", len(got))
	}
	if got[0].Title != "Researched Grant Alpha" || got[0].Funder != "Live Funder Inc." {
		t.Errorf("first opportunity = %+v", got[0])
	}
	if got[1].RawResearchData != "" {
		t.Errorf("expected empty raw data, got %q", got[1].RawResearchData)
	}
}

func TestParseOpportunitiesEmptyArray(t *testing.T) {
	llm := &ScriptLLM{Replies: []string{"[]"}}
	got, err := NewSleuth(llm).ParseOpportunities(context.Background(), "nothing here")
	if err != nil {
		t.Fatalf("parse opportunities: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no opportunities, got %d", len(got))
	}
}

func TestParseOpportunitiesRejectsNonJSON(t *testing.T) {
	llm := &ScriptLLM{Replies: []string{"Sorry, I could not find any grants."}}
	if _, err := NewSleuth(llm).ParseOpportunities(context.Background(), "text"); err == nil {
		t.Error("expected error for non-JSON reply")
	}
}

func TestCollectTextNilSession(t *testing.T) {
	s := NewSleuth(&ScriptLLM{})
	if _, err := s.CollectText(context.Background(), nil); err == nil {
		t.Error("expected error for nil session")
	}
}
