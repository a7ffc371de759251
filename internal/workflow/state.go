// Package workflow wires the grant-production pipelines: a research walk
// (login, extract, score) and a drafting walk (draft, review, save), both
// running on the flow engine with an immutable typed state record.
package workflow

import (
	"grantmaster/internal/agents"
	"grantmaster/internal/store"
)

// Credentials authenticate against the grant portal.
type Credentials struct {
	Username string
	Password string
}

// Opportunity is one extracted grant inside a walk, annotated in place as
// scoring progresses. Failure marks a per-item problem; the batch continues
// past it.
type Opportunity struct {
	store.GrantOpportunity

	Failure string
}

// State is the record a pipeline walk accumulates. Nodes receive a snapshot
// and return a Delta; they never mutate the snapshot itself.
type State struct {
	Profile     *store.OrganizationProfile
	SiteURL     string
	Credentials Credentials

	Session       *agents.Session
	Opportunities []Opportunity

	ActiveID     int64
	ActiveGrant  *store.GrantOpportunity
	SectionName  string
	Instructions string
	Draft        string
	Feedback     string
	Iterations   int

	Err string
	Log []string
}

// Delta is a node's partial update. Nil fields leave the state untouched;
// Log entries are appended. An empty Err can never blank an existing error.
type Delta struct {
	Session       *agents.Session
	Opportunities []Opportunity
	Draft         *string
	Feedback      *string
	Iterations    *int
	Err           *string
	Log           []string
}

// Apply merges a delta into a copy of the state and returns the copy.
func (s State) Apply(d Delta) State {
	out := s
	if d.Session != nil {
		out.Session = d.Session
	}
	if d.Opportunities != nil {
		out.Opportunities = d.Opportunities
	}
	if d.Draft != nil {
		out.Draft = *d.Draft
	}
	if d.Feedback != nil {
		out.Feedback = *d.Feedback
	}
	if d.Iterations != nil {
		out.Iterations = *d.Iterations
	}
	if d.Err != nil && *d.Err != "" {
		out.Err = *d.Err
	}
	if len(d.Log) > 0 {
		merged := make([]string, 0, len(s.Log)+len(d.Log))
		merged = append(merged, s.Log...)
		merged = append(merged, d.Log...)
		out.Log = merged
	}
	return out
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }
