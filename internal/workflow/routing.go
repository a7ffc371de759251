package workflow

import (
	"strings"

	"grantmaster/internal/flow"
)

// DefaultMaxDraftIterations caps the draft/review loop; hitting it forces a
// save of whatever the latest draft is.
const DefaultMaxDraftIterations = 3

// approvalPhrases are the reviewer formulations that count as sign-off.
var approvalPhrases = []string{
	"looks good",
	"approved",
	"no changes needed",
	"ready to save",
}

// DefaultApprover reports whether feedback approves the draft: any approval
// phrase, matched case-insensitively, anywhere in the text. Empty or
// whitespace-only feedback is not approval.
func DefaultApprover(feedback string) bool {
	f := strings.ToLower(strings.TrimSpace(feedback))
	if f == "" {
		return false
	}
	for _, phrase := range approvalPhrases {
		if strings.Contains(f, phrase) {
			return true
		}
	}
	return false
}

// Routers are pure functions of the merged state. Every router prefers the
// error path: a set Err wins over whatever the happy path would pick.

func afterLogin(s State) flow.NodeID {
	if s.Err != "" || s.Session == nil {
		return nodeHandleError
	}
	return nodeExtract
}

func afterExtract(s State) flow.NodeID {
	if s.Err != "" {
		return nodeHandleError
	}
	return nodeScore
}

func afterScore(s State) flow.NodeID {
	if s.Err != "" {
		return nodeHandleError
	}
	return flow.Done
}

func afterDraft(s State) flow.NodeID {
	if s.Err != "" {
		return nodeHandleError
	}
	return nodeReview
}

// afterReview decides redraft vs save: error first, then the iteration cap,
// then the approval predicate. Anything else means another draft pass.
func (p *Pipeline) afterReview(s State) flow.NodeID {
	if s.Err != "" {
		return nodeHandleError
	}
	if s.Iterations >= p.maxIterations() {
		return nodeSave
	}
	if p.approver()(s.Feedback) {
		return nodeSave
	}
	return nodeDraft
}

func afterSave(s State) flow.NodeID {
	if s.Err != "" {
		return nodeHandleError
	}
	return flow.Done
}

func (p *Pipeline) maxIterations() int {
	if p.MaxDraftIterations > 0 {
		return p.MaxDraftIterations
	}
	return DefaultMaxDraftIterations
}

func (p *Pipeline) approver() func(string) bool {
	if p.Approver != nil {
		return p.Approver
	}
	return DefaultApprover
}
