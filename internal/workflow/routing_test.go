package workflow

import (
	"testing"

	"grantmaster/internal/agents"
	"grantmaster/internal/flow"
)

func TestDefaultApprover(t *testing.T) {
	cases := []struct {
		feedback string
		want     bool
	}{
		{"This draft looks good!", true},
		{"Consider this APPROVED.", true},
		{"No changes needed from my side.", true},
		{"I think it is ready to save.", true},
		{"Needs major revisions.", false},
		{"", false},
		{"   ", false},
	}
	for _, c := range cases {
		if got := DefaultApprover(c.feedback); got != c.want {
			t.Errorf("DefaultApprover(%q) = %v, want %v", c.feedback, got, c.want)
		}
	}
}

func TestAfterLogin(t *testing.T) {
	if got := afterLogin(State{Session: &agents.Session{}}); got != nodeExtract {
		t.Errorf("live session routes to %s, want extract", got)
	}
	if got := afterLogin(State{}); got != nodeHandleError {
		t.Errorf("nil session routes to %s, want handle_error", got)
	}
	if got := afterLogin(State{Session: &agents.Session{}, Err: "boom"}); got != nodeHandleError {
		t.Errorf("error state routes to %s, want handle_error", got)
	}
}

func TestAfterExtractAndScore(t *testing.T) {
	if got := afterExtract(State{}); got != nodeScore {
		t.Errorf("afterExtract = %s, want score", got)
	}
	if got := afterExtract(State{Err: "boom"}); got != nodeHandleError {
		t.Errorf("afterExtract with error = %s, want handle_error", got)
	}
	if got := afterScore(State{}); got != flow.Done {
		t.Errorf("afterScore = %s, want done", got)
	}
	if got := afterScore(State{Err: "boom"}); got != nodeHandleError {
		t.Errorf("afterScore with error = %s, want handle_error", got)
	}
}

func TestAfterReview(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()

	cases := []struct {
		name string
		s    State
		want flow.NodeID
	}{
		{"error wins over approval", State{Err: "boom", Feedback: "approved", Iterations: 1}, nodeHandleError},
		{"at max iterations forces save", State{Feedback: "Needs changes", Iterations: 3}, nodeSave},
		{"above max iterations forces save", State{Feedback: "Still needs changes", Iterations: 4}, nodeSave},
		{"approval saves", State{Feedback: "This draft looks good!", Iterations: 1}, nodeSave},
		{"critique redrafts", State{Feedback: "Needs major revisions.", Iterations: 1}, nodeDraft},
		{"empty feedback redrafts", State{Feedback: "", Iterations: 1}, nodeDraft},
		{"whitespace feedback redrafts", State{Feedback: "   ", Iterations: 1}, nodeDraft},
	}
	for _, c := range cases {
		if got := p.afterReview(c.s); got != c.want {
			t.Errorf("%s: afterReview = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestAfterReviewPluggableApprover(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()
	p.Approver = func(feedback string) bool { return feedback == "SHIP IT" }

	if got := p.afterReview(State{Feedback: "SHIP IT", Iterations: 1}); got != nodeSave {
		t.Errorf("custom approver ignored: %s", got)
	}
	if got := p.afterReview(State{Feedback: "looks good", Iterations: 1}); got != nodeDraft {
		t.Errorf("default phrases still applied with custom approver: %s", got)
	}
}

func TestAfterSave(t *testing.T) {
	if got := afterSave(State{}); got != flow.Done {
		t.Errorf("afterSave = %s, want done", got)
	}
	if got := afterSave(State{Err: "boom"}); got != nodeHandleError {
		t.Errorf("afterSave with error = %s, want handle_error", got)
	}
}
