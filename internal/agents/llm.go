package agents

import (
	"context"
	"fmt"
)

// LLMClient abstracts the chat-completion backend so collaborators can be
// tested without network access.
type LLMClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LLMSettings configures a concrete LLM client.
type LLMSettings struct {
	Model   string
	APIKey  string
	BaseURL string
}

// PromptCall records one Complete invocation made against a ScriptLLM.
type PromptCall struct {
	System string
	User   string
}

// ScriptLLM is a scripted LLMClient for tests. It replays Replies in order
// (repeating the last one when exhausted) and records every call.
type ScriptLLM struct {
	Replies []string
	Err     error

	Calls []PromptCall
	next  int
}

func (s *ScriptLLM) Complete(_ context.Context, system, user string) (string, error) {
	s.Calls = append(s.Calls, PromptCall{System: system, User: user})
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Replies) == 0 {
		return "", fmt.Errorf("scriptllm: no replies configured")
	}
	i := s.next
	if i >= len(s.Replies) {
		i = len(s.Replies) - 1
	}
	s.next++
	return s.Replies[i], nil
}
