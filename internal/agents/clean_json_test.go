package agents

import (
	"encoding/json"
	"testing"
)

func TestCleanJSONStripsFenceWithLanguage(t *testing.T) {
	input := []byte("```json\n{\"rationale\":\"fits\",\"suitability_score\":7}\n```")
	var out map[string]any
	if err := json.Unmarshal(cleanJSON(input), &out); err != nil {
		t.Fatalf("unmarshal cleaned JSON: %v", err)
	}
	if out["rationale"] != "fits" {
		t.Errorf("rationale = %v, want fits", out["rationale"])
	}
}

func TestCleanJSONStripsBareFence(t *testing.T) {
	input := []byte("```\n{\"key\":\"value\"}\n```")
	var out map[string]string
	if err := json.Unmarshal(cleanJSON(input), &out); err != nil {
		t.Fatalf("unmarshal cleaned JSON: %v", err)
	}
	if out["key"] != "value" {
		t.Errorf("key = %q, want value", out["key"])
	}
}

func TestCleanJSONPassesBareJSON(t *testing.T) {
	input := []byte("  {\"key\":\"value\"}  ")
	got := string(cleanJSON(input))
	if got != `{"key":"value"}` {
		t.Errorf("cleanJSON = %q", got)
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{5.5, 5.5},
		{10, 10},
		{42, 10},
	}
	for _, c := range cases {
		if got := clampScore(c.in); got != c.want {
			t.Errorf("clampScore(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
