package agents

import "bytes"

// cleanJSON strips markdown code fences and leading/trailing whitespace from
// LLM responses. Models often wrap JSON in ```json ... ``` blocks. This
// handles: ```json\n{...}\n```, ```\n{...}\n```, and bare JSON.
func cleanJSON(data []byte) []byte {
	s := bytes.TrimSpace(data)
	if len(s) == 0 {
		return s
	}

	if bytes.HasPrefix(s, []byte("```")) {
		// Strip opening fence line
		if idx := bytes.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		}
		// Strip closing fence
		if bytes.HasSuffix(s, []byte("```")) {
			s = s[:len(s)-3]
		}
		s = bytes.TrimSpace(s)
	}

	return s
}

// clampScore forces a suitability score into the 1..10 range.
func clampScore(score float64) float64 {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
