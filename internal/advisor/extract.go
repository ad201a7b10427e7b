package advisor

import (
	"fmt"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// firstJSONObject extracts the first top-level JSON object from free text:
// from the first '{' to its matching '}', honoring strings and escapes.
func firstJSONObject(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	if start < 0 {
		return "", fmt.Errorf("%w: no JSON object in advisor response", model.ErrParse)
	}
	return "", fmt.Errorf("%w: unterminated JSON object in advisor response", model.ErrParse)
}
