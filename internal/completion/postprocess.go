package completion

import (
	"encoding/json"
	"strings"

	"github.com/pagecraft/canvas-copilot/internal/models"
)

// Postprocess turns the model's raw text output into the assist response
// shape. Incidental code-fence wrapping is stripped before decoding. Text
// that still does not decode as the expected shape degrades to a reply-only
// response instead of failing the round; the plugin side treats a missing
// modifications mapping as empty.
func Postprocess(raw string) *models.AssistResponse {
	text := stripCodeFence(strings.TrimSpace(raw))

	var resp models.AssistResponse
	if err := json.Unmarshal([]byte(text), &resp); err == nil && resp.Reply != "" {
		return &resp
	}

	return &models.AssistResponse{Reply: strings.TrimSpace(raw)}
}

// stripCodeFence removes a single wrapping code fence, tolerating a language
// tag after the opening backticks. Text that is not fully fenced is returned
// unchanged.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return s
	}
	inner := strings.TrimPrefix(s, "```")
	newline := strings.IndexByte(inner, '\n')
	if newline < 0 {
		return s
	}
	inner = inner[newline+1:]
	inner = strings.TrimSuffix(inner, "```")
	return strings.TrimSpace(inner)
}
