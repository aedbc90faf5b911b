package completion

import (
	"fmt"
	"strings"

	"github.com/pagecraft/canvas-copilot/internal/models"
)

// systemPrompt pins the model to the relay's output contract.
const systemPrompt = `You are an assistant embedded in a visual page builder. The user selects components on their canvas and asks you to change them. Each referenced component is given to you as its current HTML, keyed by a stable component id.

Respond with a single JSON object and nothing else:
{"reply": "<a short message for the user>", "modifications": {"<component-id>": "<replacement HTML>"}}

Rules:
- Only include ids in "modifications" for components you actually changed.
- A modification value may be a full replacement element or just new inner markup.
- Never invent component ids. If a component's HTML was not provided, you may still describe changes in "reply" but must not emit a modification for it.
- Do not wrap the JSON in a code fence.`

// buildMessages renders the assist payload into the upstream message list:
// the system prompt, the prior conversation and a final user message that
// embeds the current HTML of every referenced component.
func buildMessages(req models.AssistRequest) []chatMessage {
	messages := make([]chatMessage, 0, len(req.History)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})

	for _, entry := range req.History {
		messages = append(messages, chatMessage{Role: entry.Role, Content: entry.Content})
	}

	messages = append(messages, chatMessage{Role: "user", Content: renderUserMessage(req)})
	return messages
}

// renderUserMessage combines the user's instruction with the serialized HTML
// of each referenced component. Components whose HTML was not captured are
// marked as not provided; the model degrades gracefully for those.
func renderUserMessage(req models.AssistRequest) string {
	var sb strings.Builder
	sb.WriteString(req.Message)

	if len(req.Components) > 0 {
		sb.WriteString("\n\nReferenced components:")
		for _, id := range req.Components {
			if data, ok := req.ComponentData[id]; ok {
				fmt.Fprintf(&sb, "\n\nComponent %s:\n%s", id, data)
			} else {
				fmt.Fprintf(&sb, "\n\nComponent %s:\n[HTML not provided]", id)
			}
		}
	}

	return sb.String()
}
