package copilot

import (
	"github.com/pagecraft/canvas-copilot/internal/canvas"
	"github.com/pagecraft/canvas-copilot/internal/conversation"
	"github.com/pagecraft/canvas-copilot/internal/models"
)

// BuildRequest assembles the outbound assist payload. Every referenced id is
// looked up in the tree at build time so the endpoint sees current markup;
// ids that no longer locate are kept in Components but omitted from
// ComponentData, and the endpoint degrades gracefully. History entries are
// projected to their wire shape, stripping local-only fields.
func BuildRequest(message string, referencedIDs []string, history []conversation.Message, root canvas.Component) models.AssistRequest {
	req := models.AssistRequest{
		History:       make([]models.HistoryEntry, 0, len(history)),
		Message:       message,
		Components:    append([]string(nil), referencedIDs...),
		ComponentData: make(map[string]string, len(referencedIDs)),
	}

	for _, msg := range history {
		req.History = append(req.History, models.HistoryEntry{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Components: append([]string(nil), msg.ComponentIDs...),
		})
	}

	for _, id := range referencedIDs {
		if node := canvas.Locate(root, id); node != nil {
			req.ComponentData[id] = node.OuterHTML()
		}
	}

	return req
}
