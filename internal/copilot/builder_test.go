package copilot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecraft/canvas-copilot/internal/canvas"
	"github.com/pagecraft/canvas-copilot/internal/conversation"
)

func TestBuildRequest(t *testing.T) {
	root, err := canvas.Parse(`<button class="btn" id="c1">Click</button>`)
	require.NoError(t, err)

	history := []conversation.Message{
		{Role: conversation.RoleUser, Content: "hello", ComponentIDs: []string{"c1"}},
		{Role: conversation.RoleAssistant, Content: "hi there"},
	}

	req := BuildRequest("make it red", []string{"c1"}, history, root)

	assert.Equal(t, "make it red", req.Message)
	assert.Equal(t, []string{"c1"}, req.Components)
	assert.Equal(t, map[string]string{
		"c1": `<button class="btn" id="c1">Click</button>`,
	}, req.ComponentData)

	require.Len(t, req.History, 2)
	assert.Equal(t, "user", req.History[0].Role)
	assert.Equal(t, "hello", req.History[0].Content)
	assert.Equal(t, []string{"c1"}, req.History[0].Components)
	assert.Equal(t, "assistant", req.History[1].Role)
}

func TestBuildRequest_UnlocatableIDKeptInComponents(t *testing.T) {
	root, err := canvas.Parse(`<div id="present"></div>`)
	require.NoError(t, err)

	req := BuildRequest("go", []string{"present", "gone"}, nil, root)

	assert.Equal(t, []string{"present", "gone"}, req.Components)
	assert.Contains(t, req.ComponentData, "present")
	assert.NotContains(t, req.ComponentData, "gone", "stale ids carry no markup")
}

func TestBuildRequest_ErrorEntriesProjectedAsContent(t *testing.T) {
	root, err := canvas.Parse(`<div id="d1"></div>`)
	require.NoError(t, err)

	history := []conversation.Message{
		{Role: conversation.RoleUser, Content: "hello"},
		{Role: conversation.RoleAssistant, Content: "service unreachable", IsError: true},
	}

	req := BuildRequest("retry", nil, history, root)

	// The wire shape has no error flag; the entry rides along as plain content.
	require.Len(t, req.History, 2)
	assert.Equal(t, "service unreachable", req.History[1].Content)
}

func TestBuildRequest_EmptyReferences(t *testing.T) {
	root, err := canvas.Parse(`<div id="d1"></div>`)
	require.NoError(t, err)

	req := BuildRequest("just chat", nil, nil, root)

	assert.Empty(t, req.Components)
	assert.Empty(t, req.ComponentData)
	assert.Empty(t, req.History)
}
