package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageComponent(t *testing.T) {
	state := NewState()

	assert.True(t, state.StageComponent("c1"))
	assert.True(t, state.StageComponent("c2"))
	assert.False(t, state.StageComponent("c1"), "duplicate ids are rejected")
	assert.False(t, state.StageComponent(""), "blank ids are rejected")
	assert.False(t, state.StageComponent("   "), "whitespace ids are rejected")

	assert.Equal(t, []string{"c1", "c2"}, state.Pending())
}

func TestUnstageComponent(t *testing.T) {
	state := NewState()
	state.StageComponent("c1")
	state.StageComponent("c2")
	state.StageComponent("c3")

	assert.True(t, state.UnstageComponent("c2"))
	assert.False(t, state.UnstageComponent("c2"), "already removed")
	assert.False(t, state.UnstageComponent("ghost"))

	assert.Equal(t, []string{"c1", "c3"}, state.Pending())

	// A removed id can be staged again.
	assert.True(t, state.StageComponent("c2"))
	assert.Equal(t, []string{"c1", "c3", "c2"}, state.Pending())
}

func TestBeginSubmit_PendingBecomesLastReferenced(t *testing.T) {
	state := NewState()
	state.StageComponent("c1")
	state.StageComponent("c2")

	refs, err := state.BeginSubmit()
	require.NoError(t, err)

	assert.Equal(t, []string{"c1", "c2"}, refs)
	assert.Empty(t, state.Pending(), "pending selection is cleared atomically on submit")
	assert.Equal(t, []string{"c1", "c2"}, state.LastReferenced())
}

func TestBeginSubmit_CarryOverWhenPendingEmpty(t *testing.T) {
	state := NewState()
	state.StageComponent("c1")

	_, err := state.BeginSubmit()
	require.NoError(t, err)
	state.FinishSubmit()

	// Follow-up with no new selection still carries the prior context.
	refs, err := state.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, refs)
	assert.Equal(t, []string{"c1"}, state.LastReferenced())
}

func TestBeginSubmit_EmptyConversation(t *testing.T) {
	state := NewState()

	refs, err := state.BeginSubmit()
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestBeginSubmit_RejectsWhileInFlight(t *testing.T) {
	state := NewState()
	state.StageComponent("c1")

	_, err := state.BeginSubmit()
	require.NoError(t, err)
	assert.True(t, state.Submitting())

	_, err = state.BeginSubmit()
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	state.FinishSubmit()
	assert.False(t, state.Submitting())

	_, err = state.BeginSubmit()
	assert.NoError(t, err)
}

func TestHistoryCopies(t *testing.T) {
	state := NewState()
	state.Append(Message{Role: RoleUser, Content: "hello", ComponentIDs: []string{"c1"}})

	history := state.History()
	require.Len(t, history, 1)

	// Mutating the returned slice must not affect the state.
	history[0].Content = "mutated"
	assert.Equal(t, "hello", state.History()[0].Content)
}

func TestNewSelectionReplacesLastReferenced(t *testing.T) {
	state := NewState()
	state.StageComponent("c1")
	_, err := state.BeginSubmit()
	require.NoError(t, err)
	state.FinishSubmit()

	state.StageComponent("c9")
	refs, err := state.BeginSubmit()
	require.NoError(t, err)

	assert.Equal(t, []string{"c9"}, refs)
	assert.Equal(t, []string{"c9"}, state.LastReferenced())
}
