package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecraft/canvas-copilot/internal/canvas"
)

// recordingNotifier counts change signals for assertions.
type recordingNotifier struct {
	changed   []string
	refreshes int
}

func (n *recordingNotifier) ComponentChanged(id string) { n.changed = append(n.changed, id) }
func (n *recordingNotifier) CanvasRefreshed()           { n.refreshes++ }

func newButtonTree(t *testing.T) *canvas.Element {
	t.Helper()
	root, err := canvas.Parse(`<div id="wrap"><button class="btn" id="c1">Old</button></div>`)
	require.NoError(t, err)
	return root
}

func TestApply_EmptyBatchIsNoOp(t *testing.T) {
	root := newButtonTree(t)
	before := root.InnerHTML()
	notifier := &recordingNotifier{}

	results := NewApplier(root, notifier, nil).Apply(map[string]string{})

	assert.Empty(t, results)
	assert.Equal(t, before, root.InnerHTML(), "tree unchanged")
	assert.Empty(t, notifier.changed)
	assert.Equal(t, 1, notifier.refreshes, "one refresh even for an empty batch")
}

func TestApply_FullElementReplacement(t *testing.T) {
	root := newButtonTree(t)
	notifier := &recordingNotifier{}

	results := NewApplier(root, notifier, nil).Apply(map[string]string{
		"c1": `<button class="btn" style="color:red">Click</button>`,
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)

	node := canvas.Locate(root, "c1")
	require.NotNil(t, node)
	assert.Equal(t, "button", node.Tag())

	want := map[string]string{"id": "c1", "class": "btn", "style": "color:red"}
	if diff := cmp.Diff(want, node.Attributes()); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, `<button class="btn" id="c1" style="color:red">Click</button>`, node.OuterHTML())

	assert.Equal(t, []string{"c1"}, notifier.changed)
	assert.Equal(t, 1, notifier.refreshes)
}

func TestApply_InnerContentReplacement(t *testing.T) {
	root := newButtonTree(t)

	results := NewApplier(root, canvas.NopNotifier{}, nil).Apply(map[string]string{
		"c1": `<span>A</span><span>B</span>`,
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)

	node := canvas.Locate(root, "c1")
	require.NotNil(t, node)
	assert.Equal(t, "button", node.Tag(), "own tag untouched")
	assert.Equal(t, map[string]string{"id": "c1", "class": "btn"}, node.Attributes(), "own attributes untouched")
	require.Len(t, node.Children(), 2)
	assert.Equal(t, `<button class="btn" id="c1"><span>A</span><span>B</span></button>`, node.OuterHTML())
}

func TestApply_TagMismatchFallsBackToInnerContent(t *testing.T) {
	root := newButtonTree(t)

	results := NewApplier(root, canvas.NopNotifier{}, nil).Apply(map[string]string{
		"c1": `<div class="panel">boxed</div>`,
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)

	node := canvas.Locate(root, "c1")
	require.NotNil(t, node)
	assert.Equal(t, "button", node.Tag())
	assert.Equal(t, map[string]string{"id": "c1", "class": "btn"}, node.Attributes())
	require.Len(t, node.Children(), 1)
	assert.Equal(t, "div", node.Children()[0].Tag())
}

func TestApply_EmptyHTMLEmptiesComponent(t *testing.T) {
	root := newButtonTree(t)
	notifier := &recordingNotifier{}

	results := NewApplier(root, notifier, nil).Apply(map[string]string{"c1": "   \n\t"})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)

	node := canvas.Locate(root, "c1")
	require.NotNil(t, node)
	assert.Empty(t, node.Children())
	assert.Equal(t, []string{"c1"}, notifier.changed)
}

func TestApply_BatchPartialFailure(t *testing.T) {
	root := newButtonTree(t)
	notifier := &recordingNotifier{}

	results := NewApplier(root, notifier, nil).Apply(map[string]string{
		"c1":    `<span>ok</span>`,
		"ghost": `<div>x</div>`,
	})

	require.Len(t, results, 2)
	assert.Equal(t, 1, results.AppliedCount())
	assert.Equal(t, 1, results.FailedCount())

	c1, ok := results.Outcome("c1")
	require.True(t, ok)
	assert.True(t, c1.Applied)

	ghost, ok := results.Outcome("ghost")
	require.True(t, ok)
	assert.False(t, ghost.Applied)
	assert.Equal(t, "not found", ghost.Reason)

	// The failing id never aborts the batch; c1's mutation took effect.
	node := canvas.Locate(root, "c1")
	require.NotNil(t, node)
	require.Len(t, node.Children(), 1)
	assert.Equal(t, "span", node.Children()[0].Tag())

	assert.Equal(t, []string{"c1"}, notifier.changed)
	assert.Equal(t, 1, notifier.refreshes, "one refresh per batch, not per id")
}

func TestApply_IdentityPreserved(t *testing.T) {
	root := newButtonTree(t)

	results := NewApplier(root, canvas.NopNotifier{}, nil).Apply(map[string]string{
		"c1": `<button id="evil" class="hacked">Click</button>`,
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)

	node := canvas.Locate(root, "c1")
	require.NotNil(t, node, "the node's identity never changes")
	assert.Equal(t, "c1", node.ID())
	assert.Equal(t, "hacked", node.Attributes()["class"], "other attributes still merge")
	assert.Nil(t, canvas.Locate(root, "evil"))
}

func TestApply_WhitespaceAndCommentSiblingsIgnored(t *testing.T) {
	root := newButtonTree(t)

	// Comment and whitespace siblings do not disqualify the single-element
	// check; this still counts as a full-element replacement.
	results := NewApplier(root, canvas.NopNotifier{}, nil).Apply(map[string]string{
		"c1": "<!-- generated -->\n  <button style=\"color:blue\">Go</button>\n",
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)

	node := canvas.Locate(root, "c1")
	require.NotNil(t, node)
	assert.Equal(t, "color:blue", node.Attributes()["style"])
	assert.Equal(t, "btn", node.Attributes()["class"], "old attributes survive the merge")
}

func TestApply_TopLevelTextForcesInnerContent(t *testing.T) {
	root := newButtonTree(t)

	results := NewApplier(root, canvas.NopNotifier{}, nil).Apply(map[string]string{
		"c1": `Click <button>me</button>`,
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)

	node := canvas.Locate(root, "c1")
	require.NotNil(t, node)
	assert.Equal(t, map[string]string{"id": "c1", "class": "btn"}, node.Attributes(), "attributes untouched in inner-content mode")
	require.Len(t, node.Children(), 2)
}

func TestApply_ResultsSortedByID(t *testing.T) {
	root, err := canvas.Parse(`<div id="b"></div><div id="a"></div><div id="c"></div>`)
	require.NoError(t, err)

	results := NewApplier(root, canvas.NopNotifier{}, nil).Apply(map[string]string{
		"c": "<span>3</span>",
		"a": "<span>1</span>",
		"b": "<span>2</span>",
	})

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.Equal(t, "c", results[2].ID)
}

// explodingComponent simulates a host tree node that panics during patching.
type explodingComponent struct {
	id string
}

func (e *explodingComponent) ID() string                        { return e.id }
func (e *explodingComponent) Tag() string                       { return "div" }
func (e *explodingComponent) Attributes() map[string]string     { return map[string]string{"id": e.id} }
func (e *explodingComponent) SetAttributes(map[string]string)   {}
func (e *explodingComponent) Children() []canvas.Component      { return nil }
func (e *explodingComponent) SetChildrenHTML(string) error      { panic("editor invariant violated") }
func (e *explodingComponent) OuterHTML() string                 { return "" }

// stubRoot lets a test tree mix real elements with misbehaving nodes.
type stubRoot struct {
	children []canvas.Component
}

func (s *stubRoot) ID() string                      { return "" }
func (s *stubRoot) Tag() string                     { return "body" }
func (s *stubRoot) Attributes() map[string]string   { return map[string]string{} }
func (s *stubRoot) SetAttributes(map[string]string) {}
func (s *stubRoot) Children() []canvas.Component    { return s.children }
func (s *stubRoot) SetChildrenHTML(string) error    { return nil }
func (s *stubRoot) OuterHTML() string               { return "" }

func TestApply_PanicIsolatedPerID(t *testing.T) {
	healthy := canvas.NewElement("div", map[string]string{"id": "ok"})
	root := &stubRoot{children: []canvas.Component{
		&explodingComponent{id: "boom"},
		healthy,
	}}
	notifier := &recordingNotifier{}

	results := NewApplier(root, notifier, nil).Apply(map[string]string{
		"boom": "<span>x</span>",
		"ok":   "<span>y</span>",
	})

	require.Len(t, results, 2)

	boom, found := results.Outcome("boom")
	require.True(t, found)
	assert.False(t, boom.Applied)
	assert.Contains(t, boom.Reason, "patch panicked")

	ok, found := results.Outcome("ok")
	require.True(t, found)
	assert.True(t, ok.Applied, "a panicking id never affects other ids")
	require.Len(t, healthy.Children(), 1)

	assert.Equal(t, []string{"ok"}, notifier.changed)
	assert.Equal(t, 1, notifier.refreshes)
}
