package canvas

// Component is the capability set the patching core needs from a node of the
// host editor's tree. The core never creates or destroys components; it only
// reads them and mutates attributes and children of components it locates by
// id. Concrete editors adapt their own node type to this interface; Element
// is the in-memory implementation used by the demo CLI and tests.
type Component interface {
	// ID returns the component's stable identifier, or "" when the node
	// carries none (text nodes, anonymous wrappers).
	ID() string

	// Tag returns the component's tag name (e.g. "button", "div").
	Tag() string

	// Attributes returns a copy of the component's attribute mapping.
	Attributes() map[string]string

	// SetAttributes replaces the component's attribute mapping.
	SetAttributes(attrs map[string]string)

	// Children returns the component's current child components in order.
	Children() []Component

	// SetChildrenHTML discards the component's children and rebuilds them
	// from the given markup. An empty string leaves the component childless.
	SetChildrenHTML(markup string) error

	// OuterHTML serializes the component, attributes and children included.
	OuterHTML() string
}

// Notifier receives change signals from the merge core. ComponentChanged is
// emitted once per successfully patched component so the host editor can
// record an undo step; CanvasRefreshed is emitted once per batch.
type Notifier interface {
	ComponentChanged(id string)
	CanvasRefreshed()
}

// NopNotifier discards all change signals.
type NopNotifier struct{}

// ComponentChanged implements Notifier.
func (NopNotifier) ComponentChanged(string) {}

// CanvasRefreshed implements Notifier.
func (NopNotifier) CanvasRefreshed() {}
