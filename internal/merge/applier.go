// Package merge applies AI-proposed HTML replacements onto a live component
// tree. Each replacement is keyed by component id and applied independently:
// one bad patch never aborts the rest of the batch, and a single component's
// patch is all-or-nothing.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pagecraft/canvas-copilot/internal/canvas"
)

// Outcome records the result of one component's patch.
type Outcome struct {
	ID      string
	Applied bool
	Reason  string
}

// Results aggregates per-component outcomes for a batch, ordered by id.
type Results []Outcome

// AppliedCount returns the number of successfully patched components.
func (r Results) AppliedCount() int {
	n := 0
	for _, out := range r {
		if out.Applied {
			n++
		}
	}
	return n
}

// FailedCount returns the number of components whose patch failed.
func (r Results) FailedCount() int {
	return len(r) - r.AppliedCount()
}

// Outcome returns the outcome recorded for the given component id.
func (r Results) Outcome(id string) (Outcome, bool) {
	for _, out := range r {
		if out.ID == id {
			return out, true
		}
	}
	return Outcome{}, false
}

// Applier merges replacement HTML into the component tree rooted at root and
// reports change signals through the notifier.
type Applier struct {
	root     canvas.Component
	notifier canvas.Notifier
	logger   *zap.Logger
}

// NewApplier creates an Applier for the given tree. A nil notifier discards
// change signals; a nil logger discards log output.
func NewApplier(root canvas.Component, notifier canvas.Notifier, logger *zap.Logger) *Applier {
	if notifier == nil {
		notifier = canvas.NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{root: root, notifier: notifier, logger: logger}
}

// Apply merges each (id, replacement HTML) pair into the tree and returns
// the per-component outcomes in sorted id order. The tree mutates in place;
// one CanvasRefreshed signal is emitted per call, even for an empty batch.
func (a *Applier) Apply(modifications map[string]string) Results {
	ids := make([]string, 0, len(modifications))
	for id := range modifications {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make(Results, 0, len(ids))
	for _, id := range ids {
		out := a.applyOne(id, modifications[id])
		if out.Applied {
			a.logger.Debug("applied modification", zap.String("component_id", id))
		} else {
			a.logger.Warn("modification failed",
				zap.String("component_id", id),
				zap.String("reason", out.Reason))
		}
		results = append(results, out)
	}

	a.notifier.CanvasRefreshed()
	return results
}

// applyOne patches a single component. A panic raised by the host tree is
// contained here and recorded as this component's failure.
func (a *Applier) applyOne(id, replacement string) (out Outcome) {
	out = Outcome{ID: id}
	defer func() {
		if r := recover(); r != nil {
			out.Applied = false
			out.Reason = fmt.Sprintf("patch panicked: %v", r)
		}
	}()

	node := canvas.Locate(a.root, id)
	if node == nil {
		out.Reason = "not found"
		return out
	}

	snapshot := node.Attributes()
	trimmed := strings.TrimSpace(replacement)

	// An empty replacement empties the component out.
	if trimmed == "" {
		if err := node.SetChildrenHTML(""); err != nil {
			out.Reason = err.Error()
			return out
		}
		a.notifier.ComponentChanged(id)
		out.Applied = true
		return out
	}

	frag := singleElement(trimmed, node.Tag())
	if frag != nil && strings.EqualFold(frag.tag, node.Tag()) {
		// Full-element replacement: the fragment's attributes win over the
		// old ones and its inner markup becomes the new children. The
		// identifier is restored from the snapshot; the component's identity
		// never changes even when the returned markup carries a different id.
		if err := node.SetChildrenHTML(frag.innerHTML); err != nil {
			out.Reason = err.Error()
			return out
		}
		merged := make(map[string]string, len(snapshot)+len(frag.attrs))
		for k, v := range snapshot {
			merged[k] = v
		}
		for k, v := range frag.attrs {
			merged[k] = v
		}
		if origID, ok := snapshot["id"]; ok {
			merged["id"] = origID
		} else {
			delete(merged, "id")
		}
		node.SetAttributes(merged)
	} else {
		// Inner-content replacement: the whole string becomes the new
		// children; the component's own tag and attributes stay untouched.
		if err := node.SetChildrenHTML(replacement); err != nil {
			out.Reason = err.Error()
			return out
		}
	}

	a.notifier.ComponentChanged(id)
	out.Applied = true
	return out
}
