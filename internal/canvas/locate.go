package canvas

// Locate finds the component with the given id in the tree rooted at root,
// checking root itself first and then descending depth-first in child order.
// Every call re-walks from root; the tree may have mutated between calls, so
// results are never cached. Returns nil when no component matches. If
// duplicate ids exist the first match in pre-order wins.
func Locate(root Component, id string) Component {
	if root == nil || id == "" {
		return nil
	}
	if root.ID() == id {
		return root
	}
	for _, child := range root.Children() {
		if found := Locate(child, id); found != nil {
			return found
		}
	}
	return nil
}
