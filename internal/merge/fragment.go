package merge

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fragmentElement describes the sole top-level element of a replacement
// fragment, extracted for the full-element replacement check.
type fragmentElement struct {
	tag       string
	attrs     map[string]string
	innerHTML string
}

// singleElement parses markup as a fragment in the context of the target
// tag and returns its single top-level element, or nil when the fragment
// has zero or multiple top-level elements. Comments and whitespace-only
// text at the top level are ignored; any non-whitespace top-level text
// disqualifies the fragment, since it could not survive a full-element
// replacement.
func singleElement(markup, contextTag string) *fragmentElement {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     strings.ToLower(contextTag),
		DataAtom: atom.Lookup([]byte(strings.ToLower(contextTag))),
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil
	}

	var elem *html.Node
	for _, n := range nodes {
		switch n.Type {
		case html.ElementNode:
			if elem != nil {
				return nil
			}
			elem = n
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return nil
			}
		}
	}
	if elem == nil {
		return nil
	}

	attrs := make(map[string]string, len(elem.Attr))
	for _, a := range elem.Attr {
		attrs[a.Key] = a.Val
	}

	var sb strings.Builder
	for c := elem.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return nil
		}
	}

	return &fragmentElement{tag: elem.Data, attrs: attrs, innerHTML: sb.String()}
}
