package canvas

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is an in-memory Component backed by the x/net/html parser. An
// Element is either an element node (tag set) or a text node (tag empty,
// text set). Comment and doctype nodes are dropped during parsing.
type Element struct {
	tag      string
	attrs    map[string]string
	children []*Element
	text     string
}

// NewElement creates an element node with the given tag and attributes.
func NewElement(tag string, attrs map[string]string) *Element {
	e := &Element{tag: strings.ToLower(tag), attrs: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		e.attrs[k] = v
	}
	return e
}

// NewText creates a text node.
func NewText(text string) *Element {
	return &Element{text: text}
}

// Parse builds an Element tree from markup. The top-level nodes are wrapped
// in a synthetic body element so an arbitrary document fragment can serve as
// a canvas root.
func Parse(markup string) (*Element, error) {
	children, err := parseFragment(markup, "body")
	if err != nil {
		return nil, fmt.Errorf("failed to parse canvas markup: %w", err)
	}
	root := &Element{tag: "body", attrs: map[string]string{}}
	root.children = children
	return root, nil
}

// IsText reports whether the element is a text node.
func (e *Element) IsText() bool {
	return e.tag == ""
}

// Text returns the text content of a text node, "" for element nodes.
func (e *Element) Text() string {
	return e.text
}

// AppendChild appends a child node.
func (e *Element) AppendChild(child *Element) {
	e.children = append(e.children, child)
}

// ID implements Component. The identifier is the id attribute.
func (e *Element) ID() string {
	return e.attrs["id"]
}

// Tag implements Component.
func (e *Element) Tag() string {
	return e.tag
}

// Attributes implements Component. The returned map is a copy; mutating it
// does not affect the element.
func (e *Element) Attributes() map[string]string {
	attrs := make(map[string]string, len(e.attrs))
	for k, v := range e.attrs {
		attrs[k] = v
	}
	return attrs
}

// SetAttributes implements Component.
func (e *Element) SetAttributes(attrs map[string]string) {
	e.attrs = make(map[string]string, len(attrs))
	for k, v := range attrs {
		e.attrs[k] = v
	}
}

// Children implements Component.
func (e *Element) Children() []Component {
	children := make([]Component, len(e.children))
	for i, c := range e.children {
		children[i] = c
	}
	return children
}

// SetChildrenHTML implements Component. The markup is parsed in the context
// of the element's own tag so content models like list items resolve the way
// a browser would.
func (e *Element) SetChildrenHTML(markup string) error {
	if e.IsText() {
		return fmt.Errorf("text node cannot hold children")
	}
	if strings.TrimSpace(markup) == "" {
		e.children = nil
		return nil
	}
	children, err := parseFragment(markup, e.tag)
	if err != nil {
		return fmt.Errorf("failed to parse child markup: %w", err)
	}
	e.children = children
	return nil
}

// OuterHTML implements Component. Attributes are rendered in sorted key
// order so serialization is deterministic.
func (e *Element) OuterHTML() string {
	var sb strings.Builder
	if err := html.Render(&sb, e.toHTMLNode()); err != nil {
		return ""
	}
	return sb.String()
}

// InnerHTML serializes the element's children without the element itself.
func (e *Element) InnerHTML() string {
	var sb strings.Builder
	for _, c := range e.children {
		if err := html.Render(&sb, c.toHTMLNode()); err != nil {
			return ""
		}
	}
	return sb.String()
}

// parseFragment parses markup as a fragment in the context of the given tag
// and converts the result to Element nodes.
func parseFragment(markup, contextTag string) ([]*Element, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     contextTag,
		DataAtom: atom.Lookup([]byte(contextTag)),
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, err
	}
	var elements []*Element
	for _, n := range nodes {
		if el := fromHTMLNode(n); el != nil {
			elements = append(elements, el)
		}
	}
	return elements, nil
}

func fromHTMLNode(n *html.Node) *Element {
	switch n.Type {
	case html.TextNode:
		return &Element{text: n.Data}
	case html.ElementNode:
		attrs := make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
		el := &Element{tag: n.Data, attrs: attrs}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTMLNode(c); child != nil {
				el.children = append(el.children, child)
			}
		}
		return el
	default:
		return nil
	}
}

func (e *Element) toHTMLNode() *html.Node {
	if e.IsText() {
		return &html.Node{Type: html.TextNode, Data: e.text}
	}
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     e.tag,
		DataAtom: atom.Lookup([]byte(e.tag)),
	}
	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: e.attrs[k]})
	}
	for _, c := range e.children {
		n.AppendChild(c.toHTMLNode())
	}
	return n
}
