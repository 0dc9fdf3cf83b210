// Package markup provides HTML tree parsing and in-place node replacement
// for page content.
//
// Documents are parsed as body-level fragments since the filter runs on page
// content in the middle of a rendering pipeline, before any layout wraps it
// in a full HTML document. The tree is never mutated during traversal:
// callers collect the nodes they care about, compute replacements, and splice
// them in afterwards.
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/benilovj/webby/pkg/errors"
)

// Document is a parsed HTML fragment tree.
type Document struct {
	root *html.Node
}

// Parse parses src as body content and returns the document tree.
// Unknown elements (such as fragment tags) are preserved as ordinary
// element nodes.
func Parse(src string) (*Document, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse markup")
	}

	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{root: root}, nil
}

// FindAll returns every element with the given tag name in document order.
func (d *Document) FindAll(tag string) []*html.Node {
	var found []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			found = append(found, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return found
}

// Replace parses rendered as markup and splices the resulting nodes into the
// tree in place of n. The node must have been obtained from this document.
func (d *Document) Replace(n *html.Node, rendered string) error {
	parent := n.Parent
	if parent == nil {
		return errors.New(errors.ErrCodeInternal, "node is not attached to the document")
	}

	ctx := &html.Node{Type: html.ElementNode, Data: parent.Data, DataAtom: parent.DataAtom}
	nodes, err := html.ParseFragment(strings.NewReader(rendered), ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "parse replacement markup")
	}

	for _, repl := range nodes {
		parent.InsertBefore(repl, n)
	}
	parent.RemoveChild(n)
	return nil
}

// Render serializes the document tree back to a markup string.
func (d *Document) Render() (string, error) {
	var b strings.Builder
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize markup")
		}
	}
	return b.String(), nil
}

// Text returns the concatenated text content of n and its descendants.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Attr returns the value of the named attribute on n and whether it is set.
// Attribute names are matched as parsed, which for HTML input means lowercase.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
