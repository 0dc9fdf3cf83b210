// Package fragment extracts embedded graph descriptions from fragment tags
// and derives everything a renderer invocation needs from them: the graph
// name, the output filename, whether a clickable image map is required, and
// the replacement image markup.
//
// A fragment tag looks like:
//
//	<graphviz path="diagrams" cmd="dot" type="png" alt="module graph">
//	digraph deps {
//	  webby -> graphviz [URL="/graphviz.html"];
//	}
//	</graphviz>
//
// The path, cmd, and type attributes configure the render; class, style, id,
// and alt are carried through onto the generated image tag in that order.
// Any other attribute is ignored.
package fragment

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/markup"
)

const (
	// TagName is the element name that marks an embedded graph description.
	TagName = "graphviz"

	// DefaultRenderer is the layout command used when a fragment has no cmd
	// attribute.
	DefaultRenderer = "dot"

	// DefaultFormat is the image format used when a fragment has no type
	// attribute.
	DefaultFormat = "png"
)

// passthroughKeys lists the attributes copied from the fragment tag onto the
// generated image tag, in the order they are emitted.
var passthroughKeys = []string{"class", "style", "id", "alt"}

// namePattern matches the head of a graph description and captures the graph
// name. It accepts an optional strict modifier and both graph and digraph
// declarations.
var namePattern = regexp.MustCompile(`^\s*(?:strict\s+)?(?:di)?graph\s+([A-Za-z_][A-Za-z0-9_]*)\s+\{`)

// Attr is a single passthrough attribute.
type Attr struct {
	Key string
	Val string
}

// Fragment is the extracted configuration and source of one fragment tag.
type Fragment struct {
	// Path is the output directory relative to the site root, or "" to
	// write next to the root. Slash-separated as seen by the document.
	Path string

	// Renderer is the layout command to invoke (cmd attribute).
	Renderer string

	// Format is the image format to produce (type attribute).
	Format string

	// Passthrough holds the attributes copied onto the image tag, only
	// those present on the fragment, in emission order.
	Passthrough []Attr

	// Body is the graph description text, trimmed of surrounding
	// whitespace.
	Body string
}

// FromNode extracts a Fragment from a fragment element node.
func FromNode(n *html.Node) *Fragment {
	f := &Fragment{
		Renderer: DefaultRenderer,
		Format:   DefaultFormat,
		Body:     strings.TrimSpace(markup.Text(n)),
	}

	if v, ok := markup.Attr(n, "path"); ok {
		f.Path = v
	}
	if v, ok := markup.Attr(n, "cmd"); ok {
		f.Renderer = v
	}
	if v, ok := markup.Attr(n, "type"); ok {
		f.Format = v
	}

	for _, key := range passthroughKeys {
		if v, ok := markup.Attr(n, key); ok {
			f.Passthrough = append(f.Passthrough, Attr{Key: key, Val: v})
		}
	}

	return f
}

// Name extracts the graph name from the fragment body. The name is the
// identifier following the graph or digraph keyword in the source head.
func (f *Fragment) Name() (string, error) {
	m := namePattern.FindStringSubmatch(f.Body)
	if m == nil {
		return "", errors.New(errors.ErrCodeMalformedGraphSource,
			"could not extract a graph name from source starting %q", snippet(f.Body))
	}
	return m[1], nil
}

// NeedsMap reports whether the graph source asks for clickable regions.
// This is a plain substring check over the whole body, so occurrences inside
// comments or labels count too. A spurious map is harmless.
func (f *Fragment) NeedsMap() bool {
	return strings.Contains(f.Body, "URL=") || strings.Contains(f.Body, "href=")
}

// ImageName returns the image filename for the given graph name, relative to
// the site root and slash-separated. The same inputs always produce the same
// name, so graphs sharing a name overwrite each other's output.
func (f *Fragment) ImageName(name string) string {
	file := name + "." + f.Format
	if f.Path == "" {
		return file
	}
	return path.Join(f.Path, file)
}

// ImgTag assembles the replacement image tag for the fragment. Passthrough
// attributes appear after src in their fixed order, and a usemap reference is
// added when the graph source asks for clickable regions.
func (f *Fragment) ImgTag(name string) string {
	var b strings.Builder
	b.WriteString(`<img src="`)
	b.WriteString(html.EscapeString(f.ImageName(name)))
	b.WriteString(`"`)

	for _, a := range f.Passthrough {
		b.WriteString(` `)
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteString(`"`)
	}

	if f.NeedsMap() {
		b.WriteString(` usemap="`)
		b.WriteString(html.EscapeString(name))
		b.WriteString(`"`)
	}

	b.WriteString(` />`)
	return b.String()
}

// snippet shortens a body for use in error messages.
func snippet(body string) string {
	const max = 40
	body = strings.TrimSpace(body)
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[:i]
	}
	if len(body) > max {
		body = body[:max]
	}
	return body
}
