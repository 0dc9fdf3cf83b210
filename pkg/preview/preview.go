// Package preview renders graph fragments in-process, without an external
// renderer binary. It backs webby preview, which is meant for iterating on a
// single graph before running a full transpilation pass.
package preview

import (
	"bytes"
	"context"
	"os"

	"github.com/goccy/go-graphviz"

	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/fragment"
	"github.com/benilovj/webby/pkg/markup"
)

// ValidFormats maps the supported preview formats to their renderer formats.
var ValidFormats = map[string]graphviz.Format{
	"svg": graphviz.SVG,
	"png": graphviz.PNG,
	"dot": graphviz.XDOT,
}

// Render renders DOT source in-process and returns the output bytes.
func Render(ctx context.Context, src, format string) ([]byte, error) {
	f, ok := ValidFormats[format]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid preview format: %q (must be one of: svg, png, dot)", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedGraphSource, err, "parse graph source")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, f, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s preview", format)
	}
	return buf.Bytes(), nil
}

// RenderFile renders DOT source in-process and writes the output to path.
func RenderFile(ctx context.Context, src, format, path string) error {
	out, err := Render(ctx, src, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write preview %s", path)
	}
	return nil
}

// Fragments returns the graph fragments embedded in a document, in document
// order.
func Fragments(src string) ([]*fragment.Fragment, error) {
	doc, err := markup.Parse(src)
	if err != nil {
		return nil, err
	}
	nodes := doc.FindAll(fragment.TagName)
	frags := make([]*fragment.Fragment, 0, len(nodes))
	for _, n := range nodes {
		frags = append(frags, fragment.FromNode(n))
	}
	return frags, nil
}

// Find returns the fragment in a document whose graph name matches name.
// Fragments without an extractable name are skipped.
func Find(src, name string) (*fragment.Fragment, error) {
	frags, err := Fragments(src)
	if err != nil {
		return nil, err
	}
	for _, f := range frags {
		n, err := f.Name()
		if err != nil {
			continue
		}
		if n == name {
			return f, nil
		}
	}
	return nil, errors.New(errors.ErrCodeFragmentNotFound, "no graph fragment named %q", name)
}
