// Package pkg provides the core libraries for Webby graph transpilation.
//
// # Overview
//
// Webby rewrites markup documents that embed Graphviz graph descriptions in
// <graphviz> tags: every embedded graph is rendered to an image file and the
// tag is replaced with an <img> element (plus a client-side <map> when the
// graph carries links). The pkg directory is organized into three main areas:
//
//  1. [transpile] - Orchestration (scan → render → splice)
//  2. [fragment], [markup], [graphviz] - Domain logic (tags, documents, rendering)
//  3. [config], [errors], [observability] - Infrastructure (settings, error taxonomy, hooks)
//
// # Architecture
//
// The typical data flow through Webby:
//
//	Markup document with <graphviz> tags
//	         ↓
//	    [markup] package (parse + locate fragment tags)
//	         ↓
//	    [fragment] package (attributes, graph name, image tag assembly)
//	         ↓
//	    [graphviz] package (invoke the layout command per fragment)
//	         ↓
//	    Rewritten document + image files
//
// # Quick Start
//
// Transpile a document in one call:
//
//	import (
//	    "context"
//	    "github.com/benilovj/webby/pkg/transpile"
//	)
//
//	src := `<p>See:</p><graphviz>digraph g { a -> b }</graphviz>`
//	out, err := transpile.Transpile(context.Background(), src, transpile.Options{
//	    OutputRoot: "images",
//	})
//	// out references images/g.png instead of the <graphviz> tag
//
// Or keep a Runner for repeated passes:
//
//	runner := transpile.NewRunner(logger)
//	result, err := runner.Execute(ctx, src, opts)
//
// # Main Packages
//
// ## Domain Logic
//
// [fragment] - The <graphviz> tag model. Extracts per-fragment configuration
// (layout command, image format, target path), derives the graph name from
// the description head, decides whether a clickable map is needed, and
// assembles the replacement <img> markup.
//
// [markup] - Thin document layer over golang.org/x/net/html. Parses a
// document, finds fragment tags, and splices rendered replacements back in.
// Documents without fragments are returned byte-for-byte untouched.
//
// [graphviz] - Renderer processes. Probes layout commands, generates image
// files and map markup through stdin/stdout plumbing, and treats the
// diagnostics stream as the failure signal rather than the exit status.
//
// [preview] - In-process rendering via the embedded goccy/go-graphviz
// engine. Renders single graphs to SVG, PNG, or laid-out DOT without a
// Graphviz installation, for quick iteration on a fragment.
//
// ## Orchestration
//
// [transpile] - The complete transpilation pass (scan → render → splice)
// used by the CLI and the HTTP server. Ensures consistent behavior across
// all entry points, including fail-fast semantics and splice guards for
// downstream text filters.
//
// ## Infrastructure
//
// [config] - webby.toml settings (output directory, filters, renderer
// timeout, serve address) with validation and working-directory discovery.
//
// [errors] - Structured error taxonomy with machine-readable codes
// (RENDER_FAILED, MALFORMED_GRAPH_SOURCE, ...), renderer diagnostics
// payloads, and input validation helpers.
//
// [observability] - Hook interfaces for pass and fragment lifecycle events.
// The default hooks are no-ops; tests and metrics layers register their own.
//
// [buildinfo] - Build-time version information injected via ldflags.
//
// # Common Workflows
//
// Inspect a document without rendering:
//
//	doc, _ := markup.Parse(src)
//	for _, n := range doc.FindAll(fragment.TagName) {
//	    frag := fragment.FromNode(n)
//	    name, err := frag.Name()
//	    ...
//	}
//
// Render one fragment in-process:
//
//	frag, _ := preview.Find(src, "deps")
//	svg, _ := preview.Render(ctx, frag.Body, "svg")
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/transpile/...  # Specific package
//	go test -run TestExecute     # Specific behavior
//
// [transpile]: https://pkg.go.dev/github.com/benilovj/webby/pkg/transpile
// [fragment]: https://pkg.go.dev/github.com/benilovj/webby/pkg/fragment
// [markup]: https://pkg.go.dev/github.com/benilovj/webby/pkg/markup
// [graphviz]: https://pkg.go.dev/github.com/benilovj/webby/pkg/graphviz
// [preview]: https://pkg.go.dev/github.com/benilovj/webby/pkg/preview
// [config]: https://pkg.go.dev/github.com/benilovj/webby/pkg/config
// [errors]: https://pkg.go.dev/github.com/benilovj/webby/pkg/errors
// [observability]: https://pkg.go.dev/github.com/benilovj/webby/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/benilovj/webby/pkg/buildinfo
package pkg
