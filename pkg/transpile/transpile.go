// Package transpile implements the markup rewriting pass for webby.
//
// A pass scans a document for <graphviz> fragment tags, renders each embedded
// graph to an image file through an external renderer, and splices an <img>
// tag (plus a clickable <map> when the graph carries link attributes) back
// into the document in the fragment's place.
//
// # Architecture
//
// Every fragment moves through the same stages:
//
//  1. Scan: parse the document and collect fragment tags in document order
//  2. Probe: confirm the fragment's renderer responds to -V
//  3. Name: extract the graph identifier from the fragment source
//  4. Render: generate the clickable map if needed, then the image file
//  5. Splice: replace the fragment tag with guarded replacement markup
//
// The first failing fragment aborts the pass; no rewritten markup is returned
// for a document that did not fully transpile. A document without fragments
// is returned untouched.
//
// # Usage
//
// Create a Runner and execute a pass:
//
//	runner := transpile.NewRunner(logger)
//	result, err := runner.Execute(ctx, src, transpile.Options{
//	    OutputRoot: "public",
//	    Filters:    []string{"textile"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.html", []byte(result.Markup), 0o644)
package transpile

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/fragment"
	"github.com/benilovj/webby/pkg/graphviz"
	"github.com/benilovj/webby/pkg/markup"
	"github.com/benilovj/webby/pkg/observability"
)

// =============================================================================
// Options - Pass Configuration
// =============================================================================

// Options contains all configuration for a transpilation pass.
// This struct supports JSON serialization for API requests.
type Options struct {
	// OutputRoot is the directory rendered images are written under. Image
	// references inside the document stay relative to it.
	OutputRoot string `json:"output_root,omitempty"`

	// Filters names the downstream text filters the document will pass
	// through, used to pick splice guards.
	Filters []string `json:"filters,omitempty"`

	// Timeout bounds each renderer invocation. Zero disables the limit.
	Timeout time.Duration `json:"timeout,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults for a pass.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative, got %s", o.Timeout)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a transpilation pass.
type Result struct {
	// Markup is the rewritten document.
	Markup string

	// Images lists the image files written, in document order.
	Images []string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pass execution statistics.
type Stats struct {
	FragmentCount int
	MapCount      int
	RenderTime    time.Duration
	TotalTime     time.Duration
}

// =============================================================================
// Runner - Pass Execution
// =============================================================================

// Runner executes transpilation passes.
//
// The Runner is stateless except for its logger - each Execute call creates
// its own renderer engine and diagnostics file, so multiple goroutines can
// safely share one Runner.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner with the given logger.
// If logger is nil, the default logger is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete scan → render → splice pass over a document.
func (r *Runner) Execute(ctx context.Context, src string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := markup.Parse(src)
	if err != nil {
		return nil, err
	}
	nodes := doc.FindAll(fragment.TagName)
	observability.Transpile().OnDocumentStart(ctx, len(nodes))

	if len(nodes) == 0 {
		// Nothing to rewrite, so the document is returned verbatim rather
		// than reserialized.
		r.Logger.Debug("no graph fragments found")
		observability.Transpile().OnDocumentComplete(ctx, 0, time.Since(start), nil)
		return &Result{Markup: src, Stats: Stats{TotalTime: time.Since(start)}}, nil
	}

	engine, err := graphviz.New(graphviz.Options{
		OutputRoot: opts.OutputRoot,
		Timeout:    opts.Timeout,
		Logger:     opts.Logger,
	})
	if err != nil {
		observability.Transpile().OnDocumentComplete(ctx, len(nodes), time.Since(start), err)
		return nil, err
	}
	defer engine.Close()

	result := &Result{Stats: Stats{FragmentCount: len(nodes)}}
	for _, n := range nodes {
		if err := r.processFragment(ctx, engine, doc, n, opts, result); err != nil {
			observability.Transpile().OnDocumentComplete(ctx, len(nodes), time.Since(start), err)
			return nil, err
		}
	}

	out, err := doc.Render()
	if err != nil {
		observability.Transpile().OnDocumentComplete(ctx, len(nodes), time.Since(start), err)
		return nil, err
	}
	result.Markup = out
	result.Stats.TotalTime = time.Since(start)

	r.Logger.Info("transpiled document",
		"fragments", result.Stats.FragmentCount,
		"maps", result.Stats.MapCount,
		"duration", result.Stats.TotalTime)
	observability.Transpile().OnDocumentComplete(ctx, len(nodes), result.Stats.TotalTime, nil)

	return result, nil
}

// processFragment runs one fragment through probe, render, and splice.
func (r *Runner) processFragment(ctx context.Context, engine *graphviz.Engine, doc *markup.Document, n *html.Node, opts Options, result *Result) error {
	frag := fragment.FromNode(n)

	if err := engine.Probe(ctx, frag.Renderer); err != nil {
		return err
	}

	name, err := frag.Name()
	if err != nil {
		observability.Transpile().OnFragmentComplete(ctx, "", 0, err)
		return err
	}

	start := time.Now()
	observability.Transpile().OnFragmentStart(ctx, name)
	replacement, err := r.renderFragment(ctx, engine, frag, name, result)
	elapsed := time.Since(start)
	result.Stats.RenderTime += elapsed
	observability.Transpile().OnFragmentComplete(ctx, name, elapsed, err)
	if err != nil {
		return err
	}

	if err := doc.Replace(n, guardReplacement(replacement, opts.Filters)); err != nil {
		return err
	}

	r.Logger.Info("rendered fragment",
		"graph", name,
		"format", frag.Format,
		"map", frag.NeedsMap(),
		"duration", elapsed)
	return nil
}

// renderFragment produces the replacement markup for one fragment, rendering
// its clickable map first when the graph carries link attributes, then its
// image file.
func (r *Runner) renderFragment(ctx context.Context, engine *graphviz.Engine, frag *fragment.Fragment, name string, result *Result) (string, error) {
	replacement := frag.ImgTag(name)
	if frag.NeedsMap() {
		m, err := engine.GenerateMap(ctx, frag, name)
		if err != nil {
			return "", err
		}
		replacement += m
		result.Stats.MapCount++
	}

	target, err := engine.RenderImage(ctx, frag, name)
	if err != nil {
		return "", err
	}
	result.Images = append(result.Images, target)

	return replacement, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Transpile runs a single pass and returns the rewritten markup.
func Transpile(ctx context.Context, src string, opts Options) (string, error) {
	result, err := NewRunner(opts.Logger).Execute(ctx, src, opts)
	if err != nil {
		return "", err
	}
	return result.Markup, nil
}
