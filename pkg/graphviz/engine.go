// Package graphviz invokes an external Graphviz-compatible renderer to turn
// graph descriptions into images and clickable image maps.
//
// A renderer is any command with a dot-style interface: it reads a graph from
// stdin, selects its output format with -T, and writes warnings and errors to
// its diagnostic stream. An Engine owns a single scratch file that captures
// that stream, truncated before every invocation. Renderer exit codes are not
// consulted; a non-empty diagnostic stream is the failure signal.
package graphviz

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/fragment"
	"github.com/benilovj/webby/pkg/observability"
)

// Options configures an Engine.
type Options struct {
	OutputRoot string        // directory images are written under, "" for the working directory
	Timeout    time.Duration // wall clock limit per renderer invocation, 0 disables
	Logger     *log.Logger   // destination for invocation logs, nil discards
}

// Engine runs a Graphviz-compatible renderer. All invocations share one
// diagnostics scratch file, so an Engine must not be used concurrently.
type Engine struct {
	opts Options
	diag *os.File
}

// New creates an Engine with a fresh diagnostics scratch file.
// Close must be called to remove it.
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	diag, err := os.CreateTemp("", "webby-diagnostics-*.log")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create diagnostics file")
	}
	return &Engine{opts: opts, diag: diag}, nil
}

// Close removes the diagnostics scratch file.
func (e *Engine) Close() error {
	name := e.diag.Name()
	err := e.diag.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}

// Probe checks that renderer is installed by running it with -V.
// Only the exit status of the version check is consulted.
func (e *Engine) Probe(ctx context.Context, renderer string) error {
	cmd := exec.CommandContext(ctx, renderer, "-V")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	err := cmd.Run()
	observability.Render().OnProbe(ctx, renderer, err == nil)
	if err != nil {
		e.opts.Logger.Error("renderer unavailable", "cmd", renderer, "err", err)
		return errors.Wrap(errors.ErrCodeRendererNotFound, err, "renderer %q is not available", renderer)
	}
	e.opts.Logger.Debug("renderer available", "cmd", renderer)
	return nil
}

// GenerateMap renders the fragment as a cmapx clickable image map and returns
// the map markup.
func (e *Engine) GenerateMap(ctx context.Context, f *fragment.Fragment, name string) (string, error) {
	out, err := e.invoke(ctx, f, name, "-Tcmapx")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RenderImage renders the fragment to an image file under the output root and
// returns the path that was written. Intermediate directories are created as
// needed.
func (e *Engine) RenderImage(ctx context.Context, f *fragment.Fragment, name string) (string, error) {
	target := filepath.Join(e.opts.OutputRoot, filepath.FromSlash(f.ImageName(name)))
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "create image directory %s", dir)
		}
	}
	if _, err := e.invoke(ctx, f, name, "-T"+f.Format, "-o", target); err != nil {
		return "", err
	}
	e.opts.Logger.Debug("image written", "graph", name, "path", target)
	return target, nil
}

// invoke runs the fragment's renderer with the given arguments, feeding the
// graph source on stdin and returning captured stdout. The diagnostics file
// is truncated first and read back afterwards; any content found there fails
// the invocation regardless of the renderer's exit status.
func (e *Engine) invoke(ctx context.Context, f *fragment.Fragment, name string, args ...string) ([]byte, error) {
	if err := e.resetDiagnostics(); err != nil {
		return nil, err
	}

	runCtx := ctx
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, f.Renderer, args...)
	cmd.Stdin = strings.NewReader(f.Body)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = e.diag

	e.opts.Logger.Debug("invoking renderer", "cmd", f.Renderer, "args", strings.Join(args, " "), "graph", name)
	start := time.Now()
	observability.Render().OnInvokeStart(ctx, f.Renderer, args)
	runErr := cmd.Run()
	observability.Render().OnInvokeComplete(ctx, f.Renderer, args, time.Since(start), runErr)

	if runCtx.Err() != nil {
		if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			e.opts.Logger.Error("renderer timed out", "cmd", f.Renderer, "graph", name, "timeout", e.opts.Timeout)
			return nil, errors.New(errors.ErrCodeRenderTimeout, "renderer %q exceeded %s rendering graph %q", f.Renderer, e.opts.Timeout, name)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, runCtx.Err(), "renderer %q interrupted", f.Renderer)
	}
	if runErr != nil {
		// Non-zero exits are ignored; the diagnostics file is the failure
		// signal. An error here means the renderer never ran at all.
		if _, ok := runErr.(*exec.ExitError); !ok {
			e.opts.Logger.Error("renderer did not start", "cmd", f.Renderer, "err", runErr)
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, runErr, "run renderer %q", f.Renderer)
		}
	}

	diag, err := e.readDiagnostics()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(diag) != "" {
		e.opts.Logger.Error("renderer reported errors", "cmd", f.Renderer, "graph", name, "diagnostics", strings.TrimSpace(diag))
		re := &errors.RenderError{
			Fragment:    name,
			Command:     strings.Join(append([]string{f.Renderer}, args...), " "),
			Diagnostics: diag,
		}
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, re, "render graph %q", name)
	}
	return out.Bytes(), nil
}

func (e *Engine) resetDiagnostics() error {
	if err := e.diag.Truncate(0); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "truncate diagnostics file")
	}
	if _, err := e.diag.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "rewind diagnostics file")
	}
	return nil
}

func (e *Engine) readDiagnostics() (string, error) {
	if _, err := e.diag.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "rewind diagnostics file")
	}
	b, err := io.ReadAll(e.diag)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "read diagnostics file")
	}
	return string(b), nil
}
