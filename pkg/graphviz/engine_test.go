package graphviz

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/fragment"
)

// writeRenderer installs a fake renderer script and returns its path.
func writeRenderer(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake renderers are shell scripts")
	}
	p := filepath.Join(t.TempDir(), "dot")
	if err := os.WriteFile(p, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake renderer: %v", err)
	}
	return p
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

const quietRenderer = "#!/bin/sh\ncat >/dev/null\nexit 0\n"

func TestProbe(t *testing.T) {
	e := newTestEngine(t, Options{})

	t.Run("available", func(t *testing.T) {
		bin := writeRenderer(t, "#!/bin/sh\nexit 0\n")
		if err := e.Probe(context.Background(), bin); err != nil {
			t.Errorf("Probe() error = %v", err)
		}
	})

	t.Run("failing version check", func(t *testing.T) {
		bin := writeRenderer(t, "#!/bin/sh\nexit 3\n")
		err := e.Probe(context.Background(), bin)
		if !errors.Is(err, errors.ErrCodeRendererNotFound) {
			t.Errorf("Probe() error = %v, want RENDERER_NOT_FOUND", err)
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		err := e.Probe(context.Background(), filepath.Join(t.TempDir(), "no-such-renderer"))
		if !errors.Is(err, errors.ErrCodeRendererNotFound) {
			t.Errorf("Probe() error = %v, want RENDERER_NOT_FOUND", err)
		}
	})
}

func TestGenerateMapCapturesStdout(t *testing.T) {
	bin := writeRenderer(t, `#!/bin/sh
cat > "$(dirname "$0")/stdin.txt"
printf '<map id="g1" name="g1"></map>'
`)
	e := newTestEngine(t, Options{})
	f := &fragment.Fragment{Renderer: bin, Format: "png", Body: "digraph g1 { a -> b }"}

	out, err := e.GenerateMap(context.Background(), f, "g1")
	if err != nil {
		t.Fatalf("GenerateMap() error = %v", err)
	}
	if !strings.Contains(out, `<map id="g1"`) {
		t.Errorf("GenerateMap() = %q, want map markup", out)
	}

	got, err := os.ReadFile(filepath.Join(filepath.Dir(bin), "stdin.txt"))
	if err != nil {
		t.Fatalf("read captured stdin: %v", err)
	}
	if string(got) != f.Body {
		t.Errorf("renderer stdin = %q, want %q", got, f.Body)
	}
}

func TestRenderImageWritesUnderOutputRoot(t *testing.T) {
	bin := writeRenderer(t, `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift ;;
  esac
  shift
done
cat >/dev/null
printf 'PNG' > "$out"
`)
	root := t.TempDir()
	e := newTestEngine(t, Options{OutputRoot: root})
	f := &fragment.Fragment{Renderer: bin, Path: "img", Format: "png", Body: "digraph g1 { a }"}

	target, err := e.RenderImage(context.Background(), f, "g1")
	if err != nil {
		t.Fatalf("RenderImage() error = %v", err)
	}
	want := filepath.Join(root, "img", "g1.png")
	if target != want {
		t.Errorf("RenderImage() = %q, want %q", target, want)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read rendered image: %v", err)
	}
	if string(data) != "PNG" {
		t.Errorf("rendered image = %q, want %q", data, "PNG")
	}
}

func TestDiagnosticsFailInvocation(t *testing.T) {
	bin := writeRenderer(t, `#!/bin/sh
cat >/dev/null
echo 'Error: syntax error in line 3 near' 1>&2
exit 0
`)
	e := newTestEngine(t, Options{})
	f := &fragment.Fragment{Renderer: bin, Format: "png", Body: "digraph g1 { a -> }"}

	_, err := e.GenerateMap(context.Background(), f, "g1")
	if !errors.Is(err, errors.ErrCodeRenderFailed) {
		t.Fatalf("GenerateMap() error = %v, want RENDER_FAILED", err)
	}

	re, ok := errors.AsRenderError(err)
	if !ok {
		t.Fatalf("GenerateMap() error = %v, want a RenderError in the chain", err)
	}
	if re.Fragment != "g1" {
		t.Errorf("RenderError.Fragment = %q, want %q", re.Fragment, "g1")
	}
	if !strings.Contains(re.Diagnostics, "syntax error in line 3") {
		t.Errorf("RenderError.Diagnostics = %q, want renderer output", re.Diagnostics)
	}
	if !strings.Contains(re.Command, "-Tcmapx") {
		t.Errorf("RenderError.Command = %q, want the invocation", re.Command)
	}
}

func TestNonZeroExitWithoutDiagnosticsSucceeds(t *testing.T) {
	bin := writeRenderer(t, "#!/bin/sh\ncat >/dev/null\nexit 1\n")
	e := newTestEngine(t, Options{})
	f := &fragment.Fragment{Renderer: bin, Format: "png", Body: "digraph g1 { a }"}

	if _, err := e.GenerateMap(context.Background(), f, "g1"); err != nil {
		t.Errorf("GenerateMap() error = %v, want success on silent non-zero exit", err)
	}
}

func TestDiagnosticsTruncatedBetweenInvocations(t *testing.T) {
	noisy := writeRenderer(t, `#!/bin/sh
cat >/dev/null
echo 'Error: bad graph' 1>&2
`)
	quiet := writeRenderer(t, quietRenderer)
	e := newTestEngine(t, Options{})

	bad := &fragment.Fragment{Renderer: noisy, Format: "png", Body: "digraph g1 { a -> }"}
	if _, err := e.GenerateMap(context.Background(), bad, "g1"); err == nil {
		t.Fatal("GenerateMap() error = nil, want failure from noisy renderer")
	}

	// Stale diagnostics from the first invocation must not leak into the next.
	good := &fragment.Fragment{Renderer: quiet, Format: "png", Body: "digraph g2 { b }"}
	if _, err := e.GenerateMap(context.Background(), good, "g2"); err != nil {
		t.Errorf("GenerateMap() error = %v, want success after truncation", err)
	}
}

func TestRendererMissingMidPass(t *testing.T) {
	e := newTestEngine(t, Options{})
	f := &fragment.Fragment{
		Renderer: filepath.Join(t.TempDir(), "no-such-renderer"),
		Format:   "png",
		Body:     "digraph g1 { a }",
	}

	_, err := e.GenerateMap(context.Background(), f, "g1")
	if !errors.Is(err, errors.ErrCodeRenderFailed) {
		t.Errorf("GenerateMap() error = %v, want RENDER_FAILED", err)
	}
}

func TestInvocationTimeout(t *testing.T) {
	bin := writeRenderer(t, "#!/bin/sh\nsleep 2\n")
	e := newTestEngine(t, Options{Timeout: 50 * time.Millisecond})
	f := &fragment.Fragment{Renderer: bin, Format: "png", Body: "digraph g1 { a }"}

	start := time.Now()
	_, err := e.GenerateMap(context.Background(), f, "g1")
	if !errors.Is(err, errors.ErrCodeRenderTimeout) {
		t.Fatalf("GenerateMap() error = %v, want RENDER_TIMEOUT", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("GenerateMap() took %s, want the timeout to cut it short", elapsed)
	}
}
