package markup

import (
	"strings"
	"testing"
)

func TestParseAndRenderRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain paragraph",
			input: "<p>hello world</p>",
			want:  "<p>hello world</p>",
		},
		{
			name:  "nested elements",
			input: "<div><p>one</p><p>two</p></div>",
			want:  "<div><p>one</p><p>two</p></div>",
		},
		{
			name:  "unknown element preserved",
			input: "<graphviz cmd=\"dot\">digraph g { a -&gt; b }</graphviz>",
			want:  "<graphviz cmd=\"dot\">digraph g { a -&gt; b }</graphviz>",
		},
		{
			name:  "bare text",
			input: "just text",
			want:  "just text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := doc.Render()
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindAll(t *testing.T) {
	input := `<h1>title</h1>
<graphviz>digraph a { }</graphviz>
<div><graphviz>digraph b { }</graphviz></div>
<p>text</p>`

	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	found := doc.FindAll("graphviz")
	if len(found) != 2 {
		t.Fatalf("FindAll() returned %d nodes, want 2", len(found))
	}

	// Document order
	if got := Text(found[0]); !strings.Contains(got, "digraph a") {
		t.Errorf("first node text = %q, want digraph a", got)
	}
	if got := Text(found[1]); !strings.Contains(got, "digraph b") {
		t.Errorf("second node text = %q, want digraph b", got)
	}
}

func TestFindAllNone(t *testing.T) {
	doc, err := Parse("<p>no fragments here</p>")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if found := doc.FindAll("graphviz"); len(found) != 0 {
		t.Errorf("FindAll() returned %d nodes, want 0", len(found))
	}
}

func TestReplace(t *testing.T) {
	doc, err := Parse(`<p>before</p><graphviz>digraph g { }</graphviz><p>after</p>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	nodes := doc.FindAll("graphviz")
	if len(nodes) != 1 {
		t.Fatalf("FindAll() returned %d nodes, want 1", len(nodes))
	}

	if err := doc.Replace(nodes[0], `<img src="g.png" usemap="g"/><map id="g" name="g"></map>`); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := doc.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := `<p>before</p><img src="g.png" usemap="g"/><map id="g" name="g"></map><p>after</p>`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestReplaceIsMarkupNotText(t *testing.T) {
	doc, err := Parse(`<graphviz>digraph g { }</graphviz>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	nodes := doc.FindAll("graphviz")
	if err := doc.Replace(nodes[0], `<img src="g.png"/>`); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := doc.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if strings.Contains(got, "&lt;img") {
		t.Errorf("replacement was escaped as text: %q", got)
	}
	if !strings.Contains(got, `<img src="g.png"/>`) {
		t.Errorf("replacement element missing: %q", got)
	}
}

func TestReplaceInsideContainer(t *testing.T) {
	doc, err := Parse(`<div class="figure"><graphviz>digraph g { }</graphviz></div>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	nodes := doc.FindAll("graphviz")
	if err := doc.Replace(nodes[0], `<img src="g.png"/>`); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := doc.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := `<div class="figure"><img src="g.png"/></div>`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple body",
			input: "<graphviz>digraph g { a; }</graphviz>",
			want:  "digraph g { a; }",
		},
		{
			name:  "nested markup flattened",
			input: "<graphviz>digraph <b>g</b> { }</graphviz>",
			want:  "digraph g { }",
		},
		{
			name:  "multiline",
			input: "<graphviz>\ndigraph g {\n  a;\n}\n</graphviz>",
			want:  "\ndigraph g {\n  a;\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			nodes := doc.FindAll("graphviz")
			if len(nodes) != 1 {
				t.Fatalf("FindAll() returned %d nodes, want 1", len(nodes))
			}
			if got := Text(nodes[0]); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttr(t *testing.T) {
	doc, err := Parse(`<graphviz path="imgs" cmd="neato" alt="">digraph g { }</graphviz>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	n := doc.FindAll("graphviz")[0]

	if v, ok := Attr(n, "path"); !ok || v != "imgs" {
		t.Errorf("Attr(path) = %q, %v; want %q, true", v, ok, "imgs")
	}
	if v, ok := Attr(n, "cmd"); !ok || v != "neato" {
		t.Errorf("Attr(cmd) = %q, %v; want %q, true", v, ok, "neato")
	}

	// Empty value is still present
	if v, ok := Attr(n, "alt"); !ok || v != "" {
		t.Errorf("Attr(alt) = %q, %v; want %q, true", v, ok, "")
	}

	if _, ok := Attr(n, "type"); ok {
		t.Error("Attr(type) = present, want absent")
	}
}
