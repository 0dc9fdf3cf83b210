package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/fragment"
	"github.com/benilovj/webby/pkg/preview"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		fragName string
		format   string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render one graph in-process, without Graphviz installed",
		Long: `Render one graph in-process, without Graphviz installed.

A .dot or .gv file is rendered directly. For a markup document one embedded
fragment is rendered: name its graph with --fragment, or pick it from a list
when the document has several. The document itself is left untouched.

The image is written next to the input unless --output is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], fragName, format, output)
		},
	}

	cmd.Flags().StringVar(&fragName, "fragment", "", "graph name of the fragment to render")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "preview format (svg, png, or dot)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the image here instead of next to the input")

	return cmd
}

// runPreview renders a single graph with the built-in layout engine.
func (c *CLI) runPreview(ctx context.Context, input, fragName, format, output string) error {
	if _, ok := preview.ValidFormats[format]; !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid preview format: %q (must be one of: svg, png, dot)", format)
	}

	src, err := readInput(input)
	if err != nil {
		return err
	}

	var name, body string
	if isGraphFile(input) {
		name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		body = src
	} else {
		frag, err := pickFragment(src, fragName)
		if err != nil {
			return err
		}
		if name, err = frag.Name(); err != nil {
			return err
		}
		body = frag.Body
	}

	if output == "" {
		output = filepath.Join(filepath.Dir(input), name+"."+format)
	}

	prog := newProgress(c.Logger)
	if err := preview.RenderFile(ctx, body, format, output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", name))

	printSuccess("Previewed %s", StyleHighlight.Render(name))
	printFile(output)
	return nil
}

// isGraphFile reports whether path names a raw graph description file.
func isGraphFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return true
	}
	return false
}

// pickFragment selects the fragment to preview, interactively when the
// document has more than one and no name was given.
func pickFragment(src, name string) (*fragment.Fragment, error) {
	if name != "" {
		return preview.Find(src, name)
	}

	frags, err := preview.Fragments(src)
	if err != nil {
		return nil, err
	}
	switch len(frags) {
	case 0:
		return nil, errors.New(errors.ErrCodeFragmentNotFound, "document has no graph fragments")
	case 1:
		return frags[0], nil
	}

	m := NewFragmentListModel(frags)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	fm, ok := finalModel.(FragmentListModel)
	if !ok || fm.Selected == nil {
		printDetail("No selection made")
		return nil, errors.New(errors.ErrCodeFragmentNotFound, "no fragment selected")
	}
	return fm.Selected, nil
}
