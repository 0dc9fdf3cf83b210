package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/observability"
	"github.com/benilovj/webby/pkg/transpile"
)

// transpileCommand creates the transpile command.
func (c *CLI) transpileCommand() *cobra.Command {
	var output string
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "transpile [file]",
		Short: "Render graph fragments and rewrite a markup document",
		Long: `Render graph fragments and rewrite a markup document.

The document is scanned for <graphviz> tags. Each embedded graph is rendered
to an image through its layout command (dot unless the tag says otherwise)
and the tag is replaced by an <img> element referencing the image. Graphs
that use URL or href attributes also get a client-side image map.

Reads the file argument, or stdin when the argument is "-" or missing. The
rewritten document goes to stdout unless --output is set; image files are
written under --output-root.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runTranspile(cmd.Context(), input, output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document here instead of stdout")
	flags.register(cmd)

	return cmd
}

// runTranspile reads the document, runs the pass, and writes the result.
func (c *CLI) runTranspile(ctx context.Context, input, output string, opts transpile.Options) error {
	src, err := readInput(input)
	if err != nil {
		return err
	}

	opts.Logger = c.Logger
	runner := c.newRunner()

	// The spinner shares stderr with the logger, so it only runs when the
	// document is not headed for stdout.
	var spinner *Spinner
	if output != "" {
		spinner = newSpinnerWithContext(ctx, "Rendering graph fragments...")
		observability.SetTranspileHooks(&spinnerHooks{spinner: spinner})
		defer observability.Reset()
		spinner.Start()
	}

	result, err := runner.Execute(ctx, src, opts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Transpilation failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.WriteString(out, result.Markup); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write document")
	}

	if output != "" {
		if result.Stats.FragmentCount == 0 {
			printWarning("No graph fragments in %s", displayName(input))
		} else {
			printSuccess("Transpiled %s", displayName(input))
		}
		printFile(output)
		for _, img := range result.Images {
			printFile(img)
		}
		printStats(result.Stats.FragmentCount, result.Stats.MapCount, result.Stats.TotalTime)
	}
	return nil
}

// =============================================================================
// Document I/O
// =============================================================================

// readInput reads an entire document from path, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read document %s", path)
	}
	return string(data), nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	return f, nil
}

// displayName names the input in user-facing messages.
func displayName(input string) string {
	if input == "-" {
		return "stdin"
	}
	return input
}
