package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/fragment"
	"github.com/benilovj/webby/pkg/graphviz"
	"github.com/benilovj/webby/pkg/markup"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		outputRoot string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Inspect graph fragments without rendering anything",
		Long: `Inspect graph fragments without rendering anything.

check parses the document, lists every fragment with its graph name, image
target, and whether it gets a client-side map, and probes each distinct
layout command once. No images are written and the document is left
untouched.

The exit status is nonzero when a fragment is malformed or a renderer is
unavailable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			root := cfg.OutputDir
			if cmd.Flags().Changed("output-root") {
				root = outputRoot
			}
			if root != "" {
				if err := errors.ValidateOutputRoot(root); err != nil {
					return err
				}
			}
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return runCheck(cmd.Context(), input, root)
		},
	}

	cmd.Flags().StringVarP(&outputRoot, "output-root", "d", "", "directory image targets are resolved against")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default webby.toml in the working directory)")

	return cmd
}

// runCheck lists the fragments in a document and probes their renderers.
func runCheck(ctx context.Context, input, outputRoot string) error {
	logger := loggerFromContext(ctx)

	src, err := readInput(input)
	if err != nil {
		return err
	}

	doc, err := markup.Parse(src)
	if err != nil {
		return err
	}
	nodes := doc.FindAll(fragment.TagName)
	if len(nodes) == 0 {
		printInfo("No graph fragments in %s", displayName(input))
		return nil
	}

	engine, err := graphviz.New(graphviz.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer engine.Close()

	findings := 0
	probed := map[string]error{}
	for i, n := range nodes {
		frag := fragment.FromNode(n)

		name, err := frag.Name()
		if err != nil {
			findings++
			printError("fragment %d: %s", i+1, errors.UserMessage(err))
			continue
		}

		// Each distinct layout command is probed once per run.
		perr, seen := probed[frag.Renderer]
		if !seen {
			perr = engine.Probe(ctx, frag.Renderer)
			probed[frag.Renderer] = perr
		}
		if perr != nil {
			findings++
			printError("%s: %s", name, errors.UserMessage(perr))
			continue
		}

		target := frag.ImageName(name)
		if outputRoot != "" {
			target = filepath.Join(outputRoot, filepath.FromSlash(target))
		}
		printSuccess("%s", name)
		printDetail("%s %s%s", frag.Renderer, frag.Format, mapNote(frag))
		printFile(target)
	}

	printNewline()
	if findings > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%d of %d fragments have problems", findings, len(nodes))
	}
	printSuccess("%d fragments ready", len(nodes))
	return nil
}

// mapNote annotates fragments that will get a client-side image map.
func mapNote(f *fragment.Fragment) string {
	if f.NeedsMap() {
		return ", map"
	}
	return ""
}
