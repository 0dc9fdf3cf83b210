package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benilovj/webby/internal/server"
	"github.com/benilovj/webby/pkg/transpile"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the transpiler as an HTTP API",
		Long: `Expose the transpiler as an HTTP API.

POST /v1/transpile accepts a JSON body with the document markup and optional
filter names and responds with the rewritten markup. GET /healthz reports
liveness. Settings come from webby.toml, overridden by flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			listen := cfg.Serve.Addr
			if cmd.Flags().Changed("addr") {
				listen = addr
			}
			return c.runServe(cmd.Context(), listen, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	flags.register(cmd)

	return cmd
}

// runServe blocks serving HTTP until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, opts transpile.Options) error {
	opts.Logger = c.Logger
	srv := server.New(server.Options{
		Addr:      addr,
		Transpile: opts,
		Logger:    c.Logger,
	})

	display := addr
	if strings.HasPrefix(display, ":") {
		display = "localhost" + display
	}
	printInfo("Listening on %s", StyleHighlight.Render(addr))
	printNextStep("Health", "curl "+display+"/healthz")
	printNewline()

	return srv.Run(ctx)
}
