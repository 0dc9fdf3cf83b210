package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benilovj/webby/pkg/errors"
)

func TestNew(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	if c.Logger == nil {
		t.Fatal("New() should set a logger")
	}
}

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	if root.Use != "webby" {
		t.Errorf("Use = %q, want %q", root.Use, "webby")
	}

	want := []string{"transpile", "check", "preview", "serve", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestLoadConfigDiscoverDefaults(t *testing.T) {
	// The test working directory carries no webby.toml, so the built-in
	// defaults apply.
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, ":8080")
	}
}

func TestRenderFlagsResolve(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "webby.toml")
	cfgBody := "output_dir = \"images\"\nfilters = [\"textile\"]\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		args        []string
		wantRoot    string
		wantFilters []string
		wantErr     bool
	}{
		{
			name:        "config values used when flags unset",
			args:        []string{"--config", cfgPath},
			wantRoot:    "images",
			wantFilters: []string{"textile"},
		},
		{
			name:        "flags override config",
			args:        []string{"--config", cfgPath, "-d", "out", "--filter", "markdown"},
			wantRoot:    "out",
			wantFilters: []string{"markdown"},
		},
		{
			name:    "invalid filter name rejected",
			args:    []string{"--config", cfgPath, "--filter", "Bad Name"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &renderFlags{}
			cmd := &cobra.Command{
				Use:  "probe",
				RunE: func(cmd *cobra.Command, args []string) error { return nil },
			}
			flags.register(cmd)
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			_, opts, err := flags.resolve(cmd)
			if tt.wantErr {
				if err == nil {
					t.Fatal("resolve() should reject the flags")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve() error = %v", err)
			}
			if opts.OutputRoot != tt.wantRoot {
				t.Errorf("OutputRoot = %q, want %q", opts.OutputRoot, tt.wantRoot)
			}
			if len(opts.Filters) != len(tt.wantFilters) {
				t.Fatalf("Filters = %v, want %v", opts.Filters, tt.wantFilters)
			}
			for i := range tt.wantFilters {
				if opts.Filters[i] != tt.wantFilters[i] {
					t.Errorf("Filters[%d] = %q, want %q", i, opts.Filters[i], tt.wantFilters[i])
				}
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("-"); got != "stdin" {
		t.Errorf("displayName(-) = %q, want %q", got, "stdin")
	}
	if got := displayName("page.html"); got != "page.html" {
		t.Errorf("displayName(page.html) = %q, want %q", got, "page.html")
	}
}
