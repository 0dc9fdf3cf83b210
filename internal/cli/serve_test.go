package cli

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestServeCommandShutdown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}
}
