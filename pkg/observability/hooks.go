// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about document transpilation, renderer invocations, and
// HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetTranspileHooks(&myTranspileHooks{})
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Transpile().OnFragmentStart(ctx, name)
//	// ... render the fragment ...
//	observability.Transpile().OnFragmentComplete(ctx, name, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Transpile Hooks
// =============================================================================

// TranspileHooks receives events from document transpilation.
type TranspileHooks interface {
	// Document events
	OnDocumentStart(ctx context.Context, fragmentCount int)
	OnDocumentComplete(ctx context.Context, fragmentCount int, duration time.Duration, err error)

	// Fragment events
	OnFragmentStart(ctx context.Context, name string)
	OnFragmentComplete(ctx context.Context, name string, duration time.Duration, err error)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from renderer invocations.
type RenderHooks interface {
	// OnProbe records a renderer availability check.
	OnProbe(ctx context.Context, cmd string, available bool)

	// OnInvokeStart records the launch of a renderer process.
	OnInvokeStart(ctx context.Context, cmd string, args []string)

	// OnInvokeComplete records the completion of a renderer process.
	OnInvokeComplete(ctx context.Context, cmd string, args []string, duration time.Duration, err error)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP transpile server.
type ServerHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTranspileHooks is a no-op implementation of TranspileHooks.
type NoopTranspileHooks struct{}

func (NoopTranspileHooks) OnDocumentStart(context.Context, int)                             {}
func (NoopTranspileHooks) OnDocumentComplete(context.Context, int, time.Duration, error)    {}
func (NoopTranspileHooks) OnFragmentStart(context.Context, string)                          {}
func (NoopTranspileHooks) OnFragmentComplete(context.Context, string, time.Duration, error) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnProbe(context.Context, string, bool)                                    {}
func (NoopRenderHooks) OnInvokeStart(context.Context, string, []string)                          {}
func (NoopRenderHooks) OnInvokeComplete(context.Context, string, []string, time.Duration, error) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	transpileHooks TranspileHooks = NoopTranspileHooks{}
	renderHooks    RenderHooks    = NoopRenderHooks{}
	serverHooks    ServerHooks    = NoopServerHooks{}
	hooksMu        sync.RWMutex
)

// SetTranspileHooks registers custom transpile hooks.
// This should be called once at application startup before any transpile operations.
func SetTranspileHooks(h TranspileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		transpileHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any renderer invocations.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetServerHooks registers custom server hooks.
// This should be called once at application startup before serving requests.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Transpile returns the registered transpile hooks.
func Transpile() TranspileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return transpileHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	transpileHooks = NoopTranspileHooks{}
	renderHooks = NoopRenderHooks{}
	serverHooks = NoopServerHooks{}
}
