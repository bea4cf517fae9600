// Package observability lets binaries watch the dungeon pipeline, the cache
// and the API server without those packages depending on a metrics or
// tracing stack.
//
// Library code reports events through the hooks returned by [Pipeline],
// [Cache] and [HTTP]. They do nothing until a binary calls [Register]:
//
//	observability.Register(observability.NewLogHooks(logger))
//
// A registered value replaces every hook set it implements, so one type can
// serve all three or only one.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the generate, fit and render stages.
type PipelineHooks interface {
	OnGenerateStart(ctx context.Context, maxRooms int, seed uint64)
	OnGenerateComplete(ctx context.Context, rooms int, duration time.Duration, err error)

	OnFitStart(ctx context.Context, fitter string, rooms int)
	// OnCorridorUnrouted fires when a fitter finds no path between two
	// placed rooms. The corridor is left out of the layout.
	OnCorridorUnrouted(ctx context.Context, fitter string, from, to int)
	OnFitComplete(ctx context.Context, fitter string, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. kind is the pipeline stage
// that owns the entry: dungeon, layout or artifact.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, status int, duration time.Duration)
	// OnError fires for responses with a 5xx status.
	OnError(ctx context.Context, method, path string, err error)
}

// Nop implements every hook interface and does nothing. Embed it to
// implement only some events.
type Nop struct{}

func (Nop) OnGenerateStart(context.Context, int, uint64)                     {}
func (Nop) OnGenerateComplete(context.Context, int, time.Duration, error)    {}
func (Nop) OnFitStart(context.Context, string, int)                          {}
func (Nop) OnCorridorUnrouted(context.Context, string, int, int)             {}
func (Nop) OnFitComplete(context.Context, string, time.Duration, error)      {}
func (Nop) OnRenderStart(context.Context, []string)                          {}
func (Nop) OnRenderComplete(context.Context, []string, time.Duration, error) {}
func (Nop) OnCacheHit(context.Context, string)                               {}
func (Nop) OnCacheMiss(context.Context, string)                              {}
func (Nop) OnCacheSet(context.Context, string, int)                          {}
func (Nop) OnRequest(context.Context, string, string)                        {}
func (Nop) OnResponse(context.Context, string, string, int, time.Duration)   {}
func (Nop) OnError(context.Context, string, string, error)                   {}

// registry holds one boxed value per hook set so that loads stay lock-free
// on the request path.
type registry struct {
	pipeline atomic.Pointer[PipelineHooks]
	cache    atomic.Pointer[CacheHooks]
	http     atomic.Pointer[HTTPHooks]
}

var hooks registry

func init() { Reset() }

// Register installs h for each of PipelineHooks, CacheHooks and HTTPHooks
// that it implements, and reports whether it implemented any.
func Register(h any) bool {
	found := false
	if p, ok := h.(PipelineHooks); ok {
		hooks.pipeline.Store(&p)
		found = true
	}
	if c, ok := h.(CacheHooks); ok {
		hooks.cache.Store(&c)
		found = true
	}
	if x, ok := h.(HTTPHooks); ok {
		hooks.http.Store(&x)
		found = true
	}
	return found
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return *hooks.pipeline.Load() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return *hooks.cache.Load() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return *hooks.http.Load() }

// Reset restores the no-op hooks.
func Reset() { Register(Nop{}) }
