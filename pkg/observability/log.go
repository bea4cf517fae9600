package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failures and
// unrouted corridors are logged at warn level, completed HTTP responses at
// info level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnGenerateStart(_ context.Context, maxRooms int, seed uint64) {
	h.Logger.Debug("generate start", "maxRooms", maxRooms, "seed", seed)
}

func (h *LogHooks) OnGenerateComplete(_ context.Context, rooms int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("generate failed", "err", err, "elapsed", d)
		return
	}
	h.Logger.Debug("generate done", "rooms", rooms, "elapsed", d)
}

func (h *LogHooks) OnFitStart(_ context.Context, fitter string, rooms int) {
	h.Logger.Debug("fit start", "fitter", fitter, "rooms", rooms)
}

func (h *LogHooks) OnCorridorUnrouted(_ context.Context, fitter string, from, to int) {
	h.Logger.Warn("corridor unrouted", "fitter", fitter, "from", from, "to", to)
}

func (h *LogHooks) OnFitComplete(_ context.Context, fitter string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("fit failed", "fitter", fitter, "err", err, "elapsed", d)
		return
	}
	h.Logger.Debug("fit done", "fitter", fitter, "elapsed", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "formats", formats, "err", err, "elapsed", d)
		return
	}
	h.Logger.Debug("render done", "formats", formats, "elapsed", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, kind string) {
	h.Logger.Debug("cache hit", "kind", kind)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, kind string) {
	h.Logger.Debug("cache miss", "kind", kind)
}

func (h *LogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.Logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "path", path, "status", status, "elapsed", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Error("request failed", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
