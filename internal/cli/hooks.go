package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/observability"
)

// debugHooks prints source, cache and HTTP events at debug level.
type debugHooks struct {
	logger *log.Logger
}

func registerDebugHooks(l *log.Logger) {
	h := debugHooks{logger: l}
	observability.SetSourceHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h debugHooks) OnLoadStart(_ context.Context, source, project string) {
	h.logger.Debug("load", "source", source, "project", project)
}

func (h debugHooks) OnLoadComplete(_ context.Context, source, project string, records int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "source", source, "project", project, "err", err)
		return
	}
	h.logger.Debug("loaded", "source", source, "project", project, "records", records, "elapsed", d.Round(time.Millisecond))
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "url", host+path)
}

func (h debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "url", host+path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "url", host+path, "err", err)
}
