package cli

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlens/pkg/observability"
)

// importStats counts import cache traffic for the scan summary.
type importStats struct {
	observability.NoopCacheHooks
	hits, misses atomic.Int64
}

func (s *importStats) OnCacheHit(_ context.Context, keyType string) {
	if keyType == "imports" {
		s.hits.Add(1)
	}
}

func (s *importStats) OnCacheMiss(_ context.Context, keyType string) {
	if keyType == "imports" {
		s.misses.Add(1)
	}
}

// requestLog logs every served request at debug level.
type requestLog struct {
	observability.NoopHTTPHooks
	logger *log.Logger
}

func (h requestLog) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("served", "method", method, "route", route, "status", status, "duration", d.Round(time.Microsecond))
}
