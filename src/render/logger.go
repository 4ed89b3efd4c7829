package render

import (
	"sync/atomic"

	"go.uber.org/zap"

	"vkgraph/src/render/metrics"
)

var (
	loggerPtr  atomic.Pointer[zap.Logger]
	metricsPtr atomic.Pointer[metrics.Collector]
)

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger used by every wrapper. By default nothing
// is logged. Pass nil to restore the silent default.
//
// Levels used:
//   - Debug: object created or destroyed (kind, id, handle)
//   - Warn: errors in the destruction path, leaked objects
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}

// SetMetrics installs a collector for object lifecycle metrics. nil
// disables collection.
func SetMetrics(c *metrics.Collector) {
	metricsPtr.Store(c)
}

func collector() *metrics.Collector {
	return metricsPtr.Load()
}
