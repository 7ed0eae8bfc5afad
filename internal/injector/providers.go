package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/tankclient/internal/config"
	"github.com/zeusync/tankclient/internal/core/events/bus"
	"github.com/zeusync/tankclient/internal/core/notify"
	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/observability/metrics"
	"github.com/zeusync/tankclient/internal/resources"
)

// Runtime is everything a session needs that outlives it.
type Runtime struct {
	Logger   *log.Logger
	Metrics  *metrics.Prometheus
	Bus      bus.EventBus
	Notifier *notify.Bus
	Catalog  *resources.Catalog
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	bus.New,
	ProvideNotifier,
	ProvideCatalog,
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(log.ParseLevel(cfg.Log.Level))
}

func ProvideMetrics(cfg config.Config) *metrics.Prometheus {
	return metrics.NewPrometheus(cfg.Metrics.Namespace)
}

func ProvideNotifier(b bus.EventBus, logger *log.Logger) *notify.Bus {
	return notify.NewBus(b, logger)
}

// ProvideCatalog loads the element types and textures. Replays and live
// games both need the types to build entities.
func ProvideCatalog(cfg config.Config, logger *log.Logger) (*resources.Catalog, error) {
	catalog, err := resources.Load(cfg.Resources.ElementData, cfg.Resources.Textures)
	if err != nil {
		return nil, err
	}
	if missing := catalog.MissingTextures(); len(missing) > 0 {
		logger.Warn("Element types without texture", log.Strings("types", missing))
	}
	logger.Info("Resources loaded", log.Int("types", len(catalog.Names())))
	return catalog, nil
}
