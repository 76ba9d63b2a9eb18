package adapter

import (
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/fetch"
	"github.com/castboard/scraper/pkg/errors"
)

// Constructor builds one site's adapter over an already-built fetcher.
type Constructor func(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) Adapter

// Registry maps source keys to adapter constructors. Adding a source is one
// adapter file, one catalog row and one line here.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{
		constructors: map[string]Constructor{
			"marquee":   NewMarquee,
			"prism":     NewPrism,
			"limelight": NewLimelight,
			"encore":    NewEncore,
			"gala":      NewGala,
			"atrium":    NewAtrium,
			"solstice":  NewSolstice,
		},
	}
}

// New builds the adapter registered for the config's key.
func (r *Registry) New(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) (Adapter, error) {
	constructor, ok := r.constructors[cfg.Key]
	if !ok {
		return nil, errors.NewConfigError("no adapter registered for source: "+cfg.Key, "source")
	}
	return constructor(cfg, fetcher, log), nil
}

// Known reports whether a source key has a registered adapter.
func (r *Registry) Known(key string) bool {
	_, ok := r.constructors[key]
	return ok
}
