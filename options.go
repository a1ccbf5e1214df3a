package mediaplug

import (
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/mediaplug/host"
	"github.com/thesyncim/mediaplug/observability"
	"github.com/thesyncim/mediaplug/symtab"
)

// DefaultProbeCacheSize is the number of non-plugin files remembered between
// scans.
const DefaultProbeCacheSize = 256

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithHost sets the Registrar backends register their player types with.
func WithHost(h host.Registrar) Option {
	return func(r *Registry) {
		if h != nil {
			r.host = h
		}
	}
}

// WithOpener replaces the plugin opener used by directory scans.
func WithOpener(o Opener) Option {
	return func(r *Registry) {
		if o != nil {
			r.opener = o
		}
	}
}

// WithStatic switches the registry to static-link mode: the given engines are
// queried in order at construction and search directories are ignored.
func WithStatic(backends ...StaticBackend) Option {
	return func(r *Registry) {
		r.static = true
		r.statics = append(r.statics, backends...)
	}
}

// WithMetrics records scan and initialization metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithProbeCache sets how many non-plugin files are remembered between
// scans. n <= 0 disables the cache.
func WithProbeCache(n int) Option {
	return func(r *Registry) { r.probeCacheSize = n }
}

// WithLibraries sets per-engine library overrides passed to every query.
func WithLibraries(libs map[string]string) Option {
	return func(r *Registry) { r.libraries = maps.Clone(libs) }
}

// WithLoader sets the symbol loader passed to every query.
func WithLoader(l symtab.Loader) Option {
	return func(r *Registry) { r.loader = l }
}
