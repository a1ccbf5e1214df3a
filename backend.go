package mediaplug

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/mediaplug/host"
	"github.com/thesyncim/mediaplug/symtab"
)

// Common errors
var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrNoBackend      = errors.New("no usable backend")
	ErrUnavailable    = errors.New("backend not available")
)

// EntryPoint is the symbol a backend plugin must export.
const EntryPoint = "QueryBackend"

// Backend is one pluggable playback engine.
type Backend interface {
	// Name is the registry key (compared case-insensitively).
	Name() string
	// Version is the engine's native library version.
	Version() string
	Metadata() Metadata

	// Available reports whether the engine's symbol table fully loaded.
	// It is computed once when the backend is created.
	Available() bool
	IsGraphicsAPISupported(api GraphicsAPI) bool

	// Initialize registers the engine's player type with h. It runs its side
	// effects at most once per engine; later calls return nil.
	Initialize(h host.Registrar) error

	// Release unloads the engine library. The registry calls it exactly once
	// for every backend it takes ownership of.
	Release() error
}

// QueryOptions is passed to every QueryFunc.
type QueryOptions struct {
	Logger logrus.FieldLogger
	// Libraries maps engine names to library path overrides.
	Libraries map[string]string
	// Loader binds engine libraries; nil means symtab.Dynamic().
	Loader symtab.Loader
}

// Library returns the configured library override for engine, or "".
func (o QueryOptions) Library(engine string) string {
	return o.Libraries[engine]
}

// Log returns the configured logger or the logrus standard logger.
func (o QueryOptions) Log() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// SymbolLoader returns the configured loader or the platform loader.
func (o QueryOptions) SymbolLoader() symtab.Loader {
	if o.Loader == nil {
		return symtab.Dynamic()
	}
	return o.Loader
}

// QueryFunc probes an engine. It returns false when the engine is not usable
// on this machine, in which case the returned Backend (if any) is released by
// the caller.
type QueryFunc func(opts QueryOptions) (Backend, bool)

// StaticBackend is a compiled-in engine for static-link mode.
type StaticBackend struct {
	Name  string
	Query QueryFunc
}
