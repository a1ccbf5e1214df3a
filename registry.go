package mediaplug

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/thesyncim/mediaplug/host"
	"github.com/thesyncim/mediaplug/observability"
	"github.com/thesyncim/mediaplug/symtab"
)

// sourceStatic marks backends registered from the compiled-in list.
const sourceStatic = "static"

type entry struct {
	name        string
	backend     Backend
	source      string
	initialized bool
}

// Registry discovers backends and mediates selection. All methods are safe
// for concurrent use; scans and selections are serialized.
type Registry struct {
	mu sync.Mutex

	log       logrus.FieldLogger
	host      host.Registrar
	opener    Opener
	metrics   *observability.Metrics
	libraries map[string]string
	loader    symtab.Loader

	static  bool
	statics []StaticBackend

	probeCacheSize int
	probeCache     *lru.Cache[probeKey, string]

	searchPaths []string
	backends    map[string]*entry
	order       []string
	closed      bool
}

// NewRegistry creates a registry. In static mode the compiled-in engines are
// probed before NewRegistry returns.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		log:            logrus.StandardLogger(),
		opener:         GoPluginOpener{},
		probeCacheSize: DefaultProbeCacheSize,
		backends:       make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.host == nil {
		r.host = host.NewTypeRegistry()
	}
	if r.probeCacheSize > 0 {
		cache, err := lru.New[probeKey, string](r.probeCacheSize)
		if err != nil {
			r.log.WithError(err).Warn("Probe cache disabled")
		} else {
			r.probeCache = cache
		}
	}

	if r.static {
		r.loadStatic()
	}
	return r
}

// Host returns the Registrar backends are initialized against.
func (r *Registry) Host() host.Registrar { return r.host }

// Static reports whether the registry runs in static-link mode.
func (r *Registry) Static() bool { return r.static }

func (r *Registry) queryOptions() QueryOptions {
	return QueryOptions{
		Logger:    r.log,
		Libraries: r.libraries,
		Loader:    r.loader,
	}
}

func (r *Registry) loadStatic() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.statics {
		log := r.log.WithField("static", s.Name)
		if s.Query == nil {
			log.Warn("Static backend has no query function")
			continue
		}
		b, ok := r.query(s.Query, log)
		if !ok {
			log.Info("Static backend not available")
			continue
		}
		r.registerLocked(b, sourceStatic, log)
	}
}

// query runs q, absorbing panics from third-party plugins. Backends that
// are returned but unavailable are released here.
func (r *Registry) query(q QueryFunc, log logrus.FieldLogger) (b Backend, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.WithField("panic", p).Error("Backend query panicked")
			b, ok = nil, false
		}
	}()

	b, ok = q(r.queryOptions())
	if b == nil {
		return nil, false
	}
	if !ok || !b.Available() {
		r.release(b, log)
		return nil, false
	}
	return b, true
}

// registerLocked inserts b unless its name is empty or already taken, in
// which case b is released. The first registration of a name wins.
func (r *Registry) registerLocked(b Backend, source string, log logrus.FieldLogger) bool {
	name := strings.ToLower(b.Name())
	log = log.WithField("backend", name)

	if name == "" {
		log.Warn("Backend has an empty name, releasing")
		r.release(b, log)
		return false
	}
	if existing, dup := r.backends[name]; dup {
		log.WithField("registered_from", existing.source).Warn("Backend name already registered, releasing duplicate")
		r.metrics.ScanFile(observability.ScanResultDuplicate)
		r.release(b, log)
		return false
	}

	r.backends[name] = &entry{name: name, backend: b, source: source}
	r.order = append(r.order, name)
	r.metrics.ScanFile(observability.ScanResultRegistered)
	r.metrics.SetRegistered(len(r.order))

	log.WithField("version", b.Version()).Info("Registered backend")
	return true
}

func (r *Registry) release(b Backend, log logrus.FieldLogger) {
	if err := b.Release(); err != nil {
		log.WithError(err).Warn("Failed to release backend")
	}
}

// AvailableBackends returns the registered backend names in registration
// order. The slice is a copy.
func (r *Registry) AvailableBackends() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Backend looks a backend up by name, case-insensitively. The returned value
// must not be used after Close.
func (r *Registry) Backend(name string) (Backend, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.backends[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return e.backend, true
}

// InitializeBackend initializes the named backend.
func (r *Registry) InitializeBackend(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.backends[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return r.initializeLocked(e)
}

func (r *Registry) initializeLocked(e *entry) error {
	err := e.backend.Initialize(r.host)
	r.metrics.Initialization(e.name, err)
	if err != nil {
		return fmt.Errorf("initialize %s: %w", e.name, err)
	}
	e.initialized = true
	return nil
}

// IsGraphicsAPISupported reports whether the named backend supports api.
// Unknown names report false.
func (r *Registry) IsGraphicsAPISupported(name string, api GraphicsAPI) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.backends[strings.ToLower(name)]
	if !ok {
		return false
	}
	return e.backend.IsGraphicsAPISupported(api)
}

// AutoSelect initializes the first backend, in registration order, whose
// Initialize succeeds, and returns its name. Failed candidates are not
// retried.
func (r *Registry) AutoSelect() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		e := r.backends[name]
		if err := r.initializeLocked(e); err != nil {
			r.log.WithField("backend", name).WithError(err).Warn("Backend failed to initialize, trying next")
			continue
		}
		r.log.WithField("backend", name).Info("Auto-selected backend")
		return name, nil
	}
	return "", ErrNoBackend
}

// Select initializes preferred when it is non-empty, with no fallback on
// failure. Otherwise it auto-selects.
func (r *Registry) Select(preferred string) (string, error) {
	if preferred == "" {
		return r.AutoSelect()
	}
	if err := r.InitializeBackend(preferred); err != nil {
		return "", fmt.Errorf("preferred backend: %w", err)
	}
	return strings.ToLower(preferred), nil
}

// Close releases every registered backend. The registry is empty afterwards
// and ignores further scans.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range r.order {
		e := r.backends[name]
		if err := e.backend.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", name, err))
		}
	}
	r.backends = make(map[string]*entry)
	r.order = nil
	r.closed = true
	r.metrics.SetRegistered(0)
	return errors.Join(errs...)
}
