// Package host is the seam between engines and the application that embeds
// them. An engine's Initialize registers a PlayerType with a Registrar; the
// application later creates players by type name.
package host

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrDuplicateType = errors.New("host: player type already registered")
	ErrUnknownType   = errors.New("host: unknown player type")
	ErrNotSupported  = errors.New("host: operation not supported by engine")
)

// Player is the minimal playback surface an engine exposes to the host.
type Player interface {
	Load(url string) error
	Play() error
	Pause() error
	Stop() error
	Close() error
}

// PlayerType describes a playback component registered by an engine.
type PlayerType struct {
	Name   string // type name used by the host, e.g. "MpvPlayer"
	Engine string // backend name
	New    func() (Player, error)
}

// Registrar accepts player type registrations.
type Registrar interface {
	RegisterPlayerType(t PlayerType) error
}

// TypeRegistry is an in-memory Registrar.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]PlayerType
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]PlayerType)}
}

// RegisterPlayerType implements Registrar.
func (r *TypeRegistry) RegisterPlayerType(t PlayerType) error {
	if t.Name == "" {
		return fmt.Errorf("host: player type has no name")
	}
	if t.New == nil {
		return fmt.Errorf("host: player type %s has no constructor", t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t.Name)
	}
	r.types[t.Name] = t
	return nil
}

// Lookup returns the registered type with the given name.
func (r *TypeRegistry) Lookup(name string) (PlayerType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// ForEngine returns the first registered type provided by engine. Engine
// names compare case-insensitively.
func (r *TypeRegistry) ForEngine(engine string) (PlayerType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.sortedNamesLocked() {
		if t := r.types[name]; strings.EqualFold(t.Engine, engine) {
			return t, true
		}
	}
	return PlayerType{}, false
}

// Types returns the registered type names, sorted.
func (r *TypeRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNamesLocked()
}

func (r *TypeRegistry) sortedNamesLocked() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPlayer constructs a player of the named type.
func (r *TypeRegistry) NewPlayer(name string) (Player, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return t.New()
}
