// Package symtab binds a shared library to a typed function table.
//
// A Table owns exactly one library handle and a fixed, declared list of
// symbols. Each symbol is a *Func[F] that is either resolved to a callable
// typed func or absent. Callers never touch the resolved func directly; they
// go through Call and Do, which hold the table lock for the duration of the
// native call and fall back to a default when the symbol is absent.
//
// The default Loader (Dynamic) uses purego, so no cgo toolchain is needed to
// bind native engines at runtime.
package symtab

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrEmptyPath           = errors.New("symtab: empty library path")
	ErrUnsupportedPlatform = errors.New("symtab: dynamic loading not supported on this platform")
)

// Table holds a loaded library handle and its resolved symbols.
type Table struct {
	name   string
	loader Loader
	syms   []Symbol

	mu      sync.RWMutex
	handle  uintptr
	path    string
	missing []string
}

// New creates an unloaded table for the named engine. syms are resolved in
// the given order on every Load.
func New(name string, loader Loader, syms ...Symbol) *Table {
	if loader == nil {
		loader = Dynamic()
	}
	return &Table{
		name:   name,
		loader: loader,
		syms:   syms,
	}
}

// Name returns the engine name the table was created for.
func (t *Table) Name() string { return t.name }

// Load opens the library at path and resolves every declared symbol.
//
// Any library already held by the table is unloaded first. If the library
// cannot be opened the table is left unloaded. Symbols that fail to resolve
// are recorded (see Missing) and do not fail Load; they make IsLoaded false.
func (t *Table) Load(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.unloadLocked(); err != nil {
		return fmt.Errorf("%s: unload %s: %w", t.name, t.path, err)
	}

	handle, err := t.loader.Open(path)
	if err != nil {
		return fmt.Errorf("%s: open %s: %w", t.name, path, err)
	}
	if handle == 0 {
		return fmt.Errorf("%s: open %s: null library handle", t.name, path)
	}

	t.handle = handle
	t.path = path
	t.missing = nil
	for _, s := range t.syms {
		addr, err := t.loader.Lookup(handle, s.SymbolName())
		if err != nil || addr == 0 {
			t.missing = append(t.missing, s.SymbolName())
			continue
		}
		s.bind(t.loader, addr)
	}
	return nil
}

// Unload clears every resolved symbol and releases the library handle.
// Calling it on an unloaded table is a no-op.
func (t *Table) Unload() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unloadLocked()
}

func (t *Table) unloadLocked() error {
	for _, s := range t.syms {
		s.reset()
	}
	t.missing = nil
	if t.handle == 0 {
		return nil
	}
	handle := t.handle
	t.handle = 0
	t.path = ""
	return t.loader.Close(handle)
}

// IsLoaded reports whether the library is open and every declared symbol
// resolved.
func (t *Table) IsLoaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.handle == 0 {
		return false
	}
	for _, s := range t.syms {
		if !s.resolved() {
			return false
		}
	}
	return true
}

// Missing returns the symbols that failed to resolve on the last Load, in
// declaration order.
func (t *Table) Missing() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, len(t.missing))
	copy(out, t.missing)
	return out
}

// Path returns the path of the currently loaded library, or "".
func (t *Table) Path() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.path
}

// Symbols returns the declared symbol names in resolution order.
func (t *Table) Symbols() []string {
	names := make([]string, len(t.syms))
	for i, s := range t.syms {
		names[i] = s.SymbolName()
	}
	return names
}
