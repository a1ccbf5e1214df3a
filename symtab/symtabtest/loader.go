// Package symtabtest provides an in-memory symtab.Loader for tests.
//
// Libraries are maps from symbol name to a Go func whose type must match the
// symtab.Func signature it is bound to exactly.
package symtabtest

import (
	"fmt"
	"reflect"
	"sync"
)

// Loader is a fake dynamic loader.
type Loader struct {
	mu      sync.Mutex
	libs    map[string]map[string]any
	handles map[uintptr]string
	funcs   []any
	next    uintptr

	opens  int
	closes int
}

// NewLoader returns an empty fake loader.
func NewLoader() *Loader {
	return &Loader{
		libs:    make(map[string]map[string]any),
		handles: make(map[uintptr]string),
		next:    0x1000,
	}
}

// AddLibrary makes path openable, exporting symbols.
func (l *Loader) AddLibrary(path string, symbols map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.libs[path] = symbols
}

// RemoveLibrary makes path fail to open.
func (l *Loader) RemoveLibrary(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.libs, path)
}

func (l *Loader) Open(path string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.libs[path]; !ok {
		return 0, fmt.Errorf("%s: cannot open shared object file", path)
	}
	l.next += 0x10
	l.handles[l.next] = path
	l.opens++
	return l.next, nil
}

func (l *Loader) Lookup(handle uintptr, name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path, ok := l.handles[handle]
	if !ok {
		return 0, fmt.Errorf("invalid handle %#x", handle)
	}
	fn, ok := l.libs[path][name]
	if !ok || fn == nil {
		return 0, fmt.Errorf("%s: undefined symbol: %s", path, name)
	}
	l.funcs = append(l.funcs, fn)
	return uintptr(len(l.funcs)), nil
}

func (l *Loader) Bind(fptr any, addr uintptr) {
	l.mu.Lock()
	fn := l.funcs[addr-1]
	l.mu.Unlock()

	reflect.ValueOf(fptr).Elem().Set(reflect.ValueOf(fn))
}

func (l *Loader) Close(handle uintptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.handles[handle]; !ok {
		return fmt.Errorf("invalid handle %#x", handle)
	}
	delete(l.handles, handle)
	l.closes++
	return nil
}

// Opens returns how many handles were opened.
func (l *Loader) Opens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

// Closes returns how many handles were closed.
func (l *Loader) Closes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}

// Live returns the number of open handles.
func (l *Loader) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.handles)
}
