//go:build !darwin && !freebsd && !linux && !windows

package symtab

type dynamicLoader struct{}

// Dynamic returns a loader that fails every Open on this platform.
func Dynamic() Loader { return dynamicLoader{} }

func (dynamicLoader) Open(string) (uintptr, error) { return 0, ErrUnsupportedPlatform }

func (dynamicLoader) Lookup(uintptr, string) (uintptr, error) { return 0, ErrUnsupportedPlatform }

// Bind is unreachable: Open never returns a handle.
func (dynamicLoader) Bind(any, uintptr) {}

func (dynamicLoader) Close(uintptr) error { return nil }
