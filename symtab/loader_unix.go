//go:build darwin || freebsd || linux

package symtab

import (
	"fmt"

	"github.com/ebitengine/purego"
)

type dynamicLoader struct{}

// Dynamic returns the purego-backed platform loader.
func Dynamic() Loader { return dynamicLoader{} }

func (dynamicLoader) Open(path string) (uintptr, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, err
	}
	if handle == 0 {
		return 0, fmt.Errorf("dlopen %s: null handle", path)
	}
	return handle, nil
}

func (dynamicLoader) Lookup(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func (dynamicLoader) Bind(fptr any, addr uintptr) {
	purego.RegisterFunc(fptr, addr)
}

func (dynamicLoader) Close(handle uintptr) error {
	return purego.Dlclose(handle)
}
