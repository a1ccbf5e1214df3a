//go:build windows

package symtab

import (
	"syscall"

	"github.com/ebitengine/purego"
)

type dynamicLoader struct{}

// Dynamic returns the platform loader. Libraries are opened with
// LoadLibrary and bound with purego.
func Dynamic() Loader { return dynamicLoader{} }

func (dynamicLoader) Open(path string) (uintptr, error) {
	h, err := syscall.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func (dynamicLoader) Lookup(handle uintptr, name string) (uintptr, error) {
	return syscall.GetProcAddress(syscall.Handle(handle), name)
}

func (dynamicLoader) Bind(fptr any, addr uintptr) {
	purego.RegisterFunc(fptr, addr)
}

func (dynamicLoader) Close(handle uintptr) error {
	return syscall.FreeLibrary(syscall.Handle(handle))
}
