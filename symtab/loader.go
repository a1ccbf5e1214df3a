package symtab

// Loader is the platform dynamic loader used by a Table.
type Loader interface {
	// Open loads the library at path and returns a non-zero handle.
	Open(path string) (uintptr, error)
	// Lookup returns the address of the exported symbol name.
	Lookup(handle uintptr, name string) (uintptr, error)
	// Bind makes the func pointed to by fptr call the native function at addr.
	Bind(fptr any, addr uintptr)
	// Close releases a handle returned by Open.
	Close(handle uintptr) error
}
