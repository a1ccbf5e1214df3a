package mediaplug

import (
	"fmt"
	"path/filepath"
	"plugin"
	"runtime"
	"strings"
)

// Opener resolves the entry point of a plugin file.
type Opener interface {
	Open(path string) (QueryFunc, error)
}

// GoPluginOpener opens Go plugins built with -buildmode=plugin. The plugin
// must be built against the same versions of this module and its
// dependencies as the host.
type GoPluginOpener struct{}

func (GoPluginOpener) Open(path string) (QueryFunc, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup(EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("lookup %s in %s: %w", EntryPoint, path, err)
	}

	switch v := sym.(type) {
	case func(QueryOptions) (Backend, bool):
		return v, nil
	case *QueryFunc:
		if *v == nil {
			return nil, fmt.Errorf("%s in %s is nil", EntryPoint, path)
		}
		return *v, nil
	case *func(QueryOptions) (Backend, bool):
		if *v == nil {
			return nil, fmt.Errorf("%s in %s is nil", EntryPoint, path)
		}
		return *v, nil
	default:
		return nil, fmt.Errorf("%s in %s has type %T, want QueryFunc", EntryPoint, path, sym)
	}
}

// libraryExtensions lists the file extensions scanned for plugins.
func libraryExtensions() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{".so", ".dylib", ".bundle"}
	case "windows":
		return []string{".dll"}
	default:
		return []string{".so"}
	}
}

// isLibraryFile reports whether name looks like a loadable library.
func isLibraryFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range libraryExtensions() {
		if ext == want {
			return true
		}
	}
	return false
}
