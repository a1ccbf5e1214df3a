package symtab

import (
	"os"
	"path/filepath"
	"runtime"
)

// LibPathEnv names a directory searched for every engine library.
const LibPathEnv = "MEDIAPLUG_LIB_PATH"

// Candidates returns the library paths an engine probe should try, most
// specific first:
//   - override (explicit configuration)
//   - the per-engine envVar, a full path or file name
//   - MEDIAPLUG_LIB_PATH joined with each name
//   - the executable directory and <exe>/../lib
//   - <module root>/build (development checkouts)
//   - each bare name, resolved by the system loader
//   - well-known system library directories
//
// Duplicates are removed; empty entries are skipped.
func Candidates(override, envVar string, names ...string) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	add(override)
	if envVar != "" {
		add(os.Getenv(envVar))
	}

	if dir := os.Getenv(LibPathEnv); dir != "" {
		for _, name := range names {
			add(filepath.Join(dir, name))
		}
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		for _, name := range names {
			add(filepath.Join(exeDir, name))
			add(filepath.Join(exeDir, "..", "lib", name))
		}
	}

	if root := findModuleRoot(); root != "" {
		for _, name := range names {
			add(filepath.Join(root, "build", name))
		}
	}

	for _, name := range names {
		add(name)
	}

	for _, dir := range systemLibDirs() {
		for _, name := range names {
			add(filepath.Join(dir, name))
		}
	}

	return paths
}

func systemLibDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/usr/local/lib", "/opt/homebrew/lib"}
	case "linux", "freebsd":
		return []string{"/usr/local/lib", "/usr/lib", "/usr/lib64"}
	default:
		return nil
	}
}

// findModuleRoot walks up from the working directory to the first directory
// containing go.mod.
func findModuleRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
