package mediaplug

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thesyncim/mediaplug/observability"
)

// probeKey identifies one version of a file on disk. Files that were probed
// and not registered are cached under it, with the scan result, until they
// change.
type probeKey struct {
	path    string
	size    int64
	modTime int64
}

// AddSearchDirectory appends dir to the search path and scans it at once.
// It reports false, after logging why, when dir is not an existing directory,
// is already on the search path, or the registry is in static mode.
func (r *Registry) AddSearchDirectory(dir string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.log.WithField("dir", dir)
	if r.static {
		log.Warn("Search directories are not used in static mode")
		return false
	}
	if r.closed {
		log.Warn("Registry is closed")
		return false
	}

	canonical, err := canonicalDir(dir)
	if err != nil {
		log.WithError(err).Warn("Ignoring search directory")
		return false
	}
	if slices.Contains(r.searchPaths, canonical) {
		log.Debug("Search directory already added")
		return false
	}

	r.searchPaths = append(r.searchPaths, canonical)
	r.scanLocked(canonical)
	return true
}

// AddSearchDirectories adds every entry of a ';'-separated list, in order.
// It returns how many directories were added.
func (r *Registry) AddSearchDirectories(list string) int {
	var added int
	for _, dir := range strings.Split(list, ";") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if r.AddSearchDirectory(dir) {
			added++
		}
	}
	return added
}

// SearchDirectories returns the canonical search path, first-added first.
func (r *Registry) SearchDirectories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.searchPaths)
}

// Rescan scans every search directory again. Plugin files already
// registered are kept. Backends whose file disappeared are released, unless
// they were initialized.
func (r *Registry) Rescan() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.static || r.closed {
		return
	}

	kept := r.order[:0]
	for _, name := range r.order {
		e := r.backends[name]
		if e.source != sourceStatic && !e.initialized {
			if _, err := os.Stat(e.source); errors.Is(err, os.ErrNotExist) {
				log := r.log.WithFields(logrus.Fields{"backend": name, "path": e.source})
				log.Info("Plugin file removed, releasing backend")
				r.release(e.backend, log)
				delete(r.backends, name)
				continue
			}
		}
		kept = append(kept, name)
	}
	if len(kept) < len(r.order) && r.probeCache != nil {
		// A freed name may now be taken by a file rejected as a duplicate.
		r.probeCache.Purge()
	}
	r.order = kept
	r.metrics.SetRegistered(len(r.order))

	for _, dir := range r.searchPaths {
		r.scanLocked(dir)
	}
}

func (r *Registry) scanLocked(dir string) {
	log := r.log.WithFields(logrus.Fields{"dir": dir, "scan": uuid.NewString()})
	r.metrics.Scan()

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithError(err).Warn("Failed to read search directory")
		return
	}

	log.WithField("entries", len(entries)).Debug("Scanning search directory")
	for _, entry := range entries {
		if entry.IsDir() || !isLibraryFile(entry.Name()) {
			continue
		}
		r.probeFileLocked(filepath.Join(dir, entry.Name()), log)
	}
}

func (r *Registry) probeFileLocked(path string, log logrus.FieldLogger) {
	log = log.WithField("path", path)

	for _, e := range r.backends {
		if e.source == path {
			return
		}
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	if !readable(path) {
		log.Debug("Skipping unreadable file")
		return
	}

	key := probeKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
	if r.probeCache != nil {
		if result, ok := r.probeCache.Get(key); ok {
			log.WithField("result", result).Debug("Skipping unchanged file")
			r.metrics.ScanFile(observability.ScanResultCached)
			return
		}
	}

	q, err := r.opener.Open(path)
	if err != nil {
		log.WithError(err).Debug("Not a backend plugin")
		r.metrics.ScanFile(observability.ScanResultNotPlugin)
		r.rememberLocked(key, observability.ScanResultNotPlugin)
		return
	}

	b, ok := r.query(q, log)
	if !ok {
		log.Info("Backend plugin not available")
		r.metrics.ScanFile(observability.ScanResultUnavailable)
		r.rememberLocked(key, observability.ScanResultUnavailable)
		return
	}
	if !r.registerLocked(b, path, log) {
		r.rememberLocked(key, observability.ScanResultDuplicate)
	}
}

func (r *Registry) rememberLocked(key probeKey, result string) {
	if r.probeCache != nil {
		r.probeCache.Add(key, result)
	}
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// canonicalDir resolves dir to an absolute, symlink-free path and checks that
// it is a directory.
func canonicalDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", resolved)
	}
	return resolved, nil
}
