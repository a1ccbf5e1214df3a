package symtab

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrLibraryNotFound is returned by Probe when no candidate resolves every
// symbol.
var ErrLibraryNotFound = errors.New("symtab: library not found")

// Probe loads candidates in order and keeps the first one for which
// IsLoaded reports true, returning its path. A candidate that opens but
// lacks symbols is unloaded before the next one is tried, so on failure the
// table is left unloaded.
func Probe(t *Table, candidates []string, log logrus.FieldLogger) (string, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("engine", t.Name())

	var lastErr error
	for _, path := range candidates {
		if err := t.Load(path); err != nil {
			log.WithField("path", path).WithError(err).Trace("Library candidate did not open")
			lastErr = err
			continue
		}
		if t.IsLoaded() {
			log.WithField("path", path).Debug("Library loaded")
			return path, nil
		}

		missing := t.Missing()
		log.WithFields(logrus.Fields{"path": path, "missing": missing}).Debug("Library is missing symbols")
		lastErr = fmt.Errorf("%s: %d symbols missing: %s", path, len(missing), strings.Join(missing, ", "))
		if err := t.Unload(); err != nil {
			log.WithError(err).Warn("Failed to unload library")
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, t.Name(), lastErr)
	}
	return "", fmt.Errorf("%w: %s: no candidates", ErrLibraryNotFound, t.Name())
}
