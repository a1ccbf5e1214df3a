// Package builtin lists the engines compiled into the host for static-link
// mode. Build with -tags nompv, novlc or nomdk to leave an engine out.
package builtin

import (
	"github.com/thesyncim/mediaplug"
)

// order is the static probe order.
var order = []string{"mdk", "mpv", "vlc"}

var queries = make(map[string]mediaplug.QueryFunc)

func register(name string, q mediaplug.QueryFunc) {
	queries[name] = q
}

// Backends returns the compiled-in engines in probe order.
func Backends() []mediaplug.StaticBackend {
	var out []mediaplug.StaticBackend
	for _, name := range order {
		if q, ok := queries[name]; ok {
			out = append(out, mediaplug.StaticBackend{Name: name, Query: q})
		}
	}
	return out
}

// Names returns the names of the compiled-in engines in probe order.
func Names() []string {
	var names []string
	for _, b := range Backends() {
		names = append(names, b.Name)
	}
	return names
}
