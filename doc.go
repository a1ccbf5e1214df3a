// Package mediaplug discovers, binds and selects native media playback
// engines at runtime.
//
// A host application links none of the engines. Instead it builds a
// Registry, which finds candidate engines either compiled in (static mode,
// see package builtin) or as Go plugins in search directories, probes each
// one, and keeps a name-keyed table of the engines that are usable on this
// machine. The host then initializes exactly one of them, explicitly by name
// or by auto-selection in registration order.
//
// # Architecture
//
//	Registry -> QueryFunc -> Backend -> engine Lib (call shim) -> symtab.Table -> shared library
//
// Each engine (packages engines/mpv, engines/vlc, engines/mdk) owns a
// symtab.Table listing every native symbol it needs. An engine is available
// only when all of them resolve. Calls into the engine always go through its
// Lib methods, which return a documented default instead of calling through
// an unresolved symbol.
//
// # Native Libraries
//
// Engine libraries are located with symtab.Candidates. Set MEDIAPLUG_LIB_PATH
// to a directory containing them, or point a single engine at a library with
// MEDIAPLUG_MPV_LIB, MEDIAPLUG_VLC_LIB or MEDIAPLUG_MDK_LIB. Binding uses
// purego, so CGO_ENABLED=0 builds work on darwin, linux, freebsd and windows.
//
// # Plugins
//
// In dynamic mode a plugin is a Go plugin (-buildmode=plugin) exporting
//
//	func QueryBackend(opts mediaplug.QueryOptions) (mediaplug.Backend, bool)
//
// See examples/plugins. Go plugins need cgo and must be built with the same
// module versions as the host; static mode has neither restriction.
// Directories listed in MEDIAPLUG_BACKEND_PATH (separated by ';') are
// scanned at startup by cmd/mediaplug.
//
// # Build Tags
//
// Optional tags drop engines from the static list:
//   - nompv, novlc, nomdk
package mediaplug
