// Package mdk binds the MDK SDK at runtime and exposes it as a mediaplug
// backend.
//
// Only the global C entry points are bound. mdkPlayerAPI is a table of
// function pointers whose layout changes between SDK releases, so players
// are created and destroyed but not driven.
package mdk

import (
	"runtime"
	"unsafe"

	"github.com/thesyncim/mediaplug/symtab"
)

const (
	// Name is the registry name of the engine.
	Name = "mdk"
	// LibEnv overrides the MDK library path.
	LibEnv = "MEDIAPLUG_MDK_LIB"
)

// LogLevel is MDK_LogLevel.
type LogLevel int32

const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
	LogLevelAll
)

// Lib is the MDK call shim.
type Lib struct {
	table *symtab.Table

	version                 *symtab.Func[func() int32]
	setLogLevel             *symtab.Func[func(level int32)]
	logLevel                *symtab.Func[func() int32]
	setGlobalOptionString   *symtab.Func[func(key, value string)]
	setGlobalOptionInt32    *symtab.Func[func(key string, value int32)]
	setGlobalOptionPtr      *symtab.Func[func(key string, value uintptr)]
	playerAPINew            *symtab.Func[func() uintptr]
	playerAPIDelete         *symtab.Func[func(pp unsafe.Pointer)]
	foreignGLContextDestroy *symtab.Func[func()]
}

// NewLib declares the MDK symbol table. The library is not opened.
func NewLib(loader symtab.Loader) *Lib {
	l := &Lib{
		version:                 symtab.NewFunc[func() int32]("MDK_version"),
		setLogLevel:             symtab.NewFunc[func(int32)]("MDK_setLogLevel"),
		logLevel:                symtab.NewFunc[func() int32]("MDK_logLevel"),
		setGlobalOptionString:   symtab.NewFunc[func(string, string)]("MDK_setGlobalOptionString"),
		setGlobalOptionInt32:    symtab.NewFunc[func(string, int32)]("MDK_setGlobalOptionInt32"),
		setGlobalOptionPtr:      symtab.NewFunc[func(string, uintptr)]("MDK_setGlobalOptionPtr"),
		playerAPINew:            symtab.NewFunc[func() uintptr]("mdkPlayerAPI_new"),
		playerAPIDelete:         symtab.NewFunc[func(unsafe.Pointer)]("mdkPlayerAPI_delete"),
		foreignGLContextDestroy: symtab.NewFunc[func()]("MDK_foreignGLContextDestroyed"),
	}
	l.table = symtab.New(Name, loader,
		l.version, l.setLogLevel, l.logLevel,
		l.setGlobalOptionString, l.setGlobalOptionInt32, l.setGlobalOptionPtr,
		l.playerAPINew, l.playerAPIDelete, l.foreignGLContextDestroy,
	)
	return l
}

func (l *Lib) Table() *symtab.Table { return l.table }
func (l *Lib) IsLoaded() bool       { return l.table.IsLoaded() }
func (l *Lib) Unload() error        { return l.table.Unload() }

// LibraryNames returns the platform file names of the MDK library.
func LibraryNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"mdk.framework/mdk", "libmdk.dylib", "libmdk.0.dylib"}
	case "windows":
		return []string{"mdk.dll"}
	default:
		return []string{"libmdk.so.0", "libmdk.so"}
	}
}

// Version returns MDK_version(), encoded as major<<16 | minor<<8 | patch, or
// 0 when unresolved.
func (l *Lib) Version() int32 {
	return symtab.Call(l.table, l.version, 0, func(fn func() int32) int32 { return fn() })
}

func (l *Lib) SetLogLevel(level LogLevel) {
	symtab.Do(l.table, l.setLogLevel, func(fn func(int32)) { fn(int32(level)) })
}

// LogLevel returns the current level, or LogLevelOff when unresolved.
func (l *Lib) LogLevel() LogLevel {
	return LogLevel(symtab.Call(l.table, l.logLevel, int32(LogLevelOff), func(fn func() int32) int32 { return fn() }))
}

func (l *Lib) SetGlobalOption(key, value string) {
	symtab.Do(l.table, l.setGlobalOptionString, func(fn func(string, string)) { fn(key, value) })
}

func (l *Lib) SetGlobalOptionInt(key string, value int32) {
	symtab.Do(l.table, l.setGlobalOptionInt32, func(fn func(string, int32)) { fn(key, value) })
}

func (l *Lib) SetGlobalOptionPtr(key string, value uintptr) {
	symtab.Do(l.table, l.setGlobalOptionPtr, func(fn func(string, uintptr)) { fn(key, value) })
}

// PlayerAPINew returns a new const mdkPlayerAPI*, or 0.
func (l *Lib) PlayerAPINew() uintptr {
	return symtab.Call(l.table, l.playerAPINew, 0, func(fn func() uintptr) uintptr { return fn() })
}

// PlayerAPIDelete destroys *api and sets it to 0.
func (l *Lib) PlayerAPIDelete(api *uintptr) {
	if api == nil || *api == 0 {
		return
	}
	symtab.Do(l.table, l.playerAPIDelete, func(fn func(unsafe.Pointer)) { fn(unsafe.Pointer(api)) })
}

// ForeignGLContextDestroyed must be called when a host GL context used by
// MDK is about to be destroyed.
func (l *Lib) ForeignGLContextDestroyed() {
	symtab.Do(l.table, l.foreignGLContextDestroy, func(fn func()) { fn() })
}
