// Package mpv binds libmpv at runtime and exposes it as a mediaplug backend.
//
// Library locations checked (in order):
//   - the "mpv" entry of QueryOptions.Libraries
//   - MEDIAPLUG_MPV_LIB environment variable
//   - MEDIAPLUG_LIB_PATH environment variable
//   - executable directory, build/ (development)
//   - System library paths
package mpv

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/thesyncim/mediaplug/symtab"
)

const (
	// Name is the registry name of the engine.
	Name = "mpv"
	// LibEnv overrides the libmpv path.
	LibEnv = "MEDIAPLUG_MPV_LIB"
)

// Error codes from client.h
const (
	errorSuccess          int32 = 0
	errorInvalidParameter int32 = -4
	errorNotImplemented   int32 = -19
)

// ErrorUnresolved is returned by Lib methods whose symbol is not bound.
const ErrorUnresolved = errorNotImplemented

// EventID is mpv_event_id.
type EventID int32

// Events from client.h
const (
	EventNone           EventID = 0
	EventShutdown       EventID = 1
	EventLogMessage     EventID = 2
	EventStartFile      EventID = 6
	EventEndFile        EventID = 7
	EventFileLoaded     EventID = 8
	EventIdle           EventID = 11
	EventPropertyChange EventID = 22
)

// Event is the header of mpv_event.
type Event struct {
	ID    EventID
	Error int32
}

// mpvEvent matches the leading fields of mpv_event in C.
type mpvEvent struct {
	EventID       int32
	Error         int32
	ReplyUserdata uint64
	Data          uintptr
}

// Lib is the libmpv call shim. Every method is safe to call whether or not
// the library is loaded; unresolved calls return the documented default.
type Lib struct {
	table *symtab.Table

	clientAPIVersion        *symtab.Func[func() uint64]
	errorString             *symtab.Func[func(code int32) uintptr]
	free                    *symtab.Func[func(data uintptr)]
	clientName              *symtab.Func[func(ctx uintptr) uintptr]
	create                  *symtab.Func[func() uintptr]
	initialize              *symtab.Func[func(ctx uintptr) int32]
	destroy                 *symtab.Func[func(ctx uintptr)]
	terminateDestroy        *symtab.Func[func(ctx uintptr)]
	setOptionString         *symtab.Func[func(ctx uintptr, name, value string) int32]
	commandString           *symtab.Func[func(ctx uintptr, args string) int32]
	setPropertyString       *symtab.Func[func(ctx uintptr, name, value string) int32]
	getPropertyString       *symtab.Func[func(ctx uintptr, name string) uintptr]
	requestLogMessages      *symtab.Func[func(ctx uintptr, minLevel string) int32]
	waitEvent               *symtab.Func[func(ctx uintptr, timeout float64) uintptr]
	wakeup                  *symtab.Func[func(ctx uintptr)]
	getTimeUS               *symtab.Func[func(ctx uintptr) int64]
	renderContextCreate     *symtab.Func[func(res unsafe.Pointer, ctx uintptr, params uintptr) int32]
	renderContextFree       *symtab.Func[func(rctx uintptr)]
	renderContextUpdate     *symtab.Func[func(rctx uintptr) uint64]
	renderContextReportSwap *symtab.Func[func(rctx uintptr)]
}

// NewLib declares the libmpv symbol table. The library is not opened.
func NewLib(loader symtab.Loader) *Lib {
	l := &Lib{
		clientAPIVersion:        symtab.NewFunc[func() uint64]("mpv_client_api_version"),
		errorString:             symtab.NewFunc[func(int32) uintptr]("mpv_error_string"),
		free:                    symtab.NewFunc[func(uintptr)]("mpv_free"),
		clientName:              symtab.NewFunc[func(uintptr) uintptr]("mpv_client_name"),
		create:                  symtab.NewFunc[func() uintptr]("mpv_create"),
		initialize:              symtab.NewFunc[func(uintptr) int32]("mpv_initialize"),
		destroy:                 symtab.NewFunc[func(uintptr)]("mpv_destroy"),
		terminateDestroy:        symtab.NewFunc[func(uintptr)]("mpv_terminate_destroy"),
		setOptionString:         symtab.NewFunc[func(uintptr, string, string) int32]("mpv_set_option_string"),
		commandString:           symtab.NewFunc[func(uintptr, string) int32]("mpv_command_string"),
		setPropertyString:       symtab.NewFunc[func(uintptr, string, string) int32]("mpv_set_property_string"),
		getPropertyString:       symtab.NewFunc[func(uintptr, string) uintptr]("mpv_get_property_string"),
		requestLogMessages:      symtab.NewFunc[func(uintptr, string) int32]("mpv_request_log_messages"),
		waitEvent:               symtab.NewFunc[func(uintptr, float64) uintptr]("mpv_wait_event"),
		wakeup:                  symtab.NewFunc[func(uintptr)]("mpv_wakeup"),
		getTimeUS:               symtab.NewFunc[func(uintptr) int64]("mpv_get_time_us"),
		renderContextCreate:     symtab.NewFunc[func(unsafe.Pointer, uintptr, uintptr) int32]("mpv_render_context_create"),
		renderContextFree:       symtab.NewFunc[func(uintptr)]("mpv_render_context_free"),
		renderContextUpdate:     symtab.NewFunc[func(uintptr) uint64]("mpv_render_context_update"),
		renderContextReportSwap: symtab.NewFunc[func(uintptr)]("mpv_render_context_report_swap"),
	}
	l.table = symtab.New(Name, loader,
		l.clientAPIVersion, l.errorString, l.free, l.clientName,
		l.create, l.initialize, l.destroy, l.terminateDestroy,
		l.setOptionString, l.commandString, l.setPropertyString, l.getPropertyString,
		l.requestLogMessages, l.waitEvent, l.wakeup, l.getTimeUS,
		l.renderContextCreate, l.renderContextFree, l.renderContextUpdate, l.renderContextReportSwap,
	)
	return l
}

// Table returns the underlying symbol table.
func (l *Lib) Table() *symtab.Table { return l.table }

func (l *Lib) IsLoaded() bool { return l.table.IsLoaded() }

func (l *Lib) Unload() error { return l.table.Unload() }

// LibraryNames returns the platform file names of libmpv, newest ABI first.
func LibraryNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"libmpv.2.dylib", "libmpv.dylib"}
	case "windows":
		return []string{"libmpv-2.dll", "mpv-2.dll", "mpv-1.dll"}
	default:
		return []string{"libmpv.so.2", "libmpv.so.1", "libmpv.so"}
	}
}

// ClientAPIVersion returns MPV_CLIENT_API_VERSION of the loaded library, or 0.
func (l *Lib) ClientAPIVersion() uint64 {
	return symtab.Call(l.table, l.clientAPIVersion, 0, func(fn func() uint64) uint64 {
		return fn()
	})
}

// ErrorString describes an mpv error code. Returns "" when unresolved.
func (l *Lib) ErrorString(code int32) string {
	return symtab.Call(l.table, l.errorString, "", func(fn func(int32) uintptr) string {
		return symtab.GoString(fn(code))
	})
}

// Free releases memory returned by libmpv.
func (l *Lib) Free(p uintptr) {
	if p == 0 {
		return
	}
	symtab.Do(l.table, l.free, func(fn func(uintptr)) { fn(p) })
}

func (l *Lib) ClientName(ctx uintptr) string {
	return symtab.Call(l.table, l.clientName, "", func(fn func(uintptr) uintptr) string {
		return symtab.GoString(fn(ctx))
	})
}

// Create returns a new mpv handle, or 0.
func (l *Lib) Create() uintptr {
	return symtab.Call(l.table, l.create, 0, func(fn func() uintptr) uintptr {
		return fn()
	})
}

func (l *Lib) Initialize(ctx uintptr) int32 {
	return symtab.Call(l.table, l.initialize, ErrorUnresolved, func(fn func(uintptr) int32) int32 {
		return fn(ctx)
	})
}

func (l *Lib) Destroy(ctx uintptr) {
	symtab.Do(l.table, l.destroy, func(fn func(uintptr)) { fn(ctx) })
}

func (l *Lib) TerminateDestroy(ctx uintptr) {
	symtab.Do(l.table, l.terminateDestroy, func(fn func(uintptr)) { fn(ctx) })
}

func (l *Lib) SetOptionString(ctx uintptr, name, value string) int32 {
	return symtab.Call(l.table, l.setOptionString, ErrorUnresolved, func(fn func(uintptr, string, string) int32) int32 {
		return fn(ctx, name, value)
	})
}

// Command runs an input.conf style command.
func (l *Lib) Command(ctx uintptr, args string) int32 {
	return symtab.Call(l.table, l.commandString, ErrorUnresolved, func(fn func(uintptr, string) int32) int32 {
		return fn(ctx, args)
	})
}

func (l *Lib) SetProperty(ctx uintptr, name, value string) int32 {
	return symtab.Call(l.table, l.setPropertyString, ErrorUnresolved, func(fn func(uintptr, string, string) int32) int32 {
		return fn(ctx, name, value)
	})
}

// GetProperty reads a property as a string. ok is false when the property is
// unavailable or the symbol unresolved. The copy and mpv_free happen before
// the library can be unloaded.
func (l *Lib) GetProperty(ctx uintptr, name string) (value string, ok bool) {
	value = symtab.Call2(l.table, l.getPropertyString, l.free, "", func(get func(uintptr, string) uintptr, free func(uintptr)) string {
		p := get(ctx, name)
		if p == 0 {
			return ""
		}
		defer free(p)
		ok = true
		return symtab.GoString(p)
	})
	return value, ok
}

func (l *Lib) RequestLogMessages(ctx uintptr, minLevel string) int32 {
	return symtab.Call(l.table, l.requestLogMessages, ErrorUnresolved, func(fn func(uintptr, string) int32) int32 {
		return fn(ctx, minLevel)
	})
}

// WaitEvent waits up to timeout seconds for the next event. It returns
// EventNone on timeout or when unresolved.
func (l *Lib) WaitEvent(ctx uintptr, timeout float64) Event {
	return symtab.Call(l.table, l.waitEvent, Event{}, func(fn func(uintptr, float64) uintptr) Event {
		p := fn(ctx, timeout)
		if p == 0 {
			return Event{}
		}
		ev := (*mpvEvent)(unsafe.Pointer(p))
		return Event{ID: EventID(ev.EventID), Error: ev.Error}
	})
}

func (l *Lib) Wakeup(ctx uintptr) {
	symtab.Do(l.table, l.wakeup, func(fn func(uintptr)) { fn(ctx) })
}

// TimeUS returns mpv's internal clock in microseconds, or 0.
func (l *Lib) TimeUS(ctx uintptr) int64 {
	return symtab.Call(l.table, l.getTimeUS, 0, func(fn func(uintptr) int64) int64 {
		return fn(ctx)
	})
}

// RenderContextCreate creates a render context. params points to a
// zero-terminated mpv_render_param array owned by the caller.
func (l *Lib) RenderContextCreate(ctx uintptr, params uintptr) (uintptr, int32) {
	var rctx uintptr
	rc := symtab.Call(l.table, l.renderContextCreate, ErrorUnresolved, func(fn func(unsafe.Pointer, uintptr, uintptr) int32) int32 {
		return fn(unsafe.Pointer(&rctx), ctx, params)
	})
	return rctx, rc
}

func (l *Lib) RenderContextFree(rctx uintptr) {
	symtab.Do(l.table, l.renderContextFree, func(fn func(uintptr)) { fn(rctx) })
}

// RenderContextUpdate returns the MPV_RENDER_UPDATE_* flags, or 0.
func (l *Lib) RenderContextUpdate(rctx uintptr) uint64 {
	return symtab.Call(l.table, l.renderContextUpdate, 0, func(fn func(uintptr) uint64) uint64 {
		return fn(rctx)
	})
}

func (l *Lib) RenderContextReportSwap(rctx uintptr) {
	symtab.Do(l.table, l.renderContextReportSwap, func(fn func(uintptr)) { fn(rctx) })
}

// check converts an mpv status code into an error.
func (l *Lib) check(op string, rc int32) error {
	if rc >= errorSuccess {
		return nil
	}
	msg := l.ErrorString(rc)
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("mpv: %s: %s (%d)", op, msg, rc)
}
