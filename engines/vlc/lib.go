// Package vlc binds libvlc 3 at runtime and exposes it as a mediaplug
// backend.
package vlc

import (
	"runtime"

	"github.com/thesyncim/mediaplug/symtab"
)

const (
	// Name is the registry name of the engine.
	Name = "vlc"
	// LibEnv overrides the libvlc path.
	LibEnv = "MEDIAPLUG_VLC_LIB"
)

// Lib is the libvlc call shim. Methods return 0, -1 or "" when the symbol
// is not bound.
type Lib struct {
	table *symtab.Table

	getVersion  *symtab.Func[func() uintptr]
	getCompiler *symtab.Func[func() uintptr]
	newInstance *symtab.Func[func(argc int32, argv uintptr) uintptr]
	release     *symtab.Func[func(inst uintptr)]
	errmsg      *symtab.Func[func() uintptr]
	clearerr    *symtab.Func[func()]

	mediaNewLocation *symtab.Func[func(inst uintptr, mrl string) uintptr]
	mediaNewPath     *symtab.Func[func(inst uintptr, path string) uintptr]
	mediaRelease     *symtab.Func[func(md uintptr)]

	playerNew      *symtab.Func[func(inst uintptr) uintptr]
	playerSetMedia *symtab.Func[func(mp, md uintptr)]
	playerRelease  *symtab.Func[func(mp uintptr)]
	playerPlay     *symtab.Func[func(mp uintptr) int32]
	playerSetPause *symtab.Func[func(mp uintptr, pause int32)]
	playerStop     *symtab.Func[func(mp uintptr)]
	playerPlaying  *symtab.Func[func(mp uintptr) int32]
	playerGetTime  *symtab.Func[func(mp uintptr) int64]
	playerSetTime  *symtab.Func[func(mp uintptr, ms int64)]

	audioSetVolume *symtab.Func[func(mp uintptr, volume int32) int32]
	audioGetVolume *symtab.Func[func(mp uintptr) int32]

	videoSetCallbacks *symtab.Func[func(mp, lock, unlock, display, opaque uintptr)]
	videoSetFormat    *symtab.Func[func(mp uintptr, chroma string, width, height, pitch uint32)]
}

// NewLib declares the libvlc symbol table. The library is not opened.
func NewLib(loader symtab.Loader) *Lib {
	l := &Lib{
		getVersion:  symtab.NewFunc[func() uintptr]("libvlc_get_version"),
		getCompiler: symtab.NewFunc[func() uintptr]("libvlc_get_compiler"),
		newInstance: symtab.NewFunc[func(int32, uintptr) uintptr]("libvlc_new"),
		release:     symtab.NewFunc[func(uintptr)]("libvlc_release"),
		errmsg:      symtab.NewFunc[func() uintptr]("libvlc_errmsg"),
		clearerr:    symtab.NewFunc[func()]("libvlc_clearerr"),

		mediaNewLocation: symtab.NewFunc[func(uintptr, string) uintptr]("libvlc_media_new_location"),
		mediaNewPath:     symtab.NewFunc[func(uintptr, string) uintptr]("libvlc_media_new_path"),
		mediaRelease:     symtab.NewFunc[func(uintptr)]("libvlc_media_release"),

		playerNew:      symtab.NewFunc[func(uintptr) uintptr]("libvlc_media_player_new"),
		playerSetMedia: symtab.NewFunc[func(uintptr, uintptr)]("libvlc_media_player_set_media"),
		playerRelease:  symtab.NewFunc[func(uintptr)]("libvlc_media_player_release"),
		playerPlay:     symtab.NewFunc[func(uintptr) int32]("libvlc_media_player_play"),
		playerSetPause: symtab.NewFunc[func(uintptr, int32)]("libvlc_media_player_set_pause"),
		playerStop:     symtab.NewFunc[func(uintptr)]("libvlc_media_player_stop"),
		playerPlaying:  symtab.NewFunc[func(uintptr) int32]("libvlc_media_player_is_playing"),
		playerGetTime:  symtab.NewFunc[func(uintptr) int64]("libvlc_media_player_get_time"),
		playerSetTime:  symtab.NewFunc[func(uintptr, int64)]("libvlc_media_player_set_time"),

		audioSetVolume: symtab.NewFunc[func(uintptr, int32) int32]("libvlc_audio_set_volume"),
		audioGetVolume: symtab.NewFunc[func(uintptr) int32]("libvlc_audio_get_volume"),

		videoSetCallbacks: symtab.NewFunc[func(uintptr, uintptr, uintptr, uintptr, uintptr)]("libvlc_video_set_callbacks"),
		videoSetFormat:    symtab.NewFunc[func(uintptr, string, uint32, uint32, uint32)]("libvlc_video_set_format"),
	}
	l.table = symtab.New(Name, loader,
		l.getVersion, l.getCompiler, l.newInstance, l.release, l.errmsg, l.clearerr,
		l.mediaNewLocation, l.mediaNewPath, l.mediaRelease,
		l.playerNew, l.playerSetMedia, l.playerRelease, l.playerPlay, l.playerSetPause,
		l.playerStop, l.playerPlaying, l.playerGetTime, l.playerSetTime,
		l.audioSetVolume, l.audioGetVolume,
		l.videoSetCallbacks, l.videoSetFormat,
	)
	return l
}

func (l *Lib) Table() *symtab.Table { return l.table }
func (l *Lib) IsLoaded() bool       { return l.table.IsLoaded() }
func (l *Lib) Unload() error        { return l.table.Unload() }

// LibraryNames returns the platform file names of libvlc.
func LibraryNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"libvlc.dylib", "libvlc.5.dylib"}
	case "windows":
		return []string{"libvlc.dll"}
	default:
		return []string{"libvlc.so.5", "libvlc.so"}
	}
}

func (l *Lib) cstring(f *symtab.Func[func() uintptr]) string {
	return symtab.Call(l.table, f, "", func(fn func() uintptr) string {
		return symtab.GoString(fn())
	})
}

// Version returns libvlc_get_version, e.g. "3.0.20 Vetinari".
func (l *Lib) Version() string  { return l.cstring(l.getVersion) }
func (l *Lib) Compiler() string { return l.cstring(l.getCompiler) }

// ErrMsg returns the last libvlc error of the calling thread, or "".
func (l *Lib) ErrMsg() string { return l.cstring(l.errmsg) }

func (l *Lib) ClearErr() {
	symtab.Do(l.table, l.clearerr, func(fn func()) { fn() })
}

// New creates a libvlc instance with default arguments. Returns 0 on failure.
func (l *Lib) New() uintptr {
	return symtab.Call(l.table, l.newInstance, 0, func(fn func(int32, uintptr) uintptr) uintptr {
		return fn(0, 0)
	})
}

func (l *Lib) Release(inst uintptr) {
	symtab.Do(l.table, l.release, func(fn func(uintptr)) { fn(inst) })
}

func (l *Lib) MediaNewLocation(inst uintptr, mrl string) uintptr {
	return symtab.Call(l.table, l.mediaNewLocation, 0, func(fn func(uintptr, string) uintptr) uintptr {
		return fn(inst, mrl)
	})
}

func (l *Lib) MediaNewPath(inst uintptr, path string) uintptr {
	return symtab.Call(l.table, l.mediaNewPath, 0, func(fn func(uintptr, string) uintptr) uintptr {
		return fn(inst, path)
	})
}

func (l *Lib) MediaRelease(md uintptr) {
	symtab.Do(l.table, l.mediaRelease, func(fn func(uintptr)) { fn(md) })
}

func (l *Lib) MediaPlayerNew(inst uintptr) uintptr {
	return symtab.Call(l.table, l.playerNew, 0, func(fn func(uintptr) uintptr) uintptr {
		return fn(inst)
	})
}

func (l *Lib) MediaPlayerSetMedia(mp, md uintptr) {
	symtab.Do(l.table, l.playerSetMedia, func(fn func(uintptr, uintptr)) { fn(mp, md) })
}

func (l *Lib) MediaPlayerRelease(mp uintptr) {
	symtab.Do(l.table, l.playerRelease, func(fn func(uintptr)) { fn(mp) })
}

// MediaPlayerPlay returns 0 on success and -1 on error or when unresolved.
func (l *Lib) MediaPlayerPlay(mp uintptr) int32 {
	return symtab.Call(l.table, l.playerPlay, -1, func(fn func(uintptr) int32) int32 {
		return fn(mp)
	})
}

// MediaPlayerSetPause reports whether the call reached libvlc.
func (l *Lib) MediaPlayerSetPause(mp uintptr, pause bool) bool {
	var v int32
	if pause {
		v = 1
	}
	return symtab.Do(l.table, l.playerSetPause, func(fn func(uintptr, int32)) { fn(mp, v) })
}

func (l *Lib) MediaPlayerStop(mp uintptr) bool {
	return symtab.Do(l.table, l.playerStop, func(fn func(uintptr)) { fn(mp) })
}

func (l *Lib) MediaPlayerIsPlaying(mp uintptr) bool {
	return symtab.Call(l.table, l.playerPlaying, 0, func(fn func(uintptr) int32) int32 {
		return fn(mp)
	}) != 0
}

// MediaPlayerTime returns the position in milliseconds, or -1.
func (l *Lib) MediaPlayerTime(mp uintptr) int64 {
	return symtab.Call(l.table, l.playerGetTime, -1, func(fn func(uintptr) int64) int64 {
		return fn(mp)
	})
}

func (l *Lib) MediaPlayerSetTime(mp uintptr, ms int64) {
	symtab.Do(l.table, l.playerSetTime, func(fn func(uintptr, int64)) { fn(mp, ms) })
}

// AudioSetVolume sets the volume in percent; returns -1 on error.
func (l *Lib) AudioSetVolume(mp uintptr, volume int32) int32 {
	return symtab.Call(l.table, l.audioSetVolume, -1, func(fn func(uintptr, int32) int32) int32 {
		return fn(mp, volume)
	})
}

func (l *Lib) AudioVolume(mp uintptr) int32 {
	return symtab.Call(l.table, l.audioGetVolume, -1, func(fn func(uintptr) int32) int32 {
		return fn(mp)
	})
}

// VideoSetCallbacks installs native frame callbacks. The callbacks must be
// C function pointers (see purego.NewCallback).
func (l *Lib) VideoSetCallbacks(mp, lock, unlock, display, opaque uintptr) {
	symtab.Do(l.table, l.videoSetCallbacks, func(fn func(uintptr, uintptr, uintptr, uintptr, uintptr)) {
		fn(mp, lock, unlock, display, opaque)
	})
}

// VideoSetFormat sets the decoded frame format, e.g. chroma "RV32".
func (l *Lib) VideoSetFormat(mp uintptr, chroma string, width, height, pitch uint32) {
	symtab.Do(l.table, l.videoSetFormat, func(fn func(uintptr, string, uint32, uint32, uint32)) {
		fn(mp, chroma, width, height, pitch)
	})
}
