package mpv

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/mediaplug"
	"github.com/thesyncim/mediaplug/host"
	"github.com/thesyncim/mediaplug/symtab"
)

// PlayerType is the host type name registered by Initialize.
const PlayerType = "MpvPlayer"

// initState is shared by every Backend in the process: the host type can
// only be registered once.
var initState struct {
	sync.Mutex
	done bool
}

// Backend is the mpv engine descriptor.
type Backend struct {
	lib       *Lib
	log       logrus.FieldLogger
	path      string
	version   string
	available bool
}

var _ mediaplug.Backend = (*Backend)(nil)

// Query probes libmpv. It is the engine's QueryFunc.
func Query(opts mediaplug.QueryOptions) (mediaplug.Backend, bool) {
	log := opts.Log().WithField("backend", Name)
	lib := NewLib(opts.SymbolLoader())

	path, err := symtab.Probe(lib.Table(), symtab.Candidates(opts.Library(Name), LibEnv, LibraryNames()...), log)
	if err != nil {
		log.WithError(err).Debug("libmpv not available")
		return nil, false
	}

	b := &Backend{lib: lib, log: log, path: path, available: true}
	if v := lib.ClientAPIVersion(); v != 0 {
		b.version = fmt.Sprintf("%d.%d", v>>16, v&0xffff)
	}
	return b, true
}

func (b *Backend) Name() string    { return Name }
func (b *Backend) Version() string { return b.version }

// Path returns the loaded library path.
func (b *Backend) Path() string { return b.path }

func (b *Backend) Metadata() mediaplug.Metadata {
	return mediaplug.Metadata{
		DisplayName: "mpv",
		Description: "libmpv client API",
		Author:      "mpv developers",
		License:     mediaplug.LicenseLGPL,
		Homepage:    "https://mpv.io",
		Graphics:    mediaplug.APIs(mediaplug.GraphicsOpenGL, mediaplug.GraphicsSoftware),
	}
}

func (b *Backend) Available() bool { return b.available }

func (b *Backend) IsGraphicsAPISupported(api mediaplug.GraphicsAPI) bool {
	return b.Metadata().Graphics.Has(api)
}

// Initialize registers MpvPlayer with h. Only the first successful call in
// the process registers anything.
func (b *Backend) Initialize(h host.Registrar) error {
	if !b.available {
		return mediaplug.ErrUnavailable
	}

	initState.Lock()
	defer initState.Unlock()

	if initState.done {
		b.log.Warn("mpv backend already initialized")
		return nil
	}
	err := h.RegisterPlayerType(host.PlayerType{
		Name:   PlayerType,
		Engine: Name,
		New:    func() (host.Player, error) { return NewPlayer(b.lib, b.log) },
	})
	if err != nil {
		return err
	}
	initState.done = true
	b.log.WithField("version", b.version).Info("mpv backend initialized")
	return nil
}

// Release unloads libmpv. Players created from this backend degrade to no-ops.
func (b *Backend) Release() error {
	return b.lib.Unload()
}
