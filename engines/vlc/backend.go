package vlc

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/mediaplug"
	"github.com/thesyncim/mediaplug/host"
	"github.com/thesyncim/mediaplug/symtab"
)

// PlayerType is the host type name registered by Initialize.
const PlayerType = "VlcPlayer"

var initState struct {
	sync.Mutex
	done bool
}

// Backend is the VLC engine descriptor.
type Backend struct {
	lib       *Lib
	log       logrus.FieldLogger
	path      string
	version   string
	available bool
}

var _ mediaplug.Backend = (*Backend)(nil)

// Query probes libvlc. It is the engine's QueryFunc.
func Query(opts mediaplug.QueryOptions) (mediaplug.Backend, bool) {
	log := opts.Log().WithField("backend", Name)
	lib := NewLib(opts.SymbolLoader())

	path, err := symtab.Probe(lib.Table(), symtab.Candidates(opts.Library(Name), LibEnv, LibraryNames()...), log)
	if err != nil {
		log.WithError(err).Debug("libvlc not available")
		return nil, false
	}

	b := &Backend{lib: lib, log: log, path: path, available: true}
	// "3.0.20 Vetinari" -> "3.0.20"
	if fields := strings.Fields(lib.Version()); len(fields) > 0 {
		b.version = fields[0]
	}
	return b, true
}

func (b *Backend) Name() string    { return Name }
func (b *Backend) Version() string { return b.version }
func (b *Backend) Path() string    { return b.path }

func (b *Backend) Metadata() mediaplug.Metadata {
	return mediaplug.Metadata{
		DisplayName: "VLC",
		Description: "libvlc media player",
		Author:      "VideoLAN",
		License:     mediaplug.LicenseLGPL,
		Homepage:    "https://www.videolan.org/vlc/libvlc.html",
		Graphics:    mediaplug.APIs(mediaplug.GraphicsSoftware, mediaplug.GraphicsOpenGL),
	}
}

func (b *Backend) Available() bool { return b.available }

func (b *Backend) IsGraphicsAPISupported(api mediaplug.GraphicsAPI) bool {
	return b.Metadata().Graphics.Has(api)
}

func (b *Backend) Initialize(h host.Registrar) error {
	if !b.available {
		return mediaplug.ErrUnavailable
	}

	initState.Lock()
	defer initState.Unlock()

	if initState.done {
		b.log.Warn("VLC backend already initialized")
		return nil
	}
	if err := h.RegisterPlayerType(host.PlayerType{
		Name:   PlayerType,
		Engine: Name,
		New:    func() (host.Player, error) { return NewPlayer(b.lib) },
	}); err != nil {
		return err
	}
	initState.done = true
	b.log.WithField("version", b.version).Info("VLC backend initialized")
	return nil
}

func (b *Backend) Release() error {
	return b.lib.Unload()
}
