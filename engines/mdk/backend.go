package mdk

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/mediaplug"
	"github.com/thesyncim/mediaplug/host"
	"github.com/thesyncim/mediaplug/symtab"
)

// PlayerType is the host type name registered by Initialize.
const PlayerType = "MdkPlayer"

var initState struct {
	sync.Mutex
	done bool
}

// Backend is the MDK engine descriptor.
type Backend struct {
	lib       *Lib
	log       logrus.FieldLogger
	path      string
	version   string
	graphics  mediaplug.GraphicsAPIs
	available bool
}

var _ mediaplug.Backend = (*Backend)(nil)

// Query probes the MDK library. It is the engine's QueryFunc.
func Query(opts mediaplug.QueryOptions) (mediaplug.Backend, bool) {
	log := opts.Log().WithField("backend", Name)
	lib := NewLib(opts.SymbolLoader())

	path, err := symtab.Probe(lib.Table(), symtab.Candidates(opts.Library(Name), LibEnv, LibraryNames()...), log)
	if err != nil {
		log.WithError(err).Debug("MDK not available")
		return nil, false
	}

	b := &Backend{
		lib:       lib,
		log:       log,
		path:      path,
		graphics:  graphicsAPIs(runtime.GOOS),
		available: true,
	}
	if v := lib.Version(); v != 0 {
		b.version = fmt.Sprintf("%d.%d.%d", v>>16&0xff, v>>8&0xff, v&0xff)
	}
	return b, true
}

// graphicsAPIs lists the render APIs MDK ships for goos.
func graphicsAPIs(goos string) mediaplug.GraphicsAPIs {
	switch goos {
	case "darwin", "ios":
		return mediaplug.APIs(mediaplug.GraphicsOpenGL, mediaplug.GraphicsMetal, mediaplug.GraphicsVulkan)
	case "windows":
		return mediaplug.APIs(mediaplug.GraphicsOpenGL, mediaplug.GraphicsDirect3D11, mediaplug.GraphicsVulkan)
	default:
		return mediaplug.APIs(mediaplug.GraphicsOpenGL, mediaplug.GraphicsVulkan)
	}
}

func (b *Backend) Name() string    { return Name }
func (b *Backend) Version() string { return b.version }
func (b *Backend) Path() string    { return b.path }

func (b *Backend) Metadata() mediaplug.Metadata {
	return mediaplug.Metadata{
		DisplayName: "MDK",
		Description: "Multimedia development kit",
		Author:      "Wang Bin",
		License:     mediaplug.LicenseProprietary,
		Homepage:    "https://github.com/wang-bin/mdk-sdk",
		Graphics:    b.graphics,
	}
}

func (b *Backend) Available() bool { return b.available }

func (b *Backend) IsGraphicsAPISupported(api mediaplug.GraphicsAPI) bool {
	return b.graphics.Has(api)
}

// Initialize quiets MDK's own logging and registers MdkPlayer with h.
func (b *Backend) Initialize(h host.Registrar) error {
	if !b.available {
		return mediaplug.ErrUnavailable
	}

	initState.Lock()
	defer initState.Unlock()

	if initState.done {
		b.log.Warn("MDK backend already initialized")
		return nil
	}
	if err := h.RegisterPlayerType(host.PlayerType{
		Name:   PlayerType,
		Engine: Name,
		New:    func() (host.Player, error) { return NewPlayer(b.lib) },
	}); err != nil {
		return err
	}
	b.lib.SetLogLevel(LogLevelWarning)
	initState.done = true
	b.log.WithField("version", b.version).Info("MDK backend initialized")
	return nil
}

func (b *Backend) Release() error {
	return b.lib.Unload()
}
