package mpv

import (
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/mediaplug/host"
)

var errClosed = errors.New("mpv: player closed")

// Player drives one mpv handle through the client API.
type Player struct {
	lib *Lib
	log logrus.FieldLogger

	mu     sync.Mutex
	handle uintptr
}

var _ host.Player = (*Player)(nil)

// NewPlayer creates and initializes an mpv handle that renders through the
// render API and stays idle between files.
func NewPlayer(lib *Lib, log logrus.FieldLogger) (*Player, error) {
	h := lib.Create()
	if h == 0 {
		return nil, errors.New("mpv: mpv_create failed")
	}

	for _, opt := range [][2]string{{"vo", "libmpv"}, {"idle", "yes"}, {"terminal", "no"}} {
		if err := lib.check("set option "+opt[0], lib.SetOptionString(h, opt[0], opt[1])); err != nil {
			log.WithError(err).Debug("Ignoring mpv option")
		}
	}
	if err := lib.check("initialize", lib.Initialize(h)); err != nil {
		lib.TerminateDestroy(h)
		return nil, err
	}
	return &Player{lib: lib, log: log, handle: h}, nil
}

// Load replaces the current file with url.
func (p *Player) Load(url string) error {
	if url == "" {
		return p.lib.check("loadfile", errorInvalidParameter)
	}
	return p.command("loadfile", "loadfile "+quote(url))
}

func (p *Player) Play() error  { return p.setProperty("pause", "no") }
func (p *Player) Pause() error { return p.setProperty("pause", "yes") }
func (p *Player) Stop() error  { return p.command("stop", "stop") }

// Close terminates the handle. It is safe to call more than once.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return nil
	}
	p.lib.TerminateDestroy(p.handle)
	p.handle = 0
	return nil
}

// Property reads an mpv property.
func (p *Player) Property(name string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return "", false
	}
	return p.lib.GetProperty(p.handle, name)
}

func (p *Player) command(op, cmd string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return errClosed
	}
	return p.lib.check(op, p.lib.Command(p.handle, cmd))
}

func (p *Player) setProperty(name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return errClosed
	}
	return p.lib.check("set "+name, p.lib.SetProperty(p.handle, name, value))
}

// quote escapes s as a double-quoted argument of an input command.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
