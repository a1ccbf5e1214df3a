package mdk

import (
	"errors"
	"fmt"
	"sync"

	"github.com/thesyncim/mediaplug/host"
)

// Player holds one mdkPlayerAPI instance. Transport controls are not
// available through the global C API and report host.ErrNotSupported.
type Player struct {
	lib *Lib

	mu  sync.Mutex
	api uintptr
}

var _ host.Player = (*Player)(nil)

func NewPlayer(lib *Lib) (*Player, error) {
	api := lib.PlayerAPINew()
	if api == 0 {
		return nil, errors.New("mdk: mdkPlayerAPI_new failed")
	}
	return &Player{lib: lib, api: api}, nil
}

func (p *Player) Load(string) error { return p.unsupported("load") }
func (p *Player) Play() error       { return p.unsupported("play") }
func (p *Player) Pause() error      { return p.unsupported("pause") }
func (p *Player) Stop() error       { return p.unsupported("stop") }

// Close deletes the player instance.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lib.PlayerAPIDelete(&p.api)
	p.api = 0
	return nil
}

func (p *Player) unsupported(op string) error {
	return fmt.Errorf("mdk: %s: %w", op, host.ErrNotSupported)
}
