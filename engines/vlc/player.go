package vlc

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/thesyncim/mediaplug/host"
)

var errClosed = errors.New("vlc: player closed")

// Player owns one libvlc instance and one media player.
type Player struct {
	lib *Lib

	mu   sync.Mutex
	inst uintptr
	mp   uintptr
}

var _ host.Player = (*Player)(nil)

func NewPlayer(lib *Lib) (*Player, error) {
	inst := lib.New()
	if inst == 0 {
		return nil, lib.lastError("libvlc_new")
	}
	mp := lib.MediaPlayerNew(inst)
	if mp == 0 {
		err := lib.lastError("libvlc_media_player_new")
		lib.Release(inst)
		return nil, err
	}
	return &Player{lib: lib, inst: inst, mp: mp}, nil
}

// Load sets url as the current media. Strings containing "://" are treated
// as MRLs, anything else as a local path.
func (p *Player) Load(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mp == 0 {
		return errClosed
	}
	if url == "" {
		return errors.New("vlc: empty media location")
	}

	var md uintptr
	if strings.Contains(url, "://") {
		md = p.lib.MediaNewLocation(p.inst, url)
	} else {
		md = p.lib.MediaNewPath(p.inst, url)
	}
	if md == 0 {
		return p.lib.lastError("open media " + url)
	}
	p.lib.MediaPlayerSetMedia(p.mp, md)
	p.lib.MediaRelease(md)
	return nil
}

func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mp == 0 {
		return errClosed
	}
	if p.lib.MediaPlayerPlay(p.mp) != 0 {
		return p.lib.lastError("play")
	}
	return nil
}

func (p *Player) Pause() error {
	return p.do("pause", func(mp uintptr) bool { return p.lib.MediaPlayerSetPause(mp, true) })
}

func (p *Player) Stop() error {
	return p.do("stop", p.lib.MediaPlayerStop)
}

// Close releases the media player and the instance.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mp == 0 {
		return nil
	}
	p.lib.MediaPlayerRelease(p.mp)
	p.lib.Release(p.inst)
	p.mp, p.inst = 0, 0
	return nil
}

func (p *Player) do(op string, call func(mp uintptr) bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mp == 0 {
		return errClosed
	}
	if !call(p.mp) {
		return fmt.Errorf("vlc: %s: %w", op, host.ErrNotSupported)
	}
	return nil
}

// lastError builds an error from libvlc_errmsg and clears it.
func (l *Lib) lastError(op string) error {
	msg := l.ErrMsg()
	l.ClearErr()
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("vlc: %s: %s", op, msg)
}
