package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPlayer struct{}

func (nopPlayer) Load(string) error { return nil }
func (nopPlayer) Play() error       { return nil }
func (nopPlayer) Pause() error      { return nil }
func (nopPlayer) Stop() error       { return nil }
func (nopPlayer) Close() error      { return nil }

func newNop() (Player, error) { return nopPlayer{}, nil }

func TestTypeRegistry(t *testing.T) {
	r := NewTypeRegistry()

	require.NoError(t, r.RegisterPlayerType(PlayerType{Name: "MpvPlayer", Engine: "mpv", New: newNop}))
	require.NoError(t, r.RegisterPlayerType(PlayerType{Name: "VlcPlayer", Engine: "vlc", New: newNop}))

	err := r.RegisterPlayerType(PlayerType{Name: "MpvPlayer", Engine: "mpv", New: newNop})
	assert.ErrorIs(t, err, ErrDuplicateType)

	assert.Equal(t, []string{"MpvPlayer", "VlcPlayer"}, r.Types())

	typ, ok := r.ForEngine("vlc")
	require.True(t, ok)
	assert.Equal(t, "VlcPlayer", typ.Name)
	typ, ok = r.ForEngine("VLC")
	require.True(t, ok, "engine names are case-insensitive")
	assert.Equal(t, "VlcPlayer", typ.Name)

	p, err := r.NewPlayer("MpvPlayer")
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = r.NewPlayer("Nope")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegisterPlayerTypeValidation(t *testing.T) {
	r := NewTypeRegistry()
	assert.Error(t, r.RegisterPlayerType(PlayerType{Engine: "mpv", New: newNop}))
	assert.Error(t, r.RegisterPlayerType(PlayerType{Name: "X", Engine: "mpv"}))
	assert.Empty(t, r.Types())
}
