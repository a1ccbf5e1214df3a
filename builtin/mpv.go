//go:build !nompv

package builtin

import "github.com/thesyncim/mediaplug/engines/mpv"

func init() { register(mpv.Name, mpv.Query) }
