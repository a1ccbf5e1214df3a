//go:build !novlc

package builtin

import "github.com/thesyncim/mediaplug/engines/vlc"

func init() { register(vlc.Name, vlc.Query) }
