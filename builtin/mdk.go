//go:build !nomdk

package builtin

import "github.com/thesyncim/mediaplug/engines/mdk"

func init() { register(mdk.Name, mdk.Query) }
