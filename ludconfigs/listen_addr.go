package ludconfigs

import (
	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/configs"
	"github.com/reusee/lud/vars"
)

// ListenAddr is where the tool server binds.
type ListenAddr string

var listenAddrFlag = cmds.Var[string]("-listen")

func (Module) ListenAddr(
	loader configs.Loader,
) ListenAddr {
	addr := vars.FirstNonZero(
		*listenAddrFlag,
		configs.First[string](loader, "listen_addr"),
	)
	if addr == "" {
		addr = ":8200"
	}
	return ListenAddr(addr)
}
