package ludconfigs

import (
	"os"
	"strings"

	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/configs"
	"github.com/reusee/lud/vars"
)

// ServerURL is the base URL of the remote tool and chat server.
type ServerURL string

var serverURLFlag = cmds.Var[string]("-server")

func (Module) ServerURL(
	loader configs.Loader,
) ServerURL {
	u := vars.FirstNonZero(
		*serverURLFlag,
		configs.First[string](loader, "server_url"),
		os.Getenv("LUD_SERVER_URL"),
	)
	return ServerURL(strings.TrimRight(u, "/"))
}
