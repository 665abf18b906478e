package ludconfigs

import (
	"os"

	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/configs"
	"github.com/reusee/lud/vars"
)

// AuthToken is the bearer credential shared by the tool server and its clients.
type AuthToken string

var authTokenFlag = cmds.Var[string]("-token")

func (Module) AuthToken(
	loader configs.Loader,
) AuthToken {
	return AuthToken(vars.FirstNonZero(
		*authTokenFlag,
		configs.First[string](loader, "auth_token"),
		os.Getenv("LUD_AUTH_TOKEN"),
	))
}
