package ludconfigs

import (
	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/configs"
	"github.com/reusee/lud/vars"
)

// ModelName selects the model requested from the chat endpoint.
type ModelName string

var modelFlag = cmds.Var[string]("-model")

func (Module) ModelName(
	loader configs.Loader,
) ModelName {
	name := vars.FirstNonZero(
		*modelFlag,
		configs.First[string](loader, "model"),
	)
	if name == "" {
		name = "claude-sonnet-4-20250514"
	}
	return ModelName(name)
}
