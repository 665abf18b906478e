package ludconfigs

import (
	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/configs"
	"github.com/reusee/lud/vars"
)

// MaxToolRounds bounds how many model round trips a single user turn may
// spend on tool calls.
type MaxToolRounds int

var maxToolRoundsFlag = cmds.Var[int]("-max-rounds")

func (Module) MaxToolRounds(
	loader configs.Loader,
) MaxToolRounds {
	n := vars.FirstNonZero(
		*maxToolRoundsFlag,
		configs.First[int](loader, "max_tool_rounds"),
	)
	if n <= 0 {
		n = 10
	}
	return MaxToolRounds(n)
}
