package sandboxes

import (
	"github.com/reusee/dscope"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/ludconfigs"
)

type Module struct {
	dscope.Module
	Configs ludconfigs.Module
	Logs    logs.Module
}
