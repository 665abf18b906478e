package chats

import (
	"github.com/reusee/dscope"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/ludconfigs"
	"github.com/reusee/lud/memories"
	"github.com/reusee/lud/tools"
)

type Module struct {
	dscope.Module
	Configs  ludconfigs.Module
	Logs     logs.Module
	Memories memories.Module
	Tools    tools.Module
}

// Loop depends on a Transport and a tool Backend provided elsewhere in
// the scope, which backend serves them is a deployment choice.
func (Module) Loop(
	transport Transport,
	executor *tools.Executor,
	store *memories.Store,
	model ludconfigs.ModelName,
	maxRounds ludconfigs.MaxToolRounds,
	rootDir ludconfigs.RootDir,
	logger logs.Logger,
) *Loop {
	rootDesc := string(rootDir)
	if rootDesc == "" {
		rootDesc = "the remote tool server"
	}
	return NewLoop(
		transport,
		executor,
		store,
		string(model),
		int(maxRounds),
		rootDesc,
		logger,
	)
}
