package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reusee/dscope"
	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/ludconfigs"
	"github.com/reusee/lud/modes"
	"github.com/reusee/lud/sandboxes"
	"github.com/reusee/lud/servers"
)

var (
	confineArg = cmds.Switch("-confine")
)

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	scope.Call(func(
		logger logs.Logger,
		confine sandboxes.Confine,
		getServer servers.GetServer,
		listenAddr ludconfigs.ListenAddr,
	) {

		server, err := getServer()
		ce(err)

		if *confineArg {
			ce(confine())
		}

		ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()

		ce(server.ListenAndServe(ctx, string(listenAddr)))
		logger.InfoContext(ctx, "tool server stopped")

	})
}
