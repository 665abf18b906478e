package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reusee/dscope"
	"github.com/reusee/lud/chats"
	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/debugs"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/ludconfigs"
	"github.com/reusee/lud/memories"
	"github.com/reusee/lud/modes"
	"github.com/reusee/lud/proxies"
	"github.com/reusee/lud/sandboxes"
	"github.com/reusee/lud/vars"
	"golang.org/x/term"
)

var (
	chatArg    = cmds.Var[string]("-chat")
	userArg    = cmds.Var[string]("-user")
	confineArg = cmds.Switch("-confine")
	clearArg   = cmds.Switch("-clear")
	healthArg  = cmds.Switch("-health")
	tapArg     = cmds.Switch("-tap")
)

func init() {
	cmds.Define("-version", cmds.Func(func() {
		fmt.Println("lud dev")
		os.Exit(0)
	}).Desc("print version"))
}

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	if *healthArg {
		scope.Call(func(
			client *proxies.Client,
			serverURL ludconfigs.ServerURL,
		) {
			ok, err := client.Health(ctx)
			ce(err)
			if !ok {
				fmt.Fprintln(os.Stderr, "server unreachable:", string(serverURL))
				os.Exit(1)
			}
			fmt.Println("server ok:", string(serverURL))
		})
		return
	}

	if *clearArg {
		scope.Call(func(
			store *memories.Store,
			logger logs.Logger,
		) {
			user := vars.FirstNonZero(*userArg, "local")
			ce(store.Clear(ctx, user))
			logger.InfoContext(ctx, "memory cleared", "user", user)
		})
		return
	}

	scope.Call(func(
		logger logs.Logger,
		confine sandboxes.Confine,
		tap debugs.Tap,
		loop *chats.Loop,
	) {

		if *confineArg {
			ce(confine())
		}

		input := *chatArg
		stdin := getStdinContent()
		if len(stdin) > 0 {
			input = input + "\n" + string(stdin)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			fmt.Fprintln(os.Stderr, "nothing to say, pass -chat or pipe stdin")
			os.Exit(1)
		}

		if *tapArg {
			tap(ctx, "before chat", map[string]any{
				"input": input,
			})
		}

		user := vars.FirstNonZero(*userArg, "local")
		logger.InfoContext(ctx, "input",
			"len", len(input),
			"user", user,
		)

		_, err := loop.RunStream(ctx, user, input, func(text string) {
			fmt.Print(text)
		})
		if err != nil {
			logger.ErrorContext(ctx, "chat failed", "error", err)
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Println()

	})
}

func getStdinContent() (ret []byte) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	ret, err := io.ReadAll(os.Stdin)
	ce(err)
	return
}
