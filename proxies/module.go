package proxies

import (
	"fmt"

	"github.com/reusee/dscope"
	"github.com/reusee/lud/chats"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/ludconfigs"
	"github.com/reusee/lud/nets"
	"github.com/reusee/lud/tools"
)

type Module struct {
	dscope.Module
	Configs ludconfigs.Module
	Logs    logs.Module
	Nets    nets.Module
	Tools   tools.Module
}

func (Module) Client(
	serverURL ludconfigs.ServerURL,
	authToken ludconfigs.AuthToken,
	httpClient nets.HTTPClient,
	logger logs.Logger,
) *Client {
	return NewClient(
		string(serverURL),
		string(authToken),
		httpClient,
		logger,
	)
}

// Backend picks where tool calls run. A configured server_url means the
// remote server owns the sandbox, otherwise tools run in-process against
// the local root_dir.
func (Module) Backend(
	serverURL ludconfigs.ServerURL,
	client *Client,
	getRegistry tools.GetLocalRegistry,
) tools.Backend {
	if serverURL != "" {
		return tools.Proxy{
			Caller: client,
		}
	}
	registry, err := getRegistry()
	if err != nil {
		panic(fmt.Errorf("no tool backend, set either server_url or root_dir: %w", err))
	}
	return tools.Local{
		Registry: registry,
	}
}

func (Module) Transport(
	serverURL ludconfigs.ServerURL,
	client *Client,
) chats.Transport {
	if serverURL == "" {
		panic(fmt.Errorf("server_url not configured, the chat loop needs a server"))
	}
	return client
}
