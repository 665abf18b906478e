package servers

import (
	"sync"

	"github.com/reusee/dscope"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/ludconfigs"
	"github.com/reusee/lud/tools"
)

type Module struct {
	dscope.Module
	Configs ludconfigs.Module
	Logs    logs.Module
	Tools   tools.Module
}

type GetServer func() (*Server, error)

func (Module) GetServer(
	getRegistry tools.GetLocalRegistry,
	rootDir ludconfigs.RootDir,
	authToken ludconfigs.AuthToken,
	logger logs.Logger,
) GetServer {
	return sync.OnceValues(func() (*Server, error) {
		registry, err := getRegistry()
		if err != nil {
			return nil, err
		}
		if authToken == "" {
			logger.Warn("auth_token not set, the server is unprotected")
		}
		return NewServer(
			registry,
			string(rootDir),
			string(authToken),
			logger,
		), nil
	})
}
