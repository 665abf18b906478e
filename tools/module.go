package tools

import (
	"sync"

	"github.com/reusee/dscope"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/sandboxes"
)

type Module struct {
	dscope.Module
	Logs      logs.Module
	Sandboxes sandboxes.Module
}

func (Module) Executor(
	backend Backend,
	logger logs.Logger,
) *Executor {
	return NewExecutor(backend, logger)
}

type GetLocalRegistry func() (*Registry, error)

func (Module) GetLocalRegistry(
	getResolver sandboxes.GetResolver,
) GetLocalRegistry {
	return sync.OnceValues(func() (*Registry, error) {
		resolver, err := getResolver()
		if err != nil {
			return nil, err
		}
		return NewLocalRegistry(resolver), nil
	})
}
