package tools

import (
	"context"
	"time"

	"github.com/reusee/lud/logs"
)

// Backend is where tool calls actually run, in-process or on a remote
// tool server.
type Backend interface {
	Catalog(ctx context.Context) ([]CatalogEntry, error)
	Execute(ctx context.Context, name string, args Args) Outcome
}

type Local struct {
	Registry *Registry
}

var _ Backend = Local{}

func (l Local) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	return l.Registry.Catalog(), nil
}

func (l Local) Execute(ctx context.Context, name string, args Args) Outcome {
	return l.Registry.Call(ctx, name, args)
}

// RemoteCaller is the slice of the proxy client the Proxy backend needs.
type RemoteCaller interface {
	Tools(ctx context.Context) ([]CatalogEntry, error)
	CallTool(ctx context.Context, name string, args Args) (Outcome, error)
}

type Proxy struct {
	Caller RemoteCaller
}

var _ Backend = Proxy{}

func (p Proxy) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	return p.Caller.Tools(ctx)
}

func (p Proxy) Execute(ctx context.Context, name string, args Args) Outcome {
	outcome, err := p.Caller.CallTool(ctx, name, args)
	if err != nil {
		// remote failures surface as error outcomes so the caller does
		// not have to care which backend ran the tool
		return Outcome{Err: err.Error()}
	}
	return outcome
}

type Executor struct {
	backend Backend
	logger  logs.Logger
}

func NewExecutor(backend Backend, logger logs.Logger) *Executor {
	return &Executor{
		backend: backend,
		logger:  logger,
	}
}

func (e *Executor) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	return e.backend.Catalog(ctx)
}

func (e *Executor) Execute(ctx context.Context, name string, args Args) Outcome {
	t0 := time.Now()
	outcome := e.backend.Execute(ctx, name, args)
	e.logger.InfoContext(ctx, "tool executed",
		"name", name,
		"duration", time.Since(t0),
		"error", outcome.Err,
	)
	return outcome
}
