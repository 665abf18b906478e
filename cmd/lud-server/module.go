package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/lud/sandboxes"
	"github.com/reusee/lud/servers"
)

type Module struct {
	dscope.Module
	Servers   servers.Module
	Sandboxes sandboxes.Module
}
