package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/lud/chats"
	"github.com/reusee/lud/debugs"
	"github.com/reusee/lud/proxies"
	"github.com/reusee/lud/sandboxes"
)

type Module struct {
	dscope.Module
	Chats     chats.Module
	Proxies   proxies.Module
	Sandboxes sandboxes.Module
	Debugs    debugs.Module
}
