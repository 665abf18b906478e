package chats

import "context"

// Transport is whatever turns a chat request into a model response, a
// remote proxy in production, a fake in tests.
type Transport interface {
	Chat(ctx context.Context, req *Request) (*Response, error)

	// ChatStream surfaces text deltas through onDelta while the
	// response streams in. Tool calls are read from the completed
	// response only, streaming never changes tool-calling behavior.
	ChatStream(ctx context.Context, req *Request, onDelta func(text string)) (*Response, error)
}
