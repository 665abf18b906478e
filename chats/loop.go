package chats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reusee/lud/faults"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/memories"
	"github.com/reusee/lud/tools"
)

const (
	maxAttempts    = 3
	defaultBackoff = time.Second
	streamInterval = 100 * time.Millisecond
)

// Loop runs one exchange at a time per user, feeding tool results back
// to the model until it answers with plain text or a terminal error
// ends the exchange.
type Loop struct {
	transport Transport
	executor  *tools.Executor
	store     *memories.Store
	model     string
	maxRounds int
	rootDesc  string
	logger    logs.Logger

	backoff time.Duration

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewLoop(
	transport Transport,
	executor *tools.Executor,
	store *memories.Store,
	model string,
	maxRounds int,
	rootDesc string,
	logger logs.Logger,
) *Loop {
	return &Loop{
		transport: transport,
		executor:  executor,
		store:     store,
		model:     model,
		maxRounds: maxRounds,
		rootDesc:  rootDesc,
		logger:    logger,
		backoff:   defaultBackoff,
		users:     make(map[string]*sync.Mutex),
	}
}

func (l *Loop) Run(ctx context.Context, userID string, utterance string) (string, error) {
	return l.run(ctx, userID, utterance, nil)
}

// RunStream surfaces text deltas through onDelta before returning the
// full answer. Deltas from a round that turns out to request tools are
// held back, the caller only ever sees text from the final answer.
func (l *Loop) RunStream(ctx context.Context, userID string, utterance string, onDelta func(string)) (string, error) {
	return l.run(ctx, userID, utterance, onDelta)
}

func (l *Loop) run(ctx context.Context, userID string, utterance string, onDelta func(string)) (string, error) {

	// one exchange at a time per user, interleaved tool rounds would
	// corrupt the message ordering
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	catalog, err := l.executor.Catalog(ctx)
	if err != nil {
		return "", err
	}

	history, err := l.snapshot(ctx, userID)
	if err != nil {
		return "", err
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Text(RoleSystem, l.systemPrompt(ctx)))
	messages = append(messages, history...)
	messages = append(messages, Text(RoleUser, utterance))

	var emit *throttled
	if onDelta != nil {
		emit = newThrottled(onDelta, streamInterval)
	}

	for round := 0; round < l.maxRounds; round++ {
		req := &Request{
			Model:    l.model,
			Messages: messages,
			Tools:    catalog,
		}

		resp, held, err := l.complete(ctx, req, emit != nil)
		if err != nil {
			return "", err
		}

		if len(resp.ToolCalls) > 0 {
			l.logger.DebugContext(ctx, "tool round",
				"round", round,
				"calls", len(resp.ToolCalls),
			)
			messages = append(messages, ToolUse(resp.ToolCalls))
			results := l.executeBatch(ctx, resp.ToolCalls)
			if err := ctx.Err(); err != nil {
				// tools ran to completion but the caller is gone, do not
				// persist the half-finished exchange
				return "", faults.Wrap(faults.KindTransport, err)
			}
			messages = append(messages, ToolResultsMessage(results))
			continue
		}

		if emit != nil {
			for _, chunk := range held {
				emit.Write(chunk)
			}
			emit.Flush()
		}

		l.persist(ctx, userID, utterance, resp.Content)
		return resp.Content, nil
	}

	return "", faults.New(faults.KindIterationLimit,
		"model kept requesting tools after %d rounds", l.maxRounds)
}

// complete calls the model, retrying transient failures with doubling
// backoff. Streamed deltas are collected and returned rather than
// emitted, the caller decides whether the round's text is final.
func (l *Loop) complete(ctx context.Context, req *Request, streaming bool) (*Response, []string, error) {
	backoff := l.backoff
	for attempt := 1; ; attempt++ {
		var resp *Response
		var err error
		var held []string
		if streaming {
			resp, err = l.transport.ChatStream(ctx, req, func(text string) {
				held = append(held, text)
			})
		} else {
			resp, err = l.transport.Chat(ctx, req)
		}
		if err == nil {
			return resp, held, nil
		}
		if attempt >= maxAttempts || !faults.IsRetryable(err) {
			return nil, nil, err
		}
		l.logger.WarnContext(ctx, "model call failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, nil, faults.Wrap(faults.KindTransport, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// executeBatch runs the calls concurrently and reassembles the results
// in call order, one result per call.
func (l *Loop) executeBatch(ctx context.Context, calls []ToolCall) []ToolResult {
	// tools may have side effects, a file write must not be abandoned
	// halfway just because the caller disconnected
	execCtx := context.WithoutCancel(ctx)
	results := make([]ToolResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = l.executeCall(execCtx, call)
		}()
	}
	wg.Wait()
	return results
}

func (l *Loop) executeCall(ctx context.Context, call ToolCall) ToolResult {
	args, err := call.Args()
	if err != nil {
		// the model must see every call acknowledged, a garbage payload
		// comes back as an error result instead of vanishing
		return ToolResult{
			ToolCallID: call.ID,
			Content:    fmt.Sprintf("Invalid arguments: %v", err),
			IsError:    true,
		}
	}
	outcome := l.executor.Execute(ctx, call.Function.Name, args)
	result := ToolResult{
		ToolCallID: call.ID,
		Content:    outcome.Content,
	}
	if outcome.IsError() {
		result.Content = outcome.Err
		result.IsError = true
	}
	return result
}

func (l *Loop) snapshot(ctx context.Context, userID string) ([]Message, error) {
	stored, err := l.store.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	messages := make([]Message, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, Text(m.Role, m.Content))
	}
	return messages, nil
}

// persist writes the completed exchange, both turns or nothing reaches
// durable memory. Store failures degrade to a warning, the answer was
// already produced.
func (l *Loop) persist(ctx context.Context, userID string, userText string, assistantText string) {
	ctx = context.WithoutCancel(ctx)
	if err := l.store.Append(ctx, userID, RoleUser, userText); err != nil {
		l.logger.WarnContext(ctx, "persist user turn", "error", err)
		return
	}
	if err := l.store.Append(ctx, userID, RoleAssistant, assistantText); err != nil {
		l.logger.WarnContext(ctx, "persist assistant turn", "error", err)
	}
}

func (l *Loop) userLock(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.users[userID]
	if !ok {
		lock = new(sync.Mutex)
		l.users[userID] = lock
	}
	return lock
}
