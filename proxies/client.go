package proxies

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/reusee/lud/chats"
	"github.com/reusee/lud/faults"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/nets"
	"github.com/reusee/lud/tools"
)

// Client talks to a remote lud server, both the tool endpoints and the
// chat proxy, carrying one bearer credential.
type Client struct {
	baseURL string
	token   string
	client  nets.HTTPClient
	logger  logs.Logger
}

func NewClient(
	baseURL string,
	token string,
	httpClient nets.HTTPClient,
	logger logs.Logger,
) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  httpClient,
		logger:  logger,
	}
}

var _ chats.Transport = new(Client)

var _ tools.RemoteCaller = new(Client)

func (c *Client) do(ctx context.Context, method string, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, connectionError(err, c.baseURL)
	}
	return resp, nil
}

// Health probes the server without failing hard, a down server is a
// normal condition for the caller to report.
func (c *Client) Health(ctx context.Context) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return false, nil
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK, nil
}

type toolsResponse struct {
	Tools []tools.CatalogEntry `json:"tools"`
}

func (c *Client) Tools(ctx context.Context) ([]tools.CatalogEntry, error) {
	resp, err := c.do(ctx, http.MethodGet, "/tools", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var decoded toolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, faults.Wrap(faults.KindTransport, fmt.Errorf("bad tool catalog: %w", err))
	}
	return decoded.Tools, nil
}

type toolCallRequest struct {
	Name      string     `json:"name"`
	Arguments tools.Args `json:"arguments"`
}

func (c *Client) CallTool(ctx context.Context, name string, args tools.Args) (tools.Outcome, error) {
	if args == nil {
		args = tools.Args{}
	}
	resp, err := c.do(ctx, http.MethodPost, "/tools/call", toolCallRequest{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return tools.Outcome{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tools.Outcome{}, statusError(resp)
	}

	var outcome tools.Outcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return tools.Outcome{}, faults.Wrap(faults.KindTransport, fmt.Errorf("bad tool response: %w", err))
	}
	return outcome, nil
}

func (c *Client) Chat(ctx context.Context, req *chats.Request) (*chats.Response, error) {
	resp, err := c.do(ctx, http.MethodPost, "/chat", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, chatError(resp)
	}

	var decoded chats.Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, faults.Wrap(faults.KindTransport, fmt.Errorf("bad chat response: %w", err))
	}
	return &decoded, nil
}

// streamEvent is one SSE payload of the chat stream. Content chunks
// accumulate, tool calls and usage arrive on the final event, error
// events carry the same taxonomy as the non-streaming endpoint.
type streamEvent struct {
	Content   string           `json:"content"`
	ToolCalls []chats.ToolCall `json:"tool_calls"`
	Usage     json.RawMessage  `json:"usage"`
	Error     string           `json:"error"`
	Message   string           `json:"message"`
}

func (c *Client) ChatStream(ctx context.Context, req *chats.Request, onDelta func(text string)) (*chats.Response, error) {
	resp, err := c.do(ctx, http.MethodPost, "/chat/stream", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, chatError(resp)
	}

	ret := new(chats.Response)
	var content strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "data: [DONE]") {
			break
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(line[6:]), &event); err != nil {
			return nil, faults.Wrap(faults.KindTransport, fmt.Errorf("bad stream event: %w", err))
		}

		if event.Error != "" {
			return nil, mapErrorCode(event.Error, event.Message)
		}

		if event.Content != "" {
			content.WriteString(event.Content)
			if onDelta != nil {
				onDelta(event.Content)
			}
		}
		if len(event.ToolCalls) > 0 {
			ret.ToolCalls = event.ToolCalls
		}
		if len(event.Usage) > 0 {
			ret.Usage = event.Usage
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, faults.Wrap(faults.KindTransport, fmt.Errorf("reading stream: %w", err))
	}

	ret.Content = content.String()
	return ret, nil
}
