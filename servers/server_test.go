package servers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/sandboxes"
	"github.com/reusee/lud/tools"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	root := t.TempDir()
	resolver, err := sandboxes.NewResolver(root)
	if err != nil {
		t.Fatal(err)
	}
	var logger logs.Logger
	dscope.New(new(logs.Module)).Assign(&logger)
	server := httptest.NewServer(
		NewServer(tools.NewLocalRegistry(resolver), root, "secret", logger).Handler(),
	)
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, server *httptest.Server, path string, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		resp.Body.Close()
	})
	return resp
}

func callTool(t *testing.T, server *httptest.Server, name string, args map[string]any) tools.Outcome {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, server.URL+"/tools/call", strings.NewReader(string(body)))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	var outcome tools.Outcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		t.Fatal(err)
	}
	return outcome
}

func TestInfoNeedsNoAuth(t *testing.T) {
	server := newTestServer(t)
	resp := get(t, server, "/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	var info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Status  string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Status != "running" || info.Name == "" {
		t.Fatalf("got %v", info)
	}
}

func TestAuthRequired(t *testing.T) {
	server := newTestServer(t)
	for _, path := range []string{"/health", "/tools"} {
		resp := get(t, server, path, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s without token: got status %d", path, resp.StatusCode)
		}
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Error != "Unauthorized" {
			t.Fatalf("got %q", body.Error)
		}

		resp = get(t, server, path, "wrong")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s with wrong token: got status %d", path, resp.StatusCode)
		}
	}
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)
	resp := get(t, server, "/health", "secret")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	var health struct {
		Status string `json:"status"`
		Root   string `json:"root"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Root == "" {
		t.Fatalf("got %v", health)
	}
}

func TestToolCatalog(t *testing.T) {
	server := newTestServer(t)
	resp := get(t, server, "/tools", "secret")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	var catalog struct {
		Tools []struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			InputSchema json.RawMessage `json:"input_schema"`
		} `json:"tools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		t.Fatal(err)
	}
	if len(catalog.Tools) == 0 {
		t.Fatal("empty catalog")
	}
	if catalog.Tools[0].Name != "read_file" {
		t.Fatalf("got %q", catalog.Tools[0].Name)
	}
	for _, tool := range catalog.Tools {
		if tool.Description == "" || len(tool.InputSchema) == 0 {
			t.Fatalf("incomplete entry: %v", tool)
		}
	}
}

func TestToolCallRoundTrip(t *testing.T) {
	server := newTestServer(t)

	outcome := callTool(t, server, "write_file", map[string]any{
		"path":    "notes/a.md",
		"content": "hello",
	})
	if outcome.IsError() {
		t.Fatalf("got %v", outcome)
	}

	outcome = callTool(t, server, "read_file", map[string]any{
		"path": "notes/a.md",
	})
	if outcome.IsError() || outcome.Content != "hello" {
		t.Fatalf("got %v", outcome)
	}
}

func TestToolCallUnknownTool(t *testing.T) {
	server := newTestServer(t)
	outcome := callTool(t, server, "nope", nil)
	if !outcome.IsError() {
		t.Fatal("expected tool error")
	}
	if !strings.Contains(outcome.Err, "Unknown tool") {
		t.Fatalf("got %q", outcome.Err)
	}
}

func TestToolCallEscapeRejected(t *testing.T) {
	server := newTestServer(t)
	outcome := callTool(t, server, "read_file", map[string]any{
		"path": "notes/../../../etc/passwd",
	})
	if !outcome.IsError() {
		t.Fatal("expected tool error")
	}
	if !strings.Contains(outcome.Err, "escapes sandbox") {
		t.Fatalf("got %q", outcome.Err)
	}
}
