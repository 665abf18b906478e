package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reusee/lud/sandboxes"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	root := t.TempDir()
	resolver, err := sandboxes.NewResolver(root)
	if err != nil {
		t.Fatal(err)
	}
	return NewLocalRegistry(resolver), resolver.Root()
}

func TestWriteReadRoundTrip(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	content := "hello\nworld\n"
	out := registry.Call(ctx, "write_file", Args{
		"path":    "notes/a.md",
		"content": content,
	})
	if out.IsError() {
		t.Fatal(out.Err)
	}

	out = registry.Call(ctx, "read_file", Args{
		"path": "notes/a.md",
	})
	if out.IsError() {
		t.Fatal(out.Err)
	}
	if out.Content != content {
		t.Fatalf("got %q", out.Content)
	}
}

func TestAppendNewlineHandling(t *testing.T) {
	registry, root := newTestRegistry(t)
	ctx := t.Context()

	// existing content without trailing newline gets exactly one inserted
	registry.Call(ctx, "write_file", Args{"path": "a.md", "content": "first"})
	out := registry.Call(ctx, "append_file", Args{"path": "a.md", "content": "second"})
	if out.IsError() {
		t.Fatal(out.Err)
	}
	data, err := os.ReadFile(filepath.Join(root, "a.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond" {
		t.Fatalf("got %q", data)
	}

	// trailing newline present, nothing inserted
	registry.Call(ctx, "write_file", Args{"path": "b.md", "content": "first\n"})
	registry.Call(ctx, "append_file", Args{"path": "b.md", "content": "second"})
	data, err = os.ReadFile(filepath.Join(root, "b.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond" {
		t.Fatalf("got %q", data)
	}

	// appending to a missing file creates it
	out = registry.Call(ctx, "append_file", Args{"path": "c.md", "content": "only"})
	if out.IsError() {
		t.Fatal(out.Err)
	}
	data, err = os.ReadFile(filepath.Join(root, "c.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "only" {
		t.Fatalf("got %q", data)
	}
}

func TestListDirectory(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	registry.Call(ctx, "write_file", Args{"path": "b.md", "content": "x"})
	registry.Call(ctx, "write_file", Args{"path": "a.md", "content": "x"})
	registry.Call(ctx, "write_file", Args{"path": ".hidden", "content": "x"})
	registry.Call(ctx, "create_directory", Args{"path": "sub"})

	out := registry.Call(ctx, "list_directory", Args{})
	if out.IsError() {
		t.Fatal(out.Err)
	}
	if out.Content != "file: a.md\nfile: b.md\ndir: sub" {
		t.Fatalf("got %q", out.Content)
	}

	// idempotent without intervening writes
	again := registry.Call(ctx, "list_directory", Args{})
	if again.Content != out.Content {
		t.Fatalf("got %q", again.Content)
	}

	out = registry.Call(ctx, "list_directory", Args{"path": "sub"})
	if out.Content != "(empty directory)" {
		t.Fatalf("got %q", out.Content)
	}

	out = registry.Call(ctx, "list_directory", Args{"path": "nope"})
	if !out.IsError() {
		t.Fatal("expected error")
	}
}

func TestCreateDirectoryIdempotent(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	out := registry.Call(ctx, "create_directory", Args{"path": "a/b/c"})
	if out.IsError() {
		t.Fatal(out.Err)
	}
	out = registry.Call(ctx, "create_directory", Args{"path": "a/b/c"})
	if out.IsError() {
		t.Fatal(out.Err)
	}
}

func TestDeleteFile(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	registry.Call(ctx, "write_file", Args{"path": "a.md", "content": "x"})
	out := registry.Call(ctx, "delete_file", Args{"path": "a.md"})
	if out.IsError() {
		t.Fatal(out.Err)
	}
	out = registry.Call(ctx, "delete_file", Args{"path": "a.md"})
	if !out.IsError() {
		t.Fatal("expected error")
	}

	registry.Call(ctx, "create_directory", Args{"path": "d"})
	out = registry.Call(ctx, "delete_file", Args{"path": "d"})
	if !out.IsError() {
		t.Fatal("expected error")
	}
}

func TestMoveFile(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	registry.Call(ctx, "write_file", Args{"path": "a.md", "content": "x"})
	out := registry.Call(ctx, "move_file", Args{
		"source":      "a.md",
		"destination": "sub/b.md",
	})
	if out.IsError() {
		t.Fatal(out.Err)
	}

	out = registry.Call(ctx, "read_file", Args{"path": "sub/b.md"})
	if out.Content != "x" {
		t.Fatalf("got %q", out.Content)
	}

	out = registry.Call(ctx, "move_file", Args{
		"source":      "a.md",
		"destination": "c.md",
	})
	if !out.IsError() {
		t.Fatal("expected error")
	}
}

func TestPathEscapeIsToolError(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	for _, name := range []string{"read_file", "write_file", "delete_file", "file_info"} {
		out := registry.Call(ctx, name, Args{
			"path":    "notes/../../../etc/passwd",
			"content": "x",
		})
		if !out.IsError() {
			t.Fatalf("%s accepted escape", name)
		}
		if !strings.Contains(out.Err, "escapes sandbox") {
			t.Fatalf("got %q", out.Err)
		}
	}
}

func TestReadBinaryRefused(t *testing.T) {
	registry, root := newTestRegistry(t)
	ctx := t.Context()

	if err := os.WriteFile(filepath.Join(root, "blob.bin"), []byte{0x00, 0x01, 0xff, 0xfe, 0x00}, 0644); err != nil {
		t.Fatal(err)
	}
	out := registry.Call(ctx, "read_file", Args{"path": "blob.bin"})
	if !out.IsError() {
		t.Fatal("expected error")
	}
}

func TestSearch(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	registry.Call(ctx, "write_file", Args{"path": "notes/apple.md", "content": "nothing here"})
	registry.Call(ctx, "write_file", Args{"path": "notes/other.md", "content": "I like Apple pie\nand more"})
	registry.Call(ctx, "write_file", Args{"path": ".hidden/secret.md", "content": "apple"})

	out := registry.Call(ctx, "search", Args{"query": "apple"})
	if out.IsError() {
		t.Fatal(out.Err)
	}
	if !strings.Contains(out.Content, "file: notes/apple.md") {
		t.Fatalf("got %q", out.Content)
	}
	if !strings.Contains(out.Content, "match: notes/other.md") {
		t.Fatalf("got %q", out.Content)
	}
	if strings.Contains(out.Content, "secret") {
		t.Fatalf("got %q", out.Content)
	}
	// excerpts have newlines flattened
	if strings.Contains(out.Content, "pie\nand") {
		t.Fatalf("got %q", out.Content)
	}

	out = registry.Call(ctx, "search", Args{"query": "no-such-thing"})
	if out.Content != "No matches found" {
		t.Fatalf("got %q", out.Content)
	}

	out = registry.Call(ctx, "search", Args{})
	if !out.IsError() {
		t.Fatal("expected error")
	}
}

func TestSearchAdvanced(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	registry.Call(ctx, "write_file", Args{"path": "a.md", "content": "todo: one\ntodo: two"})
	registry.Call(ctx, "write_file", Args{"path": "b.txt", "content": "todo: three"})

	out := registry.Call(ctx, "search_advanced", Args{
		"pattern": `todo: \w+`,
		"glob":    "*.md",
	})
	if out.IsError() {
		t.Fatal(out.Err)
	}
	if !strings.Contains(out.Content, "a.md") {
		t.Fatalf("got %q", out.Content)
	}
	if strings.Contains(out.Content, "b.txt") {
		t.Fatalf("got %q", out.Content)
	}

	// untrusted regex, compile failure is a tool error
	out = registry.Call(ctx, "search_advanced", Args{"pattern": "("})
	if !out.IsError() {
		t.Fatal("expected error")
	}
	if !strings.Contains(out.Err, "Invalid regex") {
		t.Fatalf("got %q", out.Err)
	}
}

func TestFileInfo(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	registry.Call(ctx, "write_file", Args{"path": "a.md", "content": "12345"})
	out := registry.Call(ctx, "file_info", Args{"path": "a.md"})
	if out.IsError() {
		t.Fatal(out.Err)
	}
	for _, want := range []string{
		"path: a.md",
		"type: file",
		"size: 5 bytes",
		"modified: ",
		"permissions: 644",
	} {
		if !strings.Contains(out.Content, want) {
			t.Fatalf("missing %q in %q", want, out.Content)
		}
	}
}

func TestUnknownTool(t *testing.T) {
	registry, _ := newTestRegistry(t)
	out := registry.Call(t.Context(), "no_such_tool", Args{})
	if out.Err != "Unknown tool: no_such_tool" {
		t.Fatalf("got %q", out.Err)
	}
}

func TestMalformedArgs(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := t.Context()

	out := registry.Call(ctx, "read_file", Args{"path": 42})
	if !out.IsError() {
		t.Fatal("expected error")
	}

	out = registry.Call(ctx, "search", Args{"query": "x", "context_length": "ten"})
	if !out.IsError() {
		t.Fatal("expected error")
	}
}

func TestCatalog(t *testing.T) {
	registry, _ := newTestRegistry(t)
	decls := registry.Decls()
	names := make([]string, 0, len(decls))
	for _, decl := range decls {
		names = append(names, decl.Name)
	}
	want := []string{
		"read_file",
		"write_file",
		"append_file",
		"delete_file",
		"move_file",
		"list_directory",
		"create_directory",
		"search",
		"search_advanced",
		"file_info",
	}
	if len(names) != len(want) {
		t.Fatalf("got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v", names)
		}
	}

	schema := decls[0].ToSchema()
	if schema["name"] != "read_file" {
		t.Fatalf("got %v", schema)
	}
	if _, ok := schema["input_schema"]; !ok {
		t.Fatalf("got %v", schema)
	}
}
