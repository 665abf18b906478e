package ludconfigs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/lud/configs"
	"github.com/reusee/lud/modes"
)

func TestDefaults(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader(nil, "")
		},
	).Call(func(
		windowSize WindowSize,
		persistThreshold PersistThreshold,
		maxContextBytes MaxContextBytes,
		maxToolRounds MaxToolRounds,
		listenAddr ListenAddr,
		modelName ModelName,
	) {
		if windowSize != 8 {
			t.Fatalf("got %v", windowSize)
		}
		if persistThreshold != 8 {
			t.Fatalf("got %v", persistThreshold)
		}
		if maxContextBytes != 32*1024 {
			t.Fatalf("got %v", maxContextBytes)
		}
		if maxToolRounds != 10 {
			t.Fatalf("got %v", maxToolRounds)
		}
		if listenAddr != ":8200" {
			t.Fatalf("got %v", listenAddr)
		}
		if modelName == "" {
			t.Fatal("empty model")
		}
	})
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lud.cue")
	if err := os.WriteFile(path, []byte(`
window_size: 3
model: "test-model"
server_url: "http://example.com/"
max_tool_rounds: 2
`), 0644); err != nil {
		t.Fatal(err)
	}

	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader([]string{path}, schema)
		},
	).Call(func(
		windowSize WindowSize,
		modelName ModelName,
		serverURL ServerURL,
		maxToolRounds MaxToolRounds,
	) {
		if windowSize != 3 {
			t.Fatalf("got %v", windowSize)
		}
		if modelName != "test-model" {
			t.Fatalf("got %v", modelName)
		}
		if serverURL != "http://example.com" {
			t.Fatalf("got %v", serverURL)
		}
		if maxToolRounds != 2 {
			t.Fatalf("got %v", maxToolRounds)
		}
	})
}

func TestSchemaRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lud.cue")
	if err := os.WriteFile(path, []byte(`no_such_field: 1`), 0644); err != nil {
		t.Fatal(err)
	}

	loader := configs.NewLoader([]string{path}, schema)
	var s string
	err := loader.AssignFirst("model", &s)
	if err == nil {
		t.Fatal("expected error")
	}
}
