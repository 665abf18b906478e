package sandboxes

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/reusee/lud/faults"
)

func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	resolver, err := NewResolver(root)
	if err != nil {
		t.Fatal(err)
	}
	return resolver, resolver.Root()
}

func TestResolveDotDotSegments(t *testing.T) {
	resolver, _ := newTestResolver(t)
	for _, candidate := range []string{
		"..",
		"../",
		"notes/../../../etc/passwd",
		"a/../../b",
		"../outside.txt",
	} {
		_, err := resolver.Resolve(candidate)
		if err == nil {
			t.Fatalf("accepted %q", candidate)
		}
		if faults.KindOf(err) != faults.KindSandboxViolation {
			t.Fatalf("got %v", err)
		}
	}
}

func TestResolveDotDotInFilename(t *testing.T) {
	// ".." only matters as a whole segment
	resolver, root := newTestResolver(t)
	got, err := resolver.Resolve("notes..md")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(root, "notes..md") {
		t.Fatalf("got %v", got)
	}
}

func TestResolveEmpty(t *testing.T) {
	resolver, root := newTestResolver(t)
	for _, candidate := range []string{"", "."} {
		got, err := resolver.Resolve(candidate)
		if err != nil {
			t.Fatal(err)
		}
		if got != root {
			t.Fatalf("got %v", got)
		}
	}
}

func TestResolveNotYetExisting(t *testing.T) {
	resolver, root := newTestResolver(t)

	// direct child of root
	got, err := resolver.Resolve("new.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(root, "new.md") {
		t.Fatalf("got %v", got)
	}

	// nested path with missing parents
	got, err = resolver.Resolve("a/b/c.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(root, "a", "b", "c.md") {
		t.Fatalf("got %v", got)
	}
}

func TestResolveExistingFile(t *testing.T) {
	resolver, root := newTestResolver(t)
	if err := os.MkdirAll(filepath.Join(root, "notes"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes", "a.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := resolver.Resolve("notes/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(root, "notes", "a.md") {
		t.Fatalf("got %v", got)
	}
}

func TestResolveSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks")
	}
	resolver, root := newTestResolver(t)

	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("s"), 0644); err != nil {
		t.Fatal(err)
	}

	// link to a file outside the root
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Fatal(err)
	}
	if _, err := resolver.Resolve("link.txt"); err == nil {
		t.Fatal("accepted symlink escape")
	}

	// link to a directory outside the root, target under the link
	if err := os.Symlink(outside, filepath.Join(root, "dir")); err != nil {
		t.Fatal(err)
	}
	if _, err := resolver.Resolve("dir/secret.txt"); err == nil {
		t.Fatal("accepted symlink escape")
	}

	// link inside the root stays valid
	if err := os.WriteFile(filepath.Join(root, "real.txt"), []byte("r"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "alias.txt")); err != nil {
		t.Fatal(err)
	}
	got, err := resolver.Resolve("alias.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(root, "real.txt") {
		t.Fatalf("got %v", got)
	}
}

func TestContainsComponentBoundary(t *testing.T) {
	resolver := &Resolver{root: filepath.FromSlash("/vault")}
	if resolver.contains(filepath.FromSlash("/vault2")) {
		t.Fatal()
	}
	if !resolver.contains(filepath.FromSlash("/vault/notes")) {
		t.Fatal()
	}
	if !resolver.contains(filepath.FromSlash("/vault")) {
		t.Fatal()
	}
}

func TestResolveUniformRejection(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks")
	}
	resolver, root := newTestResolver(t)
	if err := os.Symlink("/etc", filepath.Join(root, "etc")); err != nil {
		t.Fatal(err)
	}

	_, err1 := resolver.Resolve("../x")
	_, err2 := resolver.Resolve("etc/passwd")
	if err1 == nil || err2 == nil {
		t.Fatal()
	}
	// both failure modes read the same to the caller
	if err1.Error() != err2.Error() {
		t.Fatalf("%v != %v", err1, err2)
	}
}
