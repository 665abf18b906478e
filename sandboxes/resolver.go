package sandboxes

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reusee/lud/faults"
	"github.com/reusee/lud/ludconfigs"
)

// Resolver maps user-supplied relative paths to absolute paths inside a
// root directory. Resolution is a point-in-time check, callers re-resolve
// per operation instead of caching results.
type Resolver struct {
	root string
}

func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return nil, errors.New("empty sandbox root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		root: resolved,
	}, nil
}

type GetResolver func() (*Resolver, error)

func (Module) GetResolver(
	rootDir ludconfigs.RootDir,
) GetResolver {
	return sync.OnceValues(func() (*Resolver, error) {
		if rootDir == "" {
			return nil, errors.New("root_dir not configured")
		}
		return NewResolver(string(rootDir))
	})
}

func (r *Resolver) Root() string {
	return r.root
}

// the rejection is deliberately uniform, it never says where the path
// ended up or which check failed
func errEscape() error {
	return faults.New(faults.KindSandboxViolation, "path escapes sandbox")
}

func (r *Resolver) Resolve(candidate string) (string, error) {

	// textual check first, before any filesystem access
	for _, seg := range strings.Split(filepath.ToSlash(candidate), "/") {
		if seg == ".." {
			return "", errEscape()
		}
	}

	if candidate == "" || candidate == "." {
		return r.root, nil
	}

	full := filepath.Join(r.root, candidate)

	resolved, err := canonicalize(full)
	if err != nil {
		return "", errEscape()
	}

	if !r.contains(resolved) {
		return "", errEscape()
	}

	return resolved, nil
}

// contains checks containment at path component boundaries, /vault2 is
// not inside /vault.
func (r *Resolver) contains(path string) bool {
	if path == r.root {
		return true
	}
	return strings.HasPrefix(path, r.root+string(filepath.Separator))
}

// canonicalize resolves symlinks in path. A missing suffix is allowed so
// that not-yet-existing files can be created, the longest existing prefix
// still has its symlinks resolved.
func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	parent := filepath.Dir(path)
	if parent == path {
		return "", err
	}
	resolvedParent, err := canonicalize(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(path)), nil
}
