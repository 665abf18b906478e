package tools

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/reusee/lud/sandboxes"
)

const maxSearchResults = 50

type local struct {
	resolver *sandboxes.Resolver
}

// NewLocalRegistry builds the in-process tool catalog over a sandbox
// root. Every path argument goes through the resolver before any
// filesystem access.
func NewLocalRegistry(resolver *sandboxes.Resolver) *Registry {
	l := &local{
		resolver: resolver,
	}

	pathParam := func(desc string) Var {
		return Var{
			Name:        "path",
			Type:        TypeString,
			Description: desc,
		}
	}

	return NewRegistry([]Tool{

		{
			Decl: Decl{
				Name:        "read_file",
				Description: "Read the contents of a file",
				Params: Vars{
					pathParam("Path to the file relative to root"),
				},
			},
			Handler: l.readFile,
		},

		{
			Decl: Decl{
				Name:        "write_file",
				Description: "Create or replace a file",
				Params: Vars{
					pathParam("Path to the file relative to root"),
					{
						Name:        "content",
						Type:        TypeString,
						Description: "Content to write to the file",
					},
				},
			},
			Handler: l.writeFile,
		},

		{
			Decl: Decl{
				Name:        "append_file",
				Description: "Append content to the end of a file",
				Params: Vars{
					pathParam("Path to the file relative to root"),
					{
						Name:        "content",
						Type:        TypeString,
						Description: "Content to append",
					},
				},
			},
			Handler: l.appendFile,
		},

		{
			Decl: Decl{
				Name:        "delete_file",
				Description: "Delete a file",
				Params: Vars{
					pathParam("Path to the file relative to root"),
				},
			},
			Handler: l.deleteFile,
		},

		{
			Decl: Decl{
				Name:        "move_file",
				Description: "Move or rename a file",
				Params: Vars{
					{
						Name:        "source",
						Type:        TypeString,
						Description: "Source path relative to root",
					},
					{
						Name:        "destination",
						Type:        TypeString,
						Description: "Destination path relative to root",
					},
				},
			},
			Handler: l.moveFile,
		},

		{
			Decl: Decl{
				Name:        "list_directory",
				Description: "List the contents of a directory",
				Params: Vars{
					{
						Name:        "path",
						Type:        TypeString,
						Optional:    true,
						Description: "Path to the directory relative to root (empty for root)",
					},
				},
			},
			Handler: l.listDirectory,
		},

		{
			Decl: Decl{
				Name:        "create_directory",
				Description: "Create a directory (including parent directories)",
				Params: Vars{
					pathParam("Path to the directory relative to root"),
				},
			},
			Handler: l.createDirectory,
		},

		{
			Decl: Decl{
				Name:        "search",
				Description: "Search for files or content (simple text search)",
				Params: Vars{
					{
						Name:        "query",
						Type:        TypeString,
						Description: "Search query (searches file names and content)",
					},
					{
						Name:        "path",
						Type:        TypeString,
						Optional:    true,
						Description: "Optional subdirectory to search within",
					},
					{
						Name:        "context_length",
						Type:        TypeInteger,
						Optional:    true,
						Description: "Number of characters of context around matches (default 50)",
					},
				},
			},
			Handler: l.search,
		},

		{
			Decl: Decl{
				Name:        "search_advanced",
				Description: "Advanced search with regex and glob patterns",
				Params: Vars{
					{
						Name:        "pattern",
						Type:        TypeString,
						Description: "Regex pattern to search for",
					},
					{
						Name:        "path",
						Type:        TypeString,
						Optional:    true,
						Description: "Optional subdirectory to search within",
					},
					{
						Name:        "glob",
						Type:        TypeString,
						Optional:    true,
						Description: "Glob pattern to filter files (e.g., '*.md')",
					},
					{
						Name:        "content_only",
						Type:        TypeBoolean,
						Optional:    true,
						Description: "Search only file content, not names",
					},
				},
			},
			Handler: l.searchAdvanced,
		},

		{
			Decl: Decl{
				Name:        "file_info",
				Description: "Get file metadata (size, dates, permissions)",
				Params: Vars{
					pathParam("Path to the file relative to root"),
				},
			},
			Handler: l.fileInfo,
		},
	})
}

// isTextFile reports whether the file content is text-based. Empty files
// count as text.
func isTextFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.Size() == 0 {
		return true
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func (l *local) resolveArg(args Args, name string) (string, Outcome) {
	raw, err := stringArg(args, name)
	if err != nil {
		return "", Outcome{Err: err.Error()}
	}
	resolved, err := l.resolver.Resolve(raw)
	if err != nil {
		return "", Outcome{Err: err.Error()}
	}
	return resolved, Outcome{}
}

func (l *local) readFile(ctx context.Context, args Args) Outcome {
	resolved, bad := l.resolveArg(args, "path")
	if bad.IsError() {
		return bad
	}
	display, _ := stringArg(args, "path")

	info, err := os.Stat(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return Errorf("File not found: %s", display)
	}
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	if info.IsDir() {
		return Errorf("Path is not a file")
	}
	if !isTextFile(resolved) {
		return Errorf("File is not text: %s", display)
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	return Outcome{Content: string(content)}
}

func (l *local) writeFile(ctx context.Context, args Args) Outcome {
	resolved, bad := l.resolveArg(args, "path")
	if bad.IsError() {
		return bad
	}
	display, _ := stringArg(args, "path")
	content, err := stringArg(args, "content")
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return Outcome{Err: err.Error()}
	}
	if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
		return Outcome{Err: err.Error()}
	}
	return Outcome{Content: sprintf("Written %d bytes to %s", len(content), display)}
}

func (l *local) appendFile(ctx context.Context, args Args) Outcome {
	resolved, bad := l.resolveArg(args, "path")
	if bad.IsError() {
		return bad
	}
	display, _ := stringArg(args, "path")
	content, err := stringArg(args, "content")
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return Outcome{Err: err.Error()}
	}

	data := []byte(content)
	if existing, err := os.ReadFile(resolved); err == nil {
		// keep the boundary clean, one newline between old and new content
		if len(existing) > 0 && existing[len(existing)-1] != '\n' {
			data = append([]byte("\n"), data...)
		}
	}

	f, err := os.OpenFile(resolved, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return Outcome{Err: err.Error()}
	}
	return Outcome{Content: sprintf("Appended %d bytes to %s", len(data), display)}
}

func (l *local) deleteFile(ctx context.Context, args Args) Outcome {
	resolved, bad := l.resolveArg(args, "path")
	if bad.IsError() {
		return bad
	}
	display, _ := stringArg(args, "path")

	info, err := os.Stat(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return Errorf("File not found: %s", display)
	}
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	if info.IsDir() {
		return Errorf("Path is not a file")
	}
	if err := os.Remove(resolved); err != nil {
		return Outcome{Err: err.Error()}
	}
	return Outcome{Content: sprintf("Deleted %s", display)}
}

func (l *local) moveFile(ctx context.Context, args Args) Outcome {
	source, bad := l.resolveArg(args, "source")
	if bad.IsError() {
		return bad
	}
	destination, bad := l.resolveArg(args, "destination")
	if bad.IsError() {
		return bad
	}
	displaySource, _ := stringArg(args, "source")
	displayDestination, _ := stringArg(args, "destination")

	if _, err := os.Stat(source); errors.Is(err, fs.ErrNotExist) {
		return Errorf("Source not found: %s", displaySource)
	} else if err != nil {
		return Outcome{Err: err.Error()}
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return Outcome{Err: err.Error()}
	}
	if err := os.Rename(source, destination); err != nil {
		return Outcome{Err: err.Error()}
	}
	return Outcome{Content: sprintf("Moved %s to %s", displaySource, displayDestination)}
}

func (l *local) listDirectory(ctx context.Context, args Args) Outcome {
	resolved, bad := l.resolveArg(args, "path")
	if bad.IsError() {
		return bad
	}
	display, _ := stringArg(args, "path")
	if display == "" {
		display = "."
	}

	info, err := os.Stat(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return Errorf("Directory not found: %s", display)
	}
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	if !info.IsDir() {
		return Errorf("Path is not a directory")
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	var lines []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		kind := "file"
		if entry.IsDir() {
			kind = "dir"
		}
		lines = append(lines, kind+": "+entry.Name())
	}

	if len(lines) == 0 {
		return Outcome{Content: "(empty directory)"}
	}
	return Outcome{Content: strings.Join(lines, "\n")}
}

func (l *local) createDirectory(ctx context.Context, args Args) Outcome {
	resolved, bad := l.resolveArg(args, "path")
	if bad.IsError() {
		return bad
	}
	display, _ := stringArg(args, "path")

	if err := os.MkdirAll(resolved, 0755); err != nil {
		return Outcome{Err: err.Error()}
	}
	return Outcome{Content: sprintf("Created directory: %s", display)}
}

var errStopWalk = errors.New("stop walk")

// walkFiles visits regular files under base, skipping anything with a
// dot-prefixed component. Returning errStopWalk from fn ends the walk
// without error.
func (l *local) walkFiles(base string, fn func(path string, name string) error) error {
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != base {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		return fn(path, d.Name())
	})
	if errors.Is(err, errStopWalk) {
		return nil
	}
	return err
}

func (l *local) relPath(path string) string {
	rel, err := filepath.Rel(l.resolver.Root(), path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (l *local) search(ctx context.Context, args Args) Outcome {
	query, err := stringArg(args, "query")
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	if query == "" {
		return Errorf("Query required")
	}

	base, bad := l.resolveArg(args, "path")
	if bad.IsError() {
		return bad
	}

	contextLength, err := intArg(args, "context_length", 50)
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	queryLower := strings.ToLower(query)
	var results []string

	err = l.walkFiles(base, func(path string, name string) error {
		if len(results) >= maxSearchResults {
			return errStopWalk
		}

		if strings.Contains(strings.ToLower(name), queryLower) {
			results = append(results, "file: "+l.relPath(path))
			return nil
		}

		if !isTextFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		content := string(data)
		idx := strings.Index(strings.ToLower(content), queryLower)
		if idx < 0 {
			return nil
		}
		start := max(0, idx-contextLength)
		end := min(len(content), idx+len(query)+contextLength)
		excerpt := strings.ReplaceAll(content[start:end], "\n", " ")
		results = append(results, sprintf("match: %s\n  ...%s...", l.relPath(path), excerpt))
		return nil
	})
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	if len(results) == 0 {
		return Outcome{Content: "No matches found"}
	}
	return Outcome{Content: strings.Join(results, "\n")}
}

func (l *local) searchAdvanced(ctx context.Context, args Args) Outcome {
	patternStr, err := stringArg(args, "pattern")
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	if patternStr == "" {
		return Errorf("Pattern required")
	}

	// the pattern comes from the model, compile failure is a tool error
	pattern, err := regexp.Compile("(?im)" + patternStr)
	if err != nil {
		return Errorf("Invalid regex: %v", err)
	}

	base, bad := l.resolveArg(args, "path")
	if bad.IsError() {
		return bad
	}

	glob, err := stringArg(args, "glob")
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	if glob == "" {
		glob = "*"
	}
	if _, err := filepath.Match(glob, ""); err != nil {
		return Errorf("Invalid glob: %v", err)
	}

	contentOnly, err := boolArg(args, "content_only")
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	var results []string

	err = l.walkFiles(base, func(path string, name string) error {
		if len(results) >= maxSearchResults {
			return errStopWalk
		}

		// glob filtering bounds the cost before content matching
		if ok, _ := filepath.Match(glob, name); !ok {
			return nil
		}

		if !contentOnly && pattern.MatchString(name) {
			results = append(results, "file: "+l.relPath(path))
		}

		if !isTextFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		content := string(data)
		const matchesPerFile = 3
		for _, loc := range pattern.FindAllStringIndex(content, matchesPerFile) {
			start := max(0, loc[0]-30)
			end := min(len(content), loc[1]+30)
			excerpt := strings.ReplaceAll(content[start:end], "\n", " ")
			results = append(results, sprintf("match: %s:%d\n  ...%s...", l.relPath(path), loc[0], excerpt))
		}
		return nil
	})
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	if len(results) == 0 {
		return Outcome{Content: "No matches found"}
	}
	return Outcome{Content: strings.Join(results, "\n")}
}

func (l *local) fileInfo(ctx context.Context, args Args) Outcome {
	resolved, bad := l.resolveArg(args, "path")
	if bad.IsError() {
		return bad
	}
	display, _ := stringArg(args, "path")

	info, err := os.Stat(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return Errorf("File not found: %s", display)
	}
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}

	lines := []string{
		sprintf("path: %s", display),
		sprintf("type: %s", kind),
		sprintf("size: %d bytes", info.Size()),
		sprintf("modified: %s", info.ModTime().Format(time.RFC3339)),
		sprintf("permissions: %03o", info.Mode().Perm()),
	}
	return Outcome{Content: strings.Join(lines, "\n")}
}
