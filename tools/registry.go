package tools

import "context"

type Handler func(ctx context.Context, args Args) Outcome

type Tool struct {
	Decl    Decl
	Handler Handler
}

// Registry is the fixed tool catalog, built once at startup. Order is
// part of the catalog contract.
type Registry struct {
	order []string
	byName map[string]Tool
}

func NewRegistry(ts []Tool) *Registry {
	r := &Registry{
		byName: make(map[string]Tool, len(ts)),
	}
	for _, t := range ts {
		if _, ok := r.byName[t.Decl.Name]; ok {
			panic("duplicate tool: " + t.Decl.Name)
		}
		r.order = append(r.order, t.Decl.Name)
		r.byName[t.Decl.Name] = t
	}
	return r
}

func (r *Registry) Decls() []Decl {
	decls := make([]Decl, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.byName[name].Decl)
	}
	return decls
}

func (r *Registry) Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, r.byName[name].Decl.CatalogEntry())
	}
	return entries
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Call dispatches to the named tool. Unknown names and handler panics
// become error outcomes, never crashes.
func (r *Registry) Call(ctx context.Context, name string, args Args) (ret Outcome) {
	t, ok := r.byName[name]
	if !ok {
		return Errorf("Unknown tool: %s", name)
	}
	defer func() {
		if p := recover(); p != nil {
			ret = Errorf("%v", p)
		}
	}()
	return t.Handler(ctx, args)
}
