package tools

import "encoding/json"

type Var struct {
	Name        string `json:"name"`
	Type        Type   `json:"type"`
	Optional    bool   `json:"optional"`
	Description string `json:"description"`
	ItemType    *Var   `json:"item_type,omitempty"`  // for TypeArray
	Properties  Vars   `json:"properties,omitempty"` // for TypeObject
}

type Vars []Var

// ToSchema renders the parameter list as a JSON schema object.
func (v Vars) ToSchema() map[string]any {
	props := make(map[string]any)
	required := []string{}
	for _, variable := range v {
		props[variable.Name] = variable.ToSchema()
		if !variable.Optional {
			required = append(required, variable.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func (v Var) ToSchema() map[string]any {
	ret := map[string]any{
		"type":        v.Type.schemaName(),
		"description": v.Description,
	}
	switch v.Type {
	case TypeArray:
		ret["items"] = v.ItemType.ToSchema()
	case TypeObject:
		schema := v.Properties.ToSchema()
		ret["properties"] = schema["properties"]
		ret["required"] = schema["required"]
	}
	return ret
}

type Decl struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Params      Vars   `json:"params"`
}

// ToSchema renders the declaration in the shape served by the tool
// catalog endpoint.
func (d Decl) ToSchema() map[string]any {
	return map[string]any{
		"name":         d.Name,
		"description":  d.Description,
		"input_schema": d.Params.ToSchema(),
	}
}

// CatalogEntry is one tool as it appears on the wire. Remote catalogs
// pass through without reinterpreting the schema.
type CatalogEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

func (d Decl) CatalogEntry() CatalogEntry {
	schema, err := json.Marshal(d.Params.ToSchema())
	if err != nil {
		panic(err)
	}
	return CatalogEntry{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: schema,
	}
}
