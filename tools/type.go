package tools

import (
	"encoding/json"
	"fmt"
)

type Type uint8

const (
	TypeNone Type = iota
	TypeString
	TypeNumber
	TypeInteger
	TypeBoolean
	TypeArray
	TypeObject
)

func (t Type) schemaName() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	}
	panic(fmt.Errorf("invalid type: %d", t))
}

var _ json.Marshaler = Type(0)

func (t Type) MarshalJSON() ([]byte, error) {
	if t == TypeNone {
		return nil, fmt.Errorf("invalid type: %d", t)
	}
	return json.Marshal(t.schemaName())
}

var _ json.Unmarshaler = new(Type)

func (t *Type) UnmarshalJSON(data []byte) error {
	switch s := string(data); s {
	case `"string"`, `"str"`:
		*t = TypeString
	case `"number"`, `"num"`:
		*t = TypeNumber
	case `"integer"`, `"int"`:
		*t = TypeInteger
	case `"boolean"`, `"bool"`:
		*t = TypeBoolean
	case `"array"`, `"list"`:
		*t = TypeArray
	case `"object"`, `"struct"`:
		*t = TypeObject
	default:
		return fmt.Errorf("invalid type: %s", data)
	}
	return nil
}
