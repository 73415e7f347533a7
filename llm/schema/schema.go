// Package schema derives JSON schemas from Go structs, used to describe
// function tool parameters to the model.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// FromStruct derives a JSON schema object from a struct type. Field names
// follow `json` tags, descriptions come from `desc` tags, `enum` tags list
// the allowed values comma-separated, and fields without omitempty are
// marked required.
func FromStruct(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, fmt.Errorf("schema: nil value")
	}
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: expected struct, got %s", t.Kind())
	}
	return json.Marshal(structSchema(t))
}

type property struct {
	Type        string              `json:"type,omitempty"`
	Properties  map[string]property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
	Items       *property           `json:"items,omitempty"`
	Format      string              `json:"format,omitempty"`
	Description string              `json:"description,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
}

func structSchema(t reflect.Type) property {
	props := make(map[string]property)
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // unexported
			continue
		}
		name, optional := fieldName(field)
		if name == "" {
			continue
		}
		prop := typeSchema(field.Type)
		if desc := field.Tag.Get("desc"); desc != "" {
			prop.Description = desc
		}
		if values := field.Tag.Get("enum"); values != "" {
			prop.Enum = strings.Split(values, ",")
		}
		props[name] = prop
		if !optional {
			required = append(required, name)
		}
	}

	return property{Type: "object", Properties: props, Required: required}
}

func fieldName(field reflect.StructField) (name string, optional bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if tag == "" {
		return field.Name, false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, part := range parts[1:] {
		if part == "omitempty" {
			optional = true
		}
	}
	return name, optional
}

func typeSchema(t reflect.Type) property {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return property{Type: "string"}
	case reflect.Bool:
		return property{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return property{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return property{Type: "number"}
	case reflect.Slice, reflect.Array:
		items := typeSchema(t.Elem())
		return property{Type: "array", Items: &items}
	case reflect.Map:
		return property{Type: "object"}
	case reflect.Struct:
		if t.PkgPath() == "time" && t.Name() == "Time" {
			return property{Type: "string", Format: "date-time"}
		}
		return structSchema(t)
	default:
		return property{Type: "string"}
	}
}
