package skrape

import (
	"encoding/json"
	"errors"
	"maps"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// SchemaDescriptor describes the shape of the data [Client.Extract] should
// return. Any schema library can be plugged in by implementing JSONSchema.
//
// The SDK ships three implementations:
//   - [Schema]: a JSON Schema written as a Go map
//   - [SchemaJSON]: a JSON Schema document as raw bytes
//   - [SchemaFor]: a schema reflected from a Go type
type SchemaDescriptor interface {
	// JSONSchema converts the descriptor into a JSON Schema object.
	JSONSchema() (map[string]any, error)
}

// Schema is a JSON Schema object written as a Go map.
//
//	schema := skrape.Schema{
//	    "type": "object",
//	    "properties": map[string]any{
//	        "title": map[string]any{"type": "string"},
//	        "price": map[string]any{"type": "number"},
//	    },
//	}
type Schema map[string]any

// JSONSchema implements [SchemaDescriptor].
func (s Schema) JSONSchema() (map[string]any, error) {
	return map[string]any(s), nil
}

// SchemaJSON is a JSON Schema document in its serialized form.
type SchemaJSON []byte

// JSONSchema implements [SchemaDescriptor].
func (s SchemaJSON) JSONSchema() (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(s, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SchemaFunc adapts a plain function to [SchemaDescriptor].
type SchemaFunc func() (map[string]any, error)

// JSONSchema implements [SchemaDescriptor].
func (f SchemaFunc) JSONSchema() (map[string]any, error) {
	return f()
}

// SchemaFor reflects a JSON Schema from the Go type T. Field names follow
// the json struct tags; fields without omitempty are required.
//
//	type Product struct {
//	    Title string  `json:"title"`
//	    Price float64 `json:"price"`
//	}
//
//	raw, err := client.Extract(ctx, &skrape.ExtractRequest{
//	    URL:    "https://shop.example.com/item/42",
//	    Schema: skrape.SchemaFor[Product](),
//	})
func SchemaFor[T any]() SchemaDescriptor {
	return SchemaFunc(func() (map[string]any, error) {
		s, err := jsonschema.For[T](nil)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		return SchemaJSON(data).JSONSchema()
	})
}

// definitionKeys are the places a root schema may be hoisted into by
// generators that emit {"$ref": "#/definitions/Name", "definitions": {...}}.
var definitionKeys = []string{"definitions", "$defs"}

// ConvertSchema turns d into the schema object sent on the wire.
//
// When the converted schema is only a reference to a named definition, the
// referenced definition is sent instead. Other definitions are kept next to
// it so nested references still resolve.
func ConvertSchema(d SchemaDescriptor) (map[string]any, error) {
	if d == nil {
		return nil, newError(CodeBadRequest, "schema is required", 0, nil)
	}

	s, err := d.JSONSchema()
	if err != nil {
		var sdkErr *Error
		if errors.As(err, &sdkErr) {
			return nil, sdkErr
		}
		return nil, newError(CodeSchemaConversion, "failed to convert schema", 0, err)
	}
	if len(s) == 0 {
		return nil, newError(CodeSchemaConversion, "schema is empty", 0, nil)
	}

	out := unwrapRootDefinition(s)
	if _, err := json.Marshal(out); err != nil {
		return nil, newError(CodeSchemaConversion, "schema cannot be encoded as JSON", 0, err)
	}
	return out, nil
}

func unwrapRootDefinition(s map[string]any) map[string]any {
	ref, _ := s["$ref"].(string)
	if ref == "" {
		return s
	}

	for _, key := range definitionKeys {
		name, ok := strings.CutPrefix(ref, "#/"+key+"/")
		if !ok || name == "" {
			continue
		}
		defs, _ := s[key].(map[string]any)
		inner, ok := defs[name].(map[string]any)
		if !ok {
			continue
		}

		out := maps.Clone(inner)
		if _, exists := out[key]; !exists && len(defs) > 1 {
			out[key] = defs
		}
		return out
	}
	return s
}
