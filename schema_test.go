package skrape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skrape-ai/skrape-go"
)

// TestConvertSchema_Unwrap tests unwrapping of root definitions.
func TestConvertSchema_Unwrap(t *testing.T) {
	article := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"title": map[string]interface{}{"type": "string"}},
	}

	tests := []struct {
		name   string
		schema skrape.Schema
		want   map[string]interface{}
	}{
		{
			name:   "plain schema is sent as-is",
			schema: skrape.Schema(article),
			want:   article,
		},
		{
			name: "definitions wrapper",
			schema: skrape.Schema{
				"$ref":        "#/definitions/Article",
				"definitions": map[string]interface{}{"Article": article},
			},
			want: article,
		},
		{
			name: "$defs wrapper",
			schema: skrape.Schema{
				"$ref":  "#/$defs/Article",
				"$defs": map[string]interface{}{"Article": article},
			},
			want: article,
		},
		{
			name: "dangling reference is sent as-is",
			schema: skrape.Schema{
				"$ref":        "#/definitions/Missing",
				"definitions": map[string]interface{}{"Article": article},
			},
			want: map[string]interface{}{
				"$ref":        "#/definitions/Missing",
				"definitions": map[string]interface{}{"Article": article},
			},
		},
		{
			name:   "external reference is sent as-is",
			schema: skrape.Schema{"$ref": "https://example.com/article.json"},
			want:   map[string]interface{}{"$ref": "https://example.com/article.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := skrape.ConvertSchema(tt.schema)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestConvertSchema_KeepsSiblingDefinitions verifies nested references
// still resolve after unwrapping.
func TestConvertSchema_KeepsSiblingDefinitions(t *testing.T) {
	defs := map[string]interface{}{
		"Article": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"author": map[string]interface{}{"$ref": "#/definitions/Author"},
			},
		},
		"Author": map[string]interface{}{"type": "string"},
	}

	got, err := skrape.ConvertSchema(skrape.Schema{
		"$ref":        "#/definitions/Article",
		"definitions": defs,
	})

	require.NoError(t, err)
	assert.Equal(t, "object", got["type"])
	assert.Equal(t, defs, got["definitions"])
	assert.NotContains(t, got, "$ref")
}

// TestConvertSchema_Errors tests conversion failures.
func TestConvertSchema_Errors(t *testing.T) {
	tests := []struct {
		name   string
		schema skrape.SchemaDescriptor
		code   string
	}{
		{name: "nil descriptor", schema: nil, code: skrape.CodeBadRequest},
		{name: "invalid JSON", schema: skrape.SchemaJSON(`{"type":`), code: skrape.CodeSchemaConversion},
		{name: "empty schema", schema: skrape.Schema{}, code: skrape.CodeSchemaConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := skrape.ConvertSchema(tt.schema)

			assert.Nil(t, got)
			apiErr := requireSDKError(t, err)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

// TestSchemaFor tests schema reflection from Go types.
func TestSchemaFor(t *testing.T) {
	type article struct {
		Title  string   `json:"title"`
		Tags   []string `json:"tags,omitempty"`
		Rating float64  `json:"rating"`
	}

	got, err := skrape.ConvertSchema(skrape.SchemaFor[article]())

	require.NoError(t, err)
	assert.Equal(t, "object", got["type"])

	props, ok := got["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"type": "string"}, props["title"])
	assert.Equal(t, map[string]interface{}{"type": "number"}, props["rating"])
	assert.Contains(t, props, "tags")
	assert.ElementsMatch(t, []interface{}{"title", "rating"}, got["required"])
}
