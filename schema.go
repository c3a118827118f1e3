package genai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaType enumerates the JSON-Schema type subset the service accepts.
type SchemaType string

const (
	SchemaTypeString  SchemaType = "string"
	SchemaTypeNumber  SchemaType = "number"
	SchemaTypeInteger SchemaType = "integer"
	SchemaTypeBoolean SchemaType = "boolean"
	SchemaTypeArray   SchemaType = "array"
	SchemaTypeObject  SchemaType = "object"
	SchemaTypeNull    SchemaType = "null"
)

// Schema is the OpenAPI-subset schema used for tool parameters/responses
// and structured output. It is cyclic: Items and AnyOf nest further
// Schema values through pointers and slices.
type Schema struct {
	Type             SchemaType
	Format           string
	Description      string
	EnumValues       []string
	Properties       map[string]*Schema
	PropertyOrdering []string
	Required         []string
	Items            *Schema
	AnyOf            []*Schema
	Nullable         bool
	Minimum          *float64
	Maximum          *float64
	MinLength        *int64
	MaxLength        *int64
	MinItems         *int64
	MaxItems         *int64
	Default          json.RawMessage
	Example          json.RawMessage
}

// Validate enforces the structural invariant that every name in
// PropertyOrdering appears in Properties and, for anything deeper,
// compiles the schema's JSON-Schema-equivalent form with
// github.com/santhosh-tekuri/jsonschema/v5 to catch malformed subsets
// before a request is ever built.
func (s *Schema) Validate() error {
	if s == nil {
		return nil
	}
	for _, name := range s.PropertyOrdering {
		if _, ok := s.Properties[name]; !ok {
			return NewInvalidConfigError(fmt.Sprintf("property_ordering references unknown property %q", name))
		}
	}
	for _, p := range s.Properties {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if s.Items != nil {
		if err := s.Items.Validate(); err != nil {
			return err
		}
	}
	for _, a := range s.AnyOf {
		if err := a.Validate(); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(s.asJSONSchema())
	if err != nil {
		return NewSerializationError(err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return NewInvalidConfigError(fmt.Sprintf("invalid schema: %s", err))
	}
	if _, err := compiler.Compile("schema.json"); err != nil {
		return NewInvalidConfigError(fmt.Sprintf("invalid schema: %s", err))
	}
	return nil
}

// asJSONSchema renders the canonical Schema as a plain JSON-Schema
// document, used only for structural validation via jsonschema/v5.
func (s *Schema) asJSONSchema() map[string]any {
	out := map[string]any{}
	if s.Type != "" {
		out["type"] = s.Type
	}
	if s.Format != "" {
		out["format"] = s.Format
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.EnumValues) > 0 {
		out["enum"] = s.EnumValues
	}
	if len(s.Properties) > 0 {
		props := map[string]any{}
		for k, v := range s.Properties {
			props[k] = v.asJSONSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.asJSONSchema()
	}
	if len(s.AnyOf) > 0 {
		anyOf := make([]any, len(s.AnyOf))
		for i, a := range s.AnyOf {
			anyOf[i] = a.asJSONSchema()
		}
		out["anyOf"] = anyOf
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	if s.MinLength != nil {
		out["minLength"] = *s.MinLength
	}
	if s.MaxLength != nil {
		out["maxLength"] = *s.MaxLength
	}
	if s.MinItems != nil {
		out["minItems"] = *s.MinItems
	}
	if s.MaxItems != nil {
		out["maxItems"] = *s.MaxItems
	}
	return out
}

// SchemaBuilder offers a fluent construction path for hand-built tool
// parameter schemas.
type SchemaBuilder struct {
	schema Schema
}

func NewObjectSchema() *SchemaBuilder {
	return &SchemaBuilder{schema: Schema{Type: SchemaTypeObject, Properties: map[string]*Schema{}}}
}

func (b *SchemaBuilder) Property(name string, s *Schema) *SchemaBuilder {
	b.schema.Properties[name] = s
	b.schema.PropertyOrdering = append(b.schema.PropertyOrdering, name)
	return b
}

func (b *SchemaBuilder) Required(names ...string) *SchemaBuilder {
	b.schema.Required = append(b.schema.Required, names...)
	return b
}

func (b *SchemaBuilder) Description(desc string) *SchemaBuilder {
	b.schema.Description = desc
	return b
}

func (b *SchemaBuilder) Build() (*Schema, error) {
	if err := b.schema.Validate(); err != nil {
		return nil, err
	}
	return &b.schema, nil
}

func StringSchema() *Schema  { return &Schema{Type: SchemaTypeString} }
func NumberSchema() *Schema  { return &Schema{Type: SchemaTypeNumber} }
func IntegerSchema() *Schema { return &Schema{Type: SchemaTypeInteger} }
func BooleanSchema() *Schema { return &Schema{Type: SchemaTypeBoolean} }

func ArraySchema(items *Schema) *Schema {
	return &Schema{Type: SchemaTypeArray, Items: items}
}
