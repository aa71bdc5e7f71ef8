package dashboard

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ParamError reports a single invalid parameter, suitable for surfacing
// next to the offending form field.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("dashboard: parameter %q %s", e.Field, e.Message)
}

// SchemaValidator checks widget parameters against the endpoint descriptor
// by compiling each descriptor into a JSON Schema. Compiled schemas are
// cached per endpoint ID.
type SchemaValidator struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewSchemaValidator builds an empty validator.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{compiled: map[string]*jsonschema.Schema{}}
}

// Validate checks params against desc. Required parameters must be present
// and non-empty; number parameters must parse; select parameters must match
// one of the declared options. Unknown extra parameters pass through, they
// are forwarded verbatim upstream.
func (v *SchemaValidator) Validate(desc EndpointDescriptor, params map[string]string) error {
	for _, p := range desc.Parameters {
		if !p.Required {
			continue
		}
		if strings.TrimSpace(params[p.Name]) == "" {
			return &ParamError{Field: p.Name, Message: "is required"}
		}
	}

	payload := map[string]any{}
	for _, p := range desc.Parameters {
		raw, ok := params[p.Name]
		if !ok || raw == "" {
			continue
		}
		if p.Type == ParamNumber {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return &ParamError{Field: p.Name, Message: "must be a number"}
			}
			payload[p.Name] = f
			continue
		}
		payload[p.Name] = raw
	}

	schema, err := v.schemaFor(desc)
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: parameters for %s rejected: %w", desc.ID, err)
	}
	return nil
}

func (v *SchemaValidator) schemaFor(desc EndpointDescriptor) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if schema, ok := v.compiled[desc.ID]; ok {
		return schema, nil
	}
	doc, err := json.Marshal(descriptorSchema(desc))
	if err != nil {
		return nil, fmt.Errorf("dashboard: encode schema for %s: %w", desc.ID, err)
	}
	schema, err := jsonschema.CompileString(desc.ID+".json", string(doc))
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema for %s: %w", desc.ID, err)
	}
	v.compiled[desc.ID] = schema
	return schema, nil
}

func descriptorSchema(desc EndpointDescriptor) map[string]any {
	props := map[string]any{}
	var required []string
	for _, p := range desc.Parameters {
		prop := map[string]any{"type": "string"}
		switch p.Type {
		case ParamNumber:
			prop = map[string]any{"type": "number"}
		case ParamSelect:
			if len(p.Options) > 0 {
				prop["enum"] = p.Options
			}
		default:
			prop["minLength"] = 1
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
