package google

import (
	"encoding/json"

	"google.golang.org/genai"
)

// convertSchema translates the JSON Schema subset produced by tool.SchemaFor
// into a genai.Schema. Unknown keywords are ignored.
func convertSchema(raw json.RawMessage) *genai.Schema {
	if len(raw) == 0 {
		return nil
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil
	}
	return convertSchemaObject(schema)
}

var schemaTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

func convertSchemaObject(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}
	out := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		out.Type = schemaTypes[t]
	}
	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	out.Enum = stringList(schema["enum"])
	out.Required = stringList(schema["required"])

	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if m, ok := prop.(map[string]any); ok {
				out.Properties[name] = convertSchemaObject(m)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = convertSchemaObject(items)
	}
	if min, ok := schema["minimum"].(float64); ok {
		out.Minimum = &min
	}
	if max, ok := schema["maximum"].(float64); ok {
		out.Maximum = &max
	}
	return out
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
