package ai

import (
	"fmt"
	"reflect"
	"strings"
)

// NewTool creates a Tool whose input schema is derived from T.
// T must be a struct whose exported fields carry json tags; a `description`
// tag documents the property and `omitempty` marks it optional.
//
// Example:
//
//	type ReadInput struct {
//	    Path string `json:"path" description:"Relative path of the file"`
//	}
//
//	tool := ai.NewTool("read_file", "Reads a file", func(in ReadInput) (string, error) {
//	    data, err := os.ReadFile(in.Path)
//	    return string(data), err
//	})
//
// Panics if the struct has exported fields without json tags.
func NewTool[T any](name, description string, fn func(T) (string, error)) *Tool {
	var zero T
	typ := reflect.TypeOf(zero)

	if err := validateStructTags(typ); err != nil {
		panic(fmt.Sprintf("NewTool(%s): %v", name, err))
	}

	return &Tool{
		Name:        name,
		Description: description,
		InputSchema: generateSchema(typ),
		Execute: func(args map[string]interface{}) (*ToolResult, error) {
			params, err := decodeArgs[T](args)
			if err != nil {
				return nil, err
			}
			result, err := fn(params)
			if err != nil {
				return nil, err
			}
			return &ToolResult{Content: result}, nil
		},
	}
}

func validateStructTags(typ reflect.Type) error {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var missingTags []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Tag.Get("json") == "" {
			missingTags = append(missingTags, field.Name)
		}
	}

	if len(missingTags) > 0 {
		return fmt.Errorf("struct %s has exported fields without json tags: %v", typ.Name(), missingTags)
	}
	return nil
}

func generateSchema(typ reflect.Type) map[string]interface{} {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	properties := make(map[string]interface{})
	required := []string{}

	if typ.Kind() == reflect.Struct {
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}

			jsonTag := field.Tag.Get("json")
			if jsonTag == "" || jsonTag == "-" {
				continue
			}

			parts := strings.Split(jsonTag, ",")
			fieldName := parts[0]
			optional := len(parts) > 1 && parts[1] == "omitempty"

			properties[fieldName] = propertySchema(field)
			if !optional {
				required = append(required, fieldName)
			}
		}
	}

	// required is always present, even when empty
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func propertySchema(field reflect.StructField) map[string]interface{} {
	fieldType := field.Type
	if fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}

	if fieldType.Kind() == reflect.Struct {
		return generateSchema(fieldType)
	}

	schema := map[string]interface{}{"type": jsonType(fieldType)}
	if desc := field.Tag.Get("description"); desc != "" {
		schema["description"] = desc
	}
	if fieldType.Kind() == reflect.Slice || fieldType.Kind() == reflect.Array {
		elem := fieldType.Elem()
		if elem.Kind() == reflect.Struct {
			schema["items"] = generateSchema(elem)
		} else {
			schema["items"] = map[string]interface{}{"type": jsonType(elem)}
		}
	}
	return schema
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "string"
	}
}
