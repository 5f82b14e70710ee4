package catalog

import (
	"reflect"
	"strings"
	"unicode"
)

// Property is one configurable field of a step kind
type Property struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Default     string   `json:"default,omitempty"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// PropertiesOf builds a property schema from a config struct. Fields are
// described with a step tag:
//
//	Predicate string `step:"required,default=AND,enum=AND|OR,desc=How rules combine"`
//
// Field names are converted to snake_case unless the tag sets name=
func PropertiesOf(cfg any) []Property {
	t := reflect.TypeOf(cfg)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	props := make([]Property, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("step")
		if tag == "-" {
			continue
		}

		prop := Property{
			Name: toSnakeCase(field.Name),
			Type: typeName(field.Type),
		}
		parseStepTag(tag, &prop)
		props = append(props, prop)
	}
	return props
}

func parseStepTag(tag string, prop *Property) {
	if tag == "" {
		return
	}

	// desc= swallows the rest of the tag so descriptions may contain commas
	if idx := strings.Index(tag, "desc="); idx != -1 {
		prop.Description = strings.TrimSpace(tag[idx+len("desc="):])
		tag = tag[:idx]
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case part == "required":
			prop.Required = true
		case strings.HasPrefix(part, "name="):
			prop.Name = strings.TrimPrefix(part, "name=")
		case strings.HasPrefix(part, "default="):
			prop.Default = strings.TrimPrefix(part, "default=")
		case strings.HasPrefix(part, "enum="):
			prop.Enum = strings.Split(strings.TrimPrefix(part, "enum="), "|")
		}
	}
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Pointer:
		return typeName(t.Elem())
	default:
		return "object"
	}
}

func toSnakeCase(s string) string {
	// Handle common acronyms that should stay together
	acronyms := []struct{ from, to string }{
		{"HTTP", "http"},
		{"JSON", "json"},
		{"URL", "url"},
		{"API", "api"},
		{"ID", "id"},
	}

	result := s
	for _, a := range acronyms {
		result = strings.ReplaceAll(result, a.from, "_"+a.to+"_")
	}

	var sb strings.Builder
	for i, r := range result {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}

	output := sb.String()
	for strings.Contains(output, "__") {
		output = strings.ReplaceAll(output, "__", "_")
	}
	return strings.Trim(output, "_")
}
