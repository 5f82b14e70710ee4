package models

import (
	"encoding/json"
	"fmt"
)

// PropertyKind identifies the variant of a PropertyValue
type PropertyKind string

const (
	PropertyString     PropertyKind = "string"
	PropertyNumber     PropertyKind = "number"
	PropertyStructured PropertyKind = "structured"
)

// PropertyValue represents a configured property value.
// Strings and numbers are stored as they are, anything else is stored as
// its JSON text
type PropertyValue interface {
	Kind() PropertyKind
	// Normalized returns the value as it is stored in configuredProperties
	Normalized() any
}

// StringValue is a plain text property
type StringValue string

func (s StringValue) Kind() PropertyKind {
	return PropertyString
}

func (s StringValue) Normalized() any {
	return string(s)
}

// NumberValue is a numeric property, kept in its original Go type
type NumberValue struct {
	Value any
}

func (n NumberValue) Kind() PropertyKind {
	return PropertyNumber
}

func (n NumberValue) Normalized() any {
	return n.Value
}

// StructuredValue is any other value: maps, lists, booleans, nil
type StructuredValue struct {
	Value any
}

func (s StructuredValue) Kind() PropertyKind {
	return PropertyStructured
}

func (s StructuredValue) Normalized() any {
	data, err := json.Marshal(s.Value)
	if err != nil {
		return fmt.Sprintf("%v", s.Value)
	}
	return string(data)
}

// ParsePropertyValue classifies a raw value into its variant
func ParsePropertyValue(v any) PropertyValue {
	switch t := v.(type) {
	case PropertyValue:
		return t
	case string:
		return StringValue(t)
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return NumberValue{Value: t}
	default:
		return StructuredValue{Value: t}
	}
}

// NormalizeValue returns the stored form of a raw value
func NormalizeValue(v any) any {
	return ParsePropertyValue(v).Normalized()
}

// NormalizeProperties returns a new map holding the normalized form of
// every value in props
func NormalizeProperties(props map[string]any) map[string]any {
	res := make(map[string]any, len(props))
	for k, v := range props {
		res[k] = NormalizeValue(v)
	}
	return res
}
