package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DecodeCommand decodes a flat JSON command payload such as
//
//	{"kind": "integration-insert-step", "position": "2"}
//
// position is coerced to an integer from either a number or a numeric
// string. Continuations cannot travel over the wire and are left nil
func DecodeCommand(data []byte) (Command, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidPayload)
	}
	root := gjson.ParseBytes(data)

	kind := root.Get("kind").String()
	if kind == "" {
		return nil, ErrMissingKind
	}

	switch EventType(kind) {
	case EventIntegrationUpdated:
		return IntegrationUpdated{}, nil

	case EventIntegrationNoConnections:
		return IntegrationNoConnections{}, nil

	case EventInsertStep:
		pos, err := decodePosition(root)
		if err != nil {
			return nil, err
		}
		return InsertStep{Position: pos}, nil

	case EventInsertConnection:
		pos, err := decodePosition(root)
		if err != nil {
			return nil, err
		}
		return InsertConnection{Position: pos}, nil

	case EventRemoveStep:
		pos, err := decodePosition(root)
		if err != nil {
			return nil, err
		}
		return RemoveStep{Position: pos}, nil

	case EventSetStep:
		pos, err := decodePosition(root)
		if err != nil {
			return nil, err
		}
		var step *Step
		if err := decodeField(root, "step", &step); err != nil {
			return nil, err
		}
		return SetStep{Position: pos, Step: step}, nil

	case EventSetProperties:
		pos, err := decodePosition(root)
		if err != nil {
			return nil, err
		}
		var props map[string]any
		if err := decodeField(root, "properties", &props); err != nil {
			return nil, err
		}
		return SetProperties{Position: pos, Properties: props}, nil

	case EventSetAction:
		pos, err := decodePosition(root)
		if err != nil {
			return nil, err
		}
		var action *Action
		if err := decodeField(root, "action", &action); err != nil {
			return nil, err
		}
		return SetAction{Position: pos, Action: action}, nil

	case EventSetConnection:
		pos, err := decodePosition(root)
		if err != nil {
			return nil, err
		}
		var conn *Connection
		if err := decodeField(root, "connection", &conn); err != nil {
			return nil, err
		}
		return SetConnection{Position: pos, Connection: conn}, nil

	case EventSetProperty:
		prop := root.Get("property").String()
		if prop == "" {
			return nil, fmt.Errorf("%w: property name missing", ErrInvalidPayload)
		}
		return SetProperty{Property: prop, Value: root.Get("value").Value()}, nil

	case EventSave:
		return Save{ID: root.Get("id").String()}, nil

	default:
		return nil, ErrUnknownCommand(kind)
	}
}

func decodePosition(root gjson.Result) (int, error) {
	res := root.Get("position")
	switch res.Type {
	case gjson.Number:
		return int(res.Int()), nil
	case gjson.String:
		s := strings.TrimSpace(res.Str)
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), nil
		}
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidPosition, res.Str)
	default:
		return 0, fmt.Errorf("%w: position missing", ErrInvalidPosition)
	}
}

func decodeField(root gjson.Result, name string, v any) error {
	res := root.Get(name)
	if !res.Exists() || res.Type == gjson.Null {
		return nil
	}
	if err := json.Unmarshal([]byte(res.Raw), v); err != nil {
		return fmt.Errorf("%w: field '%s': %v", ErrInvalidPayload, name, err)
	}
	return nil
}
