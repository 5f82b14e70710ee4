package models

import (
	"errors"
	"fmt"
)

var (
	ErrMissingKind     = errors.New("command kind missing")
	ErrInvalidPayload  = errors.New("invalid command payload")
	ErrNoIntegration   = errors.New("no integration loaded")
	ErrInvalidPosition = errors.New("invalid position")
)

type InvalidPositionError struct {
	Position int
	Length   int
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("%s: %d (flow has %d steps)", ErrInvalidPosition, e.Position, e.Length)
}

func (e *InvalidPositionError) Unwrap() error {
	return ErrInvalidPosition
}

func ErrPosition(position, length int) error {
	return &InvalidPositionError{Position: position, Length: length}
}

type UnknownCommandError struct {
	Kind string
}

func (e *UnknownCommandError) Error() string {
	return "unknown command kind: " + e.Kind
}

func ErrUnknownCommand(kind string) error {
	return &UnknownCommandError{Kind: kind}
}
