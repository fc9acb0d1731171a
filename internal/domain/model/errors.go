package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidData marks local source data that cannot produce a usable value.
var ErrInvalidData = errors.New("invalid local data")

type InvalidDataError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidDataError) Error() string {
	if e == nil {
		return ErrInvalidData.Error()
	}
	parts := []string{ErrInvalidData.Error()}
	if field := strings.TrimSpace(e.Field); field != "" {
		parts = append(parts, "field="+field)
	}
	parts = append(parts, fmt.Sprintf("value=%q", e.Value))
	if reason := strings.TrimSpace(e.Reason); reason != "" {
		parts = append(parts, reason)
	}
	return strings.Join(parts, " ")
}

func (e *InvalidDataError) Is(target error) bool {
	return target == ErrInvalidData
}

func NewInvalidData(field, value, reason string) error {
	return &InvalidDataError{Field: field, Value: value, Reason: reason}
}
