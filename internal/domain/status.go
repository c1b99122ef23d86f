package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StatusCode is the outcome classification of an order.
//
// The wire encoding is a single character, matching the exchange simulator's
// format: "P" pending, "S" success, "E" error. Decoding is case-insensitive
// and strictly fallible: an unrecognized code is an error, never a default.
type StatusCode string

const (
	// StatusPending is the default status for every newly created order.
	StatusPending StatusCode = "P"
	// StatusSuccess marks an executed order. Terminal.
	StatusSuccess StatusCode = "S"
	// StatusError marks a rejected or failed order. Terminal.
	StatusError StatusCode = "E"
)

// UnknownStatusCodeError is returned when a status code on the wire does not
// match any known value.
type UnknownStatusCodeError struct {
	Code string
}

func (e *UnknownStatusCodeError) Error() string {
	return fmt.Sprintf("unknown order status code %q", e.Code)
}

// ParseStatusCode decodes a wire status code. Matching is case-insensitive
// against exactly the three known codes.
func ParseStatusCode(code string) (StatusCode, error) {
	switch strings.ToUpper(code) {
	case string(StatusPending):
		return StatusPending, nil
	case string(StatusSuccess):
		return StatusSuccess, nil
	case string(StatusError):
		return StatusError, nil
	default:
		return "", &UnknownStatusCodeError{Code: code}
	}
}

// String returns the wire encoding.
func (s StatusCode) String() string {
	return string(s)
}

// IsTerminal reports whether the status can no longer change. Pending is the
// only non-terminal status.
func (s StatusCode) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// UnmarshalJSON decodes the single-character wire form and rejects unknown
// codes instead of coercing them. Only a JSON string is accepted; null and
// numeric tokens fail before the code check.
func (s *StatusCode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return &UnknownStatusCodeError{Code: string(data)}
	}
	parsed, err := ParseStatusCode(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalJSON encodes the status as its wire character.
func (s StatusCode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + string(s) + `"`), nil
}
