package domain

import (
	"encoding/json"
	"fmt"
)

// OrderEnvelope is the transport wrapper around exactly one of a buy order or
// a sell order. It is used in both directions: client order submissions and
// broker status update notifications carry the same shape.
//
// An envelope with neither or both variants populated is malformed.
type OrderEnvelope struct {
	BuyOrder  *Order `json:"buyOrder,omitempty"`
	SellOrder *Order `json:"sellOrder,omitempty"`
}

// MalformedEnvelopeError describes an envelope that failed validation or
// could not be parsed at all.
type MalformedEnvelopeError struct {
	Reason string
	Err    error
}

func (e *MalformedEnvelopeError) Error() string {
	return "malformed order envelope: " + e.Reason
}

// Unwrap exposes the underlying decode error, so an UnknownStatusCodeError
// inside a status update payload stays matchable with errors.As.
func (e *MalformedEnvelopeError) Unwrap() error {
	return e.Err
}

// Validate checks the exactly-one-variant invariant.
func (e *OrderEnvelope) Validate() error {
	switch {
	case e.BuyOrder == nil && e.SellOrder == nil:
		return &MalformedEnvelopeError{Reason: "no order variant populated"}
	case e.BuyOrder != nil && e.SellOrder != nil:
		return &MalformedEnvelopeError{Reason: "both order variants populated"}
	}
	return nil
}

// Order returns the populated variant. Callers must Validate first; a
// malformed envelope yields nil.
func (e *OrderEnvelope) Order() *Order {
	if e.BuyOrder != nil {
		return e.BuyOrder
	}
	return e.SellOrder
}

// Side returns the direction implied by the populated variant.
func (e *OrderEnvelope) Side() Side {
	if e.BuyOrder != nil {
		return SideBuy
	}
	return SideSell
}

// DecodeEnvelope parses a raw payload into a validated envelope. Parse
// failures and invariant violations both come back as MalformedEnvelopeError
// so callers have a single fatal-for-this-message error to check.
func DecodeEnvelope(raw []byte) (*OrderEnvelope, error) {
	var env OrderEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &MalformedEnvelopeError{Reason: fmt.Sprintf("parse: %v", err), Err: err}
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// EncodeEnvelope serializes an envelope for the wire.
func EncodeEnvelope(env *OrderEnvelope) ([]byte, error) {
	return json.Marshal(env)
}
