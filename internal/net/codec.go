package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rangefire/rangefire/internal/core/event"
	"github.com/rangefire/rangefire/internal/input"
)

var ErrUnknownKind = errors.New("unknown input kind")

// update is one topic value sent to clients.
// Wire format: {"topic":"ammo","value":{"current":11,"total":12}}
type update struct {
	Topic string `json:"topic"`
	Value any    `json:"value"`
}

// command is one control event sent by a client.
// Wire format: {"kind":"move","x":0,"z":1} or {"kind":"aim","dx":0.1,"dy":0}
type command struct {
	Kind string  `json:"kind"`
	X    float32 `json:"x,omitempty"`
	Z    float32 `json:"z,omitempty"`
	DX   float32 `json:"dx,omitempty"`
	DY   float32 `json:"dy,omitempty"`
}

// EncodeUpdate renders one bus event as a client frame.
func EncodeUpdate(ev event.Event) ([]byte, error) {
	data, err := json.Marshal(update{Topic: ev.Topic, Value: ev.Value})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Topic, err)
	}
	return data, nil
}

// DecodeCommand parses one client frame into an input event.
func DecodeCommand(data []byte) (input.Event, error) {
	var c command
	if err := json.Unmarshal(data, &c); err != nil {
		return input.Event{}, fmt.Errorf("decode command: %w", err)
	}
	kind, ok := input.ParseKind(c.Kind)
	if !ok {
		return input.Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	return input.Event{Kind: kind, X: c.X, Z: c.Z, DX: c.DX, DY: c.DY}, nil
}
