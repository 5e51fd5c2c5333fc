// Package protocol implements the JSON frame format of the Amino gateway.
//
// Every frame is an object with a numeric type and a payload object:
//
//	{"t": 1000, "o": {...}}
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

const (
	maxFrameSize = 10 * 1024 * 1024 // 10MB max frame size
)

var (
	ErrFrameTooLarge  = errors.New("frame too large")
	ErrMalformedFrame = errors.New("malformed frame")
)

// Frame is a decoded gateway frame. Payload references the input data.
type Frame struct {
	Type    int
	Payload json.RawMessage
	Raw     json.RawMessage
}

type envelope struct {
	Type    int `json:"t"`
	Payload any `json:"o"`
}

// Encode encodes payload as the "o" object of a frame of the given type.
func Encode(frameType int, payload any) ([]byte, error) {
	data, err := json.Marshal(envelope{Type: frameType, Payload: payload})
	if err != nil {
		return nil, err
	}
	if len(data) > maxFrameSize {
		return nil, fmt.Errorf("%w: %d exceeds maximum %d bytes", ErrFrameTooLarge, len(data), maxFrameSize)
	}
	return data, nil
}

// Decode validates data and extracts the frame type and payload without
// decoding the payload itself.
func Decode(data []byte) (Frame, error) {
	if len(data) > maxFrameSize {
		return Frame{}, fmt.Errorf("%w: %d exceeds maximum %d bytes", ErrFrameTooLarge, len(data), maxFrameSize)
	}
	if !gjson.ValidBytes(data) {
		return Frame{}, fmt.Errorf("%w: invalid json", ErrMalformedFrame)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Frame{}, fmt.Errorf("%w: not an object", ErrMalformedFrame)
	}

	t := root.Get("t")
	if t.Type != gjson.Number {
		return Frame{}, fmt.Errorf("%w: missing frame type", ErrMalformedFrame)
	}

	frame := Frame{Type: int(t.Int()), Raw: data}
	if o := root.Get("o"); o.Exists() {
		frame.Payload = payloadBytes(data, o)
	}
	return frame, nil
}

// Unmarshal decodes the frame payload into v.
func (f Frame) Unmarshal(v any) error {
	if len(f.Payload) == 0 {
		return fmt.Errorf("%w: frame %d has no payload", ErrMalformedFrame, f.Type)
	}
	if err := json.Unmarshal(f.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return nil
}

// FirstAction returns o.actions[0] of an action frame.
func (f Frame) FirstAction() string {
	return gjson.GetBytes(f.Payload, "actions.0").String()
}

// NdcID returns o.ndcId, or 0 when the frame carries none.
func (f Frame) NdcID() int {
	return int(gjson.GetBytes(f.Payload, "ndcId").Int())
}

func payloadBytes(data []byte, r gjson.Result) json.RawMessage {
	// Index is zero when the result was not taken from data directly.
	if r.Index > 0 {
		return json.RawMessage(data[r.Index : r.Index+len(r.Raw)])
	}
	return json.RawMessage(r.Raw)
}
