package stripewebhook

import (
	"encoding/json"
	"errors"
	"fmt"
)

// BodySource names the representation the signed bytes were recovered from.
type BodySource string

const (
	BodySourceRawBuffer    BodySource = "raw_buffer"
	BodySourceRawString    BodySource = "raw_string"
	BodySourceBytes        BodySource = "body_bytes"
	BodySourceString       BodySource = "body_string"
	BodySourceReserialized BodySource = "reserialized"
)

// Degraded reports whether the bytes were rebuilt from a decoded body. Such
// payloads almost never match the provider signature.
func (s BodySource) Degraded() bool {
	return s == BodySourceReserialized
}

var ErrEmptyBody = errors.New("request body is empty")

// InboundBody carries every representation of a request body a transport may
// hand over. RawBuffer is the bytes captured before any decoding middleware.
type InboundBody struct {
	RawBuffer []byte
	RawString *string
	// Body is []byte, json.RawMessage, string, or an already decoded JSON value.
	Body any
}

// ExtractRawBody returns the bytes to verify, preferring in order the raw
// buffer, the raw string, a byte body, a string body, and finally the body
// re-encoded as JSON.
func ExtractRawBody(in InboundBody) ([]byte, BodySource, error) {
	if in.RawBuffer != nil {
		return in.RawBuffer, BodySourceRawBuffer, nil
	}
	if in.RawString != nil {
		return []byte(*in.RawString), BodySourceRawString, nil
	}

	switch body := in.Body.(type) {
	case nil:
		return nil, "", ErrEmptyBody
	case []byte:
		return body, BodySourceBytes, nil
	case json.RawMessage:
		return []byte(body), BodySourceBytes, nil
	case string:
		return []byte(body), BodySourceString, nil
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("re-encode parsed body: %w", err)
		}
		return raw, BodySourceReserialized, nil
	}
}
