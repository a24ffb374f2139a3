package stripewebhook

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractRawBodyPrecedence(t *testing.T) {
	raw := `{"id":"evt_1"}`
	cases := []struct {
		name   string
		in     InboundBody
		want   string
		source BodySource
	}{
		{"raw buffer wins", InboundBody{RawBuffer: []byte(raw), RawString: strPtr("other"), Body: "other"}, raw, BodySourceRawBuffer},
		{"raw string", InboundBody{RawString: &raw, Body: []byte("other")}, raw, BodySourceRawString},
		{"byte body", InboundBody{Body: []byte(raw)}, raw, BodySourceBytes},
		{"raw message body", InboundBody{Body: json.RawMessage(raw)}, raw, BodySourceBytes},
		{"string body", InboundBody{Body: raw}, raw, BodySourceString},
		{"parsed body", InboundBody{Body: map[string]any{"id": "evt_1"}}, raw, BodySourceReserialized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, source, err := ExtractRawBody(tc.in)
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if source != tc.source {
				t.Fatalf("expected source %s, got %s", tc.source, source)
			}
		})
	}
}

func TestExtractRawBodyEmpty(t *testing.T) {
	if _, _, err := ExtractRawBody(InboundBody{}); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestExtractRawBodyEmptyBufferIsStillPreferred(t *testing.T) {
	got, source, err := ExtractRawBody(InboundBody{RawBuffer: []byte{}, Body: "fallback"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if source != BodySourceRawBuffer || len(got) != 0 {
		t.Fatalf("expected empty raw buffer, got %q from %s", got, source)
	}
}

func TestExtractRawBodyUnencodable(t *testing.T) {
	if _, _, err := ExtractRawBody(InboundBody{Body: make(chan int)}); err == nil {
		t.Fatalf("expected encode error")
	}
}

func TestBodySourceDegraded(t *testing.T) {
	if !BodySourceReserialized.Degraded() {
		t.Fatalf("expected reserialized body to be degraded")
	}
	if BodySourceString.Degraded() || BodySourceRawBuffer.Degraded() {
		t.Fatalf("expected byte-preserving sources not degraded")
	}
}

func strPtr(s string) *string { return &s }
