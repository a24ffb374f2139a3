package stripewebhook

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "whsec_test_secret_value"

func signedEvent(t *testing.T, eventType string, object string) []byte {
	t.Helper()
	return []byte(`{"id":"evt_test","object":"event","type":"` + eventType + `","api_version":"2025-01-27","created":1700000000,"data":{"object":` + object + `}}`)
}

func TestVerifierAcceptsValidSignature(t *testing.T) {
	payload := signedEvent(t, "charge.refunded", `{"id":"ch_1","object":"charge"}`)
	v := NewVerifier(testSecret, 0, true)

	event, err := v.Verify(payload, signHeader(testSecret, payload, time.Now()))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if event.ID != "evt_test" || string(event.Type) != "charge.refunded" {
		t.Fatalf("unexpected event %s %s", event.ID, event.Type)
	}
}

func TestVerifierStringBodyFallbackVerifies(t *testing.T) {
	payload := signedEvent(t, "checkout.session.completed", `{"id":"cs_test_1","object":"checkout.session"}`)
	header := signHeader(testSecret, payload, time.Now())

	raw, source, err := ExtractRawBody(InboundBody{Body: string(payload)})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if source != BodySourceString {
		t.Fatalf("expected string source, got %s", source)
	}
	if _, err := NewVerifier(testSecret, 0, true).Verify(raw, header); err != nil {
		t.Fatalf("verify string body: %v", err)
	}
}

func TestVerifierFailures(t *testing.T) {
	payload := signedEvent(t, "charge.refunded", `{"id":"ch_1","object":"charge"}`)
	valid := signHeader(testSecret, payload, time.Now())

	cases := []struct {
		name    string
		v       *Verifier
		payload []byte
		header  string
		want    error
	}{
		{"payments disabled", NewVerifier(testSecret, 0, false), payload, valid, ErrPaymentsDisabled},
		{"nil verifier", nil, payload, valid, ErrPaymentsDisabled},
		{"missing header", NewVerifier(testSecret, 0, true), payload, "  ", ErrMissingSignature},
		{"missing secret", NewVerifier("", 0, true), payload, valid, ErrMissingSecret},
		{"wrong secret", NewVerifier("whsec_other", 0, true), payload, valid, ErrSignatureInvalid},
		{"tampered body", NewVerifier(testSecret, 0, true), append([]byte(" "), payload...), valid, ErrSignatureInvalid},
		{"stale timestamp", NewVerifier(testSecret, time.Minute, true), payload, signHeader(testSecret, payload, time.Now().Add(-time.Hour)), ErrSignatureInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := tc.v.Verify(tc.payload, tc.header)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if event.ID != "" {
				t.Fatalf("expected no event data on failure")
			}
		})
	}
}

func TestVerifierDistinguishesMissingSecretFromMismatch(t *testing.T) {
	payload := signedEvent(t, "charge.refunded", `{}`)
	header := signHeader(testSecret, payload, time.Now())

	_, missing := NewVerifier("", 0, true).Verify(payload, header)
	_, mismatch := NewVerifier("whsec_nope", 0, true).Verify(payload, header)
	if errors.Is(missing, ErrSignatureInvalid) || errors.Is(mismatch, ErrMissingSecret) {
		t.Fatalf("expected distinct errors, got %v and %v", missing, mismatch)
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("whsec_1234567890"); got != "whsec_12..." {
		t.Fatalf("unexpected redaction %q", got)
	}
	if got := Redact("short"); got != "*****" {
		t.Fatalf("unexpected short redaction %q", got)
	}
	if got := Redact(""); got != "" {
		t.Fatalf("expected empty redaction, got %q", got)
	}
	if strings.Contains(NewVerifier(testSecret, 0, true).SecretPrefix(), "secret_value") {
		t.Fatalf("secret prefix leaked the secret")
	}
}
