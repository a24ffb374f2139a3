package stripewebhook

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

// Verification failures. Each is terminal for the delivery and answered with 400.
var (
	ErrPaymentsDisabled = errors.New("payments not initialized")
	ErrMissingSignature = errors.New("missing stripe-signature header")
	ErrMissingSecret    = errors.New("webhook secret not configured")
	ErrSignatureInvalid = errors.New("signature verification failed")
)

// DefaultSignatureTolerance matches the provider's default replay window.
const DefaultSignatureTolerance = 300 * time.Second

// Verifier checks that a payload was signed by the payment provider.
type Verifier struct {
	secret    string
	tolerance time.Duration
	enabled   bool
}

// NewVerifier builds a verifier. paymentsEnabled is false when no provider API
// key is configured, in which case every payload is refused.
func NewVerifier(secret string, tolerance time.Duration, paymentsEnabled bool) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultSignatureTolerance
	}
	return &Verifier{
		secret:    strings.TrimSpace(secret),
		tolerance: tolerance,
		enabled:   paymentsEnabled,
	}
}

// Verify returns the decoded event only when the signature header matches payload.
func (v *Verifier) Verify(payload []byte, header string) (stripe.Event, error) {
	if v == nil || !v.enabled {
		return stripe.Event{}, ErrPaymentsDisabled
	}
	if strings.TrimSpace(header) == "" {
		return stripe.Event{}, ErrMissingSignature
	}
	if v.secret == "" {
		return stripe.Event{}, ErrMissingSecret
	}

	event, err := webhook.ConstructEventWithOptions(payload, header, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return event, nil
}

// SecretPrefix is the redacted form of the configured secret for logs.
func (v *Verifier) SecretPrefix() string {
	if v == nil {
		return ""
	}
	return Redact(v.secret)
}

// Redact keeps the first eight characters of a secret or signature.
func Redact(value string) string {
	const keep = 8
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= keep {
		return strings.Repeat("*", len(value))
	}
	return value[:keep] + "..."
}
