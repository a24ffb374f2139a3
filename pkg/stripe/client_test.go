package stripe

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/studio-backend/pkg/config"
	"github.com/angelmondragon/studio-backend/pkg/logger"
)

func TestNormalizeEnv(t *testing.T) {
	for raw, want := range map[string]string{"": testEnv, " TEST ": testEnv, "Live": liveEnv} {
		got, err := normalizeEnv(raw)
		if err != nil || got != want {
			t.Fatalf("normalizeEnv(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := normalizeEnv("staging"); !errors.Is(err, errInvalidStripeEnv) {
		t.Fatalf("expected invalid env error, got %v", err)
	}
}

func TestValidateAPIKey(t *testing.T) {
	cases := []struct {
		env, key string
		ok       bool
	}{
		{testEnv, "sk_test_123", true},
		{testEnv, "rk_test_123", true},
		{testEnv, "sk_live_123", false},
		{liveEnv, "sk_live_123", true},
		{liveEnv, "sk_test_123", false},
	}
	for _, tc := range cases {
		err := validateAPIKey(tc.env, tc.key)
		if (err == nil) != tc.ok {
			t.Fatalf("validateAPIKey(%s, %s) = %v", tc.env, tc.key, err)
		}
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_abc", Secret: " whsec_1 "}, logger.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.API() == nil || client.Environment() != testEnv || client.SigningSecret() != "whsec_1" {
		t.Fatalf("unexpected client %+v", client)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), config.StripeConfig{}, nil); !errors.Is(err, errAPIKeyRequired) {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestNilClientAccessors(t *testing.T) {
	var c *Client
	if c.API() != nil || c.Environment() != "" || c.SigningSecret() != "" {
		t.Fatalf("expected zero values from nil client")
	}
}
