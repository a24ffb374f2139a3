package firestore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/angelmondragon/studio-backend/pkg/config"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewRequiresProject(t *testing.T) {
	if _, err := New(context.Background(), config.GCPConfig{}, config.DatastoreConfig{}, nil); !errors.Is(err, errProjectIDRequired) {
		t.Fatalf("expected project id error, got %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	if got := clientOptions(config.GCPConfig{}); len(got) != 0 {
		t.Fatalf("expected no options, got %d", len(got))
	}
	if got := clientOptions(config.GCPConfig{CredentialsJSON: "{}", CredentialsFile: "/tmp/creds.json"}); len(got) != 1 {
		t.Fatalf("expected one credentials option, got %d", len(got))
	}
}

func TestStatusHelpers(t *testing.T) {
	if !IsAlreadyExists(status.Error(codes.AlreadyExists, "exists")) {
		t.Fatalf("expected already exists")
	}
	if IsAlreadyExists(errors.New("plain")) {
		t.Fatalf("plain error is not already exists")
	}
	if !IsNotFound(status.Error(codes.NotFound, "missing")) {
		t.Fatalf("expected not found")
	}
	if !isDone(fmt.Errorf("wrapped: %w", iterator.Done)) {
		t.Fatalf("expected iterator done")
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if c.Firestore() != nil || c.Close() != nil {
		t.Fatalf("expected nil-safe accessors")
	}
	if err := c.Ping(context.Background()); !errors.Is(err, errClientNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
}
