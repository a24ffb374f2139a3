package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/angelmondragon/studio-backend/pkg/config"
	"github.com/angelmondragon/studio-backend/pkg/logger"
	"google.golang.org/api/option"
)

const defaultDatabase = "(default)"

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errClientNotInitialized = errors.New("firestore client not initialized")
)

// Client wraps the Firestore connection used by the document store backend.
type Client struct {
	fs       *firestore.Client
	database string
}

// New connects to Firestore. The default database goes through the Firebase
// app; a named database is opened directly.
func New(ctx context.Context, gcp config.GCPConfig, cfg config.DatastoreConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	database := strings.TrimSpace(cfg.FirestoreDatabase)
	if database == "" {
		database = defaultDatabase
	}
	opts := clientOptions(gcp)

	var (
		fs  *firestore.Client
		err error
	)
	if database == defaultDatabase {
		var app *firebase.App
		app, err = firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating firebase app: %w", err)
		}
		fs, err = app.Firestore(ctx)
	} else {
		fs, err = firestore.NewClientWithDatabase(ctx, projectID, database, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	if logg != nil {
		ctx = logg.WithField(ctx, "firestore_database", database)
		logg.Info(ctx, "firestore client initialized")
	}
	return &Client{fs: fs, database: database}, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.CredentialsFile))
	}
	return opts
}

// Firestore returns the underlying client.
func (c *Client) Firestore() *firestore.Client {
	if c == nil {
		return nil
	}
	return c.fs
}

// Ping lists the first collection to confirm connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.fs == nil {
		return errClientNotInitialized
	}
	iter := c.fs.Collections(ctx)
	if _, err := iter.Next(); err != nil && !isDone(err) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *Client) Close() error {
	if c == nil || c.fs == nil {
		return nil
	}
	return c.fs.Close()
}
