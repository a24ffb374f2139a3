package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/studio-backend/api/controllers"
	"github.com/angelmondragon/studio-backend/internal/catalog"
	"github.com/angelmondragon/studio-backend/internal/consumption"
	"github.com/angelmondragon/studio-backend/internal/docstore"
	"github.com/angelmondragon/studio-backend/internal/purchases"
	"github.com/angelmondragon/studio-backend/internal/users"
	stripewebhook "github.com/angelmondragon/studio-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/studio-backend/pkg/config"
	"github.com/angelmondragon/studio-backend/pkg/db"
	"github.com/angelmondragon/studio-backend/pkg/firestore"
	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/angelmondragon/studio-backend/pkg/migrate"
)

// backend bundles the repositories of the configured datastore.
type backend struct {
	name   string
	pinger controllers.Pinger
	closer func() error

	users       stripewebhook.UserFinder
	catalog     stripewebhook.CatalogReader
	purchases   stripewebhook.PurchaseStore
	consumption stripewebhook.ConsumptionStore

	purchaseLister    controllers.PurchaseLister
	consumptionLister controllers.ConsumptionLister
}

func openBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backend, error) {
	switch cfg.Datastore.Kind() {
	case config.DatastoreFirestore:
		client, err := firestore.New(ctx, cfg.GCP, cfg.Datastore, logg)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
		fs := client.Firestore()
		purchaseStore := docstore.NewPurchases(fs, nil)
		consumptionStore := docstore.NewConsumption(fs, nil)
		return &backend{
			name:              config.DatastoreFirestore,
			pinger:            client,
			closer:            client.Close,
			users:             docstore.NewUsers(fs),
			catalog:           docstore.NewCatalog(fs),
			purchases:         purchaseStore,
			consumption:       consumptionStore,
			purchaseLister:    purchaseStore,
			consumptionLister: consumptionStore,
		}, nil

	default:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("dev migrations: %w", err)
		}
		conn := client.DB()
		purchaseRepo := purchases.NewRepository(conn)
		consumptionRepo := consumption.NewRepository(conn)
		return &backend{
			name:              config.DatastorePostgres,
			pinger:            client,
			closer:            client.Close,
			users:             users.NewRepository(conn),
			catalog:           catalog.NewRepository(conn),
			purchases:         purchaseRepo,
			consumption:       consumptionRepo,
			purchaseLister:    purchaseRepo,
			consumptionLister: consumptionRepo,
		}, nil
	}
}

func (b *backend) close(ctx context.Context, logg *logger.Logger) {
	if b == nil || b.closer == nil {
		return
	}
	if err := b.closer(); err != nil {
		logg.Error(ctx, fmt.Sprintf("error closing %s", b.name), err)
	}
}
