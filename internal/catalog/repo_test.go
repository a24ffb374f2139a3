package catalog

import (
	"context"
	"testing"

	"github.com/angelmondragon/studio-backend/pkg/db"
	"github.com/angelmondragon/studio-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/studio-backend/pkg/db/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListServicesOrdersByDisplayOrder(t *testing.T) {
	conn, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Service{}))
	r := NewRepository(conn)
	ctx := context.Background()

	seed := []models.Service{
		{ID: "svc_b", Name: "B", Category: "Audio", SortOrder: 2},
		{ID: "svc_a", Name: "A", Category: "Design", SortOrder: 1, LeftOfferings: dbtypes.OfferingList{{Title: "Logo Design", Price: "price_abc"}}},
		{ID: "svc_c", Name: "C", Category: "Video", SortOrder: 3},
	}
	for i := range seed {
		require.NoError(t, conn.Create(&seed[i]).Error)
	}

	services, err := r.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 3)
	assert.Equal(t, []string{"svc_a", "svc_b", "svc_c"}, []string{services[0].ID, services[1].ID, services[2].ID})
	require.Len(t, services[0].LeftOfferings, 1)
	assert.Equal(t, "price_abc", services[0].LeftOfferings[0].Price)
	assert.Empty(t, services[1].RightOfferings)
}
