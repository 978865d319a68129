package customer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptic/internal/document"
	"aptic/pkg/domain"
	"aptic/pkg/platform/sentinel"
)

func TestInMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	record := &Record{
		ID:         "APT-0001",
		EntityType: domain.EntityCompany,
		JoinedAt:   time.Now(),
		Status:     StatusProvisional,
		OriginalDocs: []document.Document{
			{ID: "DOC-A", Type: "KRA PIN Certificate", Status: document.StatusValidated},
		},
	}
	require.NoError(t, store.Save(ctx, record))

	record.Status = StatusFlagged
	record.OriginalDocs[0].Status = document.StatusApproved

	got, err := store.FindByID(ctx, "APT-0001")
	require.NoError(t, err)
	assert.Equal(t, StatusProvisional, got.Status)
	assert.Equal(t, document.StatusValidated, got.OriginalDocs[0].Status)

	got.Status = StatusVerified
	again, err := store.FindByID(ctx, "APT-0001")
	require.NoError(t, err)
	assert.Equal(t, StatusProvisional, again.Status)
}

func TestInMemoryStorePreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for _, id := range []string{"APT-0003", "APT-0001", "APT-0002"} {
		require.NoError(t, store.Save(ctx, &Record{ID: id, EntityType: domain.EntityIndividual}))
	}
	require.NoError(t, store.Save(ctx, &Record{ID: "APT-0001", EntityType: domain.EntityIndividual, Status: StatusVerified}))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "APT-0003", records[0].ID)
	assert.Equal(t, "APT-0001", records[1].ID)
	assert.Equal(t, "APT-0002", records[2].ID)
	assert.Equal(t, StatusVerified, records[1].Status)
}

func TestInMemoryStoreFindMissing(t *testing.T) {
	_, err := NewInMemoryStore().FindByID(context.Background(), "APT-NONE")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
