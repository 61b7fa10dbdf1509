package memory

import (
	"context"
	"testing"

	"github.com/aldress/medallion/pipeline/blobstore"
	"github.com/aldress/medallion/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.EnsureContainer(ctx, "silver"))

	metadata := map[string]string{"layer": "silver"}
	require.NoError(t, store.Put(ctx, "silver", "orders_silver.csv", []byte("a,b\n1,2\n"), metadata, true))

	data, err := store.Get(ctx, "silver", "orders_silver.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestStore_GetMissingBlob(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.EnsureContainer(ctx, "silver"))

	_, err := store.Get(ctx, "silver", "missing.csv")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, blobstore.ErrBlobNotFound))
}

func TestStore_MissingContainer(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.List(ctx, "nope", "")
	assert.True(t, errors.IsCode(err, blobstore.ErrContainerNotFound))

	err = store.Put(ctx, "nope", "x.csv", nil, nil, true)
	assert.True(t, errors.IsCode(err, blobstore.ErrContainerNotFound))
}

func TestStore_PutWithoutOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.EnsureContainer(ctx, "gold"))

	require.NoError(t, store.Put(ctx, "gold", "kpis/daily_revenue.csv", []byte("v1"), nil, false))

	err := store.Put(ctx, "gold", "kpis/daily_revenue.csv", []byte("v2"), nil, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, blobstore.ErrBlobExists))

	// overwrite=true replaces last-write-wins
	require.NoError(t, store.Put(ctx, "gold", "kpis/daily_revenue.csv", []byte("v3"), nil, true))
	data, err := store.Get(ctx, "gold", "kpis/daily_revenue.csv")
	require.NoError(t, err)
	assert.Equal(t, "v3", string(data))
}

func TestStore_ListByPrefixSorted(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.EnsureContainer(ctx, "gold"))

	for _, name := range []string{
		"facts/fact_orders.csv",
		"dimensions/dim_time.csv",
		"dimensions/dim_customer.csv",
		"kpis/daily_revenue.csv",
	} {
		require.NoError(t, store.Put(ctx, "gold", name, []byte("x"), nil, true))
	}

	infos, err := store.List(ctx, "gold", "dimensions/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "dimensions/dim_customer.csv", infos[0].Name)
	assert.Equal(t, "dimensions/dim_time.csv", infos[1].Name)
	assert.Equal(t, int64(1), infos[0].Size)
	assert.False(t, infos[0].LastModified.IsZero())
}

func TestStore_MetadataIsCopied(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.EnsureContainer(ctx, "gold"))

	metadata := map[string]string{"table_type": "dimension"}
	require.NoError(t, store.Put(ctx, "gold", "dimensions/dim_vehicle.csv", []byte("x"), metadata, true))
	metadata["table_type"] = "mutated"

	infos, err := store.List(ctx, "gold", "dimensions/")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "dimension", infos[0].Metadata["table_type"])
}
