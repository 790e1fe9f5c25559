package addressapi_test

import (
	"context"
	"testing"

	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock(t *testing.T) {
	ctx := context.Background()

	t.Run("Seeded list", func(t *testing.T) {
		api := addressapi.NewMock()

		addresses, err := api.ListAddresses(ctx, "customer@example.com")

		require.NoError(t, err)
		require.Len(t, addresses, 2)
		assert.Equal(t, "addr-1", addresses[0].ID)
		assert.Equal(t, "Via Roma 12", addresses[0].Street)
		assert.Equal(t, "addr-2", addresses[1].ID)
		assert.Equal(t, "20123", addresses[1].Zip)
	})

	t.Run("List returns a copy", func(t *testing.T) {
		api := addressapi.NewMock()

		addresses, err := api.ListAddresses(ctx, "c")
		require.NoError(t, err)
		addresses[0].Street = "changed"

		again, err := api.ListAddresses(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, "Via Roma 12", again[0].Street)
	})

	t.Run("Create appends with a synthesized id", func(t *testing.T) {
		api := addressapi.NewMock()

		created, err := api.CreateAddress(ctx, "c", addressapi.AddressInput{
			Street: "Corso Buenos Aires 1", City: "Milano", Zip: "20124", Country: "Italia",
		})

		require.NoError(t, err)
		assert.Regexp(t, `^addr-\d+-\d{1,3}$`, created.ID)

		addresses, err := api.ListAddresses(ctx, "c")
		require.NoError(t, err)
		require.Len(t, addresses, 3)
		assert.Equal(t, created.ID, addresses[2].ID)
	})

	t.Run("Update replaces the matching entry", func(t *testing.T) {
		api := addressapi.NewMock()

		updated, err := api.UpdateAddress(ctx, "addr-2", addressapi.AddressInput{
			Street: "Via Torino 10", City: "Milano", Zip: "20123", Country: "Italia",
		})

		require.NoError(t, err)
		assert.Equal(t, "addr-2", updated.ID)
		assert.Equal(t, "Via Torino 10", updated.Street)
	})

	t.Run("Update of unknown address", func(t *testing.T) {
		api := addressapi.NewMock()

		updated, err := api.UpdateAddress(ctx, "addr-404", addressapi.AddressInput{Street: "x", City: "y", Zip: "z", Country: "w"})

		assert.Nil(t, updated)
		var apiErr *addressapi.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, addressapi.CodeAddressNotFound, apiErr.Code)
	})

	t.Run("Delivery is always synced", func(t *testing.T) {
		api := addressapi.NewMock()

		resp, err := api.SetOrderDeliveryAddress(ctx, "ECOMMSO180809", "addr-2", "")

		require.NoError(t, err)
		assert.Equal(t, addressapi.SyncSynced, resp.Status)
		assert.Equal(t, "addr-2", resp.AddressID)
	})
}

func TestNew(t *testing.T) {
	assert.IsType(t, &addressapi.Mock{}, addressapi.New(addressapi.Options{}))
	assert.IsType(t, &addressapi.HTTPClient{}, addressapi.New(addressapi.Options{UseRealAPI: true}))
}
