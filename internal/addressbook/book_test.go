package addressbook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/addressbook"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBook_Activate(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetches once and selects the first address", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		api.On("ListAddresses", mock.Anything, "mario@example.com").Return([]addressapi.Address{
			{ID: "addr-1", Street: "Via Roma 1"},
			{ID: "addr-2", Street: "Via Verdi 2"},
		}, nil).Once()

		book := addressbook.New(api, "mario@example.com", nil)

		require.NoError(t, book.Activate(ctx))
		require.NoError(t, book.Activate(ctx))

		assert.Len(t, book.Addresses(), 2)
		assert.Equal(t, "addr-1", book.SelectedID())
		assert.False(t, book.Loading())
		assert.Nil(t, book.Err())
	})

	t.Run("No customer means no fetch", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		book := addressbook.New(api, "", nil)

		require.NoError(t, book.Activate(ctx))
		assert.Empty(t, book.Addresses())
		api.AssertNotCalled(t, "ListAddresses", mock.Anything, mock.Anything)
	})

	t.Run("Empty list leaves nothing selected", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		api.On("ListAddresses", mock.Anything, "c").Return([]addressapi.Address{}, nil).Once()

		book := addressbook.New(api, "c", nil)
		require.NoError(t, book.Activate(ctx))
		assert.Equal(t, "", book.SelectedID())
	})

	t.Run("Failure is stored as a normalized error", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		api.On("ListAddresses", mock.Anything, "c").Return(nil, errors.New("dial tcp: refused")).Once()

		book := addressbook.New(api, "c", nil)
		err := book.Activate(ctx)

		require.Error(t, err)
		require.NotNil(t, book.Err())
		assert.Equal(t, addressapi.CodeUnknown, book.Err().Code)
		assert.Equal(t, "Si e' verificato un errore.", book.ErrorMessage())
	})
}

func TestBook_Refresh(t *testing.T) {
	ctx := context.Background()
	api := mocks.NewMockAPI(t)
	api.On("ListAddresses", mock.Anything, "c").Return([]addressapi.Address{{ID: "a"}, {ID: "b"}}, nil).Twice()

	book := addressbook.New(api, "c", nil)
	require.NoError(t, book.Activate(ctx))

	book.Select("b")
	assert.Equal(t, "b", book.SelectedID())

	require.NoError(t, book.Refresh(ctx))
	assert.Equal(t, "a", book.SelectedID())
}

func TestBook_Create(t *testing.T) {
	ctx := context.Background()
	input := addressapi.AddressInput{Street: "Via Nuova 3", City: "Torino", Zip: "10100", Country: "Italia"}

	t.Run("Appends and selects the created address", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		api.On("ListAddresses", mock.Anything, "c").Return([]addressapi.Address{{ID: "addr-1"}}, nil).Once()
		api.On("CreateAddress", mock.Anything, "c", input).Return(&addressapi.Address{ID: "addr-9", Street: input.Street}, nil).Once()

		book := addressbook.New(api, "c", nil)
		require.NoError(t, book.Activate(ctx))

		created, err := book.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "addr-9", created.ID)
		assert.Len(t, book.Addresses(), 2)
		assert.Equal(t, "addr-9", book.SelectedID())
	})

	t.Run("Without a customer it is forbidden", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		book := addressbook.New(api, "", nil)

		_, err := book.Create(ctx, input)

		var apiErr *addressapi.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, addressapi.CodeForbidden, apiErr.Code)
		assert.Equal(t, "Cliente non disponibile.", apiErr.Message)
	})

	t.Run("Backend error is passed through", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		api.On("CreateAddress", mock.Anything, "c", input).
			Return(nil, &addressapi.APIError{Code: addressapi.CodeInvalidZip, Message: "zip"}).Once()

		book := addressbook.New(api, "c", nil)
		_, err := book.Create(ctx, input)

		var apiErr *addressapi.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, addressapi.CodeInvalidZip, apiErr.Code)
		assert.Equal(t, "CAP non valido.", addressbook.Message(apiErr))
		assert.Empty(t, book.Addresses())
	})
}

func TestBook_Update(t *testing.T) {
	ctx := context.Background()
	input := addressapi.AddressInput{Street: "Via Cambiata 4", City: "Milano", Zip: "20100", Country: "Italia"}

	api := mocks.NewMockAPI(t)
	api.On("ListAddresses", mock.Anything, "c").Return([]addressapi.Address{{ID: "a", Street: "old"}, {ID: "b"}}, nil).Once()
	api.On("UpdateAddress", mock.Anything, "a", input).Return(&addressapi.Address{ID: "a", Street: input.Street}, nil).Once()

	book := addressbook.New(api, "c", nil)
	require.NoError(t, book.Activate(ctx))

	_, err := book.Update(ctx, "a", input)
	require.NoError(t, err)

	addresses := book.Addresses()
	assert.Equal(t, "Via Cambiata 4", addresses[0].Street)
	assert.Equal(t, "b", addresses[1].ID)
}

func TestBook_SetDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the reported status", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		api.On("SetOrderDeliveryAddress", mock.Anything, "ORD1", "a", "").
			Return(&addressapi.SyncResponse{Status: addressapi.SyncFailed, LastSyncError: "odoo down"}, nil).Once()

		book := addressbook.New(api, "c", nil)
		resp, err := book.SetDelivery(ctx, "ORD1", "a", "")

		require.NoError(t, err)
		assert.Equal(t, addressapi.SyncFailed, resp.Status)
		assert.Equal(t, addressapi.SyncFailed, book.SyncStatus())
		assert.Equal(t, "odoo down", book.SyncErrorMessage())
	})

	t.Run("Error leaves the status untouched", func(t *testing.T) {
		api := mocks.NewMockAPI(t)
		api.On("SetOrderDeliveryAddress", mock.Anything, "ORD1", "a", "").
			Return(nil, &addressapi.APIError{Code: addressapi.CodeOrderLocked, Message: "locked"}).Once()

		book := addressbook.New(api, "c", nil)
		_, err := book.SetDelivery(ctx, "ORD1", "a", "")

		require.Error(t, err)
		assert.Equal(t, addressapi.SyncStatus(""), book.SyncStatus())
	})
}

func TestMapError(t *testing.T) {
	t.Run("Keeps well-formed backend errors", func(t *testing.T) {
		in := &addressapi.APIError{Code: addressapi.CodeAddressExists, Message: "exists"}
		assert.Same(t, in, addressbook.MapError(in))
	})

	t.Run("Normalizes everything else", func(t *testing.T) {
		out := addressbook.MapError(&addressapi.APIError{Code: "", Message: ""})
		assert.Equal(t, addressapi.CodeUnknown, out.Code)
		assert.Equal(t, "Si e' verificato un errore.", out.Message)
	})

	t.Run("Unknown code falls back to the backend message", func(t *testing.T) {
		msg := addressbook.Message(&addressapi.APIError{Code: "WEIRD", Message: "qualcosa"})
		assert.Equal(t, "qualcosa", msg)
	})

	t.Run("Localized messages", func(t *testing.T) {
		cases := map[addressapi.ErrorCode]string{
			addressapi.CodeInvalidPhone:    "Numero di telefono non valido.",
			addressapi.CodeRequiredField:   "Completa i campi richiesti.",
			addressapi.CodeAddressNotFound: "Indirizzo non disponibile.",
			addressapi.CodeOrderLocked:     "L'ordine non puo' essere modificato.",
			addressapi.CodeForbidden:       "Operazione non consentita.",
			addressapi.CodeNotImplemented:  "Servizio non disponibile.",
		}
		for code, want := range cases {
			assert.Equal(t, want, addressbook.Message(&addressapi.APIError{Code: code, Message: "x"}))
		}
	})
}
