// Package addressbook holds the per-session view of a customer's delivery addresses:
// the fetched list, the current selection and the last delivery sync status.
package addressbook

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/metrics"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
)

var errorMessages = map[addressapi.ErrorCode]string{
	addressapi.CodeInvalidZip:      "CAP non valido.",
	addressapi.CodeInvalidPhone:    "Numero di telefono non valido.",
	addressapi.CodeRequiredField:   "Completa i campi richiesti.",
	addressapi.CodeAddressNotFound: "Indirizzo non disponibile.",
	addressapi.CodeAddressExists:   "L'indirizzo esiste gia'.",
	addressapi.CodeOrderLocked:     "L'ordine non puo' essere modificato.",
	addressapi.CodeForbidden:       "Operazione non consentita.",
	addressapi.CodeNotImplemented:  "Servizio non disponibile.",
	addressapi.CodeUnknown:         "Si e' verificato un errore.",
}

// MapError normalizes anything that is not a backend error body to UNKNOWN.
func MapError(err error) *addressapi.APIError {
	var apiErr *addressapi.APIError
	if errors.As(err, &apiErr) && apiErr.Code != "" && apiErr.Message != "" {
		return apiErr
	}

	return &addressapi.APIError{Code: addressapi.CodeUnknown, Message: errorMessages[addressapi.CodeUnknown]}
}

// Message returns the customer-facing text for an address error.
func Message(apiErr *addressapi.APIError) string {
	if apiErr == nil {
		return ""
	}
	if msg, ok := errorMessages[apiErr.Code]; ok {
		return msg
	}

	return apiErr.Message
}

type Book struct {
	mu sync.RWMutex

	api        addressapi.API
	customerID string
	logger     *slog.Logger

	activated  bool
	addresses  []addressapi.Address
	selectedID string
	loading    bool
	err        *addressapi.APIError
	syncStatus addressapi.SyncStatus
	syncError  string
}

func New(api addressapi.API, customerID string, logger *slog.Logger) *Book {
	if logger == nil {
		logger = slog.Default()
	}

	return &Book{api: api, customerID: customerID, logger: logger}
}

// Activate fetches the list the first time it is called with a customer id.
func (b *Book) Activate(ctx context.Context) error {
	b.mu.Lock()
	if b.customerID == "" || b.activated {
		b.mu.Unlock()
		return nil
	}
	b.activated = true
	b.mu.Unlock()

	return b.load(ctx)
}

// Refresh re-fetches the list, resetting the selection to the first address.
func (b *Book) Refresh(ctx context.Context) error {
	return b.load(ctx)
}

func (b *Book) load(ctx context.Context) error {
	if b.customerID == "" {
		return nil
	}

	b.mu.Lock()
	b.loading = true
	b.err = nil
	b.syncStatus = ""
	b.syncError = ""
	b.mu.Unlock()

	addresses, err := b.api.ListAddresses(ctx, b.customerID)
	metrics.ObserveAddressCall("list", err)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.loading = false

	if err != nil {
		b.err = MapError(err)
		b.logger.Warn("Address list fetch failed", slog.String("code", string(b.err.Code)))
		return b.err
	}

	b.addresses = addresses
	b.selectedID = ""
	if len(addresses) > 0 {
		b.selectedID = addresses[0].ID
	}

	b.logger.Info("Address list fetched", slog.Int("count", len(addresses)))

	return nil
}

// Select is optimistic and local; persistence happens through SetDelivery.
func (b *Book) Select(addressID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.selectedID = addressID
}

func (b *Book) Create(ctx context.Context, payload addressapi.AddressInput) (*addressapi.Address, error) {
	if b.customerID == "" {
		return nil, &addressapi.APIError{Code: addressapi.CodeForbidden, Message: "Cliente non disponibile."}
	}

	address, err := b.api.CreateAddress(ctx, b.customerID, payload)
	metrics.ObserveAddressCall("create", err)
	if err != nil {
		return nil, MapError(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.addresses = append(b.addresses, *address)
	b.selectedID = address.ID

	return address, nil
}

func (b *Book) Update(ctx context.Context, addressID string, payload addressapi.AddressInput) (*addressapi.Address, error) {
	address, err := b.api.UpdateAddress(ctx, addressID, payload)
	metrics.ObserveAddressCall("update", err)
	if err != nil {
		return nil, MapError(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.addresses {
		if b.addresses[i].ID == addressID {
			b.addresses[i] = *address
		}
	}

	return address, nil
}

// SetDelivery stores the reported sync status. It never retries on its own.
func (b *Book) SetDelivery(ctx context.Context, orderID, addressID, deliveryInstructions string) (*addressapi.SyncResponse, error) {
	resp, err := b.api.SetOrderDeliveryAddress(ctx, orderID, addressID, deliveryInstructions)
	metrics.ObserveAddressCall("set_delivery", err)
	if err != nil {
		return nil, MapError(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.syncStatus = resp.Status
	b.syncError = resp.LastSyncError

	return resp, nil
}

func (b *Book) CustomerID() string {
	return b.customerID
}

func (b *Book) Addresses() []addressapi.Address {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]addressapi.Address, len(b.addresses))
	copy(out, b.addresses)

	return out
}

func (b *Book) SelectedID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.selectedID
}

func (b *Book) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.loading
}

func (b *Book) Err() *addressapi.APIError {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.err
}

func (b *Book) ErrorMessage() string {
	return Message(b.Err())
}

func (b *Book) SyncStatus() addressapi.SyncStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.syncStatus
}

func (b *Book) SyncErrorMessage() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.syncError
}
