package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
)

// AddressAPI serves ListAddresses from the cache and invalidates the
// customer's entry whenever one of their addresses is written.
type AddressAPI struct {
	next   addressapi.API
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	owners map[string]string // address id -> customer id
}

var _ addressapi.API = (*AddressAPI)(nil)

func NewAddressAPI(next addressapi.API, c Cache, ttl time.Duration, logger *slog.Logger) *AddressAPI {
	if logger == nil {
		logger = slog.Default()
	}

	return &AddressAPI{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		owners: make(map[string]string),
	}
}

func (a *AddressAPI) ListAddresses(ctx context.Context, customerID string) ([]addressapi.Address, error) {
	key := AddressListKey(customerID)

	var cached []addressapi.Address

	found, err := a.cache.Get(ctx, key, &cached)
	if err != nil {
		// a broken cache must not take the wizard down
		a.logger.Warn("Address cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	if err == nil && found {
		a.remember(customerID, cached)

		return cached, nil
	}

	list, err := a.next.ListAddresses(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Set(ctx, key, list, a.ttl); err != nil {
		a.logger.Warn("Address cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	a.remember(customerID, list)

	return list, nil
}

func (a *AddressAPI) CreateAddress(ctx context.Context, customerID string, payload addressapi.AddressInput) (*addressapi.Address, error) {
	created, err := a.next.CreateAddress(ctx, customerID, payload)
	if err != nil {
		return nil, err
	}

	a.invalidate(ctx, customerID)

	return created, nil
}

func (a *AddressAPI) UpdateAddress(ctx context.Context, addressID string, payload addressapi.AddressInput) (*addressapi.Address, error) {
	updated, err := a.next.UpdateAddress(ctx, addressID, payload)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	customerID, ok := a.owners[addressID]
	a.mu.Unlock()

	if ok {
		a.invalidate(ctx, customerID)
	}

	return updated, nil
}

func (a *AddressAPI) SetOrderDeliveryAddress(ctx context.Context, orderID, addressID, deliveryInstructions string) (*addressapi.SyncResponse, error) {
	return a.next.SetOrderDeliveryAddress(ctx, orderID, addressID, deliveryInstructions)
}

func (a *AddressAPI) remember(customerID string, list []addressapi.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, addr := range list {
		a.owners[addr.ID] = customerID
	}
}

func (a *AddressAPI) invalidate(ctx context.Context, customerID string) {
	key := AddressListKey(customerID)

	if err := a.cache.Delete(ctx, key); err != nil {
		a.logger.Warn("Address cache invalidation failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
