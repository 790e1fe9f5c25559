package addressapi

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

func seedAddresses() []Address {
	return []Address{
		{ID: "addr-1", Street: "Via Roma 12", City: "Milano", Zip: "20121", Country: "Italia"},
		{ID: "addr-2", Street: "Via Torino 8", City: "Milano", Zip: "20123", Country: "Italia"},
	}
}

// Mock simulates the backend with a process-wide in-memory list.
type Mock struct {
	mu        sync.RWMutex
	addresses []Address
	newID     func() string
}

func NewMock() *Mock {
	return &Mock{
		addresses: seedAddresses(),
		newID: func() string {
			return fmt.Sprintf("addr-%d-%d", time.Now().UnixMilli(), rand.IntN(1000))
		},
	}
}

func (m *Mock) ListAddresses(_ context.Context, _ string) ([]Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Address, len(m.addresses))
	copy(out, m.addresses)

	return out, nil
}

func (m *Mock) CreateAddress(_ context.Context, _ string, payload AddressInput) (*Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	address := fromInput(m.newID(), payload)
	m.addresses = append(m.addresses, address)

	return &address, nil
}

func (m *Mock) UpdateAddress(_ context.Context, addressID string, payload AddressInput) (*Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.addresses {
		if m.addresses[i].ID == addressID {
			m.addresses[i] = merge(m.addresses[i], payload)
			updated := m.addresses[i]
			return &updated, nil
		}
	}

	return nil, &APIError{Code: CodeAddressNotFound, Message: "Indirizzo non trovato."}
}

func (m *Mock) SetOrderDeliveryAddress(_ context.Context, _ string, addressID, _ string) (*SyncResponse, error) {
	return &SyncResponse{Status: SyncSynced, AddressID: addressID}, nil
}

func fromInput(id string, payload AddressInput) Address {
	return Address{
		ID:        id,
		Street:    payload.Street,
		City:      payload.City,
		Zip:       payload.Zip,
		Country:   payload.Country,
		Label:     payload.Label,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
		Email:     payload.Email,
	}
}

// merge overwrites the stored address with the payload, keeping backend-only fields.
func merge(current Address, payload AddressInput) Address {
	next := fromInput(current.ID, payload)
	next.IsDefaultShipping = current.IsDefaultShipping
	next.IsBilling = current.IsBilling
	next.OdooID = current.OdooID
	next.UpdatedAt = current.UpdatedAt

	if next.Label == "" {
		next.Label = current.Label
	}
	if next.FirstName == "" {
		next.FirstName = current.FirstName
	}
	if next.LastName == "" {
		next.LastName = current.LastName
	}
	if next.Phone == "" {
		next.Phone = current.Phone
	}
	if next.Email == "" {
		next.Email = current.Email
	}

	return next
}
