// Package addressapi talks to the backend that owns customer addresses and their
// synchronization with the order-management system.
package addressapi

import (
	"context"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidZip      ErrorCode = "INVALID_ZIP"
	CodeInvalidPhone    ErrorCode = "INVALID_PHONE"
	CodeRequiredField   ErrorCode = "REQUIRED_FIELD"
	CodeAddressExists   ErrorCode = "ADDRESS_EXISTS"
	CodeOrderLocked     ErrorCode = "ORDER_LOCKED"
	CodeForbidden       ErrorCode = "FORBIDDEN"
	CodeUnknown         ErrorCode = "UNKNOWN"
	CodeAddressNotFound ErrorCode = "ADDRESS_NOT_FOUND"
	CodeNotImplemented  ErrorCode = "NOT_IMPLEMENTED"
)

type SyncStatus string

const (
	SyncPending SyncStatus = "PENDING"
	SyncSyncing SyncStatus = "SYNCING"
	SyncSynced  SyncStatus = "SYNCED"
	SyncFailed  SyncStatus = "FAILED"
)

type Address struct {
	ID                string `json:"id"`
	Street            string `json:"street"`
	City              string `json:"city"`
	Zip               string `json:"zip"`
	Country           string `json:"country"`
	Label             string `json:"label,omitempty"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Email             string `json:"email,omitempty"`
	IsDefaultShipping bool   `json:"isDefaultShipping,omitempty"`
	IsBilling         bool   `json:"isBilling,omitempty"`
	OdooID            string `json:"odooId,omitempty"`
	UpdatedAt         string `json:"updatedAt,omitempty"`
}

type AddressInput struct {
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	Country   string `json:"country" validate:"required"`
	Label     string `json:"label,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

// SyncResponse is informational: the backend drives the actual synchronization.
type SyncResponse struct {
	Status            SyncStatus `json:"status"`
	AddressID         string     `json:"addressId"`
	JobID             string     `json:"jobId,omitempty"`
	LastSyncError     string     `json:"lastSyncError,omitempty"`
	RetryAfterSeconds int        `json:"retryAfterSeconds,omitempty"`
}

// APIError mirrors the backend error body {code, message, fields?}.
type APIError struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Status  int               `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// API is implemented by the in-memory mock and by the HTTP client.
type API interface {
	// ListAddresses returns the canonical address list for a customer.
	ListAddresses(ctx context.Context, customerID string) ([]Address, error)
	// CreateAddress only persists the address, it does not touch any order.
	CreateAddress(ctx context.Context, customerID string, payload AddressInput) (*Address, error)
	UpdateAddress(ctx context.Context, addressID string, payload AddressInput) (*Address, error)
	// SetOrderDeliveryAddress may answer with an asynchronous sync status.
	SetOrderDeliveryAddress(ctx context.Context, orderID, addressID, deliveryInstructions string) (*SyncResponse, error)
}

type Options struct {
	UseRealAPI bool
	HTTP       HTTPOptions
}

// New returns the mock or the HTTP implementation. Callers never branch on the flag again.
func New(opts Options) API {
	if opts.UseRealAPI {
		return NewHTTPClient(opts.HTTP)
	}

	return NewMock()
}
