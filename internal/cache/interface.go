package cache

import (
	"context"
	"strings"
	"time"
)

// Cache stores JSON-encoded values. Get reports a miss as (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const AddressListKeyPrefix = "addresses"

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

// AddressListKey keys a customer's address list. Customer ids are e-mails, so
// case and surrounding blanks are not significant.
func AddressListKey(customerID string) string {
	return Key(AddressListKeyPrefix, strings.ToLower(strings.TrimSpace(customerID)))
}
