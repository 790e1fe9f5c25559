package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is the journal entry written for every confirmed wizard cycle.
type Submission struct {
	ID         uuid.UUID      `json:"id"`
	SessionID  uuid.UUID      `json:"session_id"`
	OrderID    string         `json:"order_id"`
	Email      string         `json:"email"`
	Flow       FlowType       `json:"flow"`
	Outcome    ConfirmStatus  `json:"outcome"`
	Diff       []EditableDiff `json:"diff"`
	AddressID  string         `json:"address_id,omitempty"`
	SyncStatus string         `json:"sync_status,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
