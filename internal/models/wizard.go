package models

type ViewState string

const (
	ViewAccess  ViewState = "ACCESS"
	ViewLoading ViewState = "LOADING"
	ViewData    ViewState = "DATA"
)

type FlowType string

const (
	FlowNone     FlowType = ""
	FlowShipping FlowType = "shipping"
	FlowInfo     FlowType = "info"
	FlowCancel   FlowType = "cancel"
)

type ConfirmStatus string

const (
	ConfirmIdle    ConfirmStatus = "idle"
	ConfirmLoading ConfirmStatus = "loading"
	ConfirmSuccess ConfirmStatus = "success"
	ConfirmError   ConfirmStatus = "error"
)

// EditableDetails is a point-in-time copy of every field the customer can edit.
type EditableDetails struct {
	DeliveryAddresses  []DeliveryAddress  `json:"deliveryAddresses"`
	SelectedDeliveryID string             `json:"selectedDeliveryId"`
	NewDeliveryAddress NewDeliveryAddress `json:"newDeliveryAddress"`
	ContactEmail       string             `json:"contactEmail"`
	ContactPhone       string             `json:"contactPhone"`
}

// Clone returns a deep copy so later edits never leak into a captured snapshot.
func (d EditableDetails) Clone() EditableDetails {
	out := d
	out.DeliveryAddresses = make([]DeliveryAddress, len(d.DeliveryAddresses))
	copy(out.DeliveryAddresses, d.DeliveryAddresses)

	return out
}

// SelectedAddress returns the address matching SelectedDeliveryID, if any.
func (d EditableDetails) SelectedAddress() *DeliveryAddress {
	for i := range d.DeliveryAddresses {
		if d.DeliveryAddresses[i].ID == d.SelectedDeliveryID {
			return &d.DeliveryAddresses[i]
		}
	}

	return nil
}

type EditableDiff struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

type AccessRequest struct {
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
}

type FlowRequest struct {
	Flow FlowType `json:"flow" validate:"required,oneof=shipping info cancel"`
}

type ContactRequest struct {
	Email string `json:"email" validate:"max=254"`
	Phone string `json:"phone" validate:"max=32"`
}

type CancelRequest struct {
	Confirmed bool `json:"confirmed"`
}

type SelectAddressRequest struct {
	AddressID string `json:"addressId" validate:"required"`
}

type DraftUpdateRequest struct {
	Field DraftField `json:"field" validate:"required,oneof=street city zip country"`
	Value string     `json:"value" validate:"max=200"`
}

type ConfirmRequest struct {
	DeliveryInstructions string `json:"deliveryInstructions" validate:"max=500"`
}
