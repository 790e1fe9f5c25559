package models

import "strings"

const (
	InvoiceStatePaid    = "paid"
	OrderStateCompleted = "completed"
)

type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Product struct {
	Name                string   `json:"name"`
	Brand               string   `json:"brand"`
	Options             []Option `json:"options"`
	State               string   `json:"state"`
	Quantity            int      `json:"quantity"`
	ShippingDate        string   `json:"shipping_date,omitempty"`
	ShippingTrackingURL string   `json:"shipping_tracking_url,omitempty"`
	DeliveryDate        string   `json:"delivery_date,omitempty"`
}

type Invoice struct {
	Number string `json:"number"`
	Date   string `json:"date"`
	State  string `json:"state"`
	URL    string `json:"url"`
}

type Order struct {
	DateOrder string    `json:"date_order"`
	State     string    `json:"state"`
	Products  []Product `json:"products"`
	Invoices  []Invoice `json:"invoices"`
}

// IsPaid reports whether at least one invoice has been paid.
func (o *Order) IsPaid() bool {
	for _, invoice := range o.Invoices {
		if invoice.State == InvoiceStatePaid {
			return true
		}
	}

	return false
}

// IsCompleted reports whether the order reached its terminal state.
func (o *Order) IsCompleted() bool {
	return strings.EqualFold(o.State, OrderStateCompleted)
}
