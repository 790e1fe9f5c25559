package service

import (
	"context"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
)

// SeedOrder returns a fresh copy of the demo order served by the mock source.
func SeedOrder() *models.Order {
	return &models.Order{
		DateOrder: "2024-12-12T00:00:00.000Z",
		State:     "processing",
		Products: []models.Product{
			{
				Name:                "Platform Tray",
				Brand:               "Muuto",
				Options:             []models.Option{{Name: "Choose the Finish", Value: "Grey"}},
				State:               "processing",
				Quantity:            1,
				ShippingDate:        "2024-12-20T18:55:07.000Z",
				ShippingTrackingURL: "https://www.dhl.com/it-it/home/tracking.html?tracking-id=0000000000",
			},
		},
		Invoices: []models.Invoice{
			{
				Number: "4/E/2024/5768",
				Date:   "2024-12-12",
				State:  models.InvoiceStatePaid,
				URL:    "https://myorder.mohd.it/invoice?order=ECOMMSO180809&invoice=4-E-2024-5768",
			},
		},
	}
}

// MockOrderSource answers every lookup with the seed order.
type MockOrderSource struct{}

func NewMockOrderSource() *MockOrderSource {
	return &MockOrderSource{}
}

func (MockOrderSource) FetchOrder(ctx context.Context, orderID, email string) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return SeedOrder(), nil
}
