package models

type DeliveryAddress struct {
	ID      string `json:"id"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type NewDeliveryAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type DraftField string

const (
	DraftFieldStreet  DraftField = "street"
	DraftFieldCity    DraftField = "city"
	DraftFieldZip     DraftField = "zip"
	DraftFieldCountry DraftField = "country"
)
