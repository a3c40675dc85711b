package models

import "time"

// PropertyStatus represents the listing state of a property
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusSold      PropertyStatus = "sold"
)

// Payment records the synthetic transaction attached to a sold property.
// It is present if and only if the property status is sold.
type Payment struct {
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	BuyerID       string    `json:"buyer_id"`
}

// Property represents a real estate listing
type Property struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	Price       float64        `json:"price"`
	Image       string         `json:"image,omitempty"` // asset reference, e.g. /uploads/<name>
	OwnerID     string         `json:"owner_id"`
	Status      PropertyStatus `json:"status"`
	Payment     *Payment       `json:"payment,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Owner       *UserSummary   `json:"owner,omitempty"` // resolved for display
}

// PropertyPatch holds the updatable listing fields. Nil fields are left
// untouched.
type PropertyPatch struct {
	Title       *string
	Description *string
	Location    *string
	Price       *float64
	Image       *string
}
