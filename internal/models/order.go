package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Statuts de commande
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Statuts de paiement
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Statuts de livraison
const (
	FulfillmentUnfulfilled = "unfulfilled"
	FulfillmentShipped     = "shipped"
	FulfillmentDelivered   = "delivered"
)

// Address est stockée en JSON dans la commande (adresse figée à la création)
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		return nil
	}
	return fmt.Errorf("type inattendu pour Address: %T", value)
}

type Order struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	Number string `gorm:"size:16;uniqueIndex" json:"number"`
	UserID string `gorm:"size:36;index" json:"user_id,omitempty"` // vide pour les invités

	// Contact dénormalisé (survit à la suppression du compte)
	Email string `gorm:"size:255;index;not null" json:"email"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Phone string `gorm:"size:32" json:"phone,omitempty"`

	Status            string `gorm:"size:32;index;not null" json:"status"`
	PaymentStatus     string `gorm:"size:32;index;not null" json:"payment_status"`
	FulfillmentStatus string `gorm:"size:32;not null" json:"fulfillment_status"`

	Subtotal      float64 `gorm:"not null" json:"subtotal"`
	ShippingTotal float64 `gorm:"not null" json:"shipping_total"`
	TaxTotal      float64 `gorm:"not null" json:"tax_total"`
	Total         float64 `gorm:"not null" json:"total"`
	Currency      string  `gorm:"size:8;not null" json:"currency"`

	ShippingAddress Address `gorm:"type:json" json:"shipping_address"`

	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Payments []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem est un instantané du produit au moment de la commande :
// si le catalogue change ensuite, la commande historique reste stable.
type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   string `gorm:"size:36;index;not null" json:"order_id"`
	ProductID string `gorm:"size:36;not null" json:"product_id"`
	VariantID string `gorm:"size:36" json:"variant_id,omitempty"`

	Title     string  `gorm:"size:255;not null" json:"title"`
	SKU       string  `gorm:"size:64;not null" json:"sku"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	LineTotal float64 `gorm:"not null" json:"line_total"`

	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	OrderID string `gorm:"size:36;index;not null" json:"order_id"`

	Provider   string `gorm:"size:32;not null" json:"provider"` // "stripe"
	ProviderID string `gorm:"size:64;index" json:"provider_id,omitempty"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"size:8;not null" json:"currency"`
	Status   string  `gorm:"size:32;index;not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
