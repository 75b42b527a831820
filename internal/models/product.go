package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList est stockée en JSON (images, tags)
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return fmt.Errorf("type inattendu pour StringList: %T", value)
}

type Product struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	SKU         string     `gorm:"size:64;uniqueIndex" json:"sku"`
	Price       float64    `gorm:"not null" json:"price"`
	Stock       int        `gorm:"not null" json:"stock"` // utilisé seulement sans variantes
	ImageURLs   StringList `gorm:"type:json" json:"image_urls"`
	Tags        StringList `gorm:"type:json" json:"tags"`
	IsActive    bool       `gorm:"index;not null" json:"is_active"`
	HasVariants bool       `gorm:"not null" json:"has_variants"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VariantOption : paire clé/valeur ordonnée ("color": "red", "size": "L").
// L'ordre des options est celui défini à la création de la variante.
type VariantOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type VariantOptions []VariantOption

func (o VariantOptions) Value() (driver.Value, error) {
	if o == nil {
		o = VariantOptions{}
	}
	return json.Marshal(o)
}

func (o *VariantOptions) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	case nil:
		*o = nil
		return nil
	}
	return fmt.Errorf("type inattendu pour VariantOptions: %T", value)
}

// Get retourne la valeur d'une option par nom
func (o VariantOptions) Get(name string) (string, bool) {
	for _, opt := range o {
		if opt.Name == name {
			return opt.Value, true
		}
	}
	return "", false
}

type ProductVariant struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	ProductID string         `gorm:"size:36;index;not null" json:"product_id"`
	Title     string         `gorm:"size:255" json:"title"`
	SKU       string         `gorm:"size:64;uniqueIndex;not null" json:"sku"`
	Price     float64        `gorm:"not null" json:"price"`
	Stock     int            `gorm:"not null" json:"stock"`
	Options   VariantOptions `gorm:"type:json" json:"options"`
	IsActive  bool           `gorm:"index;not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
