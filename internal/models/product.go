package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
type Product struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name           string          `json:"name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	CategoryID     string          `json:"category" gorm:"type:varchar(36);index"`
	ManufacturerID string          `json:"manufacturer" gorm:"type:varchar(36);index"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null" validate:"gte=0"`
	StockLevel     int             `json:"stock_level" gorm:"not null"`
	Description    string          `json:"description" validate:"max=2000"`
	Images         []string        `json:"images" gorm:"serializer:json"`
	Version        int             `json:"version" gorm:"not null;default:1"` // Bumped on every write
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Foreign keys only; never loaded or saved through the product.
	Category     *Category     `json:"-" gorm:"foreignKey:CategoryID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Manufacturer *Manufacturer `json:"-" gorm:"foreignKey:ManufacturerID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}
