package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const DefaultCarImage = "https://images.unsplash.com/photo-1494976388531-d1058494cdd8?w=600"

const (
	StatusAvailable = "available"
	StatusSold      = "sold"
	StatusPending   = "pending"
)

var FuelTypes = []string{"Petrol", "Diesel", "Electric", "Hybrid", "CNG"}

type Car struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	Brand       string    `gorm:"not null;index:idx_brand_model" json:"brand"`
	Model       string    `gorm:"not null;index:idx_brand_model" json:"model"`
	Year        int       `gorm:"not null;index" json:"year"`
	Price       float64   `gorm:"not null;index" json:"price"`
	Mileage     float64   `gorm:"not null" json:"mileage"`
	Fuel        string    `gorm:"not null" json:"fuel"`
	Location    string    `gorm:"not null" json:"location"`
	Description string    `gorm:"not null" json:"description"`
	Image       string    `json:"image"`
	Features    Features  `json:"features"`
	SellerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sellerId"`
	SellerName  string    `gorm:"not null" json:"sellerName"`
	SellerEmail string    `gorm:"not null" json:"sellerEmail"`
	SellerPhone string    `json:"sellerPhone"`
	Status      string    `gorm:"not null;default:'available'" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Features опции автомобиля. В Postgres это колонка text[], в остальных
// диалектах литерал массива в text.
type Features pq.StringArray

func (f Features) Value() (driver.Value, error) {
	return pq.StringArray(f).Value()
}

func (f *Features) Scan(src interface{}) error {
	return (*pq.StringArray)(f).Scan(src)
}

func (Features) GormDataType() string {
	return "text"
}

func (Features) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (c *Car) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = StatusAvailable
	}
	if c.Image == "" {
		c.Image = DefaultCarImage
	}
	return nil
}
