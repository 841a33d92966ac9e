package model

import (
	"time"
)

// Warehouse represents a storage location with a hard capacity limit.
// The sum of all stock entry payloads for a warehouse must never exceed
// MaxCapacity.
type Warehouse struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Name        string    `json:"name" gorm:"type:varchar(50);unique;not null"`
	Address     string    `json:"address" gorm:"type:varchar(50);not null"`
	MaxCapacity int64     `json:"max_capacity" gorm:"not null;check:max_capacity > 0"`
	OwnerID     uint      `json:"owner_id" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	StockEntries []StockEntry `json:"stock_entries,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Transits     []Transit    `json:"transits,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Orders       []Order      `json:"orders,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Vehicle is a mobile resource. At most one unaccepted commitment may claim
// it for any given time instant.
type Vehicle struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Brand       string    `json:"brand" gorm:"type:varchar(30);not null"`
	MaxCapacity int64     `json:"max_capacity" gorm:"type:smallint;not null;check:max_capacity > 0"`
	VIN         string    `json:"vin" gorm:"column:vin;type:varchar(17);unique;not null"`
	OwnerID     uint      `json:"owner_id" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product represents product master data
type Product struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	Name          string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_product_name_article"`
	ArticleNumber int64     `json:"article_number" gorm:"unique;not null;check:article_number >= 10000;uniqueIndex:idx_product_name_article"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockEntry is the current on-hand ledger of one product in one warehouse.
// It reflects accepted state only, never pending commitments. A payload that
// reaches zero deletes the row instead of storing a zero.
type StockEntry struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	WarehouseID uint      `json:"warehouse_id" gorm:"not null;uniqueIndex:idx_warehouse_product"`
	ProductID   uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_warehouse_product"`
	Payload     int64     `json:"payload" gorm:"not null;check:payload > 0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Product Product `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName keeps the historical table name for the stock ledger
func (StockEntry) TableName() string {
	return "product_warehouse"
}
