package model

import (
	"time"
)

// Transit is a pending or completed delivery into a warehouse. Line items and
// vehicle assignments are created together with the transit as one proposal;
// once accepted the record is immutable.
type Transit struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	WarehouseID uint      `json:"warehouse_id" gorm:"not null"`
	DateStart   time.Time `json:"date_start" gorm:"not null"`
	DateEnd     time.Time `json:"date_end" gorm:"not null;check:chk_transit_window,date_end > date_start"`
	Accepted    bool      `json:"accepted" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lines    []TransitLine    `json:"lines,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Vehicles []TransitVehicle `json:"vehicles,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TransitLine is one product position inside a transit
type TransitLine struct {
	ID        uint  `json:"id" gorm:"primarykey"`
	TransitID uint  `json:"transit_id" gorm:"not null;uniqueIndex:idx_transit_product"`
	ProductID uint  `json:"product_id" gorm:"not null;uniqueIndex:idx_transit_product"`
	Payload   int64 `json:"payload" gorm:"type:smallint;not null;check:payload > 0"`

	Product Product `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName keeps the historical table name for transit line items
func (TransitLine) TableName() string {
	return "product_transit"
}

// TransitVehicle assigns a vehicle to a transit
type TransitVehicle struct {
	ID        uint `json:"id" gorm:"primarykey"`
	TransitID uint `json:"transit_id" gorm:"not null;uniqueIndex:idx_transit_vehicle"`
	VehicleID uint `json:"vehicle_id" gorm:"not null;uniqueIndex:idx_transit_vehicle"`

	Vehicle Vehicle `json:"vehicle,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName keeps the historical table name for transit vehicle assignments
func (TransitVehicle) TableName() string {
	return "vehicle_transit"
}

// Order is a pending or completed shipment out of a warehouse to a shop
type Order struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	ShopID      uint      `json:"shop_id" gorm:"not null"`
	WarehouseID uint      `json:"warehouse_id" gorm:"not null"`
	DateStart   time.Time `json:"date_start" gorm:"not null"`
	DateEnd     time.Time `json:"date_end" gorm:"not null;check:chk_order_window,date_end > date_start"`
	Accepted    bool      `json:"accepted" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lines    []OrderLine    `json:"lines,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Vehicles []OrderVehicle `json:"vehicles,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// OrderLine is one product position inside an order
type OrderLine struct {
	ID        uint  `json:"id" gorm:"primarykey"`
	OrderID   uint  `json:"order_id" gorm:"not null;uniqueIndex:idx_order_product"`
	ProductID uint  `json:"product_id" gorm:"not null;uniqueIndex:idx_order_product"`
	Payload   int64 `json:"payload" gorm:"type:smallint;not null;check:payload > 0"`

	Product Product `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName keeps the historical table name for order line items
func (OrderLine) TableName() string {
	return "product_order"
}

// OrderVehicle assigns a vehicle to an order
type OrderVehicle struct {
	ID        uint `json:"id" gorm:"primarykey"`
	OrderID   uint `json:"order_id" gorm:"not null;uniqueIndex:idx_order_vehicle"`
	VehicleID uint `json:"vehicle_id" gorm:"not null;uniqueIndex:idx_order_vehicle"`

	Vehicle Vehicle `json:"vehicle,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName keeps the historical table name for order vehicle assignments
func (OrderVehicle) TableName() string {
	return "vehicle_order"
}
