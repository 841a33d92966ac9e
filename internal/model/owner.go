package model

import (
	"time"
)

// Owner represents a person who possesses warehouses, vehicles and shops.
// Deleting an owner cascades to everything they own.
type Owner struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Email     string    `json:"email" gorm:"type:varchar(30);unique;not null"`
	FirstName string    `json:"first_name" gorm:"type:varchar(30);not null"`
	LastName  string    `json:"last_name" gorm:"type:varchar(30);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Warehouses []Warehouse `json:"warehouses,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Vehicles   []Vehicle   `json:"vehicles,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Shops      []Shop      `json:"shops,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Shop represents a retail point that receives outbound orders
type Shop struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(50);unique;not null"`
	Address   string    `json:"address" gorm:"type:varchar(50);not null"`
	OwnerID   uint      `json:"owner_id" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
