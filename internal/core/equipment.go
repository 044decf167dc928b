package core

import (
	"strings"
	"time"
)

// Equipment statuses.
const (
	EquipmentOperational      = "operational"
	EquipmentUnderMaintenance = "under maintenance"
	EquipmentOutOfOrder       = "out of order"
)

type Equipment struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	PurchaseDate    *Date     `json:"purchaseDate"`
	PurchasePrice   *Money    `json:"purchasePrice"`
	MaintenanceDate *Date     `json:"maintenanceDate"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
}

type EquipmentInput struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	PurchaseDate    *Date   `json:"purchaseDate"`
	PurchasePrice   *Money  `json:"purchasePrice"`
	MaintenanceDate *Date   `json:"maintenanceDate"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes"`
}

func (in EquipmentInput) Equipment(now time.Time) Equipment {
	e := Equipment{
		Name:            strings.TrimSpace(in.Name),
		Category:        strings.TrimSpace(in.Category),
		PurchaseDate:    in.PurchaseDate,
		PurchasePrice:   in.PurchasePrice,
		MaintenanceDate: in.MaintenanceDate,
		Status:          in.Status,
		Notes:           in.Notes,
		CreatedAt:       now.UTC(),
	}
	if e.Status == "" {
		e.Status = EquipmentOperational
	}
	return e
}

type EquipmentPatch struct {
	Name            *string `json:"name"`
	Category        *string `json:"category"`
	PurchaseDate    *Date   `json:"purchaseDate"`
	PurchasePrice   *Money  `json:"purchasePrice"`
	MaintenanceDate *Date   `json:"maintenanceDate"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

func (p EquipmentPatch) Apply(e Equipment) Equipment {
	if p.Name != nil {
		e.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		e.Category = strings.TrimSpace(*p.Category)
	}
	if p.PurchaseDate != nil {
		e.PurchaseDate = p.PurchaseDate
	}
	if p.PurchasePrice != nil {
		e.PurchasePrice = p.PurchasePrice
	}
	if p.MaintenanceDate != nil {
		e.MaintenanceDate = p.MaintenanceDate
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Notes != nil {
		e.Notes = p.Notes
	}
	return e
}

func (e Equipment) Validate() error {
	var v validator
	v.required("name", e.Name)
	v.maxLen("name", e.Name, 200)
	v.required("category", e.Category)
	if e.PurchasePrice != nil {
		v.check(e.PurchasePrice.Validate() == nil, "purchasePrice", "must be a positive amount")
	}
	switch e.Status {
	case EquipmentOperational, EquipmentUnderMaintenance, EquipmentOutOfOrder:
	default:
		v.add("status", "must be one of operational, under maintenance, out of order")
	}
	return v.err()
}
