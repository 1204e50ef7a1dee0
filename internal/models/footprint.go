package models

import "time"

// ShipmentSkuFootprint 发运单 SKU 包装规格聚合表
//
// 数据来源于发运行与包装规格维护表，规格维护不完整时字段可能缺失。
type ShipmentSkuFootprint struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	ShipmentID      string     `gorm:"index;not null" json:"shipment_id"`
	Sku             string     `gorm:"index;not null" json:"sku"`
	ItemDescription string     `json:"item_description,omitempty"`
	TotalUnits      int        `json:"total_units"`
	UnitsPerCase    *int       `json:"units_per_case,omitempty"`
	UnitsPerPallet  *int       `json:"units_per_pallet,omitempty"`
	PalletLength    *float64   `json:"pallet_length,omitempty"`
	PalletWidth     *float64   `json:"pallet_width,omitempty"`
	PalletHeight    *float64   `json:"pallet_height,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (ShipmentSkuFootprint) TableName() string {
	return "shipment_sku_footprints"
}
