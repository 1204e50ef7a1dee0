package models

import "time"

// CarrierMoveStop 整车调度单到发运单停靠的映射表
type CarrierMoveStop struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	CarrierMoveID   string     `gorm:"index;not null" json:"carrier_move_id"`
	StopID          string     `gorm:"index" json:"stop_id,omitempty"`
	StopSequence    *int       `json:"stop_sequence,omitempty"`
	TmsStopSequence *int       `json:"tms_stop_sequence,omitempty"`
	ShipmentID      string     `gorm:"index;not null" json:"shipment_id"`
	ShipmentStatus  string     `json:"shipment_status,omitempty"`
	ShipmentCreated *time.Time `json:"shipment_created,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (CarrierMoveStop) TableName() string {
	return "carrier_move_stops"
}
