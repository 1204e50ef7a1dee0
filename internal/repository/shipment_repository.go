package repository

import (
	"errors"

	"github.com/palletprint/internal/models"

	"gorm.io/gorm"
)

// ShipmentRepository 发运单数据访问接口
type ShipmentRepository interface {
	GetWithDetails(shipmentID string) (*models.Shipment, error)
	Exists(shipmentID string) (bool, error)
	GetStagingLocation(shipmentID string) (string, error)
}

// GormShipmentRepository GORM 实现
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建发运单仓库
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// GetWithDetails 获取发运单及其托盘和行项目
func (r *GormShipmentRepository) GetWithDetails(shipmentID string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.
		Preload("Lpns", func(db *gorm.DB) *gorm.DB {
			return db.Order("lpns.lpn_id ASC")
		}).
		Preload("Lpns.LineItems").
		Where("shipment_id = ?", shipmentID).
		First(&shipment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// Exists 判断发运单是否存在
func (r *GormShipmentRepository) Exists(shipmentID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Shipment{}).Where("shipment_id = ?", shipmentID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetStagingLocation 获取发运单集货位（优先取发运单目的区，退回第一块托盘的集货位）
func (r *GormShipmentRepository) GetStagingLocation(shipmentID string) (string, error) {
	var shipment models.Shipment
	err := r.db.Select("destination_location").Where("shipment_id = ?", shipmentID).First(&shipment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if shipment.DestinationLocation != "" {
		return shipment.DestinationLocation, nil
	}

	var lpn models.Lpn
	err = r.db.Select("staging_location").
		Where("shipment_id = ? AND staging_location <> ''", shipmentID).
		Order("lpn_id ASC").
		First(&lpn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return lpn.StagingLocation, nil
}
