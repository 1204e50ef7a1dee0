package repository

import (
	"github.com/palletprint/internal/models"

	"gorm.io/gorm"
)

// FootprintRepository 发运单 SKU 包装规格数据访问接口
type FootprintRepository interface {
	ListByShipment(shipmentID string) ([]models.ShipmentSkuFootprint, error)
}

// GormFootprintRepository GORM 实现
type GormFootprintRepository struct {
	db *gorm.DB
}

// NewFootprintRepository 创建包装规格仓库
func NewFootprintRepository(db *gorm.DB) *GormFootprintRepository {
	return &GormFootprintRepository{db: db}
}

// ListByShipment 按发运单列出 SKU 包装规格行（保持录入顺序）
func (r *GormFootprintRepository) ListByShipment(shipmentID string) ([]models.ShipmentSkuFootprint, error) {
	var rows []models.ShipmentSkuFootprint
	if err := r.db.Where("shipment_id = ?", shipmentID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
