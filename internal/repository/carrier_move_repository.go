package repository

import (
	"github.com/palletprint/internal/models"

	"gorm.io/gorm"
)

// CarrierMoveRepository 整车调度单数据访问接口
type CarrierMoveRepository interface {
	ListStops(carrierMoveID string) ([]models.CarrierMoveStop, error)
}

// GormCarrierMoveRepository GORM 实现
type GormCarrierMoveRepository struct {
	db *gorm.DB
}

// NewCarrierMoveRepository 创建整车调度单仓库
func NewCarrierMoveRepository(db *gorm.DB) *GormCarrierMoveRepository {
	return &GormCarrierMoveRepository{db: db}
}

// ListStops 按停靠顺序列出调度单下的发运单引用
//
// TMS 停靠序号优先，缺失时退回仓内停靠序号。
func (r *GormCarrierMoveRepository) ListStops(carrierMoveID string) ([]models.CarrierMoveStop, error) {
	var rows []models.CarrierMoveStop
	err := r.db.Where("carrier_move_id = ?", carrierMoveID).
		Order("tms_stop_sequence ASC NULLS LAST").
		Order("stop_sequence ASC NULLS LAST").
		Order("shipment_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
