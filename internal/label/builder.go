package label

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/palletprint/internal/logger"
	"github.com/palletprint/internal/models"
	"github.com/palletprint/internal/sku"
)

// 可选字段缺失时的安全占位值（空格可通过模板引擎的非空校验）
const spaceSafeDefault = " "

const labelDateFormat = "01.02.2006"

// Builder 把领域对象映射为模板字段值
//
// 这是数据库领域模型与通用模板引擎之间的桥：必填字段缺失直接报错，
// 可选字段落回安全默认值，内部 SKU 通过对照表换算成客户货号。
type Builder struct {
	matrix         *sku.Matrix
	locations      *sku.LocationMatrix
	site           Site
	footprintBySku map[string]models.ShipmentSkuFootprint
}

// NewBuilder 创建标签字段构建器
//
// matrix / locations / footprintBySku 均可为空，对应的字段退回默认值。
func NewBuilder(matrix *sku.Matrix, locations *sku.LocationMatrix, site Site, footprintBySku map[string]models.ShipmentSkuFootprint) *Builder {
	return &Builder{
		matrix:         matrix,
		locations:      locations,
		site:           site,
		footprintBySku: footprintBySku,
	}
}

// Build 为发运单中第 palletIndex 块托盘构建标签字段值
//
// palletIndex 从 0 开始，palletTotal 是本次任务的标签总数。
func (b *Builder) Build(shipment *models.Shipment, lpn *models.Lpn, palletIndex, palletTotal int) (map[string]string, error) {
	if shipment == nil {
		return nil, fmt.Errorf("shipment cannot be nil")
	}
	if lpn == nil {
		return nil, fmt.Errorf("lpn cannot be nil")
	}

	fields := make(map[string]string, 40)

	// 发货方（站点固定）
	if err := putRequired(fields, "shipFromName", b.site.ShipFromName); err != nil {
		return nil, err
	}
	if err := putRequired(fields, "shipFromAddress", b.site.ShipFromAddress); err != nil {
		return nil, err
	}
	if err := putRequired(fields, "shipFromCityStateZip", b.site.ShipFromCityStateZip); err != nil {
		return nil, err
	}

	// 收货方（核心字段必填）
	if err := putRequired(fields, "shipToName", shipment.ShipToName); err != nil {
		return nil, err
	}
	if err := putRequired(fields, "shipToAddress1", shipment.ShipToAddress1); err != nil {
		return nil, err
	}
	fields["shipToAddress2"] = orDefault(shipment.ShipToAddress2, spaceSafeDefault)
	fields["shipToAddress3"] = orDefault(shipment.ShipToAddress3, spaceSafeDefault)
	if err := putRequired(fields, "shipToCity", shipment.ShipToCity); err != nil {
		return nil, err
	}
	if err := putRequired(fields, "shipToState", shipment.ShipToState); err != nil {
		return nil, err
	}
	if err := putRequired(fields, "shipToZip", shipment.ShipToZip); err != nil {
		return nil, err
	}
	fields["shipToCountry"] = orDefault(shipment.ShipToCountry, spaceSafeDefault)
	fields["shipToPhone"] = orDefault(shipment.ShipToPhone, spaceSafeDefault)

	// 承运与单证
	if err := putRequired(fields, "carrierCode", shipment.CarrierCode); err != nil {
		return nil, err
	}
	fields["carrierMoveId"] = orDefault(shipment.CarrierMoveID, spaceSafeDefault)
	fields["serviceLevel"] = orDefault(shipment.ServiceLevel, spaceSafeDefault)
	fields["documentNumber"] = orDefault(shipment.DocumentNumber, spaceSafeDefault)
	fields["trackingNumber"] = orDefault(shipment.TrackingNumber, spaceSafeDefault)

	// 订单级
	fields["customerPo"] = orDefault(shipment.CustomerPo, spaceSafeDefault)
	fields["locationNumber"] = orDefault(b.resolveLocationNumber(shipment), spaceSafeDefault)
	fields["departmentNumber"] = orDefault(shipment.DepartmentNumber, spaceSafeDefault)

	// 停靠与整车调度
	fields["proNumber"] = orDefault(shipment.ProNumber, spaceSafeDefault)
	fields["bolNumber"] = orDefault(shipment.BolNumber, spaceSafeDefault)
	stopSequence := ""
	if shipment.StopSequence != nil {
		stopSequence = strconv.Itoa(*shipment.StopSequence)
	}
	fields["stopSequence"] = orDefault(stopSequence, spaceSafeDefault)

	// 日期
	fields["shipDate"] = orDefault(fmtDate(shipment.ShipDate), spaceSafeDefault)
	fields["deliveryDate"] = orDefault(fmtDate(shipment.DeliveryDate), spaceSafeDefault)

	// 托盘与条码（必填）
	if err := putRequired(fields, "lpnId", lpn.LpnID); err != nil {
		return nil, err
	}
	if err := putRequired(fields, "ssccBarcode", lpn.Sscc); err != nil {
		return nil, err
	}
	fields["palletSeq"] = strconv.Itoa(palletIndex + 1)
	fields["palletTotal"] = strconv.Itoa(palletTotal)
	fields["weight"] = orDefault(lpn.Weight.String(), spaceSafeDefault)

	// 批号追溯（可选）
	fields["warehouseLot"] = orDefault(lpn.WarehouseLot, spaceSafeDefault)
	fields["customerLot"] = orDefault(lpn.CustomerLot, spaceSafeDefault)
	fields["manufactureDate"] = orDefault(fmtDate(lpn.ManufactureDate), spaceSafeDefault)
	fields["bestByDate"] = orDefault(fmtDate(lpn.BestByDate), spaceSafeDefault)

	if len(lpn.LineItems) > 0 {
		item := b.selectRepresentativeItem(lpn)
		if err := putRequired(fields, "tbgSku", item.Sku); err != nil {
			return nil, err
		}
		fields["quantity"] = strconv.Itoa(item.Quantity)
		fields["unitOfMeasure"] = orDefault(item.Uom, "EA")

		// 客户货号换算，对照缺失时保持客户列留白
		if mapping, ok := b.findMapping(item.Sku); ok {
			fields["customerItemNumber"] = mapping.CustomerItemNo
			fields["itemDescription"] = mapping.Description
		} else {
			fields["customerItemNumber"] = spaceSafeDefault
			fields["itemDescription"] = orDefault(item.Description, spaceSafeDefault)
			logger.Infow("customer_item_not_in_matrix",
				"sku", item.Sku,
				"shipment_id", shipment.ShipmentID,
			)
		}

		fields["gtinBarcode"] = orDefault(item.GtinBarcode, spaceSafeDefault)
		fields["upcCode"] = orDefault(item.UpcCode, spaceSafeDefault)

		footprint, hasFootprint := b.footprintBySku[item.Sku]
		fields["unitsPerCase"] = optionalInt(hasFootprint, footprint.UnitsPerCase)
		fields["unitsPerPallet"] = optionalInt(hasFootprint, footprint.UnitsPerPallet)
		fields["palletLength"] = optionalFloat(hasFootprint, footprint.PalletLength)
		fields["palletWidth"] = optionalFloat(hasFootprint, footprint.PalletWidth)
		fields["palletHeight"] = optionalFloat(hasFootprint, footprint.PalletHeight)
	} else {
		// 托盘没有行项目时全部退回安全默认值
		fields["tbgSku"] = spaceSafeDefault
		fields["quantity"] = "0"
		fields["unitOfMeasure"] = "EA"
		fields["customerItemNumber"] = spaceSafeDefault
		fields["itemDescription"] = spaceSafeDefault
		fields["gtinBarcode"] = spaceSafeDefault
		fields["upcCode"] = spaceSafeDefault
		fields["unitsPerCase"] = spaceSafeDefault
		fields["unitsPerPallet"] = spaceSafeDefault
		fields["palletLength"] = spaceSafeDefault
		fields["palletWidth"] = spaceSafeDefault
		fields["palletHeight"] = spaceSafeDefault
	}

	fields["stagingLocation"] = orDefault(lpn.StagingLocation, spaceSafeDefault)

	return fields, nil
}

// selectRepresentativeItem 选择标签主体行：优先对照表命中的 SKU，否则取第一行
func (b *Builder) selectRepresentativeItem(lpn *models.Lpn) models.LineItem {
	for _, item := range lpn.LineItems {
		if item.Sku != "" {
			if _, ok := b.findMapping(item.Sku); ok {
				return item
			}
		}
	}
	return lpn.LineItems[0]
}

func (b *Builder) findMapping(prtnum string) (sku.Mapping, bool) {
	if b.matrix == nil {
		return sku.Mapping{}, false
	}
	return b.matrix.FindByPrtnum(prtnum)
}

func (b *Builder) resolveLocationNumber(shipment *models.Shipment) string {
	if b.locations == nil {
		return shipment.LocationNumber
	}
	return b.locations.ResolveDcLocation(shipment.LocationNumber)
}

func putRequired(fields map[string]string, name, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("required field missing: %s", name)
	}
	fields[name] = trimmed
	return nil
}

func orDefault(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(labelDateFormat)
}

func optionalInt(hasRow bool, value *int) string {
	if !hasRow || value == nil {
		return spaceSafeDefault
	}
	return strconv.Itoa(*value)
}

func optionalFloat(hasRow bool, value *float64) string {
	if !hasRow || value == nil {
		return spaceSafeDefault
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
