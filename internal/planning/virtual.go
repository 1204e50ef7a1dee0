package planning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/palletprint/internal/models"

	"github.com/shopspring/decimal"
)

// BuildFootprintMap 构建 SKU 到包装规格行的索引
func BuildFootprintMap(rows []models.ShipmentSkuFootprint) map[string]models.ShipmentSkuFootprint {
	bySku := make(map[string]models.ShipmentSkuFootprint, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Sku) != "" {
			bySku[row.Sku] = row
		}
	}
	return bySku
}

// BuildVirtualLpns 在发运单没有实体托盘行时按包装规格合成托盘
//
// 每个整托一块、余数一块；规格缺失的 SKU 合成单块全量托盘。
// 每一件库存恰好落在一块可打印托盘上。
func BuildVirtualLpns(shipment *models.Shipment, footprintRows []models.ShipmentSkuFootprint) []models.Lpn {
	if shipment == nil || len(footprintRows) == 0 {
		return nil
	}

	now := time.Now()
	var virtual []models.Lpn
	seq := 0

	for _, row := range footprintRows {
		if strings.TrimSpace(row.Sku) == "" {
			continue
		}
		totalUnits := row.TotalUnits
		if totalUnits <= 0 {
			continue
		}

		perPallet := 0
		if row.UnitsPerPallet != nil && *row.UnitsPerPallet > 0 {
			perPallet = *row.UnitsPerPallet
		}

		palletsForSku := 1
		if perPallet > 0 {
			palletsForSku = totalUnits / perPallet
			if totalUnits%perPallet != 0 {
				palletsForSku++
			}
		}

		for palletIndex := 0; palletIndex < palletsForSku; palletIndex++ {
			palletUnits := totalUnits
			if perPallet > 0 {
				if palletIndex < palletsForSku-1 {
					palletUnits = perPallet
				} else if remainder := totalUnits % perPallet; remainder != 0 {
					palletUnits = remainder
				} else {
					palletUnits = perPallet
				}
			}

			seq++
			description := ""
			if IsHumanReadable(row.ItemDescription) {
				description = row.ItemDescription
			}
			casePack := 0
			if row.UnitsPerCase != nil {
				casePack = *row.UnitsPerCase
			}

			virtual = append(virtual, models.Lpn{
				LpnID:           models.VirtualLpnPrefix + strconv.Itoa(seq),
				ShipmentID:      shipment.ShipmentID,
				Sscc:            fmt.Sprintf("%018d", seq),
				UnitCount:       palletUnits,
				Weight:          decimal.Zero,
				StagingLocation: shipment.DestinationLocation,
				ManufactureDate: &now,
				BestByDate:      &now,
				LineItems: []models.LineItem{{
					LineNumber:  strconv.Itoa(seq),
					Sku:         row.Sku,
					Description: description,
					Quantity:    palletUnits,
					CasePack:    casePack,
					Uom:         "EA",
					Weight:      decimal.Zero,
				}},
			})
		}
	}

	return virtual
}
