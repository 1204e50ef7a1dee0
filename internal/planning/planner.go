package planning

import (
	"strings"
	"unicode"

	"github.com/palletprint/internal/models"
)

// PlanResult 托盘计划汇总结果
type PlanResult struct {
	TotalUnits           int      `json:"total_units"`
	FullPallets          int      `json:"full_pallets"`
	PartialPallets       int      `json:"partial_pallets"`
	EstimatedPallets     int      `json:"estimated_pallets"`
	SkusMissingFootprint []string `json:"skus_missing_footprint"`
}

// SkuMathRow 单 SKU 托盘计算明细（用于任务预览）
type SkuMathRow struct {
	Sku              string `json:"sku"`
	Description      string `json:"description,omitempty"`
	Units            int    `json:"units"`
	UnitsPerPallet   int    `json:"units_per_pallet"` // 0 表示规格缺失
	FullPallets      int    `json:"full_pallets"`
	PartialUnits     int    `json:"partial_units"`
	EstimatedPallets int    `json:"estimated_pallets"`
}

// Plan 根据 SKU 包装规格行计算托盘计划汇总
//
// 规格缺失（UnitsPerPallet 为空或非正）的 SKU 记入缺失清单，
// 并按一块残托计入，件数仍计入总件数。
func Plan(footprintRows []models.ShipmentSkuFootprint) PlanResult {
	result := PlanResult{SkusMissingFootprint: []string{}}
	if len(footprintRows) == 0 {
		return result
	}

	for _, row := range footprintRows {
		units := row.TotalUnits
		if units < 0 {
			units = 0
		}
		result.TotalUnits += units

		if row.UnitsPerPallet == nil || *row.UnitsPerPallet <= 0 {
			if units > 0 && strings.TrimSpace(row.Sku) != "" {
				result.SkusMissingFootprint = append(result.SkusMissingFootprint, row.Sku)
				result.PartialPallets++
			}
			continue
		}

		perPallet := *row.UnitsPerPallet
		result.FullPallets += units / perPallet
		if units%perPallet > 0 {
			result.PartialPallets++
		}
	}

	result.EstimatedPallets = result.FullPallets + result.PartialPallets
	return result
}

// MathRows 计算单 SKU 托盘明细行，供任务预览展示
func MathRows(footprintRows []models.ShipmentSkuFootprint) []SkuMathRow {
	rows := make([]SkuMathRow, 0, len(footprintRows))
	for _, row := range footprintRows {
		units := row.TotalUnits
		if units < 0 {
			units = 0
		}
		mathRow := SkuMathRow{
			Sku:   row.Sku,
			Units: units,
		}
		if IsHumanReadable(row.ItemDescription) {
			mathRow.Description = row.ItemDescription
		}
		if row.UnitsPerPallet != nil && *row.UnitsPerPallet > 0 {
			perPallet := *row.UnitsPerPallet
			mathRow.UnitsPerPallet = perPallet
			mathRow.FullPallets = units / perPallet
			mathRow.PartialUnits = units % perPallet
			mathRow.EstimatedPallets = mathRow.FullPallets
			if mathRow.PartialUnits > 0 {
				mathRow.EstimatedPallets++
			}
		} else if units > 0 {
			mathRow.PartialUnits = units
			mathRow.EstimatedPallets = 1
		}
		rows = append(rows, mathRow)
	}
	return rows
}

// IsHumanReadable 判断文本是否包含可读字母（过滤纯数字的 WMS 描述）
func IsHumanReadable(value string) bool {
	for _, r := range value {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
