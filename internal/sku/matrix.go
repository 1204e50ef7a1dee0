package sku

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/palletprint/internal/logger"
)

const minSkuLength = 5

// Mapping 内部 SKU 与客户货号的对应关系
type Mapping struct {
	InternalSku    string `json:"internal_sku"`
	CustomerItemNo string `json:"customer_item_no"`
	Description    string `json:"description,omitempty"`
}

// Matrix 客户 SKU 对照表
//
// 从 4 列 CSV 加载：内部 SKU、客户货号、描述、校验列。
// 加载后只读，按内部 SKU 与客户货号双向 O(1) 查找。
type Matrix struct {
	byInternalSku  map[string]Mapping
	byCustomerItem map[string]Mapping
}

// ResolveMatrixPath 从候选路径中解析第一个存在的对照表文件
func ResolveMatrixPath(candidates []string) string {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// LoadMatrix 从 CSV 文件加载 SKU 对照表
func LoadMatrix(path string) (*Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sku matrix failed: %w", err)
	}
	defer file.Close()

	matrix := &Matrix{
		byInternalSku:  make(map[string]Mapping),
		byCustomerItem: make(map[string]Mapping),
	}

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		// 首行表头与空行跳过
		if lineNum == 1 || strings.TrimSpace(line) == "" {
			continue
		}
		matrix.parseLine(line, lineNum)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sku matrix failed: %w", err)
	}

	logger.Infow("sku_matrix_loaded", "file", path, "count", len(matrix.byInternalSku))
	return matrix, nil
}

func (m *Matrix) parseLine(line string, lineNum int) {
	fields := strings.SplitN(line, ",", 4)
	if len(fields) < 2 {
		logger.Warnw("sku_matrix_line_skipped", "line", lineNum, "reason", "insufficient_fields")
		return
	}

	internalSku := strings.TrimSpace(fields[0])
	customerItemNo := strings.TrimSpace(fields[1])
	description := ""
	if len(fields) > 2 {
		description = strings.TrimSpace(fields[2])
	}
	if internalSku == "" || customerItemNo == "" {
		logger.Warnw("sku_matrix_line_skipped", "line", lineNum, "reason", "empty_sku_or_item")
		return
	}

	mapping := Mapping{InternalSku: internalSku, CustomerItemNo: customerItemNo, Description: description}
	m.byInternalSku[internalSku] = mapping
	m.byCustomerItem[customerItemNo] = mapping
}

// Count 返回已加载的对照条数
func (m *Matrix) Count() int {
	return len(m.byInternalSku)
}

// FindByInternalSku 按内部 SKU 查找
func (m *Matrix) FindByInternalSku(internalSku string) (Mapping, bool) {
	key := normalizeKey(internalSku)
	if key == "" {
		return Mapping{}, false
	}
	mapping, ok := m.byInternalSku[key]
	return mapping, ok
}

// FindByCustomerItem 按客户货号反向查找
func (m *Matrix) FindByCustomerItem(customerItemNo string) (Mapping, bool) {
	key := normalizeKey(customerItemNo)
	if key == "" {
		return Mapping{}, false
	}
	mapping, ok := m.byCustomerItem[key]
	return mapping, ok
}

// FindByPrtnum 从数据库 17 位 PRTNUM 中提取短 SKU 并查找
//
// 先尝试整值直查，再对数字串做由长到短的滑动窗口匹配，
// 每个窗口同时尝试去前导零的变体，兼容混合站点编码。
func (m *Matrix) FindByPrtnum(prtnum string) (Mapping, bool) {
	key := normalizeKey(prtnum)
	if key == "" {
		return Mapping{}, false
	}

	if mapping, ok := m.byInternalSku[key]; ok {
		return mapping, true
	}

	digits := extractDigits(key)
	if digits == "" {
		return Mapping{}, false
	}
	for length := len(digits); length >= minSkuLength; length-- {
		for i := 0; i+length <= len(digits); i++ {
			candidate := digits[i : i+length]
			if mapping, ok := m.byInternalSku[candidate]; ok {
				return mapping, true
			}
			if trimmed := strings.TrimLeft(candidate, "0"); trimmed != "" && trimmed != candidate {
				if mapping, ok := m.byInternalSku[trimmed]; ok {
					return mapping, true
				}
			}
		}
	}
	return Mapping{}, false
}

func normalizeKey(value string) string {
	return strings.TrimSpace(value)
}

func extractDigits(value string) string {
	var digits strings.Builder
	digits.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
