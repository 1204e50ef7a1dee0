package sku

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/palletprint/internal/logger"
)

// LocationMatrix 客户售达方到 DC 门店号的对照表
//
// CSV 格式：Sold-To Name,Location #,Sold-To #。
type LocationMatrix struct {
	dcBySoldToKey map[string]string
}

// LoadLocationMatrix 从 CSV 加载售达方对照表
func LoadLocationMatrix(path string) (*LocationMatrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open location matrix failed: %w", err)
	}
	defer file.Close()

	matrix := &LocationMatrix{dcBySoldToKey: make(map[string]string)}
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 || strings.TrimSpace(line) == "" {
			continue
		}
		matrix.parseLine(line, lineNum)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read location matrix failed: %w", err)
	}

	logger.Infow("location_matrix_loaded", "file", path, "count", len(matrix.dcBySoldToKey))
	return matrix, nil
}

func (m *LocationMatrix) parseLine(line string, lineNum int) {
	fields := strings.SplitN(line, ",", 3)
	if len(fields) < 3 {
		logger.Warnw("location_matrix_line_skipped", "line", lineNum, "reason", "insufficient_fields")
		return
	}
	locationNumber := strings.TrimSpace(fields[1])
	soldToNumber := strings.TrimSpace(fields[2])
	if locationNumber == "" || soldToNumber == "" {
		logger.Warnw("location_matrix_line_skipped", "line", lineNum, "reason", "missing_location_or_sold_to")
		return
	}
	key := canonicalSoldToKey(soldToNumber)
	if key == "" {
		logger.Warnw("location_matrix_line_skipped", "line", lineNum, "reason", "sold_to_has_no_digits")
		return
	}
	m.dcBySoldToKey[key] = locationNumber
}

// Count 返回已加载的对照条数
func (m *LocationMatrix) Count() int {
	return len(m.dcBySoldToKey)
}

// ResolveDcLocation 将售达方编号解析为 DC 门店号，无对应关系时原样返回
func (m *LocationMatrix) ResolveDcLocation(soldToOrLocation string) string {
	input := strings.TrimSpace(soldToOrLocation)
	if input == "" {
		return soldToOrLocation
	}
	key := canonicalSoldToKey(input)
	if key == "" {
		return input
	}
	if mapped, ok := m.dcBySoldToKey[key]; ok && strings.TrimSpace(mapped) != "" {
		return mapped
	}
	return input
}

// canonicalSoldToKey 规范化售达方编号：去 C 前缀、取数字、去前导零
func canonicalSoldToKey(value string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return ""
	}
	trimmed = strings.TrimPrefix(trimmed, "C")

	digits := extractDigits(trimmed)
	if digits == "" {
		return ""
	}
	stripped := strings.TrimLeft(digits, "0")
	if stripped == "" {
		return "0"
	}
	return stripped
}
