package zpl

import (
	"fmt"
	"strings"
)

// Symbology 条码符号体系
type Symbology string

// 支持的条码符号体系
const (
	SymbologyCode128 Symbology = "CODE128"
	SymbologyGS1128  Symbology = "GS1_128"
)

// Orientation 条码字段方向
type Orientation string

// 支持的条码方向
const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// BarcodeRequest 独立条码标签请求
type BarcodeRequest struct {
	Data            string      `json:"data"`
	Symbology       Symbology   `json:"symbology"`
	Orientation     Orientation `json:"orientation"`
	LabelWidthDots  int         `json:"label_width_dots"`
	LabelHeightDots int         `json:"label_height_dots"`
	OriginX         int         `json:"origin_x"`
	OriginY         int         `json:"origin_y"`
	ModuleWidth     int         `json:"module_width"`
	ModuleRatio     int         `json:"module_ratio"`
	BarcodeHeight   int         `json:"barcode_height"`
	HumanReadable   bool        `json:"human_readable"`
	Copies          int         `json:"copies"`
}

// Validate 校验条码请求参数
func (r *BarcodeRequest) Validate() error {
	if strings.TrimSpace(r.Data) == "" {
		return fmt.Errorf("data cannot be blank")
	}
	switch r.Symbology {
	case SymbologyCode128, SymbologyGS1128:
	default:
		return fmt.Errorf("unsupported symbology: %s", r.Symbology)
	}
	switch r.Orientation {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("unsupported orientation: %s", r.Orientation)
	}
	for _, check := range []struct {
		name  string
		value int
	}{
		{"label_width_dots", r.LabelWidthDots},
		{"label_height_dots", r.LabelHeightDots},
		{"module_width", r.ModuleWidth},
		{"module_ratio", r.ModuleRatio},
		{"barcode_height", r.BarcodeHeight},
		{"copies", r.Copies},
	} {
		if check.value <= 0 {
			return fmt.Errorf("%s must be greater than 0", check.name)
		}
	}
	if r.OriginX < 0 || r.OriginY < 0 {
		return fmt.Errorf("origin must be >= 0")
	}
	return nil
}

// BuildBarcode 生成单张条码标签的 ZPL 文档
//
// 横向模式只旋转条码字段（^FWR + ^BCR），打印机本身保持纵向，
// 不使用任何全局旋转指令。
func BuildBarcode(request BarcodeRequest) (string, error) {
	if err := request.Validate(); err != nil {
		return "", err
	}
	landscape := request.Orientation == OrientationLandscape

	var zpl strings.Builder
	zpl.Grow(256)
	zpl.WriteString("^XA\n")
	zpl.WriteString("^PON\n")
	fmt.Fprintf(&zpl, "^PW%d\n", request.LabelWidthDots)
	fmt.Fprintf(&zpl, "^LL%d\n", request.LabelHeightDots)
	if landscape {
		zpl.WriteString("^FWR\n")
	} else {
		zpl.WriteString("^FWN\n")
	}
	fmt.Fprintf(&zpl, "^BY%d,%d,%d\n", request.ModuleWidth, request.ModuleRatio, request.BarcodeHeight)
	fmt.Fprintf(&zpl, "^FO%d,%d\n", request.OriginX, request.OriginY)
	rotation := "N"
	if landscape {
		rotation = "R"
	}
	readable := "N"
	if request.HumanReadable {
		readable = "Y"
	}
	fmt.Fprintf(&zpl, "^BC%s,%d,%s,N,N\n", rotation, request.BarcodeHeight, readable)
	zpl.WriteString("^FD")
	if request.Symbology == SymbologyGS1128 {
		zpl.WriteString(">;")
	}
	zpl.WriteString(escapeBarcodeData(strings.TrimSpace(request.Data)))
	zpl.WriteString("^FS\n")
	if request.Copies > 1 {
		fmt.Fprintf(&zpl, "^PQ%d\n", request.Copies)
	}
	zpl.WriteString("^XZ\n")
	return zpl.String(), nil
}

// escapeBarcodeData 条码数据转义（先 ~ 后 ^，与模板字段转义顺序不同）
func escapeBarcodeData(value string) string {
	value = strings.ReplaceAll(value, "~", "~~")
	value = strings.ReplaceAll(value, "^", "~~^")
	value = strings.ReplaceAll(value, "{", "{{")
	value = strings.ReplaceAll(value, "}", "}}")
	return value
}
