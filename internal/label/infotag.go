package label

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/palletprint/internal/models"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugRun    = regexp.MustCompile(`[^a-z0-9]+`)
)

// ShipmentInfoTagData 发运单信息签数据
type ShipmentInfoTagData struct {
	ShipmentID    string
	CarrierMoveID string
	LabelCount    int
	ShipToName    string
	ShipToAddress string
}

// StopInfoTagData 停靠信息签数据
type StopInfoTagData struct {
	CarrierMoveID string
	StopPosition  int
	TotalStops    int
	StopSequence  *int
	ShipmentIDs   []string
	ShipToName    string
	ShipToAddress string
}

// BuildShipmentInfoTag 构建发运单信息签 ZPL（分拣用，不贴托盘）
func BuildShipmentInfoTag(data ShipmentInfoTagData) string {
	carrierMove := strings.TrimSpace(data.CarrierMoveID)
	if carrierMove == "" {
		carrierMove = "-"
	}
	return "^XA\n^CI28\n^PW812\n^LL1218\n^LH0,0\n" +
		"^FO16,16^GB780,1186,6^FS\n" +
		"^FO30,40^A0N,58,58^FDINFO TAG - DO NOT APPLY^FS\n" +
		"^FO30,120^A0N,32,32^FDSHIPMENT ID: " + escInfo(data.ShipmentID) + "^FS\n" +
		"^FO30,170^A0N,32,32^FDCARRIER MOVE: " + escInfo(carrierMove) + "^FS\n" +
		"^FO30,220^A0N,32,32^FDLABELS IN JOB: " + strconv.Itoa(data.LabelCount) + "^FS\n" +
		"^FO30,280^A0N,28,28^FB740,2,6,L,0^FDSHIP TO: " + escInfo(Compact(data.ShipToName)) + "^FS\n" +
		"^FO30,360^A0N,24,24^FB740,3,4,L,0^FD" + escInfo(Compact(data.ShipToAddress)) + "^FS\n" +
		"^FO30,1080^A0N,34,34^FDSHIPMENT PACKET SUMMARY^FS\n^XZ\n"
}

// BuildStopInfoTag 构建停靠信息签 ZPL
func BuildStopInfoTag(data StopInfoTagData) string {
	seqText := "-"
	if data.StopSequence != nil {
		seqText = strconv.Itoa(*data.StopSequence)
	}
	shipments := "-"
	if len(data.ShipmentIDs) > 0 {
		shipments = strings.Join(data.ShipmentIDs, ", ")
	}
	return "^XA\n^CI28\n^PW812\n^LL1218\n^LH0,0\n" +
		"^FO16,16^GB780,1186,6^FS\n" +
		"^FO30,40^A0N,58,58^FDINFO TAG - DO NOT APPLY^FS\n" +
		"^FO30,120^A0N,32,32^FDCARRIER MOVE: " + escInfo(data.CarrierMoveID) + "^FS\n" +
		"^FO30,170^A0N,32,32^FDSTOP " + strconv.Itoa(data.StopPosition) + " OF " + strconv.Itoa(data.TotalStops) + " (SEQ " + escInfo(seqText) + ")^FS\n" +
		"^FO30,220^A0N,28,28^FB740,3,6,L,0^FDSHIPMENTS: " + escInfo(shipments) + "^FS\n" +
		"^FO30,330^A0N,28,28^FB740,2,6,L,0^FDSHIP TO: " + escInfo(Compact(data.ShipToName)) + "^FS\n" +
		"^FO30,420^A0N,24,24^FB740,3,4,L,0^FD" + escInfo(Compact(data.ShipToAddress)) + "^FS\n" +
		"^FO30,1080^A0N,34,34^FDSORT PACKET FOR STOP " + strconv.Itoa(data.StopPosition) + "^FS\n^XZ\n"
}

// FinalInfoTagStop 终签上的单个停靠行
type FinalInfoTagStop struct {
	StopPosition int
	ShipmentIDs  []string
}

// BuildFinalInfoTag 构建整车终签 ZPL（汇总全部停靠与发运单）
func BuildFinalInfoTag(carrierMoveID string, stops []FinalInfoTagStop) string {
	var list strings.Builder
	for _, stop := range stops {
		if list.Len() > 0 {
			list.WriteString(`\&`)
		}
		fmt.Fprintf(&list, "Stop %d: %s", stop.StopPosition, strings.Join(stop.ShipmentIDs, ", "))
	}
	return "^XA\n^CI28\n^PW812\n^LL1218\n^LH0,0\n" +
		"^FO16,16^GB780,1186,6^FS\n" +
		"^FO30,40^A0N,58,58^FDFINAL INFO TAG - DO NOT APPLY^FS\n" +
		"^FO30,120^A0N,32,32^FDCARRIER MOVE: " + escInfo(carrierMoveID) + "^FS\n" +
		"^FO30,170^A0N,32,32^FDTOTAL STOPS: " + strconv.Itoa(len(stops)) + "^FS\n" +
		"^FO30,230^A0N,26,26^FB740,28,4,L,0^FD" + escInfo(list.String()) + "^FS\n" +
		"^FO30,1080^A0N,34,34^FDEND OF CARRIER MOVE " + escInfo(carrierMoveID) + "^FS\n^XZ\n"
}

// ShipToAddressLine 拼接收货地址摘要行（街道 城市, 州 邮编）
func ShipToAddressLine(shipment *models.Shipment) string {
	if shipment == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s, %s %s",
		shipment.ShipToAddress1, shipment.ShipToCity, shipment.ShipToState, shipment.ShipToZip)
}

// Compact 压缩连续空白为单个空格，空值返回 "-"
func Compact(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "-"
	}
	return whitespaceRun.ReplaceAllString(trimmed, " ")
}

// SafeSlug 把任意标识符转成文件名安全的小写段
func SafeSlug(value string) string {
	if strings.TrimSpace(value) == "" {
		return "id"
	}
	return nonSlugRun.ReplaceAllString(strings.ToLower(value), "-")
}

// escInfo 信息签文本转义（先 ~ 后 ^）
func escInfo(value string) string {
	if value == "" {
		return " "
	}
	value = strings.ReplaceAll(value, "~", "~~")
	value = strings.ReplaceAll(value, "^", "~~^")
	value = strings.ReplaceAll(value, "{", "{{")
	value = strings.ReplaceAll(value, "}", "}}")
	return value
}
