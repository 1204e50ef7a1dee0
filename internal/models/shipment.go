package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipment 发运单表（含到货地址、承运商与停靠信息）
type Shipment struct {
	ID         uint   `gorm:"primarykey" json:"id"`                    // 主键
	ShipmentID string `gorm:"uniqueIndex;not null" json:"shipment_id"` // 发运单号
	ExternalID string `gorm:"index" json:"external_id,omitempty"`      // ERP 外部单号
	OrderID    string `gorm:"index" json:"order_id,omitempty"`         // 订单号（可与发运单号不同）
	WarehouseID string `gorm:"index" json:"warehouse_id,omitempty"`    // 仓库编码

	// 到货地址
	ShipToName     string `json:"ship_to_name,omitempty"`
	ShipToAddress1 string `json:"ship_to_address1,omitempty"`
	ShipToAddress2 string `json:"ship_to_address2,omitempty"`
	ShipToAddress3 string `json:"ship_to_address3,omitempty"`
	ShipToCity     string `json:"ship_to_city,omitempty"`
	ShipToState    string `json:"ship_to_state,omitempty"`
	ShipToZip      string `json:"ship_to_zip,omitempty"`
	ShipToCountry  string `json:"ship_to_country,omitempty"`
	ShipToPhone    string `json:"ship_to_phone,omitempty"`

	// 承运与单证
	CarrierCode         string `gorm:"index" json:"carrier_code,omitempty"`         // SCAC 代码
	ServiceLevel        string `json:"service_level,omitempty"`                     // 服务级别（TL/IM 等）
	DocumentNumber      string `json:"document_number,omitempty"`                   // BOL/发运单证号
	TrackingNumber      string `json:"tracking_number,omitempty"`                   // 跟踪号
	DestinationLocation string `gorm:"index" json:"destination_location,omitempty"` // 集货区（如 ROSSI）

	// 订单级信息
	CustomerPo       string `json:"customer_po,omitempty"`       // 客户 PO 号
	LocationNumber   string `json:"location_number,omitempty"`   // 客户 DC/门店编号
	DepartmentNumber string `json:"department_number,omitempty"` // 客户部门编号

	// 停靠与整车调度
	StopID        string `gorm:"index" json:"stop_id,omitempty"`
	StopSequence  *int   `json:"stop_sequence,omitempty"`
	CarrierMoveID string `gorm:"index" json:"carrier_move_id,omitempty"`
	ProNumber     string `json:"pro_number,omitempty"` // 承运商 PRO 号
	BolNumber     string `json:"bol_number,omitempty"` // 整车级 BOL 号

	Status       string     `gorm:"index" json:"status,omitempty"` // C=完成 R=放行
	ShipDate     *time.Time `json:"ship_date,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Lpns []Lpn `gorm:"foreignKey:ShipmentID;references:ShipmentID" json:"lpns,omitempty"` // 托盘列表
}

// TableName 指定表名
func (Shipment) TableName() string {
	return "shipments"
}

// Lpn 托盘（license plate）表
type Lpn struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	LpnID           string          `gorm:"uniqueIndex;not null" json:"lpn_id"`    // 托盘号
	ShipmentID      string          `gorm:"index;not null" json:"shipment_id"`     // 所属发运单号
	Sscc            string          `gorm:"index" json:"sscc,omitempty"`           // SSCC-18 条码值
	CaseCount       int             `json:"case_count"`                            // 箱数
	UnitCount       int             `json:"unit_count"`                            // 总件数
	Weight          decimal.Decimal `gorm:"type:decimal(20,3)" json:"weight"`      // 托盘重量
	StagingLocation string          `json:"staging_location,omitempty"`            // 集货位
	WarehouseLot    string          `json:"warehouse_lot,omitempty"`               // 仓库批号
	CustomerLot     string          `json:"customer_lot,omitempty"`                // 客户批号
	ManufactureDate *time.Time      `json:"manufacture_date,omitempty"`            // 生产日期
	BestByDate      *time.Time      `json:"best_by_date,omitempty"`                // 最佳赏味期
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	LineItems []LineItem `gorm:"foreignKey:LpnID;references:LpnID" json:"line_items,omitempty"`
}

// TableName 指定表名
func (Lpn) TableName() string {
	return "lpns"
}

// IsVirtual 判断托盘是否为计划合成托盘（无实体 LPN 行时生成）
func (l Lpn) IsVirtual() bool {
	return len(l.LpnID) > len(VirtualLpnPrefix) && l.LpnID[:len(VirtualLpnPrefix)] == VirtualLpnPrefix
}

// VirtualLpnPrefix 合成托盘号前缀
const VirtualLpnPrefix = "NO_LPN_"

// LineItem 发运行项目表
type LineItem struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	LpnID       string          `gorm:"index;not null" json:"lpn_id"`     // 所属托盘号
	LineNumber  string          `json:"line_number,omitempty"`            // 行号
	Sku         string          `gorm:"index;not null" json:"sku"`        // 内部物料号（PRTNUM）
	Description string          `json:"description,omitempty"`            // 物料描述
	Quantity    int             `json:"quantity"`                         // 件数
	CasePack    int             `json:"case_pack,omitempty"`              // 每箱件数
	Uom         string          `json:"uom,omitempty"`                    // 计量单位
	GtinBarcode string          `json:"gtin_barcode,omitempty"`           // GTIN 条码
	UpcCode     string          `json:"upc_code,omitempty"`               // UPC 码
	Weight      decimal.Decimal `gorm:"type:decimal(20,3)" json:"weight"` // 行重量
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName 指定表名
func (LineItem) TableName() string {
	return "line_items"
}
