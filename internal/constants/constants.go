package constants

// 打印任务来源常量
const (
	JobModeShipment    = "SHIPMENT"
	JobModeCarrierMove = "CARRIER_MOVE"
	JobModeQueue       = "QUEUE"
)

// 打印任务条目类型常量
const (
	TaskKindPalletLabel  = "PALLET_LABEL"
	TaskKindStopInfoTag  = "STOP_INFO_TAG"
	TaskKindFinalInfoTag = "FINAL_INFO_TAG"
)

// 打印失败策略常量
const (
	FailurePolicyFailFast = "fail_fast"
	FailurePolicyContinue = "continue"
)

// 路由匹配方式常量
const (
	MatchTypeEquals     = "EQUALS"
	MatchTypeStartsWith = "STARTS_WITH"
	MatchTypeContains   = "CONTAINS"
)

// 路由上下文字段常量
const (
	MatchFieldStagingLocation = "stagingLocation"
	MatchFieldCarrierCode     = "carrierCode"
	MatchFieldCustomerName    = "customerName"
)

// 队列常量
const (
	QueuePrint      = "print"
	TaskPrintJobRun = "print_job:run"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "pp"
)

// 打印输出模式常量
const (
	OutputModeNetwork = "network"
	OutputModeFile    = "file"
)
