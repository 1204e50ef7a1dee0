package job

// PrintTask 任务列表中的单个打印条目
//
// Zpl 在任务构建阶段一次性渲染完成，执行阶段只做投递，
// 这样断点续打不依赖数据库状态，校验点文件即完整作业。
type PrintTask struct {
	Kind      string `json:"kind"`       // PALLET_LABEL / STOP_INFO_TAG / FINAL_INFO_TAG
	FileName  string `json:"file_name"`  // 文件输出模式下的落盘文件名
	Zpl       string `json:"zpl"`        // 渲染完成的 ZPL 文档
	PayloadID string `json:"payload_id"` // 关联标识（如 shipmentId:lpnId）
}

// FailedTask 继续执行策略下记录的失败清单条目
type FailedTask struct {
	Index     int    `json:"index"`
	PayloadID string `json:"payload_id"`
	Error     string `json:"error"`
}
