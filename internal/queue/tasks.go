package queue

import (
	"encoding/json"

	"github.com/palletprint/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPrintJobRun 打印作业执行任务
	TaskPrintJobRun = constants.TaskPrintJobRun
)

// PrintJobPayload 打印作业任务载荷
//
// Resume 为真时按作业号续打，否则按来源新建作业。
type PrintJobPayload struct {
	JobID       string   `json:"job_id,omitempty"`
	Mode        string   `json:"mode"`                   // SHIPMENT / CARRIER_MOVE / QUEUE
	SourceID    string   `json:"source_id,omitempty"`    // 发运单号或整车号
	SourceIDs   []string `json:"source_ids,omitempty"`   // 混合批量模式的来源列表
	PrinterID   string   `json:"printer_id,omitempty"`   // 手工指定打印机（可空）
	PrintToFile bool     `json:"print_to_file,omitempty"`
	Resume      bool     `json:"resume,omitempty"`
}

// NewPrintJobTask 创建打印作业任务
func NewPrintJobTask(payload PrintJobPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPrintJobRun, body), nil
}
