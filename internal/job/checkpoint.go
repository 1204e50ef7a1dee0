package job

import (
	"fmt"
	"time"
)

// jobTimestampFormat 任务号里的时间戳格式
const jobTimestampFormat = "20060102-150405"

// CheckpointError 校验点文件不可读或内容损坏
type CheckpointError struct {
	ID   string
	Path string
	Err  error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %s unusable (%s): %v", e.ID, e.Path, e.Err)
}

func (e *CheckpointError) Unwrap() error {
	return e.Err
}

// Checkpoint 打印作业的断点记录
//
// 每完成一个任务原子重写一次，是进程崩溃后唯一的进度凭据。
// 字段全部可选解码，旧版本写出的文件照常可读。
type Checkpoint struct {
	ID              string       `json:"id"`
	Mode            string       `json:"mode,omitempty"`      // SHIPMENT / CARRIER_MOVE / QUEUE
	SourceID        string       `json:"source_id,omitempty"` // 发运单号或整车号
	OutputDirectory string       `json:"output_directory,omitempty"`
	PrintToFile     bool         `json:"print_to_file,omitempty"`
	PrinterID       string       `json:"printer_id,omitempty"`
	PrinterEndpoint string       `json:"printer_endpoint,omitempty"`
	CreatedAt       time.Time    `json:"created_at,omitempty"`
	UpdatedAt       time.Time    `json:"updated_at,omitempty"`
	Completed       bool         `json:"completed"`
	NextTaskIndex   int          `json:"next_task_index"`
	Tasks           []PrintTask  `json:"tasks,omitempty"`
	LastError       *string      `json:"last_error,omitempty"`
	FailedTasks     []FailedTask `json:"failed_tasks,omitempty"`
}

// ResumeIndex 返回续打起始任务下标
//
// 约定从最后一个已记录完成的任务重打一张：投递成功但校验点
// 未写盘就崩溃的场景下，宁可重复一张也不漏一张。
func (c *Checkpoint) ResumeIndex() int {
	idx := c.NextTaskIndex - 1
	if idx < 0 {
		return 0
	}
	return idx
}

// RemainingTasks 返回尚未执行的任务数
func (c *Checkpoint) RemainingTasks() int {
	remaining := len(c.Tasks) - c.NextTaskIndex
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NewShipmentJobID 生成发运单作业号
func NewShipmentJobID(shipmentID string, now time.Time) string {
	return fmt.Sprintf("shipment-%s-%s", shipmentID, now.Format(jobTimestampFormat))
}

// NewCarrierMoveJobID 生成整车作业号
func NewCarrierMoveJobID(carrierMoveID string, now time.Time) string {
	return fmt.Sprintf("carrier-%s-%s", carrierMoveID, now.Format(jobTimestampFormat))
}

// NewQueueJobID 生成混合批量作业号
func NewQueueJobID(now time.Time) string {
	return fmt.Sprintf("queue-%s", now.Format(jobTimestampFormat))
}
