package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/palletprint/internal/job"
)

const jobStateCacheTTL = 24 * time.Hour

// JobState 打印作业进度快照
// 供前端轮询作业进度，避免每次都扫描校验点目录
// 权威进度始终以校验点文件为准，这里只是加速层
type JobState struct {
	JobID         string `json:"job_id"`
	Mode          string `json:"mode"`
	SourceID      string `json:"source_id"`
	PrinterID     string `json:"printer_id"`
	Completed     bool   `json:"completed"`
	NextTaskIndex int    `json:"next_task_index"`
	TaskTotal     int    `json:"task_total"`
	LastError     string `json:"last_error,omitempty"`
	FailedTasks   int    `json:"failed_tasks"`
	UpdatedAt     int64  `json:"updated_at"`
}

func jobStateKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}

// BuildJobState 从校验点构建进度快照
func BuildJobState(cp *job.Checkpoint) *JobState {
	if cp == nil {
		return nil
	}
	state := &JobState{
		JobID:         cp.ID,
		Mode:          cp.Mode,
		SourceID:      cp.SourceID,
		PrinterID:     cp.PrinterID,
		Completed:     cp.Completed,
		NextTaskIndex: cp.NextTaskIndex,
		TaskTotal:     len(cp.Tasks),
		FailedTasks:   len(cp.FailedTasks),
		UpdatedAt:     time.Now().Unix(),
	}
	if cp.LastError != nil {
		state.LastError = *cp.LastError
	}
	return state
}

// GetJobState 获取作业进度快照
func GetJobState(ctx context.Context, jobID string) (*JobState, bool, error) {
	if jobID == "" {
		return nil, false, nil
	}
	var state JobState
	hit, err := GetJSON(ctx, jobStateKey(jobID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetJobState 写入作业进度快照
func SetJobState(ctx context.Context, state *JobState) error {
	if state == nil || state.JobID == "" {
		return nil
	}
	return SetJSON(ctx, jobStateKey(state.JobID), state, jobStateCacheTTL)
}
