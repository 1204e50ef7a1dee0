package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/palletprint/internal/logger"
	"github.com/palletprint/internal/provider"
	"github.com/palletprint/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPrintJobRun, c.handlePrintJobRun)
}

func (c *Consumer) handlePrintJobRun(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_print_job_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PrintJobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_print_job_unmarshal_failed", "error", err)
		return err
	}
	if payload.Resume && strings.TrimSpace(payload.JobID) == "" {
		logger.Debugw("worker_print_job_skip_resume_without_id")
		return nil
	}
	if !payload.Resume && strings.TrimSpace(payload.Mode) == "" {
		logger.Debugw("worker_print_job_skip_empty_mode")
		return nil
	}
	if c.PrintService == nil {
		logger.Warnw("worker_print_job_skip_print_service_nil", "job_id", payload.JobID)
		return nil
	}

	logger.Infow("worker_print_job_start",
		"job_id", payload.JobID,
		"mode", payload.Mode,
		"source_id", payload.SourceID,
		"resume", payload.Resume,
	)
	if err := c.PrintService.RunFromPayload(ctx, payload); err != nil {
		// 作业已在校验点里记下断点，重试交给续打而不是队列
		logger.Warnw("worker_print_job_failed",
			"job_id", payload.JobID,
			"mode", payload.Mode,
			"source_id", payload.SourceID,
			"error", err,
		)
		return nil
	}
	return nil
}
