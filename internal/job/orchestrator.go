package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/palletprint/internal/constants"
	"github.com/palletprint/internal/logger"
	"github.com/palletprint/internal/printing"
)

// Transport 打印投递抽象（网络投递或测试替身）
type Transport interface {
	Print(ctx context.Context, printer printing.Printer, document []byte, correlationID string) error
}

// Result 单次执行的结果摘要
type Result struct {
	JobID         string       `json:"job_id"`
	Completed     bool         `json:"completed"`
	LabelCount    int          `json:"label_count"`
	InfoTagCount  int          `json:"info_tag_count"`
	TasksExecuted int          `json:"tasks_executed"`
	FailedTasks   []FailedTask `json:"failed_tasks,omitempty"`
}

// Orchestrator 打印作业执行器
//
// 任务严格按序执行：托盘序号必须按顺序到达打印机，
// 物理打印机本身也是串行资源。每个任务成败都落校验点。
type Orchestrator struct {
	store         *Store
	transport     Transport
	failurePolicy string

	now func() time.Time
}

// NewOrchestrator 创建作业执行器
func NewOrchestrator(store *Store, transport Transport, failurePolicy string) *Orchestrator {
	if failurePolicy != constants.FailurePolicyContinue {
		failurePolicy = constants.FailurePolicyFailFast
	}
	return &Orchestrator{
		store:         store,
		transport:     transport,
		failurePolicy: failurePolicy,
		now:           time.Now,
	}
}

// Run 从校验点当前位置开始执行作业
func (o *Orchestrator) Run(ctx context.Context, cp *Checkpoint, printer printing.Printer) (*Result, error) {
	return o.execute(ctx, cp, printer, cp.NextTaskIndex)
}

// Resume 续打一个中断的作业
//
// 起始位置回退一个任务：投递成功但校验点未落盘的崩溃场景下，
// 宁可重打一张也绝不漏打。
func (o *Orchestrator) Resume(ctx context.Context, jobID string, printer printing.Printer) (*Result, error) {
	cp, err := o.store.Load(jobID)
	if err != nil {
		return nil, err
	}
	if cp.Completed {
		return nil, fmt.Errorf("job %s already completed", jobID)
	}
	start := cp.ResumeIndex()
	logger.Infow("print_job_resume",
		"job_id", jobID,
		"resume_index", start,
		"task_total", len(cp.Tasks),
	)
	return o.execute(ctx, cp, printer, start)
}

func (o *Orchestrator) execute(ctx context.Context, cp *Checkpoint, printer printing.Printer, start int) (*Result, error) {
	result := &Result{JobID: cp.ID}

	for i := start; i < len(cp.Tasks); i++ {
		task := cp.Tasks[i]
		result.TasksExecuted++

		err := o.runTask(ctx, cp, printer, task)
		if err == nil {
			cp.NextTaskIndex = i + 1
			cp.UpdatedAt = o.now()
			cp.LastError = nil
			if saveErr := o.store.Save(cp); saveErr != nil {
				return result, saveErr
			}
			o.countTask(result, task)
			continue
		}

		msg := err.Error()
		cp.LastError = &msg
		cp.UpdatedAt = o.now()
		cp.Completed = false

		if o.failurePolicy == constants.FailurePolicyFailFast {
			if saveErr := o.store.Save(cp); saveErr != nil {
				logger.Errorw("checkpoint_save_failed", "job_id", cp.ID, "error", saveErr)
			}
			logger.Warnw("print_job_paused",
				"job_id", cp.ID,
				"task_index", i,
				"payload_id", task.PayloadID,
				"error", err,
			)
			return result, fmt.Errorf("task %d (%s) failed: %w", i, task.PayloadID, err)
		}

		// 继续执行策略：记入失败清单后推进任务下标
		cp.FailedTasks = append(cp.FailedTasks, FailedTask{Index: i, PayloadID: task.PayloadID, Error: msg})
		cp.NextTaskIndex = i + 1
		if saveErr := o.store.Save(cp); saveErr != nil {
			return result, saveErr
		}
		logger.Warnw("print_job_task_skipped",
			"job_id", cp.ID,
			"task_index", i,
			"payload_id", task.PayloadID,
			"error", err,
		)
	}

	cp.Completed = true
	cp.UpdatedAt = o.now()
	result.Completed = true
	result.FailedTasks = cp.FailedTasks

	// 全部成功的作业不再需要校验点；带失败清单的保留供排查
	if len(cp.FailedTasks) == 0 {
		if err := o.store.Remove(cp.ID); err != nil {
			logger.Warnw("checkpoint_remove_failed", "job_id", cp.ID, "error", err)
		}
	} else if err := o.store.Save(cp); err != nil {
		return result, err
	}

	logger.Infow("print_job_completed",
		"job_id", cp.ID,
		"labels", result.LabelCount,
		"info_tags", result.InfoTagCount,
		"failed_tasks", len(cp.FailedTasks),
	)
	return result, nil
}

// runTask 执行单个任务：先落盘 ZPL 工件，网络模式下再投递
func (o *Orchestrator) runTask(ctx context.Context, cp *Checkpoint, printer printing.Printer, task PrintTask) error {
	if cp.OutputDirectory != "" {
		if err := os.MkdirAll(cp.OutputDirectory, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		path := filepath.Join(cp.OutputDirectory, task.FileName)
		if err := os.WriteFile(path, []byte(task.Zpl), 0o644); err != nil {
			return fmt.Errorf("write label file: %w", err)
		}
	}
	if cp.PrintToFile {
		return nil
	}
	return o.transport.Print(ctx, printer, []byte(task.Zpl), task.PayloadID)
}

func (o *Orchestrator) countTask(result *Result, task PrintTask) {
	if task.Kind == constants.TaskKindPalletLabel {
		result.LabelCount++
	} else {
		result.InfoTagCount++
	}
}
