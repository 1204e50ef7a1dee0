package service

import (
	"context"
	"strings"
	"time"

	"github.com/palletprint/internal/cache"
	"github.com/palletprint/internal/config"
	"github.com/palletprint/internal/constants"
	"github.com/palletprint/internal/job"
	"github.com/palletprint/internal/logger"
	"github.com/palletprint/internal/printing"
	"github.com/palletprint/internal/queue"
)

// CreateJobInput 建立打印作业的请求参数
type CreateJobInput struct {
	Mode        string   `json:"mode" binding:"required"`
	SourceID    string   `json:"source_id"`
	SourceIDs   []string `json:"source_ids"`
	PrinterID   string   `json:"printer_id"`    // 手工指定打印机，空则走路由
	PrintToFile bool     `json:"print_to_file"` // 文件输出模式，不投递网络
}

// PrintService 打印作业服务
//
// 把准备好的任务列表落成校验点并驱动执行器，
// 同时维护 Redis 进度快照供前端轮询。
type PrintService struct {
	prepare      *PrepareService
	router       *printing.Router
	deliverer    *printing.Deliverer
	orchestrator *job.Orchestrator
	store        *job.Store
	queueClient  *queue.Client
	cfg          config.PrintingConfig
}

// NewPrintService 创建打印作业服务
func NewPrintService(
	prepare *PrepareService,
	router *printing.Router,
	deliverer *printing.Deliverer,
	orchestrator *job.Orchestrator,
	store *job.Store,
	queueClient *queue.Client,
	cfg config.PrintingConfig,
) *PrintService {
	return &PrintService{
		prepare:      prepare,
		router:       router,
		deliverer:    deliverer,
		orchestrator: orchestrator,
		store:        store,
		queueClient:  queueClient,
		cfg:          cfg,
	}
}

// Deliverer 返回投递器（可达性探测等场景使用）
func (s *PrintService) Deliverer() *printing.Deliverer {
	return s.deliverer
}

// Router 返回打印机路由器
func (s *PrintService) Router() *printing.Router {
	return s.router
}

// CreateAndRun 同步建立并执行打印作业
func (s *PrintService) CreateAndRun(ctx context.Context, input CreateJobInput) (*job.Result, error) {
	prepared, err := s.prepareByMode(input)
	if err != nil {
		return nil, err
	}

	var printer printing.Printer
	if !input.PrintToFile {
		printer, err = s.resolvePrinter(input.PrinterID, prepared.RoutingContext)
		if err != nil {
			return nil, err
		}
	}

	cp := s.newCheckpoint(prepared, printer, input.PrintToFile)
	if err := s.store.Save(cp); err != nil {
		return nil, err
	}
	s.snapshot(ctx, cp)

	result, runErr := s.orchestrator.Run(ctx, cp, printer)
	s.snapshot(ctx, cp)
	return result, runErr
}

// Enqueue 把作业推入后台打印队列
func (s *PrintService) Enqueue(input CreateJobInput) error {
	if !s.queueClient.Enabled() {
		return ErrQueueDisabled
	}
	return s.queueClient.EnqueuePrintJob(queue.PrintJobPayload{
		Mode:        input.Mode,
		SourceID:    input.SourceID,
		SourceIDs:   input.SourceIDs,
		PrinterID:   input.PrinterID,
		PrintToFile: input.PrintToFile,
	})
}

// Resume 续打一个中断的作业
func (s *PrintService) Resume(ctx context.Context, jobID string) (*job.Result, error) {
	cp, err := s.store.Load(jobID)
	if err != nil {
		return nil, err
	}

	var printer printing.Printer
	if !cp.PrintToFile {
		printer, err = s.router.FindPrinter(cp.PrinterID)
		if err != nil {
			return nil, err
		}
	}

	result, runErr := s.orchestrator.Resume(ctx, jobID, printer)
	if reloaded, loadErr := s.store.Load(jobID); loadErr == nil {
		s.snapshot(ctx, reloaded)
	} else if runErr == nil {
		// 作业完成后校验点已删除，补一份完成态快照
		cp.Completed = true
		cp.NextTaskIndex = len(cp.Tasks)
		cp.LastError = nil
		s.snapshot(ctx, cp)
	}
	return result, runErr
}

// ListIncomplete 列出全部可续打作业
func (s *PrintService) ListIncomplete() ([]*job.Checkpoint, error) {
	return s.store.ListIncomplete()
}

// GetJob 查询作业进度：优先取 Redis 快照，未命中回读校验点
func (s *PrintService) GetJob(ctx context.Context, jobID string) (*cache.JobState, error) {
	state, hit, err := cache.GetJobState(ctx, jobID)
	if err != nil {
		logger.Warnw("job_state_cache_read_failed", "job_id", jobID, "error", err)
	}
	if hit {
		return state, nil
	}

	cp, err := s.store.Load(jobID)
	if err != nil {
		return nil, ErrNotFound
	}
	return cache.BuildJobState(cp), nil
}

// RunFromPayload 处理队列任务载荷（worker 回调）
func (s *PrintService) RunFromPayload(ctx context.Context, payload queue.PrintJobPayload) error {
	if payload.Resume {
		_, err := s.Resume(ctx, payload.JobID)
		return err
	}
	_, err := s.CreateAndRun(ctx, CreateJobInput{
		Mode:        payload.Mode,
		SourceID:    payload.SourceID,
		SourceIDs:   payload.SourceIDs,
		PrinterID:   payload.PrinterID,
		PrintToFile: payload.PrintToFile,
	})
	return err
}

func (s *PrintService) prepareByMode(input CreateJobInput) (*PreparedJob, error) {
	switch strings.ToUpper(strings.TrimSpace(input.Mode)) {
	case constants.JobModeShipment:
		return s.prepare.BuildShipmentJob(input.SourceID)
	case constants.JobModeCarrierMove:
		return s.prepare.BuildCarrierMoveJob(input.SourceID)
	case constants.JobModeQueue:
		return s.prepare.BuildQueueJob(input.SourceIDs)
	default:
		return nil, ErrUnknownJobMode
	}
}

// resolvePrinter 手工指定（含全局强制）优先，否则按路由规则选
func (s *PrintService) resolvePrinter(override string, routingContext map[string]string) (printing.Printer, error) {
	printerID := strings.TrimSpace(override)
	if printerID == "" {
		printerID = strings.TrimSpace(s.cfg.ForcePrinterID)
	}
	if printerID != "" {
		return s.router.FindPrinter(printerID)
	}
	return s.router.SelectPrinter(routingContext)
}

func (s *PrintService) newCheckpoint(prepared *PreparedJob, printer printing.Printer, printToFile bool) *job.Checkpoint {
	now := time.Now()
	var jobID string
	switch prepared.Mode {
	case constants.JobModeCarrierMove:
		jobID = job.NewCarrierMoveJobID(prepared.SourceID, now)
	case constants.JobModeQueue:
		jobID = job.NewQueueJobID(now)
	default:
		jobID = job.NewShipmentJobID(prepared.SourceID, now)
	}

	cp := &job.Checkpoint{
		ID:              jobID,
		Mode:            prepared.Mode,
		SourceID:        prepared.SourceID,
		OutputDirectory: s.cfg.OutputDir,
		PrintToFile:     printToFile,
		CreatedAt:       now,
		UpdatedAt:       now,
		Tasks:           prepared.Tasks,
	}
	if !printToFile {
		cp.PrinterID = printer.ID
		cp.PrinterEndpoint = printer.Endpoint()
	}
	return cp
}

func (s *PrintService) snapshot(ctx context.Context, cp *job.Checkpoint) {
	if err := cache.SetJobState(ctx, cache.BuildJobState(cp)); err != nil {
		logger.Warnw("job_state_cache_write_failed", "job_id", cp.ID, "error", err)
	}
}
