package worker

import (
	"context"
	"errors"

	"github.com/palletprint/internal/config"
	"github.com/palletprint/internal/logger"
	"github.com/palletprint/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	s.logResumableJobs()
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// logResumableJobs 启动时报告可续打的中断作业
func (s *Service) logResumableJobs() {
	if s.consumer == nil || s.consumer.PrintService == nil {
		return
	}
	checkpoints, err := s.consumer.PrintService.ListIncomplete()
	if err != nil {
		logger.Warnw("worker_list_incomplete_jobs_failed", "error", err)
		return
	}
	for _, cp := range checkpoints {
		logger.Infow("worker_resumable_job_found",
			"job_id", cp.ID,
			"mode", cp.Mode,
			"source_id", cp.SourceID,
			"next_task_index", cp.NextTaskIndex,
			"task_total", len(cp.Tasks),
		)
	}
}
