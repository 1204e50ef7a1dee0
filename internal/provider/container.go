package provider

import (
	"github.com/palletprint/internal/cache"
	"github.com/palletprint/internal/config"
	"github.com/palletprint/internal/job"
	"github.com/palletprint/internal/label"
	"github.com/palletprint/internal/logger"
	"github.com/palletprint/internal/models"
	"github.com/palletprint/internal/printing"
	"github.com/palletprint/internal/queue"
	"github.com/palletprint/internal/repository"
	"github.com/palletprint/internal/service"
	"github.com/palletprint/internal/sku"
	"github.com/palletprint/internal/zpl"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ShipmentRepo    repository.ShipmentRepository
	FootprintRepo   repository.FootprintRepository
	CarrierMoveRepo repository.CarrierMoveRepository

	// Printing infrastructure
	Router    *printing.Router
	Deliverer *printing.Deliverer
	JobStore  *job.Store

	// Services
	AuthService    *service.AuthService
	PrepareService *service.PrepareService
	PrintService   *service.PrintService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initPrinting()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.FootprintRepo = repository.NewFootprintRepository(db)
	c.CarrierMoveRepo = repository.NewCarrierMoveRepository(db)
}

func (c *Container) initPrinting() {
	cfg := c.Config

	router, err := printing.LoadRouter(cfg.Site.ActiveCode, cfg.Site.ConfigDir)
	if err != nil {
		logger.Errorw("provider_load_printer_routing_failed",
			"site", cfg.Site.ActiveCode,
			"config_dir", cfg.Site.ConfigDir,
			"error", err,
		)
		panic(err)
	}
	c.Router = router
	c.Deliverer = printing.NewDeliverer(cfg.Printing)
	c.JobStore = job.NewStore(cfg.Printing.CheckpointDir)
}

func (c *Container) initServices() {
	cfg := c.Config

	registry, err := zpl.LoadRegistry(cfg.Site.TemplateDir)
	if err != nil {
		logger.Errorw("provider_load_templates_failed", "dir", cfg.Site.TemplateDir, "error", err)
		panic(err)
	}
	template, ok := registry.Get(cfg.Site.LabelTemplate)
	if !ok {
		logger.Errorw("provider_label_template_missing",
			"template", cfg.Site.LabelTemplate,
			"available", registry.Names(),
		)
		panic("label template not found: " + cfg.Site.LabelTemplate)
	}

	// 客户映射矩阵缺失时降级为空映射，标签上客户列留白
	var matrix *sku.Matrix
	if path := sku.ResolveMatrixPath(cfg.Site.SkuMatrixCandidates); path != "" {
		matrix, err = sku.LoadMatrix(path)
		if err != nil {
			logger.Warnw("provider_load_sku_matrix_failed", "file", path, "error", err)
			matrix = nil
		}
	} else {
		logger.Warnw("provider_sku_matrix_not_found", "candidates", cfg.Site.SkuMatrixCandidates)
	}

	var locations *sku.LocationMatrix
	if cfg.Site.LocationMatrixFile != "" {
		locations, err = sku.LoadLocationMatrix(cfg.Site.LocationMatrixFile)
		if err != nil {
			logger.Warnw("provider_load_location_matrix_failed", "file", cfg.Site.LocationMatrixFile, "error", err)
			locations = nil
		}
	}

	c.AuthService = service.NewAuthService(cfg)
	c.PrepareService = service.NewPrepareService(
		c.ShipmentRepo,
		c.FootprintRepo,
		c.CarrierMoveRepo,
		template,
		matrix,
		locations,
		label.SiteFromConfig(cfg.Site),
	)

	orchestrator := job.NewOrchestrator(c.JobStore, c.Deliverer, cfg.Printing.FailurePolicy)
	c.PrintService = service.NewPrintService(
		c.PrepareService,
		c.Router,
		c.Deliverer,
		orchestrator,
		c.JobStore,
		c.QueueClient,
		cfg.Printing,
	)
}
