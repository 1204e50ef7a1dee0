package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/palletprint/internal/constants"
	"github.com/palletprint/internal/job"
	"github.com/palletprint/internal/label"
	"github.com/palletprint/internal/logger"
	"github.com/palletprint/internal/models"
	"github.com/palletprint/internal/planning"
	"github.com/palletprint/internal/repository"
	"github.com/palletprint/internal/sku"
	"github.com/palletprint/internal/zpl"
)

// ShipmentPlan 发运单托盘计划预览
type ShipmentPlan struct {
	ShipmentID      string                `json:"shipment_id"`
	StagingLocation string                `json:"staging_location,omitempty"`
	Plan            planning.PlanResult   `json:"plan"`
	Rows            []planning.SkuMathRow `json:"rows"`
	LpnCount        int                   `json:"lpn_count"`
	UsingVirtual    bool                  `json:"using_virtual"`
}

// PreparedJob 构建完成、待执行的打印作业
type PreparedJob struct {
	Mode           string
	SourceID       string
	Tasks          []job.PrintTask
	RoutingContext map[string]string
}

// PrepareService 作业准备服务
//
// 负责把发运单 / 整车调度单展开成有序任务列表：
// 取数、托盘计划、字段映射、模板渲染都在这一步完成，
// 执行阶段拿到的任务已经是可直接投递的 ZPL。
type PrepareService struct {
	shipmentRepo    repository.ShipmentRepository
	footprintRepo   repository.FootprintRepository
	carrierMoveRepo repository.CarrierMoveRepository
	template        *zpl.Template
	matrix          *sku.Matrix
	locations       *sku.LocationMatrix
	site            label.Site
}

// NewPrepareService 创建作业准备服务
func NewPrepareService(
	shipmentRepo repository.ShipmentRepository,
	footprintRepo repository.FootprintRepository,
	carrierMoveRepo repository.CarrierMoveRepository,
	template *zpl.Template,
	matrix *sku.Matrix,
	locations *sku.LocationMatrix,
	site label.Site,
) *PrepareService {
	return &PrepareService{
		shipmentRepo:    shipmentRepo,
		footprintRepo:   footprintRepo,
		carrierMoveRepo: carrierMoveRepo,
		template:        template,
		matrix:          matrix,
		locations:       locations,
		site:            site,
	}
}

// PlanShipment 计算发运单的托盘计划预览
func (s *PrepareService) PlanShipment(shipmentID string) (*ShipmentPlan, error) {
	shipment, err := s.shipmentRepo.GetWithDetails(shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}

	footprints, err := s.footprintRepo.ListByShipment(shipmentID)
	if err != nil {
		return nil, err
	}

	plan := &ShipmentPlan{
		ShipmentID:      shipment.ShipmentID,
		StagingLocation: shipment.DestinationLocation,
		Plan:            planning.Plan(footprints),
		Rows:            planning.MathRows(footprints),
		LpnCount:        len(shipment.Lpns),
		UsingVirtual:    len(shipment.Lpns) == 0,
	}
	return plan, nil
}

// BuildShipmentJob 构建单发运单打印作业（托盘标签 + 一张分拣信息签）
func (s *PrepareService) BuildShipmentJob(shipmentID string) (*PreparedJob, error) {
	shipment, lpns, err := s.loadPrintableShipment(shipmentID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.buildPalletTasks(shipment, lpns, nil, 0)
	if err != nil {
		return nil, err
	}

	tasks = append(tasks, job.PrintTask{
		Kind:     constants.TaskKindStopInfoTag,
		FileName: fmt.Sprintf("info-shipment-%s.zpl", label.SafeSlug(shipment.ShipmentID)),
		Zpl: label.BuildShipmentInfoTag(label.ShipmentInfoTagData{
			ShipmentID:    shipment.ShipmentID,
			CarrierMoveID: shipment.CarrierMoveID,
			LabelCount:    len(lpns),
			ShipToName:    shipment.ShipToName,
			ShipToAddress: label.ShipToAddressLine(shipment),
		}),
		PayloadID: shipment.ShipmentID + ":info",
	})

	return &PreparedJob{
		Mode:           constants.JobModeShipment,
		SourceID:       shipment.ShipmentID,
		Tasks:          tasks,
		RoutingContext: s.routingContext(shipment),
	}, nil
}

// carrierStop 整车调度单中一个已分组的停靠
type carrierStop struct {
	position     int
	stopSequence *int
	shipmentIDs  []string
}

// BuildCarrierMoveJob 构建整车打印作业
//
// 每个停靠贡献自己的托盘标签和一张停靠信息签，
// 末尾追加一张整车汇总终签。
func (s *PrepareService) BuildCarrierMoveJob(carrierMoveID string) (*PreparedJob, error) {
	stops, err := s.groupStops(carrierMoveID)
	if err != nil {
		return nil, err
	}

	var tasks []job.PrintTask
	var routingContext map[string]string
	finalStops := make([]label.FinalInfoTagStop, 0, len(stops))

	for _, stop := range stops {
		var stopShipToName, stopShipToAddress string
		stopLabelCount := 0

		for _, shipmentID := range stop.shipmentIDs {
			shipment, lpns, err := s.loadPrintableShipment(shipmentID)
			if err != nil {
				return nil, fmt.Errorf("stop %d shipment %s: %w", stop.position, shipmentID, err)
			}
			palletTasks, err := s.buildPalletTasks(shipment, lpns, stop.stopSequence, stop.position)
			if err != nil {
				return nil, fmt.Errorf("stop %d shipment %s: %w", stop.position, shipmentID, err)
			}
			tasks = append(tasks, palletTasks...)
			stopLabelCount += len(palletTasks)

			if stopShipToName == "" {
				stopShipToName = shipment.ShipToName
				stopShipToAddress = label.ShipToAddressLine(shipment)
			}
			if routingContext == nil {
				routingContext = s.routingContext(shipment)
			}
		}

		tasks = append(tasks, job.PrintTask{
			Kind:     constants.TaskKindStopInfoTag,
			FileName: fmt.Sprintf("info-stop-%02d-of-%02d.zpl", stop.position, len(stops)),
			Zpl: label.BuildStopInfoTag(label.StopInfoTagData{
				CarrierMoveID: carrierMoveID,
				StopPosition:  stop.position,
				TotalStops:    len(stops),
				StopSequence:  stop.stopSequence,
				ShipmentIDs:   stop.shipmentIDs,
				ShipToName:    stopShipToName,
				ShipToAddress: stopShipToAddress,
			}),
			PayloadID: fmt.Sprintf("%s stop %d:info", carrierMoveID, stop.position),
		})
		finalStops = append(finalStops, label.FinalInfoTagStop{
			StopPosition: stop.position,
			ShipmentIDs:  stop.shipmentIDs,
		})
		logger.Infow("carrier_stop_prepared",
			"carrier_move_id", carrierMoveID,
			"stop_position", stop.position,
			"shipments", len(stop.shipmentIDs),
			"labels", stopLabelCount,
		)
	}

	tasks = append(tasks, job.PrintTask{
		Kind:      constants.TaskKindFinalInfoTag,
		FileName:  fmt.Sprintf("info-final-cmid-%s.zpl", label.SafeSlug(carrierMoveID)),
		Zpl:       label.BuildFinalInfoTag(carrierMoveID, finalStops),
		PayloadID: carrierMoveID + ":final",
	})

	return &PreparedJob{
		Mode:           constants.JobModeCarrierMove,
		SourceID:       carrierMoveID,
		Tasks:          tasks,
		RoutingContext: routingContext,
	}, nil
}

// BuildQueueJob 构建混合批量作业：来源既可以是发运单也可以是整车调度单
func (s *PrepareService) BuildQueueJob(sourceIDs []string) (*PreparedJob, error) {
	var tasks []job.PrintTask
	var routingContext map[string]string
	sources := make([]string, 0, len(sourceIDs))

	for _, sourceID := range sourceIDs {
		trimmed := strings.TrimSpace(sourceID)
		if trimmed == "" {
			continue
		}
		sources = append(sources, trimmed)

		exists, err := s.shipmentRepo.Exists(trimmed)
		if err != nil {
			return nil, err
		}
		var prepared *PreparedJob
		if exists {
			prepared, err = s.BuildShipmentJob(trimmed)
		} else {
			prepared, err = s.BuildCarrierMoveJob(trimmed)
		}
		if err != nil {
			return nil, fmt.Errorf("queue source %s: %w", trimmed, err)
		}
		tasks = append(tasks, prepared.Tasks...)
		if routingContext == nil {
			routingContext = prepared.RoutingContext
		}
	}

	if len(tasks) == 0 {
		return nil, ErrNoPrintableTasks
	}
	return &PreparedJob{
		Mode:           constants.JobModeQueue,
		SourceID:       strings.Join(sources, ","),
		Tasks:          tasks,
		RoutingContext: routingContext,
	}, nil
}

// loadPrintableShipment 取发运单及可打印托盘列表，必要时合成托盘
func (s *PrepareService) loadPrintableShipment(shipmentID string) (*models.Shipment, []models.Lpn, error) {
	shipment, err := s.shipmentRepo.GetWithDetails(shipmentID)
	if err != nil {
		return nil, nil, err
	}
	if shipment == nil {
		return nil, nil, ErrShipmentNotFound
	}

	lpns := shipment.Lpns
	if len(lpns) == 0 {
		footprints, err := s.footprintRepo.ListByShipment(shipmentID)
		if err != nil {
			return nil, nil, err
		}
		lpns = planning.BuildVirtualLpns(shipment, footprints)
		if len(lpns) > 0 {
			logger.Infow("virtual_lpns_built",
				"shipment_id", shipmentID,
				"pallets", len(lpns),
			)
		}
	}
	if len(lpns) == 0 {
		return nil, nil, ErrNoPrintableTasks
	}
	return shipment, lpns, nil
}

// buildPalletTasks 为发运单的每块托盘渲染标签任务
//
// stopSequence 非空时覆盖发运单自带的停靠序号（整车作业场景）。
func (s *PrepareService) buildPalletTasks(shipment *models.Shipment, lpns []models.Lpn, stopSequence *int, stopPosition int) ([]job.PrintTask, error) {
	footprints, err := s.footprintRepo.ListByShipment(shipment.ShipmentID)
	if err != nil {
		return nil, err
	}
	builder := label.NewBuilder(s.matrix, s.locations, s.site, planning.BuildFootprintMap(footprints))

	labelShipment := *shipment
	if stopSequence != nil {
		labelShipment.StopSequence = stopSequence
	}

	total := len(lpns)
	tasks := make([]job.PrintTask, 0, total)
	for i := range lpns {
		lpn := lpns[i]
		fields, err := builder.Build(&labelShipment, &lpn, i, total)
		if err != nil {
			return nil, fmt.Errorf("pallet %s: %w", lpn.LpnID, err)
		}
		rendered, err := zpl.Render(s.template, fields)
		if err != nil {
			return nil, fmt.Errorf("pallet %s: %w", lpn.LpnID, err)
		}

		payload := shipment.ShipmentID + ":" + lpn.LpnID
		if stopPosition > 0 {
			payload += " stop " + strconv.Itoa(stopPosition)
		}
		tasks = append(tasks, job.PrintTask{
			Kind:      constants.TaskKindPalletLabel,
			FileName:  fmt.Sprintf("%s_%s_%d_of_%d.zpl", shipment.ShipmentID, lpn.LpnID, i+1, total),
			Zpl:       rendered,
			PayloadID: payload,
		})
	}
	return tasks, nil
}

// groupStops 把调度单引用行按停靠分组并赋 1 起的顺位
func (s *PrepareService) groupStops(carrierMoveID string) ([]carrierStop, error) {
	rows, err := s.carrierMoveRepo.ListStops(carrierMoveID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrCarrierMoveEmpty
	}

	type bucket struct {
		stopSequence *int
		seen         map[string]bool
		shipmentIDs  []string
	}
	var order []string
	buckets := make(map[string]*bucket)

	for _, row := range rows {
		key := row.StopID
		if key == "" {
			if seq := effectiveStopSequence(row); seq != nil {
				key = "seq:" + strconv.Itoa(*seq)
			} else {
				key = "shipment:" + row.ShipmentID
			}
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{stopSequence: effectiveStopSequence(row), seen: make(map[string]bool)}
			buckets[key] = b
			order = append(order, key)
		}
		if row.ShipmentID != "" && !b.seen[row.ShipmentID] {
			b.seen[row.ShipmentID] = true
			b.shipmentIDs = append(b.shipmentIDs, row.ShipmentID)
		}
	}

	stops := make([]carrierStop, 0, len(order))
	for i, key := range order {
		b := buckets[key]
		sort.Strings(b.shipmentIDs)
		stops = append(stops, carrierStop{
			position:     i + 1,
			stopSequence: b.stopSequence,
			shipmentIDs:  b.shipmentIDs,
		})
	}
	return stops, nil
}

// effectiveStopSequence TMS 序号优先，缺失回退仓内序号
func effectiveStopSequence(row models.CarrierMoveStop) *int {
	if row.TmsStopSequence != nil {
		return row.TmsStopSequence
	}
	return row.StopSequence
}

func (s *PrepareService) routingContext(shipment *models.Shipment) map[string]string {
	staging := shipment.DestinationLocation
	if staging == "" {
		for _, lpn := range shipment.Lpns {
			if lpn.StagingLocation != "" {
				staging = lpn.StagingLocation
				break
			}
		}
	}
	return map[string]string{
		constants.MatchFieldStagingLocation: staging,
		constants.MatchFieldCarrierCode:     shipment.CarrierCode,
		constants.MatchFieldCustomerName:    shipment.ShipToName,
	}
}
