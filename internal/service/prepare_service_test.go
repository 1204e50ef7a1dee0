package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/palletprint/internal/constants"
	"github.com/palletprint/internal/label"
	"github.com/palletprint/internal/models"
	"github.com/palletprint/internal/repository"
	"github.com/palletprint/internal/zpl"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const testTemplateContent = "^XA\n" +
	"^FO10,10^FD{shipToName}^FS\n" +
	"^FO10,60^FD{carrierCode}^FS\n" +
	"^FO10,110^FD{lpnId}^FS\n" +
	"^FO10,160^FD{stopSequence}^FS\n" +
	"^FO10,210^FDPALLET {palletSeq} OF {palletTotal}^FS\n" +
	"^XZ\n"

func setupPrepareTest(t *testing.T) (*PrepareService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:prepare_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Shipment{},
		&models.Lpn{},
		&models.LineItem{},
		&models.ShipmentSkuFootprint{},
		&models.CarrierMoveStop{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	template, err := zpl.NewTemplate("pallet-grid-label", testTemplateContent)
	if err != nil {
		t.Fatalf("parse template failed: %v", err)
	}

	site := label.Site{
		ShipFromName:         "NORTHPOINT BEVERAGES, INC.",
		ShipFromAddress:      "20405 E Business Parkway Rd",
		ShipFromCityStateZip: "Walnut, CA 91789",
	}
	svc := NewPrepareService(
		repository.NewShipmentRepository(db),
		repository.NewFootprintRepository(db),
		repository.NewCarrierMoveRepository(db),
		template,
		nil,
		nil,
		site,
	)
	return svc, db
}

func seedShipment(t *testing.T, db *gorm.DB, shipmentID string, lpnCount int) {
	t.Helper()
	seq := 1
	shipment := models.Shipment{
		ShipmentID:          shipmentID,
		ShipToName:          "ROSSI DISTRIBUTION",
		ShipToAddress1:      "100 Dock Rd",
		ShipToCity:          "Mississauga",
		ShipToState:         "ON",
		ShipToZip:           "L5T 2N7",
		CarrierCode:         "MDLE",
		DestinationLocation: "ROSSI",
		StopSequence:        &seq,
	}
	if err := db.Create(&shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}
	for i := 1; i <= lpnCount; i++ {
		lpn := models.Lpn{
			LpnID:      fmt.Sprintf("%s-LPN%02d", shipmentID, i),
			ShipmentID: shipmentID,
			Sscc:       fmt.Sprintf("%018d", i),
			UnitCount:  60,
			Weight:     decimal.NewFromInt(500),
		}
		if err := db.Create(&lpn).Error; err != nil {
			t.Fatalf("create lpn failed: %v", err)
		}
		if err := db.Create(&models.LineItem{
			LpnID:    lpn.LpnID,
			Sku:      "197920",
			Quantity: 60,
			Uom:      "EA",
		}).Error; err != nil {
			t.Fatalf("create line item failed: %v", err)
		}
	}
}

func TestBuildShipmentJobRendersAllPallets(t *testing.T) {
	svc, db := setupPrepareTest(t)
	seedShipment(t, db, "SID1", 2)

	prepared, err := svc.BuildShipmentJob("SID1")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if prepared.Mode != constants.JobModeShipment || prepared.SourceID != "SID1" {
		t.Fatalf("job identity wrong: %+v", prepared)
	}
	if len(prepared.Tasks) != 3 {
		t.Fatalf("tasks want 3 (2 labels + info tag) got %d", len(prepared.Tasks))
	}

	first := prepared.Tasks[0]
	if first.Kind != constants.TaskKindPalletLabel {
		t.Fatalf("first task kind want pallet label got %s", first.Kind)
	}
	if first.FileName != "SID1_SID1-LPN01_1_of_2.zpl" {
		t.Fatalf("file name wrong: %s", first.FileName)
	}
	if first.PayloadID != "SID1:SID1-LPN01" {
		t.Fatalf("payload wrong: %s", first.PayloadID)
	}
	if !strings.Contains(first.Zpl, "SID1-LPN01") || !strings.Contains(first.Zpl, "PALLET 1 OF 2") {
		t.Fatalf("rendered label wrong:\n%s", first.Zpl)
	}

	last := prepared.Tasks[2]
	if last.Kind != constants.TaskKindStopInfoTag || last.FileName != "info-shipment-sid1.zpl" {
		t.Fatalf("info tag task wrong: %+v", last)
	}
	if prepared.RoutingContext[constants.MatchFieldStagingLocation] != "ROSSI" {
		t.Fatalf("routing context staging want ROSSI got %q",
			prepared.RoutingContext[constants.MatchFieldStagingLocation])
	}
}

func TestBuildShipmentJobFallsBackToVirtualPallets(t *testing.T) {
	svc, db := setupPrepareTest(t)
	seedShipment(t, db, "SID2", 0)
	perPallet := 30
	if err := db.Create(&models.ShipmentSkuFootprint{
		ShipmentID:     "SID2",
		Sku:            "197920",
		TotalUnits:     61,
		UnitsPerPallet: &perPallet,
	}).Error; err != nil {
		t.Fatalf("create footprint failed: %v", err)
	}

	prepared, err := svc.BuildShipmentJob("SID2")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	// 61 件 / 每托 30 件 = 2 整托 + 1 残托，再加一张信息签
	if len(prepared.Tasks) != 4 {
		t.Fatalf("tasks want 4 got %d", len(prepared.Tasks))
	}
	if !strings.Contains(prepared.Tasks[0].PayloadID, models.VirtualLpnPrefix) {
		t.Fatalf("virtual pallet payload wrong: %s", prepared.Tasks[0].PayloadID)
	}
}

func TestBuildShipmentJobErrors(t *testing.T) {
	svc, db := setupPrepareTest(t)

	if _, err := svc.BuildShipmentJob("MISSING"); !errors.Is(err, ErrShipmentNotFound) {
		t.Fatalf("missing shipment want ErrShipmentNotFound got %v", err)
	}

	seedShipment(t, db, "SID3", 0)
	if _, err := svc.BuildShipmentJob("SID3"); !errors.Is(err, ErrNoPrintableTasks) {
		t.Fatalf("no pallets want ErrNoPrintableTasks got %v", err)
	}
}

func TestBuildCarrierMoveJobOrdersStops(t *testing.T) {
	svc, db := setupPrepareTest(t)
	seedShipment(t, db, "SID_A", 1)
	seedShipment(t, db, "SID_B", 1)
	seedShipment(t, db, "SID_C", 1)

	seq1, seq2 := 10, 20
	stops := []models.CarrierMoveStop{
		{CarrierMoveID: "MOVE1", StopID: "STOP2", TmsStopSequence: &seq2, ShipmentID: "SID_C"},
		{CarrierMoveID: "MOVE1", StopID: "STOP1", TmsStopSequence: &seq1, ShipmentID: "SID_B"},
		{CarrierMoveID: "MOVE1", StopID: "STOP1", TmsStopSequence: &seq1, ShipmentID: "SID_A"},
		{CarrierMoveID: "MOVE1", StopID: "STOP1", TmsStopSequence: &seq1, ShipmentID: "SID_A"}, // 重复行
	}
	for i := range stops {
		if err := db.Create(&stops[i]).Error; err != nil {
			t.Fatalf("create stop failed: %v", err)
		}
	}

	prepared, err := svc.BuildCarrierMoveJob("MOVE1")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// 停靠 1：SID_A、SID_B 各一块托盘 + 停靠签；停靠 2：SID_C + 停靠签；最后整车终签
	wantPayloads := []string{
		"SID_A:SID_A-LPN01 stop 1",
		"SID_B:SID_B-LPN01 stop 1",
		"MOVE1 stop 1:info",
		"SID_C:SID_C-LPN01 stop 2",
		"MOVE1 stop 2:info",
		"MOVE1:final",
	}
	if len(prepared.Tasks) != len(wantPayloads) {
		t.Fatalf("tasks want %d got %d", len(wantPayloads), len(prepared.Tasks))
	}
	for i, want := range wantPayloads {
		if prepared.Tasks[i].PayloadID != want {
			t.Fatalf("task %d payload want %q got %q", i, want, prepared.Tasks[i].PayloadID)
		}
	}

	// 整车作业里托盘标签的停靠序号来自调度单而非发运单自身
	if !strings.Contains(prepared.Tasks[0].Zpl, "^FD10^FS") {
		t.Fatalf("stop sequence override missing:\n%s", prepared.Tasks[0].Zpl)
	}
	if prepared.Tasks[2].FileName != "info-stop-01-of-02.zpl" {
		t.Fatalf("stop info file name wrong: %s", prepared.Tasks[2].FileName)
	}
	if prepared.Tasks[5].FileName != "info-final-cmid-move1.zpl" {
		t.Fatalf("final info file name wrong: %s", prepared.Tasks[5].FileName)
	}
}

func TestBuildCarrierMoveJobEmpty(t *testing.T) {
	svc, _ := setupPrepareTest(t)
	if _, err := svc.BuildCarrierMoveJob("NOPE"); !errors.Is(err, ErrCarrierMoveEmpty) {
		t.Fatalf("empty move want ErrCarrierMoveEmpty got %v", err)
	}
}

func TestBuildQueueJobMixedSources(t *testing.T) {
	svc, db := setupPrepareTest(t)
	seedShipment(t, db, "SID_Q", 1)
	seedShipment(t, db, "SID_M", 1)
	if err := db.Create(&models.CarrierMoveStop{
		CarrierMoveID: "MOVE_Q",
		StopID:        "S1",
		ShipmentID:    "SID_M",
	}).Error; err != nil {
		t.Fatalf("create stop failed: %v", err)
	}

	prepared, err := svc.BuildQueueJob([]string{"SID_Q", "MOVE_Q"})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if prepared.Mode != constants.JobModeQueue || prepared.SourceID != "SID_Q,MOVE_Q" {
		t.Fatalf("queue job identity wrong: %+v", prepared)
	}
	// 发运单 2 个任务 + 整车 3 个任务（1 托盘 + 停靠签 + 终签）
	if len(prepared.Tasks) != 5 {
		t.Fatalf("tasks want 5 got %d", len(prepared.Tasks))
	}
}

func TestPlanShipmentSummarizesFootprints(t *testing.T) {
	svc, db := setupPrepareTest(t)
	seedShipment(t, db, "SID_P", 0)
	perPallet := 60
	if err := db.Create(&models.ShipmentSkuFootprint{
		ShipmentID:     "SID_P",
		Sku:            "197920",
		TotalUnits:     120,
		UnitsPerPallet: &perPallet,
	}).Error; err != nil {
		t.Fatalf("create footprint failed: %v", err)
	}

	plan, err := svc.PlanShipment("SID_P")
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	if plan.Plan.FullPallets != 2 || plan.Plan.PartialPallets != 0 || plan.Plan.EstimatedPallets != 2 {
		t.Fatalf("plan wrong: %+v", plan.Plan)
	}
	if !plan.UsingVirtual {
		t.Fatalf("shipment without pallets must report virtual mode")
	}
}
