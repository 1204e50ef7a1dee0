package handlers

import (
	"strings"

	"github.com/palletprint/internal/http/response"

	"github.com/gin-gonic/gin"
)

// PrinterView 打印机列表项
type PrinterView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Endpoint     string   `json:"endpoint"`
	Tags         []string `json:"tags,omitempty"`
	LocationHint string   `json:"location_hint,omitempty"`
	Enabled      bool     `json:"enabled"`
}

// ListPrinters 列出当前站点全部打印机
func (h *Handler) ListPrinters(c *gin.Context) {
	router := h.PrintService.Router()
	printers := router.Printers()
	views := make([]PrinterView, 0, len(printers))
	for _, p := range printers {
		views = append(views, PrinterView{
			ID:           p.ID,
			Name:         p.Name,
			Endpoint:     p.Endpoint(),
			Tags:         p.Tags,
			LocationHint: p.LocationHint,
			Enabled:      p.Enabled,
		})
	}
	response.Success(c, gin.H{
		"site_code":          router.SiteCode(),
		"default_printer_id": router.DefaultPrinterID(),
		"printers":           views,
	})
}

// TestPrinter 探测打印机端口可达性
func (h *Handler) TestPrinter(c *gin.Context) {
	printerID := strings.TrimSpace(c.Param("id"))
	if printerID == "" {
		respondError(c, response.CodeBadRequest, "printer id required", nil)
		return
	}

	printer, err := h.PrintService.Router().FindPrinter(printerID)
	if err != nil {
		respondError(c, response.CodeNotFound, err.Error(), nil)
		return
	}

	reachable := h.PrintService.Deliverer().TestConnectivity(c.Request.Context(), printer)
	if !reachable {
		requestLog(c).Warnw("printer_unreachable", "printer_id", printer.ID, "endpoint", printer.Endpoint())
	}
	response.Success(c, gin.H{
		"printer_id": printer.ID,
		"endpoint":   printer.Endpoint(),
		"reachable":  reachable,
	})
}
