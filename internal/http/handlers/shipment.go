package handlers

import (
	"strings"

	"github.com/palletprint/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetShipmentPlan 发运单托盘计划预览
func (h *Handler) GetShipmentPlan(c *gin.Context) {
	shipmentID := strings.TrimSpace(c.Param("id"))
	if shipmentID == "" {
		respondError(c, response.CodeBadRequest, "shipment id required", nil)
		return
	}

	plan, err := h.PrepareService.PlanShipment(shipmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, plan)
}
