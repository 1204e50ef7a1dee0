package handlers

import (
	"github.com/palletprint/internal/http/response"
	"github.com/palletprint/internal/zpl"

	"github.com/gin-gonic/gin"
)

// BuildBarcode 生成独立条码标签的 ZPL 文档
func (h *Handler) BuildBarcode(c *gin.Context) {
	var req zpl.BarcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	document, err := zpl.BuildBarcode(req)
	if err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	response.Success(c, gin.H{"zpl": document})
}
