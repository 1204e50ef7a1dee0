package handlers

import (
	"errors"

	"github.com/palletprint/internal/http/response"
	"github.com/palletprint/internal/logger"
	"github.com/palletprint/internal/printing"
	"github.com/palletprint/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog 提供携带 request_id 的日志实例
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// respondError 返回错误响应，有原始错误时记录日志
func respondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		requestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// respondServiceError 把服务层错误映射到业务状态码
func respondServiceError(c *gin.Context, err error) {
	var routingErr *printing.RoutingError
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrShipmentNotFound):
		respondError(c, response.CodeNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrCarrierMoveEmpty),
		errors.Is(err, service.ErrNoPrintableTasks),
		errors.Is(err, service.ErrUnknownJobMode),
		errors.Is(err, service.ErrQueueDisabled):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.As(err, &routingErr):
		respondError(c, response.CodeBadRequest, routingErr.Error(), nil)
	default:
		respondError(c, response.CodeInternal, "internal error", err)
	}
}
