package handlers

import (
	"strings"

	"github.com/palletprint/internal/http/response"
	"github.com/palletprint/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateJobRequest 创建打印作业请求
type CreateJobRequest struct {
	service.CreateJobInput
	Async bool `json:"async"` // true 则投入后台队列而非同步执行
}

// CreateJob 创建打印作业
//
// 同步模式阻塞到作业执行结束并返回执行结果；
// 异步模式仅入队，进度通过 GET /jobs/:id 轮询。
func (h *Handler) CreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if req.Async {
		if err := h.PrintService.Enqueue(req.CreateJobInput); err != nil {
			respondServiceError(c, err)
			return
		}
		response.SuccessWithMsg(c, "enqueued", nil)
		return
	}

	result, err := h.PrintService.CreateAndRun(c.Request.Context(), req.CreateJobInput)
	if err != nil {
		// 执行中断但作业已落盘，把作业号带回去供续打
		if result != nil {
			response.ErrorWithData(c, response.CodeInternal, err.Error(), gin.H{"job_id": result.JobID})
			return
		}
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// ResumeJob 续打中断的作业
func (h *Handler) ResumeJob(c *gin.Context) {
	jobID := strings.TrimSpace(c.Param("id"))
	if jobID == "" {
		respondError(c, response.CodeBadRequest, "job id required", nil)
		return
	}

	result, err := h.PrintService.Resume(c.Request.Context(), jobID)
	if err != nil {
		if result != nil {
			response.ErrorWithData(c, response.CodeInternal, err.Error(), gin.H{"job_id": result.JobID})
			return
		}
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// ListIncompleteJobs 列出可续打作业
func (h *Handler) ListIncompleteJobs(c *gin.Context) {
	checkpoints, err := h.PrintService.ListIncomplete()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list jobs", err)
		return
	}
	response.Success(c, gin.H{"jobs": checkpoints, "total": len(checkpoints)})
}

// GetJob 查询作业进度
func (h *Handler) GetJob(c *gin.Context) {
	jobID := strings.TrimSpace(c.Param("id"))
	if jobID == "" {
		respondError(c, response.CodeBadRequest, "job id required", nil)
		return
	}

	state, err := h.PrintService.GetJob(c.Request.Context(), jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, state)
}
