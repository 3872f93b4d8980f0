package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"panel_keeper_v1_202608/internal/api/dto"
	"panel_keeper_v1_202608/internal/service"
)

// CheckinController 自动签到控制器
type CheckinController struct {
	checkinSvc *service.CheckinService
}

// NewCheckinController 创建签到控制器
func NewCheckinController(checkinSvc *service.CheckinService) *CheckinController {
	return &CheckinController{checkinSvc: checkinSvc}
}

// ==================== Handler 实现 ====================

// Run 执行一轮自动签到
// @Summary 立即执行一轮自动签到
// @Tags Checkin
// @Success 200 {object} model.AutoCheckinStatus
// @Failure 409 {object} map[string]interface{} "上一轮未结束"
// @Failure 429 {object} map[string]interface{} "限流中"
// @Router /api/v1/checkin/run [post]
func (c *CheckinController) Run(ctx *gin.Context) {
	status, err := c.checkinSvc.RunAutoCheckinPass(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrCheckinRunning) {
			ctx.JSON(http.StatusConflict, gin.H{"code": 409, "message": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": status})
}

// Retry 重试失败账户
// @Summary 重试签到失败的账户
// @Tags Checkin
// @Accept json
// @Param request body dto.CheckinRetryReq false "账户 ID 列表，为空时取上一轮失败名单"
// @Success 200 {object} model.AutoCheckinStatus
// @Router /api/v1/checkin/retry [post]
func (c *CheckinController) Retry(ctx *gin.Context) {
	var req dto.CheckinRetryReq
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
			return
		}
	}

	status, err := c.checkinSvc.RetryFailedAccounts(ctx.Request.Context(), req.AccountIDs)
	if err != nil {
		if errors.Is(err, service.ErrCheckinRunning) {
			ctx.JSON(http.StatusConflict, gin.H{"code": 409, "message": err.Error()})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": status})
}

// GetStatus 查询最近一轮调度状态
// @Summary 查询最近一轮自动签到状态
// @Tags Checkin
// @Success 200 {object} model.AutoCheckinStatus
// @Router /api/v1/checkin/status [get]
func (c *CheckinController) GetStatus(ctx *gin.Context) {
	status, err := c.checkinSvc.GetStatus(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	if status == nil {
		ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": nil, "message": "尚未执行过自动签到"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": status})
}

// ClearStatus 清除调度状态
// @Summary 清除自动签到状态
// @Tags Checkin
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/checkin/status [delete]
func (c *CheckinController) ClearStatus(ctx *gin.Context) {
	if err := c.checkinSvc.ClearStatus(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "签到状态已清除"})
}

// ListLogs 查询账户签到流水
// @Summary 查询账户签到流水
// @Tags Checkin
// @Param id path string true "账户 ID"
// @Param limit query int false "条数" default(50)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/checkin/logs/{id} [get]
func (c *CheckinController) ListLogs(ctx *gin.Context) {
	var req dto.CheckinLogListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	logs, err := c.checkinSvc.ListAccountLogs(ctx.Request.Context(), ctx.Param("id"), req.Limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": logs})
}
