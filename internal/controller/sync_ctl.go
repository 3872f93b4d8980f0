package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"panel_keeper_v1_202608/internal/api/dto"
	"panel_keeper_v1_202608/internal/service"
	"panel_keeper_v1_202608/internal/task"
)

// SyncController 同步控制器
type SyncController struct {
	syncSvc     *service.SyncService
	taskManager *task.TaskManager
}

// NewSyncController 创建同步控制器
func NewSyncController(syncSvc *service.SyncService, taskManager *task.TaskManager) *SyncController {
	return &SyncController{syncSvc: syncSvc, taskManager: taskManager}
}

// ==================== Handler 实现 ====================

// SyncAccount 同步单个账户
// @Summary 手动同步单个账户（同步返回最新快照）
// @Tags Sync
// @Param id path string true "账户 ID"
// @Param force query bool false "是否强制探测签到状态"
// @Success 200 {object} dto.SyncAccountResp
// @Failure 429 {object} map[string]interface{} "限流中"
// @Router /api/v1/sync/accounts/{id} [post]
func (c *SyncController) SyncAccount(ctx *gin.Context) {
	accountID := ctx.Param("id")
	force := ctx.Query("force") == "true"

	snap, err := c.syncSvc.SyncAccount(ctx.Request.Context(), accountID, service.SyncOptions{Force: force})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "账户同步完成",
		"data": dto.SyncAccountResp{
			AccountID:             accountID,
			Quota:                 snap.Quota,
			TodayQuotaConsumption: snap.TodayQuotaConsumption,
			TodayIncome:           snap.TodayIncome,
			IsCheckedInToday:      snap.CheckIn.IsCheckedInToday,
		},
	})
}

// SyncAllAccounts 同步所有账户
// @Summary 手动同步所有账户（异步执行）
// @Tags Sync
// @Success 200 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{} "限流中"
// @Router /api/v1/sync/accounts [post]
func (c *SyncController) SyncAllAccounts(ctx *gin.Context) {
	if err := c.taskManager.TriggerAllAccountsSync(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"code": 503, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "全量同步任务已启动",
	})
}
