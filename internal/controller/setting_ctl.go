package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"panel_keeper_v1_202608/internal/repository"
)

// SettingController 全局偏好控制器
type SettingController struct {
	settingRepo repository.SettingRepository
}

// NewSettingController 创建偏好控制器
func NewSettingController(settingRepo repository.SettingRepository) *SettingController {
	return &SettingController{settingRepo: settingRepo}
}

type settingUpdateReq struct {
	Timezone           string `json:"timezone" binding:"required"`
	AutoCheckinEnabled bool   `json:"auto_checkin_enabled"`
	WindowStart        string `json:"window_start" binding:"required,len=5"`
	WindowEnd          string `json:"window_end" binding:"required,len=5"`
	SyncEnabled        bool   `json:"sync_enabled"`
}

// Get 读取全局偏好
// @Summary 读取全局偏好设置
// @Tags Setting
// @Success 200 {object} model.Setting
// @Router /api/v1/settings [get]
func (c *SettingController) Get(ctx *gin.Context) {
	setting, err := c.settingRepo.Get(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": setting})
}

// Update 更新全局偏好
// @Summary 更新全局偏好设置
// @Tags Setting
// @Accept json
// @Param request body settingUpdateReq true "偏好参数"
// @Success 200 {object} model.Setting
// @Router /api/v1/settings [put]
func (c *SettingController) Update(ctx *gin.Context) {
	var req settingUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "未知时区: " + req.Timezone})
		return
	}
	for _, w := range []string{req.WindowStart, req.WindowEnd} {
		if _, err := time.Parse("15:04", w); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "时间窗格式应为 HH:MM: " + w})
			return
		}
	}

	setting, err := c.settingRepo.Get(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	setting.Timezone = req.Timezone
	setting.AutoCheckinEnabled = req.AutoCheckinEnabled
	setting.WindowStart = req.WindowStart
	setting.WindowEnd = req.WindowEnd
	setting.SyncEnabled = req.SyncEnabled

	if err := c.settingRepo.Save(ctx.Request.Context(), setting); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": setting})
}
