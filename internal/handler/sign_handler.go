package handler

import (
	"net/http"

	"roversign-go/internal/service"
	"roversign-go/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignHandler 签到接口处理器
type SignHandler struct {
	autoSignSvc *service.AutoSignService
	cronSvc     *service.CronService
	signStore   service.SignStore
	userStore   service.UserStore
	options     service.OptionSource
	broadcaster service.Broadcaster
	logger      *zap.Logger
}

func NewSignHandler(autoSignSvc *service.AutoSignService, cronSvc *service.CronService,
	signStore service.SignStore, userStore service.UserStore, options service.OptionSource,
	broadcaster service.Broadcaster, logger *zap.Logger) *SignHandler {
	return &SignHandler{
		autoSignSvc: autoSignSvc,
		cronSvc:     cronSvc,
		signStore:   signStore,
		userStore:   userStore,
		options:     options,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// RegisterRoutes 注册签到相关路由
func (h *SignHandler) RegisterRoutes(api *gin.RouterGroup, adminAuth gin.HandlerFunc) {
	sign := api.Group("/sign")
	{
		sign.POST("/user", h.SignUpUser)
		sign.GET("/status", h.Status)
		sign.POST("/run", adminAuth, h.RunNow)
		sign.GET("/options", adminAuth, h.GetOptions)
		sign.PUT("/options", adminAuth, h.UpdateOption)
	}
}

// SignUpUser 手动触发单用户签到
// POST /api/sign/user
func (h *SignHandler) SignUpUser(c *gin.Context) {
	var request struct {
		UserID string `json:"user_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		ErrorResponse(c, http.StatusBadRequest, false, "user_id不能为空")
		return
	}

	h.logger.Info("📝 收到手动签到请求", zap.String("user_id", request.UserID))

	result, err := h.autoSignSvc.SignUpForUser(request.UserID)
	if err != nil {
		h.logger.Error("手动签到失败", zap.Error(err), zap.String("user_id", request.UserID))
		ErrorResponse(c, http.StatusInternalServerError, false, "手动签到失败")
		return
	}

	SuccessResponseWithMessage(c, result, nil)
}

// Status 查询今日/昨日签到进度
// GET /api/sign/status
func (h *SignHandler) Status(c *gin.Context) {
	today := utils.TodayDate()

	signed, err := h.signStore.CountByDate(today)
	if err != nil {
		h.logger.Error("统计今日签到失败", zap.Error(err))
		ErrorResponse(c, http.StatusInternalServerError, false, "统计今日签到失败")
		return
	}

	signedYesterday, err := h.signStore.CountByDate(utils.YesterdayDate())
	if err != nil {
		h.logger.Error("统计昨日签到失败", zap.Error(err))
		ErrorResponse(c, http.StatusInternalServerError, false, "统计昨日签到失败")
		return
	}

	enabled, err := h.userStore.CountSignEnabled()
	if err != nil {
		h.logger.Error("统计开启签到账号失败", zap.Error(err))
		ErrorResponse(c, http.StatusInternalServerError, false, "统计账号失败")
		return
	}

	SuccessResponse(c, gin.H{
		"date":             today,
		"signed":           signed,
		"signed_yesterday": signedYesterday,
		"sign_enabled":     enabled,
		"running":          h.autoSignSvc.Running(),
	})
}

// RunNow 立即执行一轮批量签到（异步）
// POST /api/sign/run
func (h *SignHandler) RunNow(c *gin.Context) {
	if h.autoSignSvc.Running() {
		ErrorResponse(c, http.StatusConflict, false, "上一轮自动签到尚未结束")
		return
	}

	h.logger.Info("🔄 收到立即签到请求")

	go func() {
		reports, err := h.autoSignSvc.RunAll()
		if err != nil {
			h.logger.Error("手动触发批量签到失败", zap.Error(err))
			return
		}
		if reports.GameReport != nil {
			if err := h.broadcaster.Push(service.BroadcastGameSign, reports.GameReport); err != nil {
				h.logger.Warn("推送游戏签到报告失败", zap.Error(err))
			}
		}
		if reports.BBSReport != nil {
			if err := h.broadcaster.Push(service.BroadcastBBSSign, reports.BBSReport); err != nil {
				h.logger.Warn("推送社区任务报告失败", zap.Error(err))
			}
		}
		h.logger.Info("✅ 手动触发批量签到完成", zap.String("summary", reports.Summary))
	}()

	SuccessResponseWithMessage(c, "批量签到已开始", nil)
}

// GetOptions 读取签到配置
// GET /api/sign/options
func (h *SignHandler) GetOptions(c *gin.Context) {
	all, err := h.options.GetAll()
	if err != nil {
		h.logger.Error("读取签到配置失败", zap.Error(err))
		ErrorResponse(c, http.StatusInternalServerError, false, "读取签到配置失败")
		return
	}
	SuccessResponse(c, all)
}

// UpdateOption 更新一项签到配置；签到时刻变化后重新注册定时任务
// PUT /api/sign/options
func (h *SignHandler) UpdateOption(c *gin.Context) {
	var request struct {
		Name  string `json:"name" binding:"required"`
		Value string `json:"value" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		ErrorResponse(c, http.StatusBadRequest, false, "name和value不能为空")
		return
	}

	if err := h.options.Set(request.Name, request.Value); err != nil {
		h.logger.Warn("更新签到配置失败", zap.Error(err), zap.String("name", request.Name))
		ErrorResponse(c, http.StatusBadRequest, false, "未知配置项: "+request.Name)
		return
	}

	h.logger.Info("⚙️ 签到配置已更新",
		zap.String("name", request.Name),
		zap.String("value", request.Value))

	if request.Name == "SignTimeHour" || request.Name == "SignTimeMinute" {
		if err := h.cronSvc.Reschedule(); err != nil {
			h.logger.Error("重新注册定时任务失败", zap.Error(err))
			ErrorResponse(c, http.StatusInternalServerError, false, "配置已保存但定时任务更新失败")
			return
		}
	}

	SuccessResponseWithMessage(c, "配置已更新", nil)
}
