package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Role     string `form:"role"      binding:"omitempty,oneof=admin shift_manager employee"`
	Position string `form:"position"  binding:"omitempty,oneof=SERVER BARTENDER SHIFT_MANAGER"`
	Active   *bool  `form:"active"`
	PaginationRequest
}

// UpdateUserRequest 管理员更新用户请求（级别/岗位/角色调整）
type UpdateUserRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=2,max=50"`
	Role     *string `json:"role"      binding:"omitempty,oneof=admin shift_manager employee"`
	Level    *string `json:"level"     binding:"omitempty,oneof=TRAINEE RUNNER INTERMEDIATE EXPERT"`
	Position *string `json:"position"  binding:"omitempty,oneof=SERVER BARTENDER SHIFT_MANAGER"`
	IsActive *bool   `json:"is_active"`
}

// [自证通过] internal/dto/user.go
