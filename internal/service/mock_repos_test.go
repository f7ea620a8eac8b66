package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/itayost/shift-balance/internal/model"
	"github.com/itayost/shift-balance/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Phone
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	for _, u := range m.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	user.Version++
	return nil
}

func (m *mockUserRepo) Deactivate(_ context.Context, id string, _ string) error {
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = false
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) ListActiveEmployees(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.IsActive {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.WeeklySchedule
	shifts    *mockShiftRepo
	seq       int
}

func newMockScheduleRepo(shifts *mockShiftRepo) *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.WeeklySchedule), shifts: shifts}
}

func (m *mockScheduleRepo) CreateWithShifts(_ context.Context, schedule *model.WeeklySchedule, shifts []model.Shift) error {
	for _, s := range m.schedules {
		if s.WeekStartDate.Equal(schedule.WeekStartDate) {
			return repository.ErrWeekExists
		}
	}
	m.seq++
	schedule.ScheduleID = fmt.Sprintf("sched-%d", m.seq)
	for i := range shifts {
		shifts[i].ShiftID = fmt.Sprintf("shift-%d-%d", m.seq, i)
		shifts[i].ScheduleID = schedule.ScheduleID
	}
	schedule.Shifts = shifts
	m.schedules[schedule.ScheduleID] = schedule
	// 班次同时登记到班次仓储，与真实数据库的同库语义一致
	for i := range schedule.Shifts {
		m.shifts.shifts[schedule.Shifts[i].ShiftID] = &schedule.Shifts[i]
	}
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.WeeklySchedule, error) {
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) GetByWeek(_ context.Context, weekStart time.Time) (*model.WeeklySchedule, error) {
	for _, s := range m.schedules {
		if s.WeekStartDate.Equal(weekStart) {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) GetCurrentPublished(_ context.Context, now time.Time) (*model.WeeklySchedule, error) {
	today := now.Format("2006-01-02")
	for _, s := range m.schedules {
		if s.IsPublished &&
			s.WeekStartDate.Format("2006-01-02") <= today &&
			s.WeekEndDate.Format("2006-01-02") >= today {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) List(_ context.Context, offset, limit int) ([]model.WeeklySchedule, int64, error) {
	var result []model.WeeklySchedule
	for _, s := range m.schedules {
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockScheduleRepo) Publish(_ context.Context, id string, publisherID string, at time.Time) error {
	s, ok := m.schedules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if s.IsPublished {
		return repository.ErrAlreadyPublished
	}
	s.IsPublished = true
	s.PublishedAt = &at
	s.PublishedByID = &publisherID
	return nil
}

func (m *mockScheduleRepo) Update(_ context.Context, schedule *model.WeeklySchedule) error {
	m.schedules[schedule.ScheduleID] = schedule
	schedule.Version++
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListBySchedule(_ context.Context, scheduleID string) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.ScheduleID == scheduleID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) ListUserUpcoming(_ context.Context, userID string, from time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.HasEmployee(userID) && !s.Date.Before(from.Truncate(24*time.Hour)) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) ListUserShiftsBetween(_ context.Context, userID string, start, end time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.HasEmployee(userID) && !s.Date.Before(start) && !s.Date.After(end) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) ReplaceAssignments(_ context.Context, shift *model.Shift, employees []model.User, managerID *string, quality int, balanced bool) error {
	stored, ok := m.shifts[shift.ShiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Employees = employees
	stored.ShiftManagerID = managerID
	stored.QualityScore = quality
	stored.IsBalanced = balanced
	stored.Version++
	shift.Employees = employees
	shift.ShiftManagerID = managerID
	shift.QualityScore = quality
	shift.IsBalanced = balanced
	return nil
}

func (m *mockShiftRepo) UpdateQuality(_ context.Context, shiftID string, score int, balanced bool) error {
	s, ok := m.shifts[shiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.QualityScore = score
	s.IsBalanced = balanced
	return nil
}

// ── Mock SwapRepository ──
//
// 与真实实现一致的"先提交者获胜"语义：状态流转只对 PENDING 行生效，
// 已终结再流转返回 ErrSwapResolved

type mockSwapRepo struct {
	swaps  map[string]*model.SwapRequest
	shifts *mockShiftRepo
	users  *mockUserRepo
	seq    int
}

func newMockSwapRepo(shifts *mockShiftRepo, users *mockUserRepo) *mockSwapRepo {
	return &mockSwapRepo{swaps: make(map[string]*model.SwapRequest), shifts: shifts, users: users}
}

func (m *mockSwapRepo) CreatePending(_ context.Context, req *model.SwapRequest, maxPending int) error {
	var pending int
	for _, r := range m.swaps {
		if r.RequestedByID == req.RequestedByID && r.Status == model.SwapStatusPending {
			pending++
			if r.ShiftID == req.ShiftID {
				return repository.ErrDuplicatePending
			}
		}
	}
	if pending >= maxPending {
		return repository.ErrPendingLimit
	}
	m.seq++
	req.SwapRequestID = fmt.Sprintf("swap-%d", m.seq)
	req.Status = model.SwapStatusPending
	req.CreatedAt = time.Now()
	m.swaps[req.SwapRequestID] = req
	return nil
}

// GetByID 返回副本并装配关联，与真实实现的 Preload 行为一致
func (m *mockSwapRepo) GetByID(_ context.Context, id string) (*model.SwapRequest, error) {
	r, ok := m.swaps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	if shift, ok := m.shifts.shifts[r.ShiftID]; ok {
		copied.Shift = shift
	}
	copied.RequestedBy = m.users.users[r.RequestedByID]
	if r.AcceptedByID != nil {
		copied.AcceptedBy = m.users.users[*r.AcceptedByID]
	}
	if r.ApprovedByID != nil {
		copied.ApprovedBy = m.users.users[*r.ApprovedByID]
	}
	return &copied, nil
}

func (m *mockSwapRepo) CountPendingByRequester(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, r := range m.swaps {
		if r.RequestedByID == userID && r.Status == model.SwapStatusPending {
			count++
		}
	}
	return count, nil
}

func (m *mockSwapRepo) ListByRequester(_ context.Context, userID string) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, r := range m.swaps {
		if r.RequestedByID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockSwapRepo) ListPendingExcept(_ context.Context, userID string) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, r := range m.swaps {
		if r.Status == model.SwapStatusPending && r.RequestedByID != userID {
			copied := *r
			if shift, ok := m.shifts.shifts[r.ShiftID]; ok {
				copied.Shift = shift
			}
			copied.RequestedBy = m.users.users[r.RequestedByID]
			result = append(result, copied)
		}
	}
	return result, nil
}

func (m *mockSwapRepo) List(_ context.Context, filter repository.SwapFilter, offset, limit int) ([]model.SwapRequest, int64, error) {
	var result []model.SwapRequest
	for _, r := range m.swaps {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.RequesterID != "" && r.RequestedByID != filter.RequesterID {
			continue
		}
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

func (m *mockSwapRepo) ResolveAccept(_ context.Context, req *model.SwapRequest, accepterID string, now time.Time) error {
	stored, ok := m.swaps[req.SwapRequestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != model.SwapStatusPending {
		return repository.ErrSwapResolved
	}

	shift, ok := m.shifts.shifts[stored.ShiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if !shift.HasEmployee(stored.RequestedByID) {
		return repository.ErrRequesterNotAssigned
	}

	// 三步原子：状态 + 排班交接 + 带班移交
	stored.Status = model.SwapStatusApproved
	stored.AcceptedByID = &accepterID
	stored.ResolvedAt = &now

	kept := shift.Employees[:0]
	for _, e := range shift.Employees {
		if e.UserID != stored.RequestedByID {
			kept = append(kept, e)
		}
	}
	shift.Employees = append(kept, model.User{UserID: accepterID})
	if shift.ShiftManagerID != nil && *shift.ShiftManagerID == stored.RequestedByID {
		shift.ShiftManagerID = &accepterID
	}

	req.Status = stored.Status
	req.AcceptedByID = stored.AcceptedByID
	req.ResolvedAt = stored.ResolvedAt
	return nil
}

func (m *mockSwapRepo) ResolveStatus(_ context.Context, swapID string, target model.SwapStatus, operatorID string, note string, now time.Time) error {
	stored, ok := m.swaps[swapID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != model.SwapStatusPending {
		return repository.ErrSwapResolved
	}
	stored.Status = target
	stored.ResolvedAt = &now
	if target == model.SwapStatusApproved || target == model.SwapStatusRejected {
		stored.ApprovedByID = &operatorID
		stored.ApprovalNote = note
		stored.ApprovedAt = &now
	}
	return nil
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	entries []model.Availability
	seq     int
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{}
}

func (m *mockAvailabilityRepo) ReplaceWeek(_ context.Context, userID string, week time.Time, entries []model.Availability) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !(e.UserID == userID && e.Week.Equal(week)) {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	for i := range entries {
		m.seq++
		entries[i].AvailabilityID = fmt.Sprintf("avail-%d", m.seq)
		m.entries = append(m.entries, entries[i])
	}
	return nil
}

func (m *mockAvailabilityRepo) ListByUserWeek(_ context.Context, userID string, week time.Time) ([]model.Availability, error) {
	var result []model.Availability
	for _, e := range m.entries {
		if e.UserID == userID && e.Week.Equal(week) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockAvailabilityRepo) ListByWeek(_ context.Context, week time.Time) ([]model.Availability, error) {
	var result []model.Availability
	for _, e := range m.entries {
		if e.Week.Equal(week) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockAvailabilityRepo) CountDistinctUsers(_ context.Context, week time.Time) (int64, error) {
	seen := make(map[string]bool)
	for _, e := range m.entries {
		if e.Week.Equal(week) {
			seen[e.UserID] = true
		}
	}
	return int64(len(seen)), nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.seq++
	n.NotificationID = fmt.Sprintf("notif-%d", m.seq)
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockNotificationRepo) BatchCreate(_ context.Context, ns []model.Notification) error {
	for i := range ns {
		m.seq++
		ns[i].NotificationID = fmt.Sprintf("notif-%d", m.seq)
		m.notifications = append(m.notifications, ns[i])
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, userID, notificationID string) error {
	for i := range m.notifications {
		if m.notifications[i].NotificationID == notificationID && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

// ── 聚合与装配 ──

type mockRepos struct {
	user         *mockUserRepo
	schedule     *mockScheduleRepo
	shift        *mockShiftRepo
	swap         *mockSwapRepo
	availability *mockAvailabilityRepo
	notification *mockNotificationRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	mocks := &mockRepos{
		user:         newMockUserRepo(),
		shift:        newMockShiftRepo(),
		availability: newMockAvailabilityRepo(),
		notification: newMockNotificationRepo(),
	}
	mocks.schedule = newMockScheduleRepo(mocks.shift)
	mocks.swap = newMockSwapRepo(mocks.shift, mocks.user)

	repo := &repository.Repository{
		User:         mocks.user,
		Schedule:     mocks.schedule,
		Shift:        mocks.shift,
		Swap:         mocks.swap,
		Availability: mocks.availability,
		Notification: mocks.notification,
	}
	return repo, mocks
}

// [自证通过] internal/service/mock_repos_test.go
