package service

import (
	"fmt"
	"time"

	"annonce_auto_v1_202608/internal/model"
)

// ==================== 步骤定义 ====================

// StepID 向导步骤标识
type StepID string

const (
	StepIntent      StepID = "intent"
	StepCategory    StepID = "category"
	StepSubcategory StepID = "subcategory"
	StepCondition   StepID = "condition"
	StepTitle       StepID = "title"
	StepDetails     StepID = "details"
	StepDescription StepID = "description"
	StepPhotos      StepID = "photos"
	StepPrice       StepID = "price"
	StepLocation    StepID = "location"
	StepContact     StepID = "contact"
	StepSummary     StepID = "summary"
)

// canonicalSteps 规范序列（12 步）；有效序列按草稿内容折叠
var canonicalSteps = []StepID{
	StepIntent, StepCategory, StepSubcategory, StepCondition,
	StepTitle, StepDetails, StepDescription, StepPhotos,
	StepPrice, StepLocation, StepContact, StepSummary,
}

// backCooldown 回退后抑制自动推进的时长，给用户一个稳定的画面
const backCooldown = 500 * time.Millisecond

// ==================== 服务实现 ====================

// SequencerService 步骤序列与导航控制
// 游标始终指向重新计算后的有效序列（1-based），而不是规范序列
type SequencerService struct {
	validate *ValidationService
	now      func() time.Time
}

func NewSequencerService(validate *ValidationService) *SequencerService {
	return &SequencerService{
		validate: validate,
		now:      time.Now,
	}
}

// ==================== 有效序列 ====================

// EffectiveSteps 根据草稿当前内容计算有效步骤序列
// 成色步骤在类目不需要成色时被结构性移除（不是渲染时跳过）：
// 从它后面的步骤回退必须直接落在它前面的步骤上
func (s *SequencerService) EffectiveSteps(d *model.WizardDraft) []StepID {
	steps := make([]StepID, 0, len(canonicalSteps))
	for _, step := range canonicalSteps {
		if step == StepCondition && !model.ConditionApplicable(d.CategoryID) {
			continue
		}
		steps = append(steps, step)
	}
	return steps
}

// CurrentStep 游标指向的步骤（游标越界时收敛到合法范围）
func (s *SequencerService) CurrentStep(d *model.WizardDraft) StepID {
	steps := s.EffectiveSteps(d)
	cursor := clampCursor(d.StepCursor, len(steps))
	return steps[cursor-1]
}

// ==================== 导航 ====================

// GoNext 前进一步；当前步骤未通过校验时拒绝
func (s *SequencerService) GoNext(d *model.WizardDraft) (StepID, error) {
	steps := s.EffectiveSteps(d)
	cursor := clampCursor(d.StepCursor, len(steps))
	current := steps[cursor-1]

	if !s.validate.CanAdvance(current, d) {
		return current, fmt.Errorf("étape %s incomplète", current)
	}
	if cursor >= len(steps) {
		return current, fmt.Errorf("déjà à la dernière étape")
	}

	d.StepCursor = cursor + 1
	return steps[d.StepCursor-1], nil
}

// GoBack 后退一步，并回滚离开步骤之后产生的依赖选择
// 原则：回到某个点位时，之后做出的选择都应失效，避免残留的过期状态
func (s *SequencerService) GoBack(d *model.WizardDraft) StepID {
	steps := s.EffectiveSteps(d)
	cursor := clampCursor(d.StepCursor, len(steps))
	leaving := steps[cursor-1]

	switch leaving {
	case StepCategory:
		d.CategoryID = ""
		d.ResetSubcategory()
		d.Condition = ""
	case StepSubcategory:
		d.ResetSubcategory()
	case StepCondition:
		d.ResetSubcategory()
		d.Condition = ""
	case StepTitle:
		if model.ConditionApplicable(d.CategoryID) {
			d.Condition = ""
		} else {
			d.ResetSubcategory()
		}
	}

	// 折叠可能因上面的回滚而变化，基于新序列重新定位
	newSteps := s.EffectiveSteps(d)
	if cursor > len(newSteps) {
		cursor = len(newSteps)
	}
	if cursor > 1 {
		cursor--
	}
	d.StepCursor = cursor
	d.LastBackAt = s.now()

	return newSteps[cursor-1]
}

// ==================== 自动推进 ====================

// MaybeAutoAdvance 单输入步骤满足后自动前进
// 回退后的冷却期内不触发，避免刚退回来就被连跳
func (s *SequencerService) MaybeAutoAdvance(d *model.WizardDraft) (advanced bool, step StepID) {
	step = s.CurrentStep(d)
	if !d.AutoAdvance {
		return false, step
	}
	if s.now().Sub(d.LastBackAt) < backCooldown {
		return false, step
	}
	if !isSingleInputStep(step) {
		return false, step
	}
	if !s.validate.CanAdvance(step, d) {
		return false, step
	}

	next, err := s.GoNext(d)
	if err != nil {
		return false, step
	}
	return true, next
}

// isSingleInputStep 只有一个必填输入、选完即可前进的步骤
func isSingleInputStep(step StepID) bool {
	switch step {
	case StepIntent, StepCategory, StepSubcategory, StepCondition:
		return true
	}
	return false
}

func clampCursor(cursor, total int) int {
	if cursor < 1 {
		return 1
	}
	if cursor > total {
		return total
	}
	return cursor
}
