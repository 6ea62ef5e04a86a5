package service

import (
	"strings"

	"annonce_auto_v1_202608/internal/model"
)

// ==================== 电话校验 ====================

// countryPhoneRules 已识别国际区号 -> 期望的号码位数（区号之后）
// 法国(+33)单独处理：严格 9 位且首位 1-9；其余区号允许 ±1 位
var countryPhoneRules = map[string]int{
	"32":  9,  // Belgique
	"34":  9,  // Espagne
	"39":  10, // Italie
	"41":  9,  // Suisse
	"44":  10, // Royaume-Uni
	"49":  10, // Allemagne
	"212": 9,  // Maroc
	"213": 9,  // Algérie
	"216": 8,  // Tunisie
	"221": 9,  // Sénégal
	"225": 10, // Côte d'Ivoire
}

// ValidatePhone 国际格式电话校验（纯函数）
// 只接受 + 前缀；本地格式的归一化是 Draft Store 的事，这里绝不归一化
func ValidatePhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", ".", "", "-", "").Replace(strings.TrimSpace(phone))
	if !strings.HasPrefix(cleaned, "+") {
		return false
	}

	digits := cleaned[1:]
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}

	// 法国号码：区号后恰好 9 位，首位非 0
	if strings.HasPrefix(digits, "33") {
		sub := digits[2:]
		return len(sub) == 9 && sub[0] >= '1' && sub[0] <= '9'
	}

	// 其余已识别区号：期望位数 ±1（先匹配 3 位区号再匹配 2 位）
	for _, prefixLen := range []int{3, 2} {
		if len(digits) < prefixLen {
			continue
		}
		expected, ok := countryPhoneRules[digits[:prefixLen]]
		if !ok {
			continue
		}
		sub := len(digits) - prefixLen
		return sub >= expected-1 && sub <= expected+1
	}

	// 未识别区号：总位数 8-15 视为通用国际格式
	return len(digits) >= 8 && len(digits) <= 15
}

// ==================== 步骤校验 ====================

// ValidationService 步骤放行判定：纯读取，无副作用
// CanAdvance(step, draft) 对同一草稿两次调用结果必然一致
type ValidationService struct {
	schema *SchemaService
}

func NewValidationService(schema *SchemaService) *ValidationService {
	return &ValidationService{schema: schema}
}

// CanAdvance 当前步骤是否允许前进
func (v *ValidationService) CanAdvance(step StepID, d *model.WizardDraft) bool {
	switch step {
	case StepIntent:
		return d.Intent != model.IntentUnset
	case StepCategory:
		return d.CategoryID != ""
	case StepSubcategory:
		return d.SubcategoryID != ""
	case StepCondition:
		// 成色仅对实物类目把关，其余类目该步骤本就不出现
		if !model.ConditionApplicable(d.CategoryID) {
			return true
		}
		return d.Condition != ""
	case StepTitle:
		return strings.TrimSpace(d.Title) != ""
	case StepDetails:
		return v.detailsSatisfied(d)
	case StepDescription:
		return len([]rune(strings.TrimSpace(d.Description))) >= 30
	case StepPhotos:
		// 照片可选
		return true
	case StepPrice:
		if d.Intent == model.IntentSeeking || model.IsSeekingParts(d.SubcategoryID) {
			return true
		}
		return d.Price > 0
	case StepLocation:
		if model.IsSeekingParts(d.SubcategoryID) {
			return true
		}
		return d.City != "" && d.PostalCode != ""
	case StepContact:
		return d.Contact.Phone != "" && ValidatePhone(d.Contact.Phone)
	case StepSummary:
		return true
	}
	return false
}

// detailsSatisfied 动态字段步骤的判定
// 求购配件与服务类目无条件放行；否则每个必填标识都要有值，
// 带边界的数字字段还要落在边界内
func (v *ValidationService) detailsSatisfied(d *model.WizardDraft) bool {
	if model.IsSeekingParts(d.SubcategoryID) || model.IsService(d.SubcategoryID) {
		return true
	}

	for _, id := range v.schema.RequiredFieldIDs(d.SubcategoryID) {
		value, ok := d.SpecificDetails[id]
		if !ok || value == nil {
			return false
		}

		desc := v.schema.FindField(d.SubcategoryID, id)
		switch tv := value.(type) {
		case string:
			if strings.TrimSpace(tv) == "" {
				return false
			}
		case float64:
			// 数字要求"有值"而非"非零"；仅当描述符带边界时检查范围
			if desc != nil && desc.HasBounds && (tv < desc.Min || tv > desc.Max) {
				return false
			}
		case int:
			if desc != nil && desc.HasBounds && (float64(tv) < desc.Min || float64(tv) > desc.Max) {
				return false
			}
		}
		// schema 之外的多余键被容忍且忽略，不在此处报告
	}
	return true
}
