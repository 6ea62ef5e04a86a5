package model

// ==================== 类目定义 ====================

// Category 一级类目
type Category struct {
	ID                string
	Name              string
	RequiresCondition bool // 实物且非服务非求购配件时需要成色
	IsService         bool
	SubcategoryIDs    []string
}

// Subcategory 二级类目（叶子节点，决定动态字段集）
type Subcategory struct {
	ID           string
	CategoryID   string
	Name         string
	SeekingParts bool // 求购配件类目：跳过价格/地址校验
	Service      bool
}

// ==================== 类目表 ====================
// 新增类目只需在此追加条目，不触碰其他组件

var categories = []Category{
	{
		ID:                "vehicule-motorise",
		Name:              "Véhicules motorisés",
		RequiresCondition: true,
		SubcategoryIDs:    []string{"voiture", "moto", "utilitaire"},
	},
	{
		ID:                "remorquage-attelage",
		Name:              "Remorques et attelages",
		RequiresCondition: true,
		SubcategoryIDs:    []string{"remorque"},
	},
	{
		ID:             "pieces-detachees",
		Name:           "Pièces détachées",
		SubcategoryIDs: []string{"piece-moteur", "piece-carrosserie", "recherche-piece"},
	},
	{
		ID:             "services-auto",
		Name:           "Services auto",
		IsService:      true,
		SubcategoryIDs: []string{"reparation", "entretien", "remorquage"},
	},
}

var subcategories = []Subcategory{
	{ID: "voiture", CategoryID: "vehicule-motorise", Name: "Voiture"},
	{ID: "moto", CategoryID: "vehicule-motorise", Name: "Moto"},
	{ID: "utilitaire", CategoryID: "vehicule-motorise", Name: "Utilitaire"},
	{ID: "remorque", CategoryID: "remorquage-attelage", Name: "Remorque"},
	{ID: "piece-moteur", CategoryID: "pieces-detachees", Name: "Pièce moteur"},
	{ID: "piece-carrosserie", CategoryID: "pieces-detachees", Name: "Pièce carrosserie"},
	{ID: "recherche-piece", CategoryID: "pieces-detachees", Name: "Recherche de pièce", SeekingParts: true},
	{ID: "reparation", CategoryID: "services-auto", Name: "Réparation", Service: true},
	{ID: "entretien", CategoryID: "services-auto", Name: "Entretien", Service: true},
	{ID: "remorquage", CategoryID: "services-auto", Name: "Remorquage", Service: true},
}

// ==================== 查询方法 ====================

// FindCategory 按 ID 查一级类目，未知返回 nil
func FindCategory(id string) *Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}

// FindSubcategory 按 ID 查二级类目，未知返回 nil
func FindSubcategory(id string) *Subcategory {
	for i := range subcategories {
		if subcategories[i].ID == id {
			return &subcategories[i]
		}
	}
	return nil
}

// AllCategories 返回类目表副本
func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ConditionApplicable 该类目是否需要填写成色
func ConditionApplicable(categoryID string) bool {
	cat := FindCategory(categoryID)
	return cat != nil && cat.RequiresCondition
}

// IsSeekingParts 该二级类目是否为求购配件
func IsSeekingParts(subcategoryID string) bool {
	sub := FindSubcategory(subcategoryID)
	return sub != nil && sub.SeekingParts
}

// IsService 该二级类目是否为服务
func IsService(subcategoryID string) bool {
	sub := FindSubcategory(subcategoryID)
	return sub != nil && sub.Service
}
