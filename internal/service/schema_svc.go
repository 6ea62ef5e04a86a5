package service

// ==================== 字段描述符 ====================

// FieldKind 输入控件类型，渲染端与校验端共用同一标签
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldNumber   FieldKind = "number"
	FieldSelect   FieldKind = "select"
	FieldTextarea FieldKind = "textarea"
)

// FieldDescriptor 单个动态字段的声明
type FieldDescriptor struct {
	ID          string    `json:"id"`
	Kind        FieldKind `json:"kind"`
	Required    bool      `json:"required"`
	Min         float64   `json:"min,omitempty"`
	Max         float64   `json:"max,omitempty"`
	HasBounds   bool      `json:"has_bounds,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// ==================== 字段表 ====================
// 每个二级类目一条声明式记录；新增类目只是追加条目，
// 校验与渲染逻辑都从这张表派生，互不侵入

var vehicleBrands = []string{
	"Peugeot", "Renault", "Citroën", "Dacia", "Volkswagen", "Toyota",
	"Ford", "Mercedes-Benz", "BMW", "Audi", "Fiat", "Opel", "Hyundai",
	"Kia", "Nissan", "Autre",
}

var motoBrands = []string{
	"Yamaha", "Honda", "Kawasaki", "Suzuki", "BMW", "KTM", "Ducati",
	"Piaggio", "Autre",
}

var fuelOptions = []string{"essence", "diesel", "hybride", "electrique", "gpl"}
var gearboxOptions = []string{"manuelle", "automatique"}

var subcategoryFields = map[string][]FieldDescriptor{
	"voiture": {
		{ID: "marque", Kind: FieldSelect, Required: true, Options: vehicleBrands},
		{ID: "modele", Kind: FieldText, Required: true, Placeholder: "208, Clio, Golf..."},
		{ID: "annee", Kind: FieldNumber, Required: true, Min: 1950, Max: 2100, HasBounds: true},
		{ID: "kilometrage", Kind: FieldNumber, Required: true, Min: 0, Max: 2000000, HasBounds: true},
		{ID: "carburant", Kind: FieldSelect, Required: true, Options: fuelOptions},
		{ID: "boite-vitesse", Kind: FieldSelect, Required: true, Options: gearboxOptions},
		{ID: "places", Kind: FieldNumber, Min: 2, Max: 9, HasBounds: true},
		{ID: "couleur", Kind: FieldText},
		{ID: "puissance-fiscale", Kind: FieldNumber},
	},
	"moto": {
		{ID: "marque", Kind: FieldSelect, Required: true, Options: motoBrands},
		{ID: "modele", Kind: FieldText, Required: true},
		{ID: "annee", Kind: FieldNumber, Required: true, Min: 1950, Max: 2100, HasBounds: true},
		{ID: "kilometrage", Kind: FieldNumber, Required: true, Min: 0, Max: 500000, HasBounds: true},
		{ID: "cylindree", Kind: FieldNumber, Required: true, Min: 50, Max: 2500, HasBounds: true},
	},
	"utilitaire": {
		{ID: "marque", Kind: FieldSelect, Required: true, Options: vehicleBrands},
		{ID: "modele", Kind: FieldText, Required: true},
		{ID: "annee", Kind: FieldNumber, Required: true, Min: 1950, Max: 2100, HasBounds: true},
		{ID: "kilometrage", Kind: FieldNumber, Required: true, Min: 0, Max: 2000000, HasBounds: true},
		{ID: "carburant", Kind: FieldSelect, Required: true, Options: fuelOptions},
		{ID: "boite-vitesse", Kind: FieldSelect, Required: true, Options: gearboxOptions},
		{ID: "charge-utile", Kind: FieldNumber, Placeholder: "en kg"},
	},
	// 拖挂类目只要一个类型字段，与机动车完全不重叠
	"remorque": {
		{ID: "type-remorque", Kind: FieldText, Required: true, Placeholder: "plateau, benne, porte-voiture..."},
	},
	"piece-moteur": {
		{ID: "nom-piece", Kind: FieldText, Required: true},
		{ID: "reference", Kind: FieldText, Placeholder: "référence constructeur"},
		{ID: "compatibilite", Kind: FieldText, Required: true, Placeholder: "véhicules compatibles"},
	},
	"piece-carrosserie": {
		{ID: "nom-piece", Kind: FieldText, Required: true},
		{ID: "compatibilite", Kind: FieldText, Required: true},
		{ID: "couleur", Kind: FieldText},
	},
	"recherche-piece": {
		{ID: "nom-piece", Kind: FieldText, Required: true},
		{ID: "vehicule-concerne", Kind: FieldText, Placeholder: "marque, modèle, année"},
	},
	"reparation": {
		{ID: "type-prestation", Kind: FieldSelect, Required: true, Options: []string{"mecanique", "carrosserie", "electronique", "pneumatiques"}},
		{ID: "zone-intervention", Kind: FieldText},
	},
	"entretien": {
		{ID: "type-prestation", Kind: FieldSelect, Required: true, Options: []string{"vidange", "revision", "climatisation", "controle-technique"}},
		{ID: "zone-intervention", Kind: FieldText},
	},
	"remorquage": {
		{ID: "zone-intervention", Kind: FieldText, Required: true},
		{ID: "disponibilite", Kind: FieldText, Placeholder: "24h/24, week-end..."},
	},
}

// ==================== 服务实现 ====================

// SchemaService 动态字段注册表：二级类目 -> 有序字段描述
// 纯查询，永不报错，未知类目返回空列表
type SchemaService struct{}

func NewSchemaService() *SchemaService {
	return &SchemaService{}
}

// ResolveFields 解析类目的有序字段列表（返回副本，调用方可安全修改）
func (s *SchemaService) ResolveFields(subcategoryID string) []FieldDescriptor {
	fields, ok := subcategoryFields[subcategoryID]
	if !ok {
		return []FieldDescriptor{}
	}
	out := make([]FieldDescriptor, len(fields))
	copy(out, fields)
	return out
}

// RequiredFieldIDs 仅保留必填字段的标识
func (s *SchemaService) RequiredFieldIDs(subcategoryID string) []string {
	var ids []string
	for _, f := range subcategoryFields[subcategoryID] {
		if f.Required {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// FindField 按标识查字段描述，未知返回 nil
func (s *SchemaService) FindField(subcategoryID, fieldID string) *FieldDescriptor {
	for _, f := range subcategoryFields[subcategoryID] {
		if f.ID == fieldID {
			found := f
			return &found
		}
	}
	return nil
}
