package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

const (
	// 发布意向
	IntentUnset    = ""
	IntentOffering = "offering" // 出售/提供
	IntentSeeking  = "seeking"  // 求购

	// 会话状态
	DraftStatusEditing   = "editing"
	DraftStatusPublished = "published"
	DraftStatusAbandoned = "abandoned"

	// 成色
	ConditionNew      = "neuf"
	ConditionVeryGood = "tres-bon"
	ConditionGood     = "bon"
	ConditionFair     = "correct"
	ConditionDamaged  = "endommage"
)

// MaxPhotos 照片数量软上限，超出部分静默丢弃
const MaxPhotos = 4

// ==================== JSON 类型 ====================

// Photo 单张照片：要么是待上传的原始数据，要么是托管引用
// 上传后 raw -> hosted，打码后托管引用被替换且 Masked 置位（单向）
type Photo struct {
	Data   []byte `json:"data,omitempty"` // 原始字节（JSON 中为 base64）
	URL    string `json:"url,omitempty"`  // 托管引用
	Masked bool   `json:"masked"`
}

// Hosted 照片是否已上传托管
func (p *Photo) Hosted() bool {
	return p.URL != ""
}

// PhotoList 照片切片（JSON 存储）
type PhotoList []Photo

func (l PhotoList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *PhotoList) Scan(value interface{}) error {
	if value == nil {
		*l = PhotoList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		bytes = []byte(s)
	}
	return json.Unmarshal(bytes, l)
}

// Contact 联系方式与曝光开关（JSON 存储）
type Contact struct {
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Whatsapp              string `json:"whatsapp"`
	ShowPhone             bool   `json:"show_phone"`
	ShowWhatsapp          bool   `json:"show_whatsapp"`
	ShowInternalMessaging bool   `json:"show_internal_messaging"`
}

func (c Contact) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Contact) Scan(value interface{}) error {
	if value == nil {
		*c = Contact{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		bytes = []byte(s)
	}
	return json.Unmarshal(bytes, c)
}

// ==================== 数据库模型 ====================

// WizardDraft 发布向导的单一草稿聚合
// 整个向导流程只操作这一份可变文档，步骤推进由 sequencer 控制
type WizardDraft struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time      `gorm:"index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	UserID    int64          `gorm:"index;not null;comment:用户ID"`

	Intent        string `gorm:"size:16;default:'';comment:发布意向"`
	CategoryID    string `gorm:"size:64;comment:一级类目"`
	SubcategoryID string `gorm:"size:64;comment:二级类目"`
	Condition     string `gorm:"size:32;comment:成色"`

	Title           string            `gorm:"size:50;comment:标题(净化后)"`
	Description     string            `gorm:"size:300;comment:描述(净化后)"`
	SpecificDetails datatypes.JSONMap `gorm:"type:json;comment:类目动态字段"`
	Photos          PhotoList         `gorm:"type:json;comment:照片(最多4张)"`

	Price      float64 `gorm:"comment:价格"`
	City       string  `gorm:"size:128;comment:城市"`
	PostalCode string  `gorm:"size:16;comment:邮编"`
	Contact    Contact `gorm:"type:json;comment:联系方式"`

	// 向导导航状态
	StepCursor  int       `gorm:"default:1;comment:当前步骤(有效序列1-based)"`
	AutoAdvance bool      `gorm:"default:true;comment:自动推进开关"`
	LastBackAt  time.Time `gorm:"comment:最近一次回退时间"`

	Status       string `gorm:"size:32;index;default:editing;comment:会话状态"`
	PublishError string `gorm:"size:1024;comment:最近一次发布失败信息"`
	ListingID    int64  `gorm:"index;comment:发布成功后的公告ID"`
	ListingTitle string `gorm:"size:64;comment:发布成功后的公告标题"`
}

func (*WizardDraft) TableName() string {
	return "wizard_drafts"
}

// ==================== 聚合方法 ====================

// ResetTaxonomy 意向变更：类目及其派生选择全部失效
func (d *WizardDraft) ResetTaxonomy() {
	d.CategoryID = ""
	d.ResetSubcategory()
	d.Condition = ""
}

// ResetSubcategory 类目变更：二级类目与动态字段失效
// 旧 schema 绝不能用于校验新类目
func (d *WizardDraft) ResetSubcategory() {
	d.SubcategoryID = ""
	d.SpecificDetails = datatypes.JSONMap{}
}

// MarkPhotoMasked 打码标记单向：一旦置位不随普通编辑回退
func (d *WizardDraft) MarkPhotoMasked(index int, maskedURL string) error {
	if index < 0 || index >= len(d.Photos) {
		return errors.New("index photo hors limites")
	}
	d.Photos[index].URL = maskedURL
	d.Photos[index].Data = nil
	d.Photos[index].Masked = true
	return nil
}

// HostedPhotoURLs 已托管照片的引用列表
func (d *WizardDraft) HostedPhotoURLs() []string {
	var urls []string
	for i := range d.Photos {
		if d.Photos[i].Hosted() {
			urls = append(urls, d.Photos[i].URL)
		}
	}
	return urls
}

// Editable 是否仍可编辑
func (d *WizardDraft) Editable() bool {
	return d.Status == DraftStatusEditing
}
